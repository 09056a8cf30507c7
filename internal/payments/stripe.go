// internal/payments/stripe.go
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"communityledger/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeProvider implements Provider on top of the Stripe API. The client is
// held on the struct and injected where needed; there is no package-level
// key or client.
type StripeProvider struct {
	client        *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
}

// NewStripeProvider creates a StripeProvider with its own API client.
func NewStripeProvider(secretKey, webhookSecret, successURL, cancelURL string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{
		client:        api,
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
	}
}

// toCents converts a 2-dp decimal amount to the provider's integer minor
// units.
func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// fromCents converts provider minor units back to a decimal amount.
func fromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}

// CreateCheckoutSession creates a hosted checkout session.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, spec CheckoutSpec) (*CheckoutHandle, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.successURL),
		CancelURL:  stripe.String(p.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(spec.Currency)),
					UnitAmount: stripe.Int64(toCents(spec.AmountTotal)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(spec.Title),
					},
				},
			},
		},
	}
	params.Context = ctx
	if spec.PayerEmail != "" {
		params.CustomerEmail = stripe.String(spec.PayerEmail)
	}
	if spec.TransferDestination != "" {
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(toCents(spec.ApplicationFee)),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(spec.TransferDestination),
			},
		}
	}
	for k, v := range spec.Metadata.ToMap() {
		params.AddMetadata(k, v)
	}

	sess, err := p.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create checkout session: %v", util.ErrUpstreamUnavailable, err)
	}
	return &CheckoutHandle{SessionID: sess.ID, RedirectURL: sess.URL}, nil
}

// ParseWebhook verifies the signature and extracts a completed checkout.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (*SettledPayment, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrSignatureInvalid, err)
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: malformed checkout session payload: %v", util.ErrInvalidInput, err)
	}

	meta, err := ParseCheckoutMetadata(sess.Metadata)
	if err != nil {
		return nil, err
	}

	settled := &SettledPayment{
		SessionID:   sess.ID,
		AmountTotal: fromCents(sess.AmountTotal),
		Currency:    strings.ToUpper(string(sess.Currency)),
		Metadata:    meta,
	}
	if sess.PaymentIntent != nil {
		settled.PaymentIntentID = sess.PaymentIntent.ID
	}
	return settled, nil
}

// ResolveTransferDestination looks up the transfer created for a payment
// intent's charge, if the payment went to a connected account.
func (p *StripeProvider) ResolveTransferDestination(ctx context.Context, paymentIntentID string) (string, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge.transfer")

	pi, err := p.client.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return "", fmt.Errorf("%w: get payment intent: %v", util.ErrUpstreamUnavailable, err)
	}
	if pi.LatestCharge == nil || pi.LatestCharge.Transfer == nil {
		return "", nil
	}
	return pi.LatestCharge.Transfer.ID, nil
}
