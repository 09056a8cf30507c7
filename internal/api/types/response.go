// internal/api/types/response.go
package types

// PaginatedResponse is the envelope for list endpoints such as the wallet
// ledger history. TotalCount is the full row count, independent of the
// requested window.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalCount int64 `json:"total_count"`
}
