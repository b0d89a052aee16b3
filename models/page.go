package models

// Page is the envelope for paginated list responses.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

func NewPage[T any](items []T, total, page, limit int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := int64(0)
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Page[T]{Items: items, Total: total, Page: page, Limit: limit, TotalPages: pages}
}

type AdminStats struct {
	TotalDonors     int64 `json:"total_donors"`
	TotalFunding    int64 `json:"total_funding"`
	TotalRequests   int64 `json:"total_requests"`
	PendingRequests int64 `json:"pending_requests"`
}
