package categories

import "time"

// Category groups items for browsing and filtering.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Disabled  bool      `json:"disabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListFilters narrows category listings.
type ListFilters struct {
	Search          string
	IncludeDisabled bool
	Page            int
	Limit           int
}
