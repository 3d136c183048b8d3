package units

import "time"

// Unit represents a unit of measure.
type Unit struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Disabled  bool      `json:"disabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListFilters narrows unit listings.
type ListFilters struct {
	Search          string
	IncludeDisabled bool
	Page            int
	Limit           int
}
