package domain

import "time"

// Timestamps holds the creation and modification times stored on every row.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
