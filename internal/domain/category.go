package domain

import "time"

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     *string   `json:"image,omitempty"`
	SortOrder *int32    `json:"sortOrder,omitempty"`
	IsActive  *bool     `json:"isActive,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
