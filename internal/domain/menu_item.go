package domain

import "time"

type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MenuItem struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Category        CategoryRef `json:"category"`
	BasePrice       float64     `json:"basePrice"`
	IsVeg           bool        `json:"isVeg"`
	PreparationTime int         `json:"preparationTime"` // 分钟
	SpiceLevel      SpiceLevel  `json:"spiceLevel"`
	IsAvailable     bool        `json:"isAvailable"`
	Images          []string    `json:"images"`
	Description     string      `json:"description"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
	Version         int32       `json:"-"`
}
