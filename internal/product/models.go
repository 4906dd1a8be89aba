package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the closed set of catalog states. New products start inactive
// until a seller publishes them.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusArchived Status = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusArchived:
		return true
	}
	return false
}

// Product is one catalog item. Price is carried as an exact decimal; it is
// never represented as a binary float anywhere in the subsystem.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	ImageURL    string          `json:"imageUrl"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Status      Status          `json:"status"`
	AvailableAt time.Time       `json:"availableAt"`
}

// FormData carries the full field set for creating or updating a product.
// Status defaults to inactive and AvailableAt to now when zero. Price and
// stock bounds are checked in the service since decimals fall outside
// tag-based validation.
type FormData struct {
	Name        string          `json:"name" validate:"required,notblank"`
	ImageURL    string          `json:"imageUrl" validate:"omitempty,url"`
	Price       decimal.Decimal `json:"price" validate:"-"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Status      Status          `json:"status" validate:"omitempty,oneof=active inactive archived"`
	AvailableAt time.Time       `json:"availableAt"`
}
