package models

import (
	"fmt"
	"strings"
	"time"
)

// PantryItem is an ingredient on hand in the shared household pantry
type PantryItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  *float64  `json:"quantity"`
	Unit      *string   `json:"unit"`
	AddedBy   string    `json:"added_by"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPantryItem trims user input and rejects items without a name
func NewPantryItem(name string, quantity *float64, unit, addedBy string) (PantryItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return PantryItem{}, fmt.Errorf("%w: pantry item name is empty", ErrValidationFailed)
	}
	if strings.TrimSpace(addedBy) == "" {
		return PantryItem{}, fmt.Errorf("%w: pantry item has no owner", ErrUnauthorized)
	}

	item := PantryItem{
		Name:     name,
		Quantity: quantity,
		AddedBy:  addedBy,
	}
	if u := strings.TrimSpace(unit); u != "" {
		item.Unit = &u
	}
	return item, nil
}
