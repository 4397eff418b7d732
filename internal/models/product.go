package models

import "time"

// Stretcher model lines.
const (
	ModelTypePowered = "powered"
	ModelTypeRollIn  = "roll_in"
)

// Product represents a physical stretcher unit registered at a hospital site.
type Product struct {
	ID               string    `bson:"_id" json:"id"`
	SerialNumber     string    `bson:"serial_number" json:"serial_number"`
	ModelName        string    `bson:"model_name" json:"model_name"`
	ModelType        string    `bson:"model_type" json:"model_type"` // "powered" or "roll_in"
	City             string    `bson:"city" json:"city"`
	LocationDetail   string    `bson:"location_detail,omitempty" json:"location_detail,omitempty"`
	Notes            string    `bson:"notes,omitempty" json:"notes,omitempty"`
	RegistrationDate time.Time `bson:"registration_date" json:"registration_date"`
	Status           string    `bson:"status" json:"status"` // "active" or "inactive"
}

// ProductCreate is the request body for creating or updating a product.
type ProductCreate struct {
	SerialNumber     string `json:"serial_number"`
	ModelName        string `json:"model_name"`
	ModelType        string `json:"model_type"`
	City             string `json:"city"`
	LocationDetail   string `json:"location_detail"`
	Notes            string `json:"notes"`
	RegistrationDate string `json:"registration_date,omitempty"` // optional ISO timestamp or YYYY-MM-DD
}
