package models

import "time"

// ServiceRecord is an audit record of completed work on a product.
type ServiceRecord struct {
	ID             string    `bson:"_id" json:"id"`
	ProductID      string    `bson:"product_id" json:"product_id"`
	TechnicianName string    `bson:"technician_name" json:"technician_name"`
	ServiceType    string    `bson:"service_type" json:"service_type"` // maintenance, repair, inspection
	Description    string    `bson:"description" json:"description"`
	IssuesFound    string    `bson:"issues_found,omitempty" json:"issues_found,omitempty"`
	WarrantyStatus string    `bson:"warranty_status,omitempty" json:"warranty_status,omitempty"`
	ServiceDate    time.Time `bson:"service_date" json:"service_date"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// ServiceRecordCreate is the request body for logging a service record.
type ServiceRecordCreate struct {
	ProductID      string     `json:"product_id"`
	TechnicianName string     `json:"technician_name"`
	ServiceType    string     `json:"service_type"`
	Description    string     `json:"description"`
	IssuesFound    string     `json:"issues_found"`
	WarrantyStatus string     `json:"warranty_status"`
	ServiceDate    *time.Time `json:"service_date"`
}
