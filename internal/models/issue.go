package models

import "time"

// Issue statuses.
const (
	IssueStatusOpen       = "open"
	IssueStatusInProgress = "in_progress"
	IssueStatusInService  = "in_service" // warranty repair pending, not yet resolved
	IssueStatusResolved   = "resolved"
)

// Repair attempt statuses.
const (
	RepairStatusPending    = "pending"
	RepairStatusInProgress = "in_progress"
	RepairStatusCompleted  = "completed"
)

// Warranty service types, set when an issue is resolved.
const (
	WarrantyService    = "warranty"
	NonWarrantyService = "non_warranty"
)

// SourceCustomer marks issues reported through the customer portal.
const SourceCustomer = "customer"

// RepairAttempt is one cycle of warranty repair work on an issue. Attempts are
// embedded in the issue document; at most one is in progress at a time and the
// issue's CurrentRepairID points at it.
type RepairAttempt struct {
	ID          string     `bson:"id" json:"id"`
	StartedAt   time.Time  `bson:"started_at" json:"started_at"`
	CompletedAt *time.Time `bson:"completed_at" json:"completed_at"`
	Notes       string     `bson:"notes" json:"notes"`
	Status      string     `bson:"status" json:"status"` // "pending", "in_progress", "completed"
}

// Issue is a reported defect on a product.
type Issue struct {
	ID                      string          `bson:"_id" json:"id"`
	ProductID               string          `bson:"product_id" json:"product_id"`
	IssueCode               string          `bson:"issue_code" json:"issue_code"` // YYYY_SN_MM_DD_ORDER, immutable once set
	IssueType               string          `bson:"issue_type" json:"issue_type"` // mechanical, electrical, cosmetic, other
	Severity                string          `bson:"severity" json:"severity"`     // low, medium, high, critical
	Title                   string          `bson:"title" json:"title"`
	Description             string          `bson:"description" json:"description"`
	Status                  string          `bson:"status" json:"status"`
	Photos                  []string        `bson:"photos" json:"photos"` // base64 encoded images
	Resolution              string          `bson:"resolution,omitempty" json:"resolution,omitempty"`
	ServiceNote             string          `bson:"service_note,omitempty" json:"service_note,omitempty"`
	TechnicianName          string          `bson:"technician_name,omitempty" json:"technician_name,omitempty"`
	TechnicianAssignedAt    *time.Time      `bson:"technician_assigned_at" json:"technician_assigned_at"`
	WarrantyStatus          string          `bson:"warranty_status,omitempty" json:"warranty_status,omitempty"`
	WarrantyServiceType     string          `bson:"warranty_service_type,omitempty" json:"warranty_service_type,omitempty"`
	EstimatedFixTime        string          `bson:"estimated_fix_time,omitempty" json:"estimated_fix_time,omitempty"`
	EstimatedCost           string          `bson:"estimated_cost,omitempty" json:"estimated_cost,omitempty"`
	SparePartsUsed          bool            `bson:"spare_parts_used,omitempty" json:"spare_parts_used,omitempty"`
	SpareParts              string          `bson:"spare_parts,omitempty" json:"spare_parts,omitempty"`
	ProductLocation         string          `bson:"product_location,omitempty" json:"product_location,omitempty"`
	Source                  string          `bson:"source,omitempty" json:"source,omitempty"` // "customer" for portal-reported issues
	CreatedAt               time.Time       `bson:"created_at" json:"created_at"`
	ResolvedAt              *time.Time      `bson:"resolved_at" json:"resolved_at"`
	WarrantyRepairStartedAt *time.Time      `bson:"warranty_repair_started_at" json:"warranty_repair_started_at"`
	RepairAttempts          []RepairAttempt `bson:"repair_attempts,omitempty" json:"repair_attempts,omitempty"`
	CurrentRepairID         string          `bson:"current_repair_id,omitempty" json:"current_repair_id,omitempty"`

	// Legacy child-issue warranty routing, superseded by RepairAttempts but
	// still present in stored data.
	ParentIssueID   string `bson:"parent_issue_id,omitempty" json:"parent_issue_id,omitempty"`
	ChildIssueID    string `bson:"child_issue_id,omitempty" json:"child_issue_id,omitempty"`
	IsWarrantyRoute bool   `bson:"is_warranty_route,omitempty" json:"is_warranty_route,omitempty"`
}

// IssueCreate is the request body for creating an issue from the admin portal.
type IssueCreate struct {
	ProductID      string   `json:"product_id"`
	IssueType      string   `json:"issue_type"`
	Severity       string   `json:"severity"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	TechnicianName string   `json:"technician_name"`
	WarrantyStatus string   `json:"warranty_status"`
	Source         string   `json:"source"`
	Photos         []string `json:"photos"`
}

// CustomerIssueCreate is the request body for the customer portal. Severity
// and source are forced server-side.
type CustomerIssueCreate struct {
	ProductID       string `json:"product_id"`
	IssueType       string `json:"issue_type"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ProductLocation string `json:"product_location"`
	WarrantyStatus  string `json:"warranty_status"`
}

// IssuePatch is the sparse update body for PUT /issues/{id}. Nil fields are
// absent and leave the stored value untouched.
type IssuePatch struct {
	Status              *string `json:"status"`
	Resolution          *string `json:"resolution"`
	ServiceNote         *string `json:"service_note"`
	TechnicianName      *string `json:"technician_name"`
	WarrantyStatus      *string `json:"warranty_status"`
	WarrantyServiceType *string `json:"warranty_service_type"`
	EstimatedFixTime    *string `json:"estimated_fix_time"`
	EstimatedCost       *string `json:"estimated_cost"`
	SparePartsUsed      *bool   `json:"spare_parts_used"`
	SpareParts          *string `json:"spare_parts"`
	CreateServiceRecord *bool   `json:"create_service_record"`

	// Repair actions on warranty-routed issues.
	StartRepair    *bool   `json:"start_repair"`
	CompleteRepair *bool   `json:"complete_repair"`
	RepairNotes    *string `json:"repair_notes"`
	RepairID       *string `json:"repair_id"`
}
