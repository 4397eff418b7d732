package models

import "time"

// Maintenance entry types.
const (
	MaintenanceRoutine          = "routine"
	MaintenanceIssueInspection  = "issue_inspection"
	MaintenanceIssueService     = "issue_service"
	MaintenanceIssueReplacement = "issue_replacement"
	MaintenanceCustomerIssue    = "customer_issue"
	MaintenanceWarrantyService  = "warranty_service"
)

// Maintenance entry sources.
const (
	SourceManual          = "manual"
	SourceAutoYearly      = "auto_yearly"
	SourceIssue           = "issue"
	SourceCustomerIssue   = "customer_issue"
	SourceWarrantyService = "warranty_service"
)

// Maintenance entry statuses.
const (
	MaintenanceScheduled       = "scheduled"
	MaintenanceInProgress      = "in_progress"
	MaintenanceCompleted       = "completed"
	MaintenanceCancelled       = "cancelled"
	MaintenancePendingSchedule = "pending_schedule" // no date yet, technician must pick one
)

// SLA priorities for issue-driven entries.
const (
	Priority12h = "12h"
	Priority24h = "24h"
)

// ScheduledMaintenance is a calendar/SLA entry. A nil ScheduledDate means the
// technician still has to pick a date.
type ScheduledMaintenance struct {
	ID             string     `bson:"_id" json:"id"`
	ProductID      string     `bson:"product_id" json:"product_id"`
	ScheduledDate  *time.Time `bson:"scheduled_date" json:"scheduled_date"`
	Type           string     `bson:"maintenance_type" json:"maintenance_type"`
	TechnicianName string     `bson:"technician_name,omitempty" json:"technician_name,omitempty"`
	Notes          string     `bson:"notes,omitempty" json:"notes,omitempty"`
	Source         string     `bson:"source" json:"source"`
	IssueID        string     `bson:"issue_id,omitempty" json:"issue_id,omitempty"` // weak back-reference, lookup only
	Priority       string     `bson:"priority,omitempty" json:"priority,omitempty"` // "12h", "24h" or empty
	Status         string     `bson:"status" json:"status"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	CompletedAt    *time.Time `bson:"completed_at" json:"completed_at"`
}

// MaintenanceCreate is the request body for manually scheduling maintenance.
type MaintenanceCreate struct {
	ProductID      string     `json:"product_id"`
	ScheduledDate  *time.Time `json:"scheduled_date"`
	Type           string     `json:"maintenance_type"`
	TechnicianName string     `json:"technician_name"`
	Notes          string     `json:"notes"`
	Source         string     `json:"source"`
	IssueID        string     `json:"issue_id"`
	Priority       string     `json:"priority"`
}

// MaintenancePatch is the sparse update body for a maintenance entry.
type MaintenancePatch struct {
	ScheduledDate  *time.Time `json:"scheduled_date"`
	Type           *string    `json:"maintenance_type"`
	TechnicianName *string    `json:"technician_name"`
	Notes          *string    `json:"notes"`
	Status         *string    `json:"status"`
	Priority       *string    `json:"priority"`
}
