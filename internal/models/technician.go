package models

// TechnicianUnavailable marks a day a technician cannot be scheduled.
type TechnicianUnavailable struct {
	ID             string `bson:"_id" json:"id"`
	TechnicianName string `bson:"technician_name" json:"technician_name"`
	Date           string `bson:"date" json:"date"` // YYYY-MM-DD
	Reason         string `bson:"reason,omitempty" json:"reason,omitempty"`
}
