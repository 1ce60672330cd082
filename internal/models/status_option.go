package models

import "time"

// StatusOption is one entry of the centrally administered status vocabulary
// for a record type. The vocabulary is served to clients rather than
// hardcoded so that statuses can be added without a deploy; a record's
// status must always belong to the active set for its type.
type StatusOption struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Type      RequestType `gorm:"type:varchar(24);not null;index" json:"type"`
	Name      string      `gorm:"size:40;not null" json:"name"`
	Position  int         `gorm:"not null;default:0" json:"position"`
	Active    bool        `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// DefaultStatusOptions is the seed vocabulary for a fresh database: the
// Suggestion decision workflow and the Support Request status workflow.
func DefaultStatusOptions() []StatusOption {
	return []StatusOption{
		{Type: TypeSuggestion, Name: "Under Review", Position: 0, Active: true},
		{Type: TypeSuggestion, Name: "Accepted", Position: 1, Active: true},
		{Type: TypeSuggestion, Name: "Rejected", Position: 2, Active: true},
		{Type: TypeSuggestion, Name: "Implemented", Position: 3, Active: true},
		{Type: TypeSupport, Name: "New", Position: 0, Active: true},
		{Type: TypeSupport, Name: "In Review", Position: 1, Active: true},
		{Type: TypeSupport, Name: "In Progress", Position: 2, Active: true},
		{Type: TypeSupport, Name: "Done", Position: 3, Active: true},
		{Type: TypeSupport, Name: "Closed", Position: 4, Active: true},
	}
}
