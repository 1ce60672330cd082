package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestType distinguishes the two bulletin record types.
type RequestType string

const (
	// TypeSuggestion is an idea submission with a "Decision" workflow.
	TypeSuggestion RequestType = "Suggestion"
	// TypeSupport is an issue/ticket with a "Status" workflow and an owner.
	TypeSupport RequestType = "Support Request"
)

// Valid reports whether t is one of the two known record types.
func (t RequestType) Valid() bool {
	return t == TypeSuggestion || t == TypeSupport
}

// Request is a bulletin board record: a Suggestion or a Support Request.
// Records are never deleted in-app; status, owner and description are the
// only mutable fields after creation.
type Request struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	PublicID        string      `gorm:"size:36;uniqueIndex" json:"public_id"`
	RecordNumber    string      `gorm:"size:16;uniqueIndex" json:"record_number"`
	Type            RequestType `gorm:"type:varchar(24);not null;index" json:"type"`
	Title           string      `gorm:"size:255;not null" json:"title"`
	DescriptionHTML string      `gorm:"type:text;not null" json:"description_html"`
	Status          string      `gorm:"size:40;not null;index" json:"status"`
	OwnerID         *uint       `gorm:"index" json:"owner_id"`
	Owner           *User       `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CreatedByID     uint        `gorm:"not null;index" json:"created_by_id"`
	CreatedBy       *User       `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Categories      []Category  `gorm:"many2many:request_categories" json:"categories"`
	// CommentCount is not persisted; computed at query time
	CommentCount int       `gorm:"-" json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns the public identifier.
func (r *Request) BeforeCreate(_ *gorm.DB) error {
	if r.PublicID == "" {
		r.PublicID = uuid.NewString()
	}
	return nil
}

// FormatRecordNumber renders the sequential display number for a record.
func FormatRecordNumber(seq uint) string {
	return fmt.Sprintf("BB-%05d", seq)
}

// CategoryNames returns the record's category names in stored order.
func (r *Request) CategoryNames() []string {
	names := make([]string, 0, len(r.Categories))
	for i := range r.Categories {
		names = append(names, r.Categories[i].Name)
	}
	return names
}

// OwnerName returns the assignee display name, or "" when unassigned.
func (r *Request) OwnerName() string {
	if r.Owner == nil {
		return ""
	}
	return r.Owner.Name()
}
