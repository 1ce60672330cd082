package board

import (
	"time"

	"bulletin/internal/models"
)

// DetailState is the detail panel lifecycle.
type DetailState string

const (
	DetailClosed  DetailState = "closed"
	DetailLoading DetailState = "loading"
	DetailOpen    DetailState = "open"
)

// Detail holds the open record, its thread and the panel's local drafts.
// A failed open never leaves the panel half populated: the state returns to
// DetailClosed.
type Detail struct {
	State        DetailState
	Record       *models.Request
	Comments     []models.Comment
	OwnerOptions []models.UserOption

	// DescriptionDraft survives a failed save so the user can retry.
	DescriptionDraft   string
	EditingDescription bool

	// Composer survives a failed post and is cleared on success.
	Composer string

	// StatusSaved is the transient saved acknowledgment after a status save.
	StatusSaved bool

	// ThreadVersion grows with the comment count; the renderer scrolls the
	// thread to the bottom when it changes.
	ThreadVersion int
}

// Open reports whether the panel is showing a record.
func (d *Detail) Open() bool {
	return d.State == DetailOpen
}

// CanEditStatus reports whether the status field is editable.
func (d *Detail) CanEditStatus(isAdmin bool) bool {
	return d.Open() && isAdmin
}

// CanEditOwner reports whether the owner field is editable. Only admins may
// edit, and only on Support Requests.
func (d *Detail) CanEditOwner(isAdmin bool) bool {
	return d.Open() && isAdmin && d.Record.Type == models.TypeSupport
}

// CanEditDescription reports whether the description is editable: admins and
// the original submitter.
func (d *Detail) CanEditDescription(isAdmin bool, userID uint) bool {
	return d.Open() && (isAdmin || d.Record.CreatedByID == userID)
}

// ShortTimestamp renders a comment timestamp the way the thread shows it.
func ShortTimestamp(t time.Time) string {
	return t.Local().Format("Jan 2, 3:04 PM")
}
