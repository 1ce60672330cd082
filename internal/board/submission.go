package board

import (
	"bulletin/internal/models"
	"bulletin/internal/richtext"
)

// Body templates pre-filled when the submission form opens.
const (
	suggestionTemplate = "<p><b>Idea</b></p><p><br></p><p><b>Why it would help</b></p><p><br></p>"
	supportTemplate    = "<p><b>What happened</b></p><p><br></p><p><b>What you expected</b></p><p><br></p>"
)

// Submission is the submission modal's form state. Every open starts from a
// fresh form; nothing carries over from a prior open.
type Submission struct {
	Open        bool
	Type        models.RequestType
	Title       string
	BodyHTML    string
	CategoryIDs []uint
}

// NewSubmission builds a fresh form pre-populated for the given type.
func NewSubmission(requestType models.RequestType) Submission {
	body := suggestionTemplate
	if requestType == models.TypeSupport {
		body = supportTemplate
	}
	return Submission{
		Open:     true,
		Type:     requestType,
		BodyHTML: body,
	}
}

// Validate checks the submission before it is sent: the type must be set,
// at least one category selected, and the body must contain visible text
// after tag-stripping.
func (s Submission) Validate() error {
	if !s.Type.Valid() {
		return models.NewValidationError("Choose a record type")
	}
	if len(s.CategoryIDs) == 0 {
		return models.NewValidationError("Select at least one category")
	}
	if richtext.Blank(s.BodyHTML) {
		return models.NewValidationError("Description is required")
	}
	return nil
}
