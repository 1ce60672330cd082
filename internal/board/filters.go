package board

import (
	"fmt"

	"bulletin/internal/models"
)

// Tab identifies one of the two board tabs.
type Tab string

const (
	TabSuggestions Tab = "suggestions"
	TabSupport     Tab = "support"
)

// RequestType maps a tab to the record type it lists.
func (t Tab) RequestType() models.RequestType {
	if t == TabSupport {
		return models.TypeSupport
	}
	return models.TypeSuggestion
}

// Owner scope filter values. A specific user is addressed as "USER:<id>".
const (
	ScopeAny        = "ANY"
	ScopeMe         = "ME"
	ScopeUnassigned = "UNASSIGNED"
)

// ScopeUser builds the owner scope value for a specific user.
func ScopeUser(id uint) string {
	return fmt.Sprintf("USER:%d", id)
}

// PageSize is the fixed page size sent with every list fetch. Client input
// never changes it.
const PageSize = 50

// Filters is the per-tab filter snapshot sent to the list operations and
// persisted in the FilterStore.
type Filters struct {
	Search       string `json:"search"`
	Status       string `json:"status"`
	CategoryName string `json:"category_name"`
	OwnerScope   string `json:"owner_scope"`
	PageSize     int    `json:"page_size"`
}

// DefaultFilters returns the role-appropriate defaults for a tab. Admins
// default to ANY everywhere; non-admins default to their own submissions on
// the suggestions tab and ANY on support, where they cannot scope by owner.
func DefaultFilters(tab Tab, isAdmin bool) Filters {
	scope := ScopeAny
	if tab == TabSuggestions && !isAdmin {
		scope = ScopeMe
	}
	return Filters{OwnerScope: scope, PageSize: PageSize}
}

// Normalize fills missing fields with role-appropriate defaults and forces
// the fixed page size. Non-admins on the support tab always get ANY, even
// when a scoped value was supplied.
func (f Filters) Normalize(tab Tab, isAdmin bool) Filters {
	f.PageSize = PageSize
	if f.OwnerScope == "" {
		f.OwnerScope = DefaultFilters(tab, isAdmin).OwnerScope
	}
	if tab == TabSupport && !isAdmin {
		f.OwnerScope = ScopeAny
	}
	return f
}
