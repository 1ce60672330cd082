package models

import "time"

// Category is an admin-curated tag attachable to requests. Only active
// categories are offered to submitters; deactivating one keeps historical
// attachments intact.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:80;not null;uniqueIndex" json:"name"`
	Active    bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryOption is the {id,name} projection used by tag pickers.
type CategoryOption struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// OptionsFromCategories projects categories into picker options.
func OptionsFromCategories(categories []Category) []CategoryOption {
	opts := make([]CategoryOption, 0, len(categories))
	for i := range categories {
		opts = append(opts, CategoryOption{ID: categories[i].ID, Name: categories[i].Name})
	}
	return opts
}
