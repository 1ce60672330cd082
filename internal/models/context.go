package models

// BulletinContext is the per-session role context: whether the current user
// is an admin, plus the rosters used for owner-scope filtering. Fetched once
// when the board loads.
type BulletinContext struct {
	IsAdmin       bool         `json:"is_admin"`
	AdminUsers    []UserOption `json:"admin_users"`
	BulletinUsers []UserOption `json:"bulletin_users"`
}
