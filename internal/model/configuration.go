package model

import "time"

// Configuration ties a base theme, its rules and its display instances
// together. It owns the rules and, for internal rules, their themes.
type Configuration struct {
	ID          int       `db:"id"            json:"id"`
	Name        string    `db:"name"          json:"name"`
	CreatedBy   int       `db:"created_by"    json:"created_by"`
	BaseThemeID int       `db:"base_theme_id" json:"base_theme_id"`
	CreatedAt   time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"    json:"updated_at"`

	BaseTheme *Theme     `db:"-" json:"base_theme,omitempty"`
	Rules     []Rule     `db:"-" json:"rules,omitempty"`
	Instances []Instance `db:"-" json:"instances,omitempty"`
}
