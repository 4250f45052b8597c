package model

import (
	"time"

	"github.com/kubagp1/school-clock/internal/theme"
)

// Theme is a named set of display field overrides. Internal themes are
// synthesized by the news-ticker adapter and hidden from normal theme
// listings; they live and die with their owning rule.
type Theme struct {
	ID        int       `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	CreatedBy int       `db:"created_by" json:"created_by"`
	Internal  bool      `db:"internal"   json:"internal"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Fields []theme.Field `db:"-" json:"fields,omitempty"`
}
