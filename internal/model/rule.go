package model

import (
	"encoding/json"
	"time"
)

// InternalGroupNewsTicker tags rules owned by the news-ticker adapter.
// User-authored rules carry a nil group. Each group is an independent
// precedence domain with its own index space.
const InternalGroupNewsTicker = "newsTicker"

// Rule conditionally overrides base theme fields: when its condition
// holds, its theme's enabled fields are applied. Index defines
// precedence within the rule's group; a smaller index means higher
// priority among simultaneously active rules.
type Rule struct {
	ID              int             `db:"id"               json:"id"`
	ConfigurationID int             `db:"configuration_id" json:"configuration_id"`
	Name            string          `db:"name"             json:"name"`
	Enabled         bool            `db:"enabled"          json:"enabled"`
	Index           int             `db:"index"            json:"index"`
	Condition       json.RawMessage `db:"condition"        json:"condition"`
	ThemeID         int             `db:"theme_id"         json:"theme_id"`
	InternalGroup   *string         `db:"internal_group"   json:"internal_group"`
	CreatedAt       time.Time       `db:"created_at"       json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"       json:"updated_at"`

	Theme *Theme `db:"-" json:"theme,omitempty"`
}

// IsUserRule reports whether the rule belongs to the user-visible set.
func (r Rule) IsUserRule() bool {
	return r.InternalGroup == nil
}

// InGroup reports whether the rule belongs to the named internal group.
func (r Rule) InGroup(group string) bool {
	return r.InternalGroup != nil && *r.InternalGroup == group
}
