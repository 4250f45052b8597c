package packets

import (
	"encoding/json"

	"github.com/kubagp1/school-clock/internal/theme"
)

type ThemeResponse struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	CreatedBy int           `json:"created_by"`
	Fields    []theme.Field `json:"fields"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

type RuleResponse struct {
	ID              int             `json:"id"`
	ConfigurationID int             `json:"configuration_id"`
	Name            string          `json:"name"`
	Enabled         bool            `json:"enabled"`
	Index           int             `json:"index"`
	Condition       json.RawMessage `json:"condition"`
	ThemeID         int             `json:"theme_id"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

// returned by condition updates so the dashboard can warn before a
// destructive edit drops several comparisons at once
type ConditionResponse struct {
	Condition json.RawMessage `json:"condition"`
	LeafCount int             `json:"leaf_count"`
}

type ConfigurationResponse struct {
	ID          int                `json:"id"`
	Name        string             `json:"name"`
	CreatedBy   int                `json:"created_by"`
	BaseThemeID int                `json:"base_theme_id"`
	BaseTheme   *ThemeResponse     `json:"base_theme,omitempty"`
	Rules       []RuleResponse     `json:"rules,omitempty"`
	Instances   []InstanceResponse `json:"instances,omitempty"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
}

type NewsTickerResponse struct {
	ID               int     `json:"id"`
	ConfigurationID  int     `json:"configuration_id"`
	Text             string  `json:"text"`
	Loop             int     `json:"loop"`
	Speed            float64 `json:"speed"`
	ForceHiddenFalse bool    `json:"force_hidden_false"`
	StartAt          string  `json:"start_at"`
	EndAt            string  `json:"end_at"`
}

type InstanceResponse struct {
	ID              int     `json:"id"`
	ConfigurationID int     `json:"configuration_id"`
	Name            string  `json:"name"`
	Paired          bool    `json:"paired"`
	LastSeen        *string `json:"last_seen"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}
