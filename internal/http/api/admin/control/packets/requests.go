package packets

import (
	"encoding/json"
	"time"

	"github.com/kubagp1/school-clock/internal/theme"
)

type CreateThemeRequest struct {
	Name   string        `json:"name" binding:"required"`
	Fields []theme.Field `json:"fields"`
}

type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

type SetThemeFieldsRequest struct {
	Fields []theme.Field `json:"fields" binding:"required"`
}

type CreateConfigurationRequest struct {
	Name        string `json:"name" binding:"required"`
	BaseThemeID int    `json:"base_theme_id" binding:"required"`
}

type ChangeBaseThemeRequest struct {
	BaseThemeID int `json:"base_theme_id" binding:"required"`
}

type CreateRuleRequest struct {
	Name    string `json:"name" binding:"required"`
	ThemeID int    `json:"theme_id" binding:"required"`
}

type UpdateRuleRequest struct {
	Name    string `json:"name" binding:"required"`
	Enabled *bool  `json:"enabled" binding:"required"`
	ThemeID int    `json:"theme_id" binding:"required"`
}

type UpdateRuleConditionRequest struct {
	Condition json.RawMessage `json:"condition" binding:"required"`
}

// one entry of a reorder batch
type RuleOrderEntry struct {
	ID    int `json:"id" binding:"required"`
	Index int `json:"index"`
}

type NewsTickerRequest struct {
	Text             string    `json:"text" binding:"required"`
	Loop             int       `json:"loop"`
	Speed            float64   `json:"speed" binding:"required"`
	ForceHiddenFalse bool      `json:"force_hidden_false"`
	StartAt          time.Time `json:"start_at" binding:"required"`
	EndAt            time.Time `json:"end_at" binding:"required"`
}

type CreateInstanceRequest struct {
	Name            string `json:"name" binding:"required"`
	ConfigurationID int    `json:"configuration_id" binding:"required"`
}

// links a pending pairing request to an instance
type LinkInstanceRequest struct {
	RequestCode string `json:"request_code" binding:"required"`
}
