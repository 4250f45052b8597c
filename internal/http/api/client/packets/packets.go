package packets

import (
	"encoding/json"

	"github.com/kubagp1/school-clock/internal/theme"
)

// PairingRequestResponse is shown on the display; the operator types
// the code into the dashboard while the display keeps the claim token
// to itself.
type PairingRequestResponse struct {
	RequestCode string `json:"request_code"`
	ClaimToken  string `json:"claim_token"`
}

type PairingPollResponse struct {
	Paired bool   `json:"paired"`
	Secret string `json:"secret,omitempty"`
}

type ThemePayload struct {
	Fields []theme.Field `json:"fields"`
}

type RulePayload struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Enabled       bool            `json:"enabled"`
	Index         int             `json:"index"`
	InternalGroup *string         `json:"internal_group"`
	Condition     json.RawMessage `json:"condition"`
	Theme         ThemePayload    `json:"theme"`
}

// InstanceStateResponse carries everything a display needs to resolve
// its theme locally between polls.
type InstanceStateResponse struct {
	InstanceID      int          `json:"instance_id"`
	Name            string       `json:"name"`
	ConfigurationID int          `json:"configuration_id"`
	BaseTheme       ThemePayload `json:"base_theme"`
	Rules           []RulePayload `json:"rules"`
}

// EffectiveThemeResponse is the server-side resolution of the same
// state, for thin displays that cannot evaluate conditions.
type EffectiveThemeResponse struct {
	Fields     map[string]any `json:"fields"`
	ResolvedAt string         `json:"resolved_at"`
}
