package model

import "time"

// NewsTicker is the operator-facing view of one newsTicker-group rule.
// It is never stored as its own row: the adapter materializes it as a
// rule plus an internal theme and reconstructs it on read.
type NewsTicker struct {
	ID               int       `json:"id"` // id of the backing rule
	ConfigurationID  int       `json:"configuration_id"`
	Text             string    `json:"text"`
	Loop             int       `json:"loop"`
	Speed            float64   `json:"speed"`
	ForceHiddenFalse bool      `json:"force_hidden_false"`
	StartAt          time.Time `json:"start_at"`
	EndAt            time.Time `json:"end_at"`
}
