package model

import "time"

// Instance is one remote display. It polls the server with its secret
// on a fixed interval and renders whatever the configuration resolves
// to. Secret is nil until the pairing workflow assigns one.
type Instance struct {
	ID              int        `db:"id"               json:"id"`
	ConfigurationID int        `db:"configuration_id" json:"configuration_id"`
	Name            string     `db:"name"             json:"name"`
	Secret          *string    `db:"secret"           json:"-"`
	LastSeen        *time.Time `db:"last_seen"        json:"last_seen"`
	CreatedAt       time.Time  `db:"created_at"       json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"       json:"updated_at"`
}
