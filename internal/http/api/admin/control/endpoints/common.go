package endpoints

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kubagp1/school-clock/internal/db"
	"github.com/kubagp1/school-clock/internal/http/api/admin/control/packets"
	"github.com/kubagp1/school-clock/internal/http/middleware"
	"github.com/kubagp1/school-clock/internal/model"
	"github.com/kubagp1/school-clock/internal/redis"
)

func mapTheme(t model.Theme) packets.ThemeResponse {
	return packets.ThemeResponse{
		ID:        t.ID,
		Name:      t.Name,
		CreatedBy: t.CreatedBy,
		Fields:    t.Fields,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
}

func mapRule(r model.Rule) packets.RuleResponse {
	return packets.RuleResponse{
		ID:              r.ID,
		ConfigurationID: r.ConfigurationID,
		Name:            r.Name,
		Enabled:         r.Enabled,
		Index:           r.Index,
		Condition:       r.Condition,
		ThemeID:         r.ThemeID,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.Format(time.RFC3339),
	}
}

func mapInstance(in model.Instance) packets.InstanceResponse {
	var lastSeen *string
	if in.LastSeen != nil {
		s := in.LastSeen.Format(time.RFC3339)
		lastSeen = &s
	}
	return packets.InstanceResponse{
		ID:              in.ID,
		ConfigurationID: in.ConfigurationID,
		Name:            in.Name,
		Paired:          in.Secret != nil,
		LastSeen:        lastSeen,
		CreatedAt:       in.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       in.UpdatedAt.Format(time.RFC3339),
	}
}

// mapConfiguration exposes only the user-visible rule set; rules in
// internal groups are reachable through their own endpoints.
func mapConfiguration(c model.Configuration) packets.ConfigurationResponse {
	out := packets.ConfigurationResponse{
		ID:          c.ID,
		Name:        c.Name,
		CreatedBy:   c.CreatedBy,
		BaseThemeID: c.BaseThemeID,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
	if c.BaseTheme != nil {
		bt := mapTheme(*c.BaseTheme)
		out.BaseTheme = &bt
	}
	for _, r := range c.Rules {
		if r.IsUserRule() {
			out.Rules = append(out.Rules, mapRule(r))
		}
	}
	for _, in := range c.Instances {
		out.Instances = append(out.Instances, mapInstance(in))
	}
	return out
}

// notifyConfigurationUpdated invalidates the configuration's cached
// ETag and pokes its live instances to re-poll. Called after every
// mutation that changes what a display would resolve.
func notifyConfigurationUpdated(store db.Store, configurationID int) {
	etagKey := fmt.Sprintf("configuration:%d:etag", configurationID)
	redis.Del(context.Background(), etagKey)

	instances, err := store.ListInstancesByConfiguration(configurationID)
	if err != nil {
		log.Error().Err(err).Int("configuration_id", configurationID).
			Msg("failed to list instances for update notification")
		return
	}
	if len(instances) == 0 {
		return
	}

	ids := make([]int, len(instances))
	for i, in := range instances {
		ids[i] = in.ID
	}
	middleware.NotifyInstances(ids)

	log.Debug().Int("configuration_id", configurationID).Int("affected_instances", len(ids)).
		Msg("configuration updated - invalidated ETag and notified instances")
}
