package db

import (
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/kubagp1/school-clock/internal/model"
	"github.com/kubagp1/school-clock/internal/theme"
)

// ListNewsTickerRules returns the configuration's newsTicker-group
// rules with their internal themes and fields, ready for the adapter
// to decompose.
func (s *pgStore) ListNewsTickerRules(configurationID int) ([]model.Rule, error) {
	group := model.InternalGroupNewsTicker
	out, err := s.ListRules(configurationID, &group)
	if err != nil {
		return nil, err
	}
	for i := range out {
		t, err := s.GetThemeByID(out[i].ThemeID)
		if err != nil {
			return nil, err
		}
		out[i].Theme = &t
	}
	return out, nil
}

// ReplaceNewsTicker writes one news ticker as a fresh internal theme
// plus rule. When replaceRuleID is set the old rule and its theme are
// removed first; the whole rewrite is a single transaction so a
// failure never leaves a half-replaced ticker behind.
func (s *pgStore) ReplaceNewsTicker(configurationID int, replaceRuleID *int, cond json.RawMessage, fields []theme.Field) (model.Rule, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return model.Rule{}, err
	}
	defer tx.Rollback()

	var createdBy int
	if err := tx.Get(&createdBy, `SELECT created_by FROM configurations WHERE id = $1;`, configurationID); err != nil {
		log.Error().Err(err).Int("configuration_id", configurationID).Msg("ReplaceNewsTicker owner lookup failed")
		return model.Rule{}, err
	}

	if replaceRuleID != nil {
		if err := deleteTickerRule(tx, *replaceRuleID); err != nil {
			return model.Rule{}, err
		}
	}

	var t model.Theme
	const themeQ = `
	INSERT INTO themes (name, created_by, internal, created_at, updated_at)
	VALUES ($1, $2, true, now(), now())
	RETURNING id, name, created_by, internal, created_at, updated_at;`
	if err := tx.Get(&t, themeQ, "News ticker", createdBy); err != nil {
		log.Error().Err(err).Msg("ReplaceNewsTicker theme insert failed")
		return model.Rule{}, err
	}
	if err := insertThemeFields(tx, t.ID, fields); err != nil {
		return model.Rule{}, err
	}

	var next int
	const nextQ = `
	SELECT COALESCE(MAX("index") + 1, 0)
	  FROM rules
	 WHERE configuration_id = $1 AND internal_group = $2;`
	if err := tx.Get(&next, nextQ, configurationID, model.InternalGroupNewsTicker); err != nil {
		return model.Rule{}, err
	}

	var r model.Rule
	const ruleQ = `
	INSERT INTO rules (configuration_id, name, enabled, "index", condition, theme_id, internal_group, created_at, updated_at)
	VALUES ($1, $2, true, $3, $4, $5, $6, now(), now())
	RETURNING ` + ruleColumns + `;`
	if err := tx.Get(&r, ruleQ, configurationID, "News ticker", next, []byte(cond), t.ID, model.InternalGroupNewsTicker); err != nil {
		log.Error().Err(err).Int("configuration_id", configurationID).Msg("ReplaceNewsTicker rule insert failed")
		return model.Rule{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Rule{}, err
	}
	t.Fields = fields
	r.Theme = &t
	return r, nil
}

// DeleteNewsTicker removes the backing rule and then its owned theme,
// in that order, inside one transaction. The rule holds the foreign
// reference, so it has to go first.
func (s *pgStore) DeleteNewsTicker(ruleID int) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteTickerRule(tx, ruleID); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteTickerRule(tx *sqlx.Tx, ruleID int) error {
	var themeID int
	const q = `
	SELECT theme_id FROM rules
	 WHERE id = $1 AND internal_group = $2;`
	if err := tx.Get(&themeID, q, ruleID, model.InternalGroupNewsTicker); err != nil {
		log.Error().Err(err).Int("rule_id", ruleID).Msg("news ticker rule lookup failed")
		return err
	}
	if _, err := tx.Exec(`DELETE FROM rules WHERE id = $1;`, ruleID); err != nil {
		log.Error().Err(err).Int("rule_id", ruleID).Msg("news ticker rule delete failed")
		return err
	}
	if _, err := tx.Exec(`DELETE FROM themes WHERE id = $1;`, themeID); err != nil {
		log.Error().Err(err).Int("theme_id", themeID).Msg("news ticker theme delete failed")
		return err
	}
	return nil
}
