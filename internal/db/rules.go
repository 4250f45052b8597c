package db

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/kubagp1/school-clock/internal/condition"
	"github.com/kubagp1/school-clock/internal/model"
	"github.com/kubagp1/school-clock/internal/rules"
)

const ruleColumns = `id, configuration_id, name, enabled, "index", condition, theme_id, internal_group, created_at, updated_at`

// CreateRule appends a user rule with the always-true default
// condition at the end of the configuration's user-group order. Two
// concurrent creates can still read the same max; the unique index on
// (configuration_id, group, index) then fails the later insert rather
// than letting it claim a taken slot.
func (s *pgStore) CreateRule(configurationID int, name string, themeID int) (model.Rule, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return model.Rule{}, err
	}
	defer tx.Rollback()

	var next int
	const nextQ = `
	SELECT COALESCE(MAX("index") + 1, 0)
	  FROM rules
	 WHERE configuration_id = $1 AND internal_group IS NULL;`
	if err := tx.Get(&next, nextQ, configurationID); err != nil {
		log.Error().Err(err).Int("configuration_id", configurationID).Msg("CreateRule index lookup failed")
		return model.Rule{}, err
	}

	var r model.Rule
	const q = `
	INSERT INTO rules (configuration_id, name, enabled, "index", condition, theme_id, internal_group, created_at, updated_at)
	VALUES ($1, $2, true, $3, $4, $5, NULL, now(), now())
	RETURNING ` + ruleColumns + `;`
	if err := tx.Get(&r, q, configurationID, name, next, condition.DefaultJSON, themeID); err != nil {
		log.Error().Err(err).Int("configuration_id", configurationID).Msg("CreateRule failed")
		return model.Rule{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Rule{}, err
	}
	return r, nil
}

func (s *pgStore) GetRuleByID(id int) (model.Rule, error) {
	var r model.Rule
	const q = `SELECT ` + ruleColumns + ` FROM rules WHERE id = $1;`
	if err := s.db.Get(&r, q, id); err != nil {
		log.Error().Err(err).Int("rule_id", id).Msg("GetRuleByID failed")
		return model.Rule{}, err
	}
	t, err := s.GetThemeByID(r.ThemeID)
	if err != nil {
		return model.Rule{}, err
	}
	r.Theme = &t
	return r, nil
}

// ListRules returns the configuration's rules in one internal group
// (nil for user rules), ordered by index.
func (s *pgStore) ListRules(configurationID int, internalGroup *string) ([]model.Rule, error) {
	var out []model.Rule
	const q = `
	SELECT ` + ruleColumns + `
	  FROM rules
	 WHERE configuration_id = $1 AND internal_group IS NOT DISTINCT FROM $2
	 ORDER BY "index";`
	if err := s.db.Select(&out, q, configurationID, internalGroup); err != nil {
		log.Error().Err(err).Int("configuration_id", configurationID).Msg("ListRules failed")
		return nil, err
	}
	return out, nil
}

// listRulesWithThemes loads every rule of the configuration across all
// groups, each with its theme and fields attached.
func (s *pgStore) listRulesWithThemes(configurationID int) ([]model.Rule, error) {
	var out []model.Rule
	const q = `
	SELECT ` + ruleColumns + `
	  FROM rules
	 WHERE configuration_id = $1
	 ORDER BY internal_group NULLS FIRST, "index";`
	if err := s.db.Select(&out, q, configurationID); err != nil {
		log.Error().Err(err).Int("configuration_id", configurationID).Msg("listRulesWithThemes failed")
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

func (s *pgStore) UpdateRule(id int, name string, enabled bool, themeID int) error {
	_, err := s.db.Exec(`
	UPDATE rules
	   SET name = $2, enabled = $3, theme_id = $4, updated_at = now()
	 WHERE id = $1;`, id, name, enabled, themeID)
	if err != nil {
		log.Error().Err(err).Int("rule_id", id).Msg("UpdateRule failed")
	}
	return err
}

func (s *pgStore) UpdateRuleCondition(id int, cond json.RawMessage) error {
	_, err := s.db.Exec(`
	UPDATE rules SET condition = $2, updated_at = now() WHERE id = $1;`, id, []byte(cond))
	if err != nil {
		log.Error().Err(err).Int("rule_id", id).Msg("UpdateRuleCondition failed")
	}
	return err
}

// ReorderRules applies an arbitrary permutation of the configuration's
// user rules. A direct single pass could trip the unique index
// constraint mid-flight (swapping 0 and 1 momentarily claims 0 twice),
// so every affected rule first moves to a negative scratch index and
// then to its final position, all inside one transaction.
func (s *pgStore) ReorderRules(configurationID int, requested []rules.Entry) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current []rules.Entry
	const currentQ = `
	SELECT id, "index"
	  FROM rules
	 WHERE configuration_id = $1 AND internal_group IS NULL
	 FOR UPDATE;`
	if err := tx.Select(&current, currentQ, configurationID); err != nil {
		log.Error().Err(err).Int("configuration_id", configurationID).Msg("ReorderRules load failed")
		return err
	}

	moves, err := rules.PlanReorder(current, requested)
	if err != nil {
		return err
	}

	const updateQ = `UPDATE rules SET "index" = $2, updated_at = now() WHERE id = $1;`
	for _, m := range moves {
		if _, err := tx.Exec(updateQ, m.ID, m.Scratch); err != nil {
			log.Error().Err(err).Int("rule_id", m.ID).Msg("ReorderRules scratch pass failed")
			return err
		}
	}
	for _, m := range moves {
		if _, err := tx.Exec(updateQ, m.ID, m.Final); err != nil {
			log.Error().Err(err).Int("rule_id", m.ID).Msg("ReorderRules final pass failed")
			return err
		}
	}
	return tx.Commit()
}

func (s *pgStore) NextRuleIndex(configurationID int, internalGroup *string) (int, error) {
	var next int
	const q = `
	SELECT COALESCE(MAX("index") + 1, 0)
	  FROM rules
	 WHERE configuration_id = $1 AND internal_group IS NOT DISTINCT FROM $2;`
	if err := s.db.Get(&next, q, configurationID, internalGroup); err != nil {
		log.Error().Err(err).Int("configuration_id", configurationID).Msg("NextRuleIndex failed")
		return 0, err
	}
	return next, nil
}

func (s *pgStore) DeleteRule(id int) error {
	_, err := s.db.Exec(`DELETE FROM rules WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("rule_id", id).Msg("DeleteRule failed")
	}
	return err
}

func (s *pgStore) RuleOwner(id int) (int, error) {
	var owner int
	const q = `
	SELECT c.created_by
	  FROM rules r
	  JOIN configurations c ON c.id = r.configuration_id
	 WHERE r.id = $1;`
	if err := s.db.Get(&owner, q, id); err != nil {
		return 0, err
	}
	return owner, nil
}
