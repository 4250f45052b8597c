package db

import (
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/kubagp1/school-clock/internal/model"
)

func (s *pgStore) CreateConfiguration(name string, baseThemeID, createdBy int) (model.Configuration, error) {
	var c model.Configuration
	const q = `
	INSERT INTO configurations (name, base_theme_id, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING id, name, created_by, base_theme_id, created_at, updated_at;`
	if err := s.db.Get(&c, q, name, baseThemeID, createdBy); err != nil {
		log.Error().Err(err).Msg("CreateConfiguration failed")
		return model.Configuration{}, err
	}
	return c, nil
}

// GetConfigurationByID loads the configuration with everything a
// display needs to resolve its theme: the base theme with fields, all
// rules with their themes and fields, and the instance list.
func (s *pgStore) GetConfigurationByID(id int) (model.Configuration, error) {
	var c model.Configuration
	const q = `
	SELECT id, name, created_by, base_theme_id, created_at, updated_at
	  FROM configurations
	 WHERE id = $1;`
	if err := s.db.Get(&c, q, id); err != nil {
		log.Error().Err(err).Int("configuration_id", id).Msg("GetConfigurationByID failed")
		return model.Configuration{}, err
	}

	baseTheme, err := s.GetThemeByID(c.BaseThemeID)
	if err != nil {
		return model.Configuration{}, err
	}
	c.BaseTheme = &baseTheme

	rules, err := s.listRulesWithThemes(id)
	if err != nil {
		return model.Configuration{}, err
	}
	c.Rules = rules

	instances, err := s.ListInstancesByConfiguration(id)
	if err != nil {
		return model.Configuration{}, err
	}
	c.Instances = instances

	return c, nil
}

func (s *pgStore) ListConfigurations(ownerID int) ([]model.Configuration, error) {
	var out []model.Configuration
	const q = `
	SELECT id, name, created_by, base_theme_id, created_at, updated_at
	  FROM configurations
	 WHERE created_by = $1
	 ORDER BY id;`
	if err := s.db.Select(&out, q, ownerID); err != nil {
		log.Error().Err(err).Msg("ListConfigurations failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) RenameConfiguration(id int, name string) error {
	_, err := s.db.Exec(`UPDATE configurations SET name = $2, updated_at = now() WHERE id = $1;`, id, name)
	if err != nil {
		log.Error().Err(err).Int("configuration_id", id).Msg("RenameConfiguration failed")
	}
	return err
}

func (s *pgStore) SetBaseTheme(id, baseThemeID int) error {
	_, err := s.db.Exec(`UPDATE configurations SET base_theme_id = $2, updated_at = now() WHERE id = $1;`, id, baseThemeID)
	if err != nil {
		log.Error().Err(err).Int("configuration_id", id).Msg("SetBaseTheme failed")
	}
	return err
}

// DeleteConfiguration also removes the internal themes owned by the
// configuration's ticker rules; the cascade only covers the rules
// themselves and would otherwise strand those themes.
func (s *pgStore) DeleteConfiguration(id int) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var internalThemeIDs []int
	const themesQ = `
	SELECT theme_id FROM rules
	 WHERE configuration_id = $1 AND internal_group IS NOT NULL;`
	if err := tx.Select(&internalThemeIDs, themesQ, id); err != nil {
		log.Error().Err(err).Int("configuration_id", id).Msg("DeleteConfiguration theme lookup failed")
		return err
	}

	if _, err := tx.Exec(`DELETE FROM configurations WHERE id = $1;`, id); err != nil {
		log.Error().Err(err).Int("configuration_id", id).Msg("DeleteConfiguration failed")
		return err
	}
	if len(internalThemeIDs) > 0 {
		if _, err := tx.Exec(`DELETE FROM themes WHERE id = ANY($1);`, pq.Array(internalThemeIDs)); err != nil {
			log.Error().Err(err).Int("configuration_id", id).Msg("DeleteConfiguration internal theme cleanup failed")
			return err
		}
	}
	return tx.Commit()
}

func (s *pgStore) ConfigurationOwner(id int) (int, error) {
	var owner int
	if err := s.db.Get(&owner, `SELECT created_by FROM configurations WHERE id = $1;`, id); err != nil {
		return 0, err
	}
	return owner, nil
}
