package db

import (
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/kubagp1/school-clock/internal/model"
	"github.com/kubagp1/school-clock/internal/theme"
)

// theme_fields stores field values as jsonb so one column serves every
// field type in the closed set.
type themeFieldRow struct {
	ThemeID int    `db:"theme_id"`
	Name    string `db:"name"`
	Value   []byte `db:"value"`
	Enabled bool   `db:"enabled"`
}

func (r themeFieldRow) toField() (theme.Field, error) {
	f := theme.Field{Name: r.Name, Enabled: r.Enabled}
	if err := json.Unmarshal(r.Value, &f.Value); err != nil {
		return theme.Field{}, err
	}
	return f, nil
}

func (s *pgStore) CreateTheme(name string, createdBy int, internal bool, fields []theme.Field) (model.Theme, error) {
	var t model.Theme
	tx, err := s.db.Beginx()
	if err != nil {
		return model.Theme{}, err
	}
	defer tx.Rollback()

	const q = `
	INSERT INTO themes (name, created_by, internal, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING id, name, created_by, internal, created_at, updated_at;`
	if err := tx.Get(&t, q, name, createdBy, internal); err != nil {
		log.Error().Err(err).Msg("CreateTheme failed")
		return model.Theme{}, err
	}

	if err := insertThemeFields(tx, t.ID, fields); err != nil {
		return model.Theme{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Theme{}, err
	}
	t.Fields = fields
	return t, nil
}

func (s *pgStore) GetThemeByID(id int) (model.Theme, error) {
	var t model.Theme
	const q = `
	SELECT id, name, created_by, internal, created_at, updated_at
	  FROM themes
	 WHERE id = $1;`
	if err := s.db.Get(&t, q, id); err != nil {
		log.Error().Err(err).Int("theme_id", id).Msg("GetThemeByID failed")
		return model.Theme{}, err
	}

	fields, err := s.loadThemeFields(id)
	if err != nil {
		return model.Theme{}, err
	}
	t.Fields = fields
	return t, nil
}

// ListThemes returns the owner's user-visible themes; internal themes
// synthesized by the news-ticker adapter are excluded.
func (s *pgStore) ListThemes(ownerID int) ([]model.Theme, error) {
	var out []model.Theme
	const q = `
	SELECT id, name, created_by, internal, created_at, updated_at
	  FROM themes
	 WHERE created_by = $1 AND internal = false
	 ORDER BY id;`
	if err := s.db.Select(&out, q, ownerID); err != nil {
		log.Error().Err(err).Msg("ListThemes failed")
		return nil, err
	}
	for i := range out {
		fields, err := s.loadThemeFields(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Fields = fields
	}
	return out, nil
}

func (s *pgStore) RenameTheme(id int, name string) error {
	_, err := s.db.Exec(`UPDATE themes SET name = $2, updated_at = now() WHERE id = $1;`, id, name)
	if err != nil {
		log.Error().Err(err).Int("theme_id", id).Msg("RenameTheme failed")
	}
	return err
}

// SetThemeFields replaces the theme's whole field set atomically.
func (s *pgStore) SetThemeFields(id int, fields []theme.Field) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM theme_fields WHERE theme_id = $1;`, id); err != nil {
		log.Error().Err(err).Int("theme_id", id).Msg("SetThemeFields delete failed")
		return err
	}
	if err := insertThemeFields(tx, id, fields); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE themes SET updated_at = now() WHERE id = $1;`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *pgStore) DeleteTheme(id int) error {
	_, err := s.db.Exec(`DELETE FROM themes WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("theme_id", id).Msg("DeleteTheme failed")
	}
	return err
}

// ConfigurationIDsByTheme lists every configuration that renders the
// theme, either as its base theme or through one of its rules.
func (s *pgStore) ConfigurationIDsByTheme(themeID int) ([]int, error) {
	var ids []int
	const q = `
	SELECT id FROM configurations WHERE base_theme_id = $1
	UNION
	SELECT configuration_id FROM rules WHERE theme_id = $1;`
	if err := s.db.Select(&ids, q, themeID); err != nil {
		log.Error().Err(err).Int("theme_id", themeID).Msg("ConfigurationIDsByTheme failed")
		return nil, err
	}
	return ids, nil
}

func (s *pgStore) loadThemeFields(themeID int) ([]theme.Field, error) {
	return loadThemeFields(s.db, themeID)
}

// queryer covers both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	Select(dest interface{}, query string, args ...interface{}) error
}

func loadThemeFields(q queryer, themeID int) ([]theme.Field, error) {
	var rows []themeFieldRow
	const query = `
	SELECT theme_id, name, value, enabled
	  FROM theme_fields
	 WHERE theme_id = $1
	 ORDER BY name;`
	if err := q.Select(&rows, query, themeID); err != nil {
		log.Error().Err(err).Int("theme_id", themeID).Msg("loadThemeFields failed")
		return nil, err
	}
	out := make([]theme.Field, 0, len(rows))
	for _, r := range rows {
		f, err := r.toField()
		if err != nil {
			log.Error().Err(err).Int("theme_id", themeID).Str("field", r.Name).Msg("corrupt theme field value")
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func insertThemeFields(tx *sqlx.Tx, themeID int, fields []theme.Field) error {
	const q = `
	INSERT INTO theme_fields (theme_id, name, value, enabled)
	VALUES ($1, $2, $3, $4);`
	for _, f := range fields {
		value, err := json.Marshal(f.Value)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(q, themeID, f.Name, value, f.Enabled); err != nil {
			log.Error().Err(err).Int("theme_id", themeID).Str("field", f.Name).Msg("insertThemeFields failed")
			return err
		}
	}
	return nil
}
