package db

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kubagp1/school-clock/internal/model"
)

const instanceColumns = `id, configuration_id, name, secret, last_seen, created_at, updated_at`

func (s *pgStore) CreateInstance(configurationID int, name string) (model.Instance, error) {
	var in model.Instance
	const q = `
	INSERT INTO instances (configuration_id, name, created_at, updated_at)
	VALUES ($1, $2, now(), now())
	RETURNING ` + instanceColumns + `;`
	if err := s.db.Get(&in, q, configurationID, name); err != nil {
		log.Error().Err(err).Int("configuration_id", configurationID).Msg("CreateInstance failed")
		return model.Instance{}, err
	}
	return in, nil
}

func (s *pgStore) GetInstanceByID(id int) (model.Instance, error) {
	var in model.Instance
	const q = `SELECT ` + instanceColumns + ` FROM instances WHERE id = $1;`
	if err := s.db.Get(&in, q, id); err != nil {
		log.Error().Err(err).Int("instance_id", id).Msg("GetInstanceByID failed")
		return model.Instance{}, err
	}
	return in, nil
}

// GetInstanceBySecret is the display polling lookup: the secret is the
// instance's only credential, never the owner's identity.
func (s *pgStore) GetInstanceBySecret(secret string) (model.Instance, error) {
	var in model.Instance
	const q = `SELECT ` + instanceColumns + ` FROM instances WHERE secret = $1;`
	if err := s.db.Get(&in, q, secret); err != nil {
		return model.Instance{}, err
	}
	return in, nil
}

func (s *pgStore) ListInstances(ownerID int) ([]model.Instance, error) {
	var out []model.Instance
	const q = `
	SELECT i.id, i.configuration_id, i.name, i.secret, i.last_seen, i.created_at, i.updated_at
	  FROM instances i
	  JOIN configurations c ON c.id = i.configuration_id
	 WHERE c.created_by = $1
	 ORDER BY i.id;`
	if err := s.db.Select(&out, q, ownerID); err != nil {
		log.Error().Err(err).Msg("ListInstances failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) ListInstancesByConfiguration(configurationID int) ([]model.Instance, error) {
	var out []model.Instance
	const q = `SELECT ` + instanceColumns + ` FROM instances WHERE configuration_id = $1 ORDER BY id;`
	if err := s.db.Select(&out, q, configurationID); err != nil {
		log.Error().Err(err).Int("configuration_id", configurationID).Msg("ListInstancesByConfiguration failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) RenameInstance(id int, name string) error {
	_, err := s.db.Exec(`UPDATE instances SET name = $2, updated_at = now() WHERE id = $1;`, id, name)
	if err != nil {
		log.Error().Err(err).Int("instance_id", id).Msg("RenameInstance failed")
	}
	return err
}

// SetInstanceSecret stamps a fresh secret and clears last_seen; the
// display has to poll with the new secret before it counts as alive.
func (s *pgStore) SetInstanceSecret(id int, secret string) error {
	_, err := s.db.Exec(`
	UPDATE instances
	   SET secret = $2, last_seen = NULL, updated_at = now()
	 WHERE id = $1;`, id, secret)
	if err != nil {
		log.Error().Err(err).Int("instance_id", id).Msg("SetInstanceSecret failed")
	}
	return err
}

func (s *pgStore) TouchInstance(id int, seenAt time.Time) error {
	_, err := s.db.Exec(`UPDATE instances SET last_seen = $2 WHERE id = $1;`, id, seenAt)
	if err != nil {
		log.Error().Err(err).Int("instance_id", id).Msg("TouchInstance failed")
	}
	return err
}

func (s *pgStore) DeleteInstance(id int) error {
	_, err := s.db.Exec(`DELETE FROM instances WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("instance_id", id).Msg("DeleteInstance failed")
	}
	return err
}

func (s *pgStore) InstanceOwner(id int) (int, error) {
	var owner int
	const q = `
	SELECT c.created_by
	  FROM instances i
	  JOIN configurations c ON c.id = i.configuration_id
	 WHERE i.id = $1;`
	if err := s.db.Get(&owner, q, id); err != nil {
		return 0, err
	}
	return owner, nil
}
