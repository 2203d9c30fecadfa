package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// ComponentStore reads and writes persisted component identities.
type ComponentStore struct {
	db *sql.DB
}

// NewComponentStore creates a ComponentStore instance.
// DB should have schema already created.
func NewComponentStore(db *sql.DB) *ComponentStore {
	return &ComponentStore{db: db}
}

// SelectUUIDsByKeys returns the uuid of every already persisted key.
// Unknown keys are absent from the result.
func (s *ComponentStore) SelectUUIDsByKeys(keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	rows, err := sq.Select("kee", "uuid").
		From("components").
		Where(sq.Eq{"kee": keys}).
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query component uuids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, uuid string
		if err := rows.Scan(&key, &uuid); err != nil {
			return nil, fmt.Errorf("failed to scan component uuid: %w", err)
		}
		result[key] = uuid
	}
	return result, rows.Err()
}

// SelectByKey returns a component by key.
// Returns (nil, nil) if the key was never persisted.
func (s *ComponentStore) SelectByKey(key string) (*Component, error) {
	c := &Component{}
	var path sql.NullString

	err := sq.Select("uuid", "kee", "name", "qualifier", "path", "root_uuid").
		From("components").
		Where(sq.Eq{"kee": key}).
		RunWith(s.db).
		QueryRow().
		Scan(&c.UUID, &c.Key, &c.Name, &c.Type, &path, &c.RootUUID)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get component %s: %w", key, err)
	}
	c.Path = path.String
	return c, nil
}

// UpsertComponents writes components in a single transaction. Existing keys
// keep their uuid; name, qualifier and path are refreshed.
func (s *ComponentStore) UpsertComponents(components []*Component) error {
	if len(components) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	for _, c := range components {
		_, err := sq.Insert("components").
			Columns("uuid", "kee", "name", "qualifier", "path", "root_uuid").
			Values(c.UUID, c.Key, c.Name, c.Type, nullString(c.Path), c.RootUUID).
			Suffix("ON CONFLICT(kee) DO UPDATE SET name = excluded.name, qualifier = excluded.qualifier, path = excluded.path").
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to write component %s: %w", c.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit components: %w", err)
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
