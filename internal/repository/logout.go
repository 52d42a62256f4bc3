package repository

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Save implements server.LogoutStore: it upserts the
// single row for (username, worldName), replacing any previous entry.
// Grounded on original_source's logoutlocations.py module, which keeps
// exactly one saved location per (player, world) pair.
func (r *Repository) Save(username, worldName string, x, y, z int32, yaw, pitch uint8) error {
	q, args, err := sq.Insert("logout_location").
		Columns("username", "world_name", "x", "y", "z", "yaw", "pitch", "saved_at").
		Values(username, worldName, x, y, z, yaw, pitch, time.Now().UTC()).
		Suffix("ON CONFLICT(username, world_name) DO UPDATE SET x=excluded.x, y=excluded.y, z=excluded.z, yaw=excluded.yaw, pitch=excluded.pitch, saved_at=excluded.saved_at").
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(q, args...)
	return err
}

// Lookup implements server.LogoutStore: it returns the most recently
// saved location for (username, worldName), or ok=false if the player
// has never logged out of that world before.
func (r *Repository) Lookup(username, worldName string) (x, y, z int32, yaw, pitch uint8, ok bool) {
	q, args, err := sq.Select("x", "y", "z", "yaw", "pitch").
		From("logout_location").
		Where(sq.Eq{"username": username, "world_name": worldName}).
		ToSql()
	if err != nil {
		return 0, 0, 0, 0, 0, false
	}

	row := r.db.QueryRow(q, args...)
	if err := row.Scan(&x, &y, &z, &yaw, &pitch); err != nil {
		if err != sql.ErrNoRows {
			return 0, 0, 0, 0, 0, false
		}
		return 0, 0, 0, 0, 0, false
	}
	return x, y, z, yaw, pitch, true
}
