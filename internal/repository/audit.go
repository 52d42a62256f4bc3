package repository

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

// AuditEntry is one row of the admin audit trail: an operator action
// taken through the admin HTTP API. In-game commands are not recorded.
type AuditEntry struct {
	OccurredAt time.Time `db:"occurred_at"`
	Actor      string    `db:"actor"`
	Action     string    `db:"action"`
	Target     string    `db:"target"`
	Detail     string    `db:"detail"`
}

// RecordAudit appends one entry to the audit trail.
func (r *Repository) RecordAudit(actor, action, target, detail string) error {
	q, args, err := sq.Insert("audit_log").
		Columns("occurred_at", "actor", "action", "target", "detail").
		Values(time.Now().UTC(), actor, action, target, detail).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(q, args...)
	return err
}

// RecentAudit returns the most recent limit audit entries, newest first.
func (r *Repository) RecentAudit(limit int) ([]AuditEntry, error) {
	q, args, err := sq.Select("occurred_at", "actor", "action", "target", "detail").
		From("audit_log").
		OrderBy("id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	var entries []AuditEntry
	if err := r.db.Select(&entries, q, args...); err != nil {
		return nil, err
	}
	return entries, nil
}
