package storage

import (
	"database/sql"
	"time"
)

// Waiver suppresses matching issues in future runs. Category is
// required; pattern_sub and line narrow the match.
type Waiver struct {
	ID         int64      `json:"id"`
	Category   string     `json:"category"`
	PatternSub string     `json:"pattern_sub,omitempty"`
	Line       int        `json:"line,omitempty"`
	Reason     string     `json:"reason"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

func (db *DB) CreateWaiver(category, pattern string, line int, reason, createdBy string, expires time.Time) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := db.conn.Exec(`
INSERT INTO waivers(category, pattern_sub, line, reason, expires_at, created_by, created_at)
VALUES(?,?,?,?,?,?,?)`,
		category, nz(pattern), nzInt(line), reason, expires.UTC().Format(time.RFC3339Nano), createdBy, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (db *DB) RevokeWaiver(id int64, by string) error {
	// the revoker is recorded in audit; waivers only track revoked_at
	_, err := db.conn.Exec(`UPDATE waivers SET revoked_at=? WHERE id=? AND revoked_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), id)
	return err
}

func (db *DB) ListWaivers(activeOnly bool) ([]Waiver, error) {
	q := `
SELECT id, category, COALESCE(pattern_sub,''), COALESCE(line,0),
       reason, expires_at, created_by, created_at, revoked_at
FROM waivers`
	if activeOnly {
		q += ` WHERE revoked_at IS NULL`
	}
	q += ` ORDER BY id DESC`
	rows, err := db.conn.Query(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now().UTC()
	var out []Waiver
	for rows.Next() {
		var (
			w           Waiver
			exp, ca, ra sql.NullString
		)
		if err := rows.Scan(&w.ID, &w.Category, &w.PatternSub, &w.Line, &w.Reason, &exp, &w.CreatedBy, &ca, &ra); err != nil {
			return nil, err
		}
		if exp.Valid {
			if t, e := time.Parse(time.RFC3339Nano, exp.String); e == nil {
				w.ExpiresAt = t
			}
		}
		if ca.Valid {
			if t, e := time.Parse(time.RFC3339Nano, ca.String); e == nil {
				w.CreatedAt = t
			}
		}
		if ra.Valid {
			if t, e := time.Parse(time.RFC3339Nano, ra.String); e == nil {
				w.RevokedAt = &t
			}
		}
		// RFC3339Nano strings are not fixed width (trailing zero
		// fraction digits are stripped), so expiry is compared here
		// rather than lexicographically in SQL.
		if activeOnly && !w.ExpiresAt.After(now) {
			continue
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func nz(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nzInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
