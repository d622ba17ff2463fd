package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
)

type sessionsRepo struct {
	db dbtx
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const sessionColumns = `id, user_id, refresh_hash, device_name, ip_address, last_active, refresh_expires_at, revoked_at, created_at`

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, refresh_hash, device_name, ip_address, last_active, refresh_expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.UserID, s.RefreshHash, s.DeviceName, s.IPAddress,
		fmtTime(s.LastActive), fmtTime(s.RefreshExpiresAt), fmtTime(s.CreatedAt),
	)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

func (r *sessionsRepo) GetSessionByID(ctx context.Context, id int64) (domain.Session, error) {
	return scanSession(r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
}

func (r *sessionsRepo) GetSessionByRefreshHash(ctx context.Context, hash string) (domain.Session, error) {
	return scanSession(r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE refresh_hash = ?`, hash))
}

func (r *sessionsRepo) RotateRefreshHash(
	ctx context.Context,
	id int64,
	oldHash, newHash string,
	expiresAt, now time.Time,
) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE sessions SET refresh_hash = ?, refresh_expires_at = ?, last_active = ?
		WHERE id = ? AND refresh_hash = ? AND revoked_at IS NULL`,
		newHash, fmtTime(expiresAt), fmtTime(now), id, oldHash,
	))
}

func (r *sessionsRepo) TouchSession(ctx context.Context, id int64, now time.Time) error {
	return requireRow(r.db.ExecContext(ctx,
		`UPDATE sessions SET last_active = ? WHERE id = ?`, fmtTime(now), id,
	))
}

func (r *sessionsRepo) ListActiveSessions(ctx context.Context, userID string, now time.Time) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE user_id = ? AND revoked_at IS NULL AND refresh_expires_at > ?
		ORDER BY last_active DESC, id DESC`,
		userID, fmtTime(now),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sessionsRepo) RevokeSession(ctx context.Context, userID string, id int64, now time.Time) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE sessions SET revoked_at = ?
		WHERE id = ? AND user_id = ? AND revoked_at IS NULL`,
		fmtTime(now), id, userID,
	))
}

func (r *sessionsRepo) RevokeAllSessions(ctx context.Context, userID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`,
		fmtTime(now), userID,
	)
	return err
}

func (r *sessionsRepo) DeleteStaleSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	c := fmtTime(cutoff)
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE refresh_expires_at < ? OR revoked_at < ?`, c, c,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanSession(row scanner) (domain.Session, error) {
	var (
		s                                domain.Session
		lastActive, expiresAt, createdAt string
		revokedAt                        sql.NullString
	)
	err := row.Scan(&s.ID, &s.UserID, &s.RefreshHash, &s.DeviceName, &s.IPAddress,
		&lastActive, &expiresAt, &revokedAt, &createdAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}

	if s.LastActive, err = parseTime(lastActive); err != nil {
		return domain.Session{}, err
	}
	if s.RefreshExpiresAt, err = parseTime(expiresAt); err != nil {
		return domain.Session{}, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Session{}, err
	}
	if s.RevokedAt, err = timePtr(revokedAt); err != nil {
		return domain.Session{}, err
	}
	return s, nil
}
