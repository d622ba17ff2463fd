package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, first_name, last_name, phone_number, password_hash, created_at, updated_at`

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.FirstName, u.LastName, nullString(u.PhoneNumber), u.PasswordHash,
		fmtTime(u.CreatedAt), fmtTime(u.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) UpdateProfile(
	ctx context.Context,
	id, firstName, lastName string,
	phone *string,
	now time.Time,
) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE users SET first_name = ?, last_name = ?, phone_number = ?, updated_at = ?
		WHERE id = ?`,
		firstName, lastName, nullString(phone), fmtTime(now), id,
	))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id, hash string, now time.Time) error {
	return requireRow(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, fmtTime(now), id,
	))
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u                    domain.User
		phone                sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &phone, &u.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.PhoneNumber = stringPtr(phone)
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.User{}, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.User{}, err
	}
	return u, nil
}
