package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
)

type transactionsRepo struct {
	db dbtx
}

const transactionColumns = `id, user_id, type, amount, description, source_id, source_name,
	destination_id, destination_name, status, created_at, updated_at`

func (r *transactionsRepo) CreateTransaction(ctx context.Context, t domain.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, int(t.Type), t.Amount, nullString(t.Description), t.SourceID, t.SourceName,
		t.DestinationID, t.DestinationName, string(t.Status), fmtTime(t.CreatedAt), fmtTime(t.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *transactionsRepo) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransaction(row scanner) (domain.Transaction, error) {
	var (
		t                            domain.Transaction
		typ                          int
		description                  sql.NullString
		status, createdAt, updatedAt string
	)
	err := row.Scan(&t.ID, &t.UserID, &typ, &t.Amount, &description, &t.SourceID, &t.SourceName,
		&t.DestinationID, &t.DestinationName, &status, &createdAt, &updatedAt)
	if err != nil {
		return domain.Transaction{}, mapNotFound(err)
	}

	t.Type = banksdk.TransactionType(typ)
	t.Status = banksdk.TransactionStatus(status)
	t.Description = stringPtr(description)
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Transaction{}, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Transaction{}, err
	}
	return t, nil
}
