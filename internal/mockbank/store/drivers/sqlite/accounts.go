package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/shopspring/decimal"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, user_id, account_number, type, name, balance, available_balance,
	interest_rate, maturity_date, auto_renew, created_at, updated_at`

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.AccountNumber, string(a.Type), a.Name, a.Balance, a.AvailableBalance,
		nullDecimal(a.InterestRate), nullTime(a.MaturityDate), nullBool(a.AutoRenew),
		fmtTime(a.CreatedAt), fmtTime(a.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *accountsRepo) GetAccount(ctx context.Context, userID, id string) (domain.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ? AND user_id = ?`, id, userID,
	))
}

func (r *accountsRepo) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ? ORDER BY created_at, id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountsRepo) UpdateBalances(
	ctx context.Context,
	id string,
	balance, available decimal.Decimal,
	now time.Time,
) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE accounts SET balance = ?, available_balance = ?, updated_at = ?
		WHERE id = ?`,
		balance, available, fmtTime(now), id,
	))
}

func scanAccount(row scanner) (domain.Account, error) {
	var (
		a                    domain.Account
		typ                  string
		interestRate         decimal.NullDecimal
		maturityDate         sql.NullString
		autoRenew            sql.NullBool
		createdAt, updatedAt string
	)
	err := row.Scan(&a.ID, &a.UserID, &a.AccountNumber, &typ, &a.Name, &a.Balance, &a.AvailableBalance,
		&interestRate, &maturityDate, &autoRenew, &createdAt, &updatedAt)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	a.Type = banksdk.AccountType(typ)
	a.InterestRate = decimalPtr(interestRate)
	a.AutoRenew = boolPtr(autoRenew)
	if a.MaturityDate, err = timePtr(maturityDate); err != nil {
		return domain.Account{}, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Account{}, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Account{}, err
	}
	return a, nil
}
