package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/shopspring/decimal"
)

type loansRepo struct {
	db dbtx
}

const loanColumns = `id, user_id, account_number, type, status, balance, available_credit,
	interest_rate, payment_amount, next_payment_due, principal, maturity_date, loan_term_months,
	credit_limit, draw_period_months, property_address, property_value, vehicle_vin,
	reward_program, annual_fee, is_secured, created_at, updated_at`

func (r *loansRepo) CreateLoan(ctx context.Context, l domain.Loan) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO loans (`+loanColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.UserID, l.AccountNumber, string(l.Type), string(l.Status), l.Balance,
		nullDecimal(l.AvailableCredit), l.InterestRate, l.PaymentAmount, fmtTime(l.NextPaymentDue),
		nullDecimal(l.Principal), nullTime(l.MaturityDate), nullInt(l.LoanTermMonths),
		nullDecimal(l.CreditLimit), nullInt(l.DrawPeriodMonths), nullString(l.PropertyAddress),
		nullDecimal(l.PropertyValue), nullString(l.VehicleVIN), nullString(l.RewardProgram),
		nullDecimal(l.AnnualFee), nullBool(l.IsSecured), fmtTime(l.CreatedAt), fmtTime(l.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *loansRepo) GetLoan(ctx context.Context, userID, id string) (domain.Loan, error) {
	return scanLoan(r.db.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = ? AND user_id = ?`, id, userID,
	))
}

func (r *loansRepo) ListLoans(ctx context.Context, userID string) ([]domain.Loan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE user_id = ? ORDER BY created_at, id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpdateLoanBalance writes the fields a payment or advance can change.
func (r *loansRepo) UpdateLoanBalance(ctx context.Context, l domain.Loan, now time.Time) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE loans SET balance = ?, available_credit = ?, status = ?, payment_amount = ?, updated_at = ?
		WHERE id = ?`,
		l.Balance, nullDecimal(l.AvailableCredit), string(l.Status), l.PaymentAmount, fmtTime(now), l.ID,
	))
}

func scanLoan(row scanner) (domain.Loan, error) {
	var (
		l                                                       domain.Loan
		typ, status, nextDue, createdAt, updatedAt              string
		available, principal, creditLimit, propValue, annualFee decimal.NullDecimal
		maturity, propAddr, vin, reward                         sql.NullString
		termMonths, drawMonths                                  sql.NullInt64
		secured                                                 sql.NullBool
	)
	err := row.Scan(&l.ID, &l.UserID, &l.AccountNumber, &typ, &status, &l.Balance, &available,
		&l.InterestRate, &l.PaymentAmount, &nextDue, &principal, &maturity, &termMonths,
		&creditLimit, &drawMonths, &propAddr, &propValue, &vin,
		&reward, &annualFee, &secured, &createdAt, &updatedAt)
	if err != nil {
		return domain.Loan{}, mapNotFound(err)
	}

	l.Type = banksdk.LoanType(typ)
	l.Status = banksdk.LoanStatus(status)
	l.AvailableCredit = decimalPtr(available)
	l.Principal = decimalPtr(principal)
	l.LoanTermMonths = intPtr(termMonths)
	l.CreditLimit = decimalPtr(creditLimit)
	l.DrawPeriodMonths = intPtr(drawMonths)
	l.PropertyAddress = stringPtr(propAddr)
	l.PropertyValue = decimalPtr(propValue)
	l.VehicleVIN = stringPtr(vin)
	l.RewardProgram = stringPtr(reward)
	l.AnnualFee = decimalPtr(annualFee)
	l.IsSecured = boolPtr(secured)

	if l.NextPaymentDue, err = parseTime(nextDue); err != nil {
		return domain.Loan{}, err
	}
	if l.MaturityDate, err = timePtr(maturity); err != nil {
		return domain.Loan{}, err
	}
	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Loan{}, err
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Loan{}, err
	}
	return l, nil
}
