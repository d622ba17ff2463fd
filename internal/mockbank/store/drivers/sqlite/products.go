package sqlite

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/shopspring/decimal"
)

type productsRepo struct {
	db dbtx
}

const productColumns = `id, type, name, description, minimum_deposit, monthly_fee, features`

func (r *productsRepo) ListProducts(ctx context.Context) ([]domain.AccountProduct, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM account_products ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AccountProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *productsRepo) GetProductByType(ctx context.Context, t banksdk.AccountType) (domain.AccountProduct, error) {
	return scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM account_products WHERE type = ?`, string(t)))
}

func scanProduct(row scanner) (domain.AccountProduct, error) {
	var (
		p          domain.AccountProduct
		typ        string
		monthlyFee decimal.NullDecimal
		features   string
	)
	if err := row.Scan(&p.ID, &typ, &p.Name, &p.Description, &p.MinimumDeposit, &monthlyFee, &features); err != nil {
		return domain.AccountProduct{}, mapNotFound(err)
	}
	p.Type = banksdk.AccountType(typ)
	p.MonthlyFee = decimalPtr(monthlyFee)
	p.Features = strings.Split(features, "|")
	return p, nil
}
