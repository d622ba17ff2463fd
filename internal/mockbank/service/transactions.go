package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
	"github.com/aussiebroadwan/aspen/internal/mockbank/store"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/slogx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionService moves money between the member's accounts and loans.
// Every movement runs in one database transaction: both balances change
// and the history row is written, or nothing is.
type TransactionService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *TransactionService) History(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return s.Store.Transactions().ListTransactions(ctx, userID)
}

// Create applies req for the member.
func (s *TransactionService) Create(ctx context.Context, userID string, req banksdk.TransactionRequest) (domain.Transaction, error) {
	if err := validate(req); err != nil {
		return domain.Transaction{}, err
	}
	if err := checkCents("amount", req.Amount); err != nil {
		return domain.Transaction{}, err
	}

	now := clock(s.Now)
	t := domain.Transaction{
		ID:            uuid.NewString(),
		UserID:        userID,
		Type:          req.Type,
		Amount:        req.Amount,
		Description:   req.Description,
		SourceID:      req.SourceAccountID,
		DestinationID: req.DestinationAccountID,
		Status:        banksdk.TransactionCompleted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		switch req.Type {
		case banksdk.TransactionTransfer:
			err = transfer(ctx, tx, &t, now)
		case banksdk.TransactionLoanPayment:
			err = loanPayment(ctx, tx, &t, now)
		case banksdk.TransactionLoanAdvance:
			err = loanAdvance(ctx, tx, &t, now)
		default:
			err = &ValidationError{Err: fmt.Errorf("type: unsupported transaction type %d", int(req.Type))}
		}
		if err != nil {
			return err
		}
		return tx.Transactions().CreateTransaction(ctx, t)
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	slogx.FromContext(ctx).Info("transaction completed",
		"transaction_id", t.ID, "type", t.Type.String(), "amount", t.Amount.String())
	return t, nil
}

func transfer(ctx context.Context, tx store.Tx, t *domain.Transaction, now time.Time) error {
	src, err := account(ctx, tx, t.UserID, t.SourceID)
	if err != nil {
		return err
	}
	dst, err := account(ctx, tx, t.UserID, t.DestinationID)
	if err != nil {
		return err
	}
	if err := withdraw(ctx, tx, src, t.Amount, now); err != nil {
		return err
	}
	if err := deposit(ctx, tx, dst, t.Amount, now); err != nil {
		return err
	}

	t.SourceName, t.DestinationName = src.Name, dst.Name
	return nil
}

// loanPayment pays from an account into a loan. Paying off an instalment
// loan closes it; a line of credit gets the credit back instead.
func loanPayment(ctx context.Context, tx store.Tx, t *domain.Transaction, now time.Time) error {
	src, err := account(ctx, tx, t.UserID, t.SourceID)
	if err != nil {
		return err
	}
	l, err := loan(ctx, tx, t.UserID, t.DestinationID)
	if err != nil {
		return err
	}
	if l.Status != banksdk.LoanActive && l.Status != banksdk.LoanDelinquent {
		return ErrLoanNotActive
	}
	if t.Amount.GreaterThan(l.Balance) {
		return fmt.Errorf("%w: outstanding balance is %s", ErrOverpayment, l.Balance.StringFixed(2))
	}
	if err := withdraw(ctx, tx, src, t.Amount, now); err != nil {
		return err
	}

	l.Balance = l.Balance.Sub(t.Amount)
	if l.Type.Revolving() && l.AvailableCredit != nil {
		credit := l.AvailableCredit.Add(t.Amount)
		l.AvailableCredit = &credit
		l.PaymentAmount = MinimumPayment(l.Balance)
	} else if l.Balance.IsZero() {
		l.Status = banksdk.LoanClosed
		l.PaymentAmount = decimal.Zero
	}
	if l.Status == banksdk.LoanDelinquent {
		l.Status = banksdk.LoanActive
	}
	if err := tx.Loans().UpdateLoanBalance(ctx, l, now); err != nil {
		return err
	}

	t.SourceName, t.DestinationName = src.Name, l.DisplayName()
	return nil
}

// loanAdvance draws on a line of credit into an account.
func loanAdvance(ctx context.Context, tx store.Tx, t *domain.Transaction, now time.Time) error {
	l, err := loan(ctx, tx, t.UserID, t.SourceID)
	if err != nil {
		return err
	}
	dst, err := account(ctx, tx, t.UserID, t.DestinationID)
	if err != nil {
		return err
	}
	if !l.Type.Revolving() || l.AvailableCredit == nil {
		return ErrNotRevolving
	}
	if l.Status != banksdk.LoanActive {
		return ErrLoanNotActive
	}
	if t.Amount.GreaterThan(*l.AvailableCredit) {
		return fmt.Errorf("%w: %s available", ErrInsufficientCredit, l.AvailableCredit.StringFixed(2))
	}

	credit := l.AvailableCredit.Sub(t.Amount)
	l.AvailableCredit = &credit
	l.Balance = l.Balance.Add(t.Amount)
	l.PaymentAmount = MinimumPayment(l.Balance)
	if err := tx.Loans().UpdateLoanBalance(ctx, l, now); err != nil {
		return err
	}
	if err := deposit(ctx, tx, dst, t.Amount, now); err != nil {
		return err
	}

	t.SourceName, t.DestinationName = l.DisplayName(), dst.Name
	return nil
}

func account(ctx context.Context, tx store.Tx, userID, id string) (domain.Account, error) {
	a, err := tx.Accounts().GetAccount(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	return a, err
}

func loan(ctx context.Context, tx store.Tx, userID, id string) (domain.Loan, error) {
	l, err := tx.Loans().GetLoan(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Loan{}, fmt.Errorf("%w: %s", ErrLoanNotFound, id)
	}
	return l, err
}

// withdraw takes amount out of a. Only the available balance can be spent,
// and certificates are locked until they mature.
func withdraw(ctx context.Context, tx store.Tx, a domain.Account, amount decimal.Decimal, now time.Time) error {
	if a.Type == banksdk.AccountCD && a.MaturityDate != nil && now.Before(*a.MaturityDate) {
		return fmt.Errorf("%w: matures %s", ErrNotMatured, a.MaturityDate.Format(time.DateOnly))
	}
	if amount.GreaterThan(a.AvailableBalance) {
		return fmt.Errorf("%w: %s available", ErrInsufficientFunds, a.AvailableBalance.StringFixed(2))
	}
	return tx.Accounts().UpdateBalances(ctx, a.ID, a.Balance.Sub(amount), a.AvailableBalance.Sub(amount), now)
}

func deposit(ctx context.Context, tx store.Tx, a domain.Account, amount decimal.Decimal, now time.Time) error {
	return tx.Accounts().UpdateBalances(ctx, a.ID, a.Balance.Add(amount), a.AvailableBalance.Add(amount), now)
}
