package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. It exposes sub-repositories so
// the ledger operations can run the same code inside and outside a
// transaction.
type Store interface {
	Users() Users
	Sessions() Sessions
	Products() Products
	Accounts() Accounts
	Loans() Loans
	Transactions() Transactions

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser fails with ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateProfile(ctx context.Context, id, firstName, lastName string, phone *string, now time.Time) error
	UpdatePasswordHash(ctx context.Context, id, hash string, now time.Time) error
}

type Sessions interface {
	// CreateSession inserts s and returns its id.
	CreateSession(ctx context.Context, s domain.Session) (int64, error)
	GetSessionByID(ctx context.Context, id int64) (domain.Session, error)
	GetSessionByRefreshHash(ctx context.Context, hash string) (domain.Session, error)

	// RotateRefreshHash swaps the refresh fingerprint only if the session
	// still holds oldHash and is not revoked. ErrNotFound otherwise.
	RotateRefreshHash(ctx context.Context, id int64, oldHash, newHash string, expiresAt, now time.Time) error

	TouchSession(ctx context.Context, id int64, now time.Time) error

	// ListActiveSessions returns unrevoked, unexpired sessions, most
	// recently active first.
	ListActiveSessions(ctx context.Context, userID string, now time.Time) ([]domain.Session, error)

	// RevokeSession revokes one of the user's active sessions. ErrNotFound
	// when the session does not exist, belongs to someone else or is
	// already revoked.
	RevokeSession(ctx context.Context, userID string, id int64, now time.Time) error
	RevokeAllSessions(ctx context.Context, userID string, now time.Time) error

	// DeleteStaleSessions removes sessions that expired or were revoked
	// before cutoff.
	DeleteStaleSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

type Products interface {
	ListProducts(ctx context.Context) ([]domain.AccountProduct, error)
	GetProductByType(ctx context.Context, t banksdk.AccountType) (domain.AccountProduct, error)
}

type Accounts interface {
	CreateAccount(ctx context.Context, a domain.Account) error

	// GetAccount only finds accounts owned by userID.
	GetAccount(ctx context.Context, userID, id string) (domain.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]domain.Account, error)
	UpdateBalances(ctx context.Context, id string, balance, available decimal.Decimal, now time.Time) error
}

type Loans interface {
	CreateLoan(ctx context.Context, l domain.Loan) error

	// GetLoan only finds loans owned by userID.
	GetLoan(ctx context.Context, userID, id string) (domain.Loan, error)
	ListLoans(ctx context.Context, userID string) ([]domain.Loan, error)
	UpdateLoanBalance(ctx context.Context, l domain.Loan, now time.Time) error
}

type Transactions interface {
	CreateTransaction(ctx context.Context, t domain.Transaction) error

	// ListTransactions returns the user's history, newest first.
	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
}
