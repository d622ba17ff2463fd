package domain

import (
	"time"

	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/shopspring/decimal"
)

// Transaction is a completed money movement. The account names are copied
// at the time of the movement so history survives renames.
type Transaction struct {
	ID              string
	UserID          string
	Type            banksdk.TransactionType
	Amount          decimal.Decimal
	Description     *string
	SourceID        string
	SourceName      string
	DestinationID   string
	DestinationName string
	Status          banksdk.TransactionStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
