package domain

import (
	"time"

	"github.com/aussiebroadwan/aspen/pkg/banksdk"
)

// Conversions to the client wire models. Both the HTTP handlers and the
// in-process fixture answer with these.

func (u User) ToAPI() banksdk.UserProfile {
	return banksdk.UserProfile{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   banksdk.NewTime(u.CreatedAt),
		UpdatedAt:   banksdk.NewTime(u.UpdatedAt),
	}
}

// ToAPI marks the session as current when its id matches currentID.
func (s Session) ToAPI(currentID int64) banksdk.ActiveSession {
	return banksdk.ActiveSession{
		ID:               int(s.ID),
		DeviceName:       s.DeviceName,
		IPAddress:        s.IPAddress,
		LastActive:       banksdk.NewTime(s.LastActive),
		IsCurrentSession: s.ID == currentID,
	}
}

func (p TokenPair) ToAPI() banksdk.AuthResponse {
	return banksdk.AuthResponse{
		Token:        p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresAt:    banksdk.NewTime(p.ExpiresAt),
	}
}

func (a Account) ToAPI() banksdk.Account {
	return banksdk.Account{
		ID:               a.ID,
		AccountNumber:    a.AccountNumber,
		Type:             a.Type,
		Balance:          a.Balance,
		AvailableBalance: a.AvailableBalance,
		Name:             a.Name,
		CreatedAt:        banksdk.NewTime(a.CreatedAt),
		UpdatedAt:        banksdk.NewTime(a.UpdatedAt),
		InterestRate:     a.InterestRate,
		MaturityDate:     timePtr(a.MaturityDate),
		AutoRenew:        a.AutoRenew,
	}
}

func (p AccountProduct) ToAPI() banksdk.AccountTypeInfo {
	return banksdk.AccountTypeInfo{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		MinimumDeposit: p.MinimumDeposit,
		MonthlyFee:     p.MonthlyFee,
		Features:       p.Features,
	}
}

func (l Loan) ToAPI() banksdk.Loan {
	return banksdk.Loan{
		ID:               l.ID,
		AccountNumber:    l.AccountNumber,
		Type:             l.Type,
		Status:           l.Status,
		Balance:          l.Balance,
		AvailableCredit:  l.AvailableCredit,
		InterestRate:     l.InterestRate,
		PaymentAmount:    l.PaymentAmount,
		NextPaymentDue:   banksdk.NewTime(l.NextPaymentDue),
		CreatedAt:        banksdk.NewTime(l.CreatedAt),
		UpdatedAt:        banksdk.NewTime(l.UpdatedAt),
		Principal:        l.Principal,
		MaturityDate:     timePtr(l.MaturityDate),
		LoanTermMonths:   l.LoanTermMonths,
		CreditLimit:      l.CreditLimit,
		DrawPeriodMonths: l.DrawPeriodMonths,
		PropertyAddress:  l.PropertyAddress,
		PropertyValue:    l.PropertyValue,
		VehicleVIN:       l.VehicleVIN,
		RewardProgram:    l.RewardProgram,
		AnnualFee:        l.AnnualFee,
		IsSecured:        l.IsSecured,
	}
}

func (t Transaction) ToAPI() banksdk.Transaction {
	return banksdk.Transaction{
		ID:                     t.ID,
		Type:                   t.Type,
		Amount:                 t.Amount,
		Description:            t.Description,
		SourceAccountID:        t.SourceID,
		SourceAccountName:      t.SourceName,
		DestinationAccountID:   t.DestinationID,
		DestinationAccountName: t.DestinationName,
		Status:                 t.Status,
		CreatedAt:              banksdk.NewTime(t.CreatedAt),
		UpdatedAt:              banksdk.NewTime(t.UpdatedAt),
	}
}

func timePtr(t *time.Time) *banksdk.Time {
	if t == nil {
		return nil
	}
	v := banksdk.NewTime(*t)
	return &v
}
