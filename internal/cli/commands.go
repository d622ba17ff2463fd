package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/shopspring/decimal"
)

// ErrUsage reports a command invoked with the wrong arguments.
var ErrUsage = errors.New("usage")

type command struct {
	usage string
	help  string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"register":       {"register", "create a member (prompts for details)", (*App).register},
		"login":          {"login [email]", "sign in", (*App).login},
		"logout":         {"logout", "sign out and forget local tokens", (*App).logout},
		"refresh":        {"refresh", "rotate the stored token pair", (*App).refresh},
		"status":         {"status", "show whether tokens are stored", (*App).status},
		"sessions":       {"sessions", "list signed-in devices", (*App).sessions},
		"revoke":         {"revoke <session-id>", "sign out one device", (*App).revoke},
		"revoke-all":     {"revoke-all", "sign out every device", (*App).revokeAll},
		"profile":        {"profile", "show the member profile", (*App).profile},
		"update-profile": {"update-profile [-first name] [-last name] [-phone number]", "change profile details", (*App).updateProfile},
		"passwd":         {"passwd", "change password (prompts)", (*App).changePassword},
		"accounts":       {"accounts", "list accounts", (*App).accounts},
		"account":        {"account <id>", "show one account", (*App).account},
		"account-types":  {"account-types", "list account products", (*App).accountTypes},
		"open":           {"open <checking|savings|cd|money-market> -deposit n [-rate r] [-term months] [-auto-renew]", "open an account", (*App).open},
		"apply":          {"apply <mortgage|auto|card|personal|heloc|line> [flags]", "apply for a loan or line of credit", (*App).apply},
		"history":        {"history", "list transactions", (*App).history},
		"transfer":       {"transfer <from> <to> <amount> [description]", "move money between accounts", (*App).transfer},
		"pay":            {"pay <from> <loan> <amount> [description]", "pay into a loan", (*App).pay},
		"advance":        {"advance <loan> <to> <amount> [description]", "draw from a line of credit", (*App).advance},
		"shell":          {"shell", "read commands from stdin until exit", (*App).shell},
	}
}

// Run executes one command.
func (app *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" {
		app.help()
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q (try help)", args[0])
	}

	err := cmd.run(app, ctx, args[1:])
	if errors.Is(err, ErrUsage) {
		return fmt.Errorf("usage: aspen %s", cmd.usage)
	}
	return err
}

func (app *App) help() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := table(app.out)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%s\n", commands[name].usage, commands[name].help)
	}
	_ = tw.Flush()
}

func (app *App) shell(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}

	for {
		line, err := app.prompt.line("aspen")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "exit", "quit":
			return nil
		case "shell":
			continue
		}

		if err := app.Run(ctx, fields); err != nil {
			fmt.Fprintln(app.out, "error:", err)
		}
	}
}

// Auth

func (app *App) register(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}

	var req banksdk.RegisterRequest
	var err error
	if req.Email, err = app.prompt.line("Email"); err != nil {
		return err
	}
	if req.FirstName, err = app.prompt.line("First name"); err != nil {
		return err
	}
	if req.LastName, err = app.prompt.line("Last name"); err != nil {
		return err
	}
	if req.Password, err = app.prompt.password("Password"); err != nil {
		return err
	}
	if req.ConfirmPassword, err = app.prompt.password("Confirm password"); err != nil {
		return err
	}

	if err := app.bank.Register(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Registered %s. Sign in with: aspen login %s\n", req.Email, req.Email)
	return nil
}

func (app *App) login(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}

	var email string
	if len(args) == 1 {
		email = args[0]
	} else {
		var err error
		if email, err = app.prompt.line("Email"); err != nil {
			return err
		}
	}
	password, err := app.prompt.password("Password")
	if err != nil {
		return err
	}

	if err := app.bank.Login(ctx, email, password); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Signed in.")
	return nil
}

func (app *App) logout(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if err := app.bank.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Signed out.")
	return nil
}

func (app *App) refresh(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if err := app.bank.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Tokens refreshed.")
	return nil
}

func (app *App) status(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}

	creds, ok := app.bank.Credentials(ctx)
	if !ok {
		fmt.Fprintln(app.out, "Not signed in.")
		return nil
	}
	fmt.Fprintln(app.out, "Signed in.")
	if creds.ExpiresAt != nil {
		fmt.Fprintf(app.out, "Access token expires %s.\n", creds.ExpiresAt.Local().Format(time.RFC1123))
	}
	if creds.RefreshToken == "" {
		fmt.Fprintln(app.out, "No refresh token stored.")
	}
	return nil
}

func (app *App) sessions(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}

	sessions, err := app.bank.ActiveSessions(ctx)
	if err != nil {
		return err
	}

	tw := table(app.out)
	fmt.Fprintln(tw, "ID\tDEVICE\tIP\tLAST ACTIVE\t")
	for _, s := range sessions {
		current := ""
		if s.IsCurrentSession {
			current = "(this device)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.DeviceName, s.IPAddress, s.LastActive.Local().Format(time.DateTime), current)
	}
	return tw.Flush()
}

func (app *App) revoke(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 1 {
		return fmt.Errorf("invalid session id %q", args[0])
	}

	if err := app.bank.RevokeSession(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Session %d revoked.\n", id)
	return nil
}

func (app *App) revokeAll(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if err := app.bank.RevokeAllSessions(ctx); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Every session revoked. Signed out.")
	return nil
}

// User

func (app *App) profile(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	p, err := app.bank.GetProfile(ctx)
	if err != nil {
		return err
	}
	app.printProfile(p)
	return nil
}

func (app *App) updateProfile(ctx context.Context, args []string) error {
	current, err := app.bank.GetProfile(ctx)
	if err != nil {
		return err
	}

	req := banksdk.UpdateProfileRequest{
		FirstName:   current.FirstName,
		LastName:    current.LastName,
		PhoneNumber: current.PhoneNumber,
	}
	phone := ""
	if req.PhoneNumber != nil {
		phone = *req.PhoneNumber
	}

	fs := subcommand("update-profile")
	fs.StringVar(&req.FirstName, "first", req.FirstName, "first name")
	fs.StringVar(&req.LastName, "last", req.LastName, "last name")
	fs.StringVar(&phone, "phone", phone, "phone number (empty clears it)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}

	req.PhoneNumber = nil
	if phone != "" {
		req.PhoneNumber = &phone
	}

	p, err := app.bank.UpdateProfile(ctx, req)
	if err != nil {
		return err
	}
	app.printProfile(p)
	return nil
}

func (app *App) changePassword(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}

	var req banksdk.ChangePasswordRequest
	var err error
	if req.CurrentPassword, err = app.prompt.password("Current password"); err != nil {
		return err
	}
	if req.NewPassword, err = app.prompt.password("New password"); err != nil {
		return err
	}
	if req.ConfirmPassword, err = app.prompt.password("Confirm new password"); err != nil {
		return err
	}

	if err := app.bank.ChangePassword(ctx, req); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Password changed.")
	return nil
}

// Accounts

func (app *App) accounts(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	accounts, err := app.bank.GetAllAccounts(ctx)
	if err != nil {
		return err
	}
	return app.printAccounts(accounts...)
}

func (app *App) account(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	a, err := app.bank.GetAccount(ctx, args[0])
	if err != nil {
		return err
	}
	return app.printAccounts(a)
}

func (app *App) accountTypes(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	types, err := app.bank.GetAccountTypes(ctx)
	if err != nil {
		return err
	}

	tw := table(app.out)
	fmt.Fprintln(tw, "PRODUCT\tMINIMUM\tMONTHLY FEE\tFEATURES")
	for _, t := range types {
		fee := "none"
		if t.MonthlyFee != nil {
			fee = money(*t.MonthlyFee)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Name, money(t.MinimumDeposit), fee, strings.Join(t.Features, ", "))
	}
	return tw.Flush()
}

func (app *App) open(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	kind := args[0]

	var deposit, rate decimalFlag
	var term int
	var autoRenew bool
	fs := subcommand("open " + kind)
	fs.Var(&deposit, "deposit", "initial deposit")
	fs.Var(&rate, "rate", "interest rate, percent")
	fs.IntVar(&term, "term", 12, "certificate term in months")
	fs.BoolVar(&autoRenew, "auto-renew", false, "renew the certificate at maturity")
	if err := fs.Parse(args[1:]); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}

	var (
		a   banksdk.Account
		err error
	)
	switch kind {
	case "checking":
		a, err = app.bank.CreateCheckingAccount(ctx, banksdk.CheckingAccountRequest{InitialDeposit: deposit.Decimal})
	case "savings":
		a, err = app.bank.CreateSavingsAccount(ctx, banksdk.SavingsAccountRequest{InitialDeposit: deposit.Decimal, InterestRate: rate.Decimal})
	case "cd":
		a, err = app.bank.CreateCDAccount(ctx, banksdk.CDAccountRequest{
			InitialDeposit: deposit.Decimal,
			InterestRate:   rate.Decimal,
			MaturityDate:   banksdk.NewTime(time.Now().AddDate(0, term, 0)),
			AutoRenew:      autoRenew,
		})
	case "money-market":
		a, err = app.bank.CreateMoneyMarketAccount(ctx, banksdk.MoneyMarketAccountRequest{InitialDeposit: deposit.Decimal, InterestRate: rate.Decimal})
	default:
		return ErrUsage
	}
	if err != nil {
		return err
	}
	return app.printAccounts(a)
}

// Loans

func (app *App) apply(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	kind := args[0]

	var principal, rate, limit, fee, value, equity decimalFlag
	var years, months, draw int
	var address, vin, rewards, purpose string
	var secured bool

	fs := subcommand("apply " + kind)
	fs.Var(&principal, "principal", "amount borrowed")
	fs.Var(&rate, "rate", "interest rate, percent")
	fs.Var(&limit, "limit", "credit limit")
	fs.Var(&fee, "fee", "annual fee")
	fs.Var(&value, "value", "property value")
	fs.Var(&equity, "equity", "current equity in the property")
	fs.IntVar(&years, "years", 30, "mortgage term in years")
	fs.IntVar(&months, "months", 60, "loan term in months")
	fs.IntVar(&draw, "draw", 120, "draw period in months")
	fs.StringVar(&address, "address", "", "property address")
	fs.StringVar(&vin, "vin", "", "vehicle identification number")
	fs.StringVar(&rewards, "rewards", "Cashback", "card reward program")
	fs.StringVar(&purpose, "purpose", "", "what the loan is for")
	fs.BoolVar(&secured, "secured", false, "secure the loan against savings")
	if err := fs.Parse(args[1:]); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}

	var (
		l   banksdk.Loan
		err error
	)
	switch kind {
	case "mortgage":
		l, err = app.bank.ApplyForMortgage(ctx, banksdk.MortgageLoanRequest{
			Principal:       principal.Decimal,
			InterestRate:    rate.Decimal,
			LoanTermYears:   years,
			PropertyAddress: address,
		})
	case "auto":
		l, err = app.bank.ApplyForAutoLoan(ctx, banksdk.AutoLoanRequest{
			Principal:      principal.Decimal,
			InterestRate:   rate.Decimal,
			LoanTermMonths: months,
			VehicleVIN:     vin,
		})
	case "card":
		l, err = app.bank.ApplyForCreditCard(ctx, banksdk.CreditCardRequest{
			InterestRate:  rate.Decimal,
			CreditLimit:   limit.Decimal,
			AnnualFee:     fee.Decimal,
			RewardProgram: rewards,
		})
	case "personal":
		l, err = app.bank.ApplyForPersonalLoan(ctx, banksdk.PersonalLoanRequest{
			Principal:      principal.Decimal,
			InterestRate:   rate.Decimal,
			Purpose:        purpose,
			LoanTermMonths: months,
			IsSecured:      secured,
		})
	case "heloc":
		l, err = app.bank.ApplyForHELOC(ctx, banksdk.HELOCRequest{
			InterestRate:     rate.Decimal,
			PropertyAddress:  address,
			PropertyValue:    value.Decimal,
			CreditLimit:      limit.Decimal,
			CurrentEquity:    equity.Decimal,
			DrawPeriodMonths: draw,
		})
	case "line":
		l, err = app.bank.ApplyForPersonalLineOfCredit(ctx, banksdk.PersonalLineOfCreditRequest{
			InterestRate:     rate.Decimal,
			CreditLimit:      limit.Decimal,
			DrawPeriodMonths: draw,
			IsSecured:        secured,
		})
	default:
		return ErrUsage
	}
	if err != nil {
		return err
	}
	return app.printLoan(l)
}

// Transactions

func (app *App) history(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	history, err := app.bank.GetTransactionHistory(ctx)
	if err != nil {
		return err
	}
	return app.printTransactions(history...)
}

type moveFunc func(ctx context.Context, from, to string, amount decimal.Decimal, description *string) (banksdk.Transaction, error)

func (app *App) move(ctx context.Context, args []string, fn moveFunc) error {
	if len(args) < 3 {
		return ErrUsage
	}
	amount, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[2])
	}
	var description *string
	if len(args) > 3 {
		d := strings.Join(args[3:], " ")
		description = &d
	}

	tx, err := fn(ctx, args[0], args[1], amount, description)
	if err != nil {
		return err
	}
	return app.printTransactions(tx)
}

func (app *App) transfer(ctx context.Context, args []string) error {
	return app.move(ctx, args, app.bank.TransferBetweenAccounts)
}

func (app *App) pay(ctx context.Context, args []string) error {
	return app.move(ctx, args, app.bank.MakeLoanPayment)
}

func (app *App) advance(ctx context.Context, args []string) error {
	return app.move(ctx, args, app.bank.RequestLoanAdvance)
}

func subcommand(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// decimalFlag parses a money or rate flag.
type decimalFlag struct {
	decimal.Decimal
}

func (f *decimalFlag) Set(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	f.Decimal = d
	return nil
}
