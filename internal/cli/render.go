package cli

import (
	"flag"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/shopspring/decimal"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func percent(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.String() + "%"
}

func day(t *banksdk.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateOnly)
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "Usage: aspen [flags] <command> [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", commands[name].usage)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	fs.PrintDefaults()
}

func (app *App) printProfile(p banksdk.UserProfile) {
	tw := table(app.out)
	fmt.Fprintf(tw, "Name\t%s\n", p.FullName())
	fmt.Fprintf(tw, "Email\t%s\n", p.Email)
	if p.PhoneNumber != nil {
		fmt.Fprintf(tw, "Phone\t%s\n", *p.PhoneNumber)
	}
	fmt.Fprintf(tw, "Member since\t%s\n", p.CreatedAt.Local().Format(time.DateOnly))
	_ = tw.Flush()
}

func (app *App) printAccounts(accounts ...banksdk.Account) error {
	if len(accounts) == 0 {
		fmt.Fprintln(app.out, "No accounts.")
		return nil
	}

	tw := table(app.out)
	fmt.Fprintln(tw, "ID\tNUMBER\tNAME\tBALANCE\tAVAILABLE\tRATE\tMATURES")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.AccountNumber, a.Name,
			money(a.Balance), money(a.AvailableBalance),
			percent(a.InterestRate), day(a.MaturityDate),
		)
	}
	return tw.Flush()
}

func (app *App) printLoan(l banksdk.Loan) error {
	tw := table(app.out)
	fmt.Fprintf(tw, "ID\t%s\n", l.ID)
	fmt.Fprintf(tw, "Number\t%s\n", l.AccountNumber)
	fmt.Fprintf(tw, "Type\t%s\n", l.Type)
	fmt.Fprintf(tw, "Status\t%s\n", l.Status)
	fmt.Fprintf(tw, "Balance\t%s\n", money(l.Balance))
	if l.AvailableCredit != nil {
		fmt.Fprintf(tw, "Available credit\t%s\n", money(*l.AvailableCredit))
	}
	fmt.Fprintf(tw, "Rate\t%s\n", percent(&l.InterestRate))
	fmt.Fprintf(tw, "Payment\t%s due %s\n", money(l.PaymentAmount), day(&l.NextPaymentDue))
	return tw.Flush()
}

func (app *App) printTransactions(txs ...banksdk.Transaction) error {
	if len(txs) == 0 {
		fmt.Fprintln(app.out, "No transactions.")
		return nil
	}

	tw := table(app.out)
	fmt.Fprintln(tw, "DATE\tTYPE\tFROM\tTO\tAMOUNT\tSTATUS\tDESCRIPTION")
	for _, t := range txs {
		desc := ""
		if t.Description != nil {
			desc = *t.Description
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.CreatedAt.Local().Format(time.DateTime), t.Type,
			t.SourceAccountName, t.DestinationAccountName,
			money(t.Amount), t.Status, desc,
		)
	}
	return tw.Flush()
}
