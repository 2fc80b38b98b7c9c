// Package views renders service data as plain-text tables for the CLI.
package views

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rostved/sitebook/api"
	"github.com/rostved/sitebook/editor"
)

// Money formats an amount the way the application shows currency: symbol,
// space, two decimals.
func Money(currency string, d decimal.Decimal) string {
	return fmt.Sprintf("%s %s", currency, d.StringFixed(editor.Places))
}

// Date shows the date part of an ISO timestamp, or the input unchanged when
// it cannot be parsed.
func Date(s string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func Customers(w io.Writer, customers []api.Customer) error {
	if len(customers) == 0 {
		_, err := fmt.Fprintln(w, "No clients yet")
		return err
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tADDRESS\tPHONE")
	for _, c := range customers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Name, orDash(c.Address), orDash(c.Phone))
	}
	return tw.Flush()
}

func Jobs(w io.Writer, jobs []api.Job) error {
	if len(jobs) == 0 {
		_, err := fmt.Fprintln(w, "No jobs yet")
		return err
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tSTARTED")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", j.ID, j.Title, j.Status, Date(j.StartDate))
	}
	return tw.Flush()
}

func JobDetail(w io.Writer, job *api.JobDetail) error {
	title := job.Title
	if job.ClientName != "" {
		title = job.ClientName + " – " + job.Title
	}
	description := ""
	if job.Description != nil {
		description = *job.Description
	}
	_, err := fmt.Fprintf(w, "%s\n  Status:      %s\n  Started:     %s\n  Description: %s\n",
		title, job.Status, Date(job.StartDate), orDash(description))
	return err
}

func JobOverview(w io.Writer, currency string, o *api.JobOverview) error {
	tw := table(w)
	fmt.Fprintf(tw, "Total invoiced\t%s\n", Money(currency, o.TotalInvoiced))
	fmt.Fprintf(tw, "Total paid\t%s\n", Money(currency, o.TotalPaid))
	fmt.Fprintf(tw, "Outstanding\t%s\n", Money(currency, o.Outstanding))
	fmt.Fprintf(tw, "Total quoted\t%s\n", Money(currency, o.TotalQuoted))
	fmt.Fprintf(tw, "Active quotes\t%d\n", o.QuotesCount)
	return tw.Flush()
}

func Dashboard(w io.Writer, currency string, d *api.DashboardSummary) error {
	tw := table(w)
	fmt.Fprintf(tw, "Outstanding balance\t%s\n", Money(currency, d.OutstandingBalance))
	fmt.Fprintf(tw, "Unconverted quotes\t%s\t(%d active quote(s))\n", Money(currency, d.QuotedPipeline), d.QuotesCount)
	return tw.Flush()
}

func Invoices(w io.Writer, currency string, invoices []api.Invoice) error {
	if len(invoices) == 0 {
		_, err := fmt.Fprintln(w, "No invoices yet")
		return err
	}
	tw := table(w)
	fmt.Fprintln(tw, "INVOICE #\tID\tDATE\tTOTAL")
	for _, inv := range invoices {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", inv.InvoiceNumber, inv.ID, Date(inv.CreatedAt), Money(currency, inv.Total))
	}
	return tw.Flush()
}

func Quotes(w io.Writer, quotes []api.Quote) error {
	if len(quotes) == 0 {
		_, err := fmt.Fprintln(w, "No quotes yet")
		return err
	}
	tw := table(w)
	fmt.Fprintln(tw, "QUOTE #\tID\tDATE")
	for _, q := range quotes {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", q.QuoteNumber, q.ID, Date(q.CreatedAt))
	}
	return tw.Flush()
}

// Document prints the editor's lines, payments and totals.
func Document(w io.Writer, currency string, ed *editor.Editor) error {
	tw := table(w)
	heading := ed.Kind().Title()
	if n := ed.Number(); n > 0 {
		heading = fmt.Sprintf("%s #%d", heading, n)
	}
	fmt.Fprintln(tw, heading)
	fmt.Fprintln(tw, "#\tDESCRIPTION\tQTY\tUNIT PRICE\tTOTAL")
	for i, item := range ed.Items() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i, orDash(item.Description), item.Qty.String(),
			Money(currency, item.UnitPrice), Money(currency, editor.LineTotal(item)))
	}

	totals := ed.Totals()
	if ed.Kind() == editor.KindInvoice {
		payments := ed.Payments()
		if len(payments) > 0 {
			fmt.Fprintln(tw, "\nPAYMENT\tDATE\tAMOUNT\tNOTE")
			for _, p := range payments {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, Date(p.PaymentDate), Money(currency, p.Amount), p.Note)
			}
		}
		fmt.Fprintf(tw, "\nTotal\t%s\n", Money(currency, totals.Total))
		fmt.Fprintf(tw, "Paid\t%s\n", Money(currency, totals.Paid))
		fmt.Fprintf(tw, "Outstanding\t%s\n", Money(currency, totals.Outstanding))
	} else {
		fmt.Fprintf(tw, "\nQuote total\t%s\n", Money(currency, totals.Total))
	}
	return tw.Flush()
}
