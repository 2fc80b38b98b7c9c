// Package export copies every client, job, invoice and quote, plus their
// PDFs, into a directory tree.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/rostved/sitebook/api"
	"github.com/rostved/sitebook/editor"
)

// Source is the read side of the REST client. *api.Client implements it.
type Source interface {
	Customers() ([]api.Customer, error)
	Jobs(clientID string) ([]api.Job, error)
	Invoices(jobID string) ([]api.Invoice, error)
	Quotes(jobID string) ([]api.Quote, error)
	FetchInvoice(id string) (*api.InvoiceDetail, error)
	FetchQuote(id string) (*api.QuoteDetail, error)
	InvoicePDF(id string) (io.ReadCloser, error)
	QuotePDF(id string) (io.ReadCloser, error)
}

type Options struct {
	OutDir string
	DryRun bool
	// SkipPDFs exports JSON only.
	SkipPDFs bool
	Debug    bool
	// Notify receives soft failures. Nil logs them.
	Notify editor.Notifier
}

func (o Options) notify(n editor.Notice) {
	if o.Notify != nil {
		o.Notify.Notify(n)
		return
	}
	log.Println(n.String())
}

// Fingerprint identifies what a document PDF shows: its total and, for
// invoices, the amount paid.
func Fingerprint(items []api.LineItem, payments []api.Payment) string {
	t := editor.ComputeTotals(items, payments)
	return t.Total.StringFixed(editor.Places) + "/" + t.Paid.StringFixed(editor.Places)
}

// Result counts what a run did.
type Result struct {
	Clients     int
	Jobs        int
	Invoices    int
	Quotes      int
	PDFs        int
	PDFsSkipped int
	Errors      int
}

// Run exports everything Source can see. Failures on single documents are
// logged and counted; the run carries on and Result.Errors is non-zero.
func Run(src Source, manifest *Manifest, opts Options) (Result, error) {
	var res Result
	now := time.Now().UTC().Format(time.RFC3339)

	log.Println("Exporting clients...")
	customers, err := src.Customers()
	if err != nil {
		return res, err
	}
	if err := exportCustomers(customers, opts.OutDir, opts.DryRun); err != nil {
		return res, err
	}
	res.Clients = len(customers)

	for _, customer := range customers {
		jobs, err := src.Jobs(customer.ID)
		if err != nil {
			log.Printf("Error fetching jobs for client %s: %v", customer.Name, err)
			res.Errors++
			continue
		}
		if len(jobs) == 0 {
			continue
		}
		if err := writeJSON(opts, filepath.Join("jobs", fmt.Sprintf("jobs_%s.json", customer.ID)), jobs); err != nil {
			return res, err
		}
		res.Jobs += len(jobs)

		for _, job := range jobs {
			exportInvoices(src, manifest, opts, job, &res)
			exportQuotes(src, manifest, opts, job, &res)
		}
	}

	if opts.DryRun {
		log.Printf("[Dry Run] Would update export state lastExport to %s", now)
		return res, nil
	}
	manifest.UpdateLastExport(now)
	if err := manifest.Save(); err != nil {
		return res, err
	}
	return res, nil
}

func exportInvoices(src Source, manifest *Manifest, opts Options, job api.Job, res *Result) {
	invoices, err := src.Invoices(job.ID)
	if err != nil {
		log.Printf("Error fetching invoices for job %s: %v", job.Title, err)
		res.Errors++
		return
	}

	for _, inv := range invoices {
		detail, err := src.FetchInvoice(inv.ID)
		if err != nil {
			log.Printf("Error fetching invoice %d: %v", inv.InvoiceNumber, err)
			res.Errors++
			continue
		}
		if err := writeJSON(opts, filepath.Join("invoices", inv.ID+".json"), detail); err != nil {
			log.Printf("Error saving invoice %d: %v", inv.InvoiceNumber, err)
			res.Errors++
			continue
		}
		res.Invoices++

		if opts.SkipPDFs {
			continue
		}
		fingerprint := Fingerprint(detail.LineItems, detail.Payments)
		name := api.PDFFilename("Invoice", inv.InvoiceNumber, inv.ID)
		fetched, err := downloadPDF(manifest, opts, string(editor.KindInvoice), inv.ID, fingerprint,
			filepath.Join("invoices", name), src.InvoicePDF)
		if err != nil {
			log.Printf("Error downloading %s: %v", name, err)
			res.Errors++
			continue
		}
		if fetched {
			res.PDFs++
		} else {
			res.PDFsSkipped++
		}
	}
}

func exportQuotes(src Source, manifest *Manifest, opts Options, job api.Job, res *Result) {
	quotes, err := src.Quotes(job.ID)
	if err != nil {
		log.Printf("Error fetching quotes for job %s: %v", job.Title, err)
		res.Errors++
		return
	}

	for _, q := range quotes {
		detail, err := src.FetchQuote(q.ID)
		if err != nil {
			log.Printf("Error fetching quote %d: %v", q.QuoteNumber, err)
			res.Errors++
			continue
		}
		if err := writeJSON(opts, filepath.Join("quotes", q.ID+".json"), detail); err != nil {
			log.Printf("Error saving quote %d: %v", q.QuoteNumber, err)
			res.Errors++
			continue
		}
		res.Quotes++

		if opts.SkipPDFs {
			continue
		}
		fingerprint := Fingerprint(detail.LineItems, nil)
		name := api.PDFFilename("Quote", q.QuoteNumber, q.ID)
		fetched, err := downloadPDF(manifest, opts, string(editor.KindQuote), q.ID, fingerprint,
			filepath.Join("quotes", name), src.QuotePDF)
		if err != nil {
			opts.notify(editor.Notice{
				Kind:    editor.NoticeSoft,
				Message: fmt.Sprintf("PDF not available yet for quote %d", q.QuoteNumber),
				Err:     err,
			})
			continue
		}
		if fetched {
			res.PDFs++
		} else {
			res.PDFsSkipped++
		}
	}
}

func writeJSON(opts Options, rel string, v any) error {
	filename := filepath.Join(opts.OutDir, rel)
	if opts.DryRun {
		log.Printf("[Dry Run] Would save %s", filename)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return err
	}
	if opts.Debug {
		log.Printf("Saved %s", filename)
	}
	return nil
}

// downloadPDF fetches one PDF unless the manifest says the copy on disk is
// current. It reports whether a download happened.
func downloadPDF(manifest *Manifest, opts Options, kind, id, fingerprint, rel string, fetch func(string) (io.ReadCloser, error)) (bool, error) {
	filename := filepath.Join(opts.OutDir, rel)
	if manifest.PDFCurrent(kind, id, fingerprint) {
		if _, err := os.Stat(filename); err == nil {
			return false, nil
		}
	}
	if opts.DryRun {
		log.Printf("[Dry Run] Would download %s", filename)
		return true, nil
	}

	if err := SavePDF(filename, fetch, id); err != nil {
		return false, err
	}
	manifest.RecordPDF(kind, id, rel, fingerprint)
	if opts.Debug {
		log.Printf("Downloaded %s", filename)
	}
	return true, nil
}

// SavePDF streams one document PDF to filename, creating its directory.
func SavePDF(filename string, fetch func(string) (io.ReadCloser, error), id string) error {
	stream, err := fetch(id)
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	out, err := os.Create(filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, stream); err != nil {
		out.Close()
		os.Remove(filename)
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return out.Close()
}
