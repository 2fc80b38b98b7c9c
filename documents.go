package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rostved/sitebook/api"
	"github.com/rostved/sitebook/editor"
	"github.com/rostved/sitebook/export"
	"github.com/rostved/sitebook/tui"
	"github.com/rostved/sitebook/views"
)

// docKind describes how invoices and quotes differ on the command line.
type docKind struct {
	kind    editor.Kind
	use     string
	pdfName string
	// softPDF makes a failed PDF download a notice instead of an error.
	softPDF bool
	create  func(c *api.Client, jobID string) (string, int, error)
	remove  func(c *api.Client, id string) error
	pdf     func(c *api.Client, id string) (io.ReadCloser, error)
	list    func(a *app, jobID string) error
}

var invoiceDocs = docKind{
	kind:    editor.KindInvoice,
	use:     "invoices",
	pdfName: "Invoice",
	create: func(c *api.Client, jobID string) (string, int, error) {
		inv, err := c.CreateInvoice(jobID)
		if err != nil {
			return "", 0, err
		}
		return inv.ID, inv.InvoiceNumber, nil
	},
	remove: (*api.Client).DeleteInvoice,
	pdf:    (*api.Client).InvoicePDF,
	list: func(a *app, jobID string) error {
		invoices, err := a.client.Invoices(jobID)
		if err != nil {
			return err
		}
		return views.Invoices(os.Stdout, a.cfg.Currency, invoices)
	},
}

var quoteDocs = docKind{
	kind:    editor.KindQuote,
	use:     "quotes",
	pdfName: "Quote",
	softPDF: true,
	create: func(c *api.Client, jobID string) (string, int, error) {
		q, err := c.CreateQuote(jobID)
		if err != nil {
			return "", 0, err
		}
		return q.ID, q.QuoteNumber, nil
	},
	remove: (*api.Client).DeleteQuote,
	pdf:    (*api.Client).QuotePDF,
	list: func(a *app, jobID string) error {
		quotes, err := a.client.Quotes(jobID)
		if err != nil {
			return err
		}
		return views.Quotes(os.Stdout, quotes)
	},
}

func documentCommand(d docKind) *cobra.Command {
	noun := string(d.kind)
	root := &cobra.Command{
		Use:   d.use,
		Short: fmt.Sprintf("Work with %s", d.use),
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List a job's %s", d.use),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := authed(cmd)
			if err != nil {
				return err
			}
			jobID, _ := cmd.Flags().GetString("job")
			return a.check(d.list(a, jobID))
		},
	}
	listCmd.Flags().String("job", "", "Job ID")
	_ = listCmd.MarkFlagRequired("job")

	createCmd := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create a %s with one default line", noun),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := authed(cmd)
			if err != nil {
				return err
			}
			jobID, _ := cmd.Flags().GetString("job")
			id, number, err := d.create(a.client, jobID)
			if err != nil {
				return a.check(err)
			}
			fmt.Printf("Created %s %d (%s)\n", noun, number, id)
			if edit, _ := cmd.Flags().GetBool("edit"); edit {
				return a.check(a.runEditor(d.kind, id))
			}
			return nil
		},
	}
	createCmd.Flags().String("job", "", "Job ID")
	createCmd.Flags().Bool("edit", false, "Open the editor on the new document")
	_ = createCmd.MarkFlagRequired("job")

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: fmt.Sprintf("Delete a %s", noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := authed(cmd)
			if err != nil {
				return err
			}
			if yes, _ := cmd.Flags().GetBool("yes"); !yes && !confirm(fmt.Sprintf("Delete this %s?", noun)) {
				fmt.Println("Cancelled.")
				return nil
			}
			if err := d.remove(a.client, args[0]); err != nil {
				return a.check(err)
			}
			fmt.Printf("Deleted %s %s\n", noun, args[0])
			return nil
		},
	}
	deleteCmd.Flags().Bool("yes", false, "Do not ask for confirmation")

	showCmd := &cobra.Command{
		Use:   "show ID",
		Short: fmt.Sprintf("Print a %s with its totals", noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := authed(cmd)
			if err != nil {
				return err
			}
			ed, err := a.loadEditor(d.kind, args[0])
			if err != nil {
				return a.check(err)
			}
			return views.Document(os.Stdout, a.cfg.Currency, ed)
		},
	}

	editCmd := &cobra.Command{
		Use:   "edit ID",
		Short: fmt.Sprintf("Edit a %s interactively", noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := authed(cmd)
			if err != nil {
				return err
			}
			return a.check(a.runEditor(d.kind, args[0]))
		},
	}

	addLineCmd := &cobra.Command{
		Use:   "add-line ID",
		Short: "Append a line and save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := authed(cmd)
			if err != nil {
				return err
			}
			return a.editAndSave(d.kind, args[0], func(ed *editor.Editor) error {
				index, err := ed.AddLineItem()
				if err != nil {
					return err
				}
				return applyLineFlags(cmd, ed, index)
			})
		},
	}
	addLineFlags(addLineCmd)

	setLineCmd := &cobra.Command{
		Use:   "set-line ID INDEX",
		Short: "Change fields of one line and save",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid line index %q", args[1])
			}
			a, err := authed(cmd)
			if err != nil {
				return err
			}
			return a.editAndSave(d.kind, args[0], func(ed *editor.Editor) error {
				return applyLineFlags(cmd, ed, index)
			})
		},
	}
	addLineFlags(setLineCmd)
	setLineCmd.Flags().String("field", "", "Field to change by name: description, qty or unit_price")
	setLineCmd.Flags().String("value", "", "New value for --field")

	removeLineCmd := &cobra.Command{
		Use:   "remove-line ID INDEX",
		Short: "Remove one line and save",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid line index %q", args[1])
			}
			a, err := authed(cmd)
			if err != nil {
				return err
			}
			return a.editAndSave(d.kind, args[0], func(ed *editor.Editor) error {
				return ed.RemoveLineItem(index)
			})
		},
	}

	pdfCmd := &cobra.Command{
		Use:   "pdf ID",
		Short: fmt.Sprintf("Download a %s as PDF into the output directory", noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := authed(cmd)
			if err != nil {
				return err
			}
			return a.check(a.downloadPDF(d, args[0]))
		},
	}

	root.AddCommand(listCmd, createCmd, deleteCmd, showCmd, editCmd, addLineCmd, setLineCmd, removeLineCmd, pdfCmd)

	switch d.kind {
	case editor.KindInvoice:
		root.AddCommand(paymentCommands()...)
	case editor.KindQuote:
		root.AddCommand(&cobra.Command{
			Use:   "convert ID",
			Short: "Turn a quote into a new invoice",
			Args:  cobra.ExactArgs(1),
			RunE:  runConvert,
		})
	}
	return root
}

func paymentCommands() []*cobra.Command {
	addCmd := &cobra.Command{
		Use:   "add-payment ID",
		Short: "Log a payment against an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := authed(cmd)
			if err != nil {
				return err
			}
			ed, err := a.loadEditor(editor.KindInvoice, args[0])
			if err != nil {
				return a.check(err)
			}
			amount, _ := cmd.Flags().GetString("amount")
			note, _ := cmd.Flags().GetString("note")
			if err := ed.AddPayment(amount, note); err != nil {
				return a.check(err)
			}
			return views.Document(os.Stdout, a.cfg.Currency, ed)
		},
	}
	addCmd.Flags().String("amount", "", "Amount paid")
	addCmd.Flags().String("note", "", "Optional note, e.g. deposit")
	_ = addCmd.MarkFlagRequired("amount")

	deleteCmd := &cobra.Command{
		Use:   "delete-payment ID PAYMENT_ID",
		Short: "Remove a logged payment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := authed(cmd)
			if err != nil {
				return err
			}
			ed, err := a.loadEditor(editor.KindInvoice, args[0])
			if err != nil {
				return a.check(err)
			}
			if err := ed.RequestDeletePayment(args[1]); err != nil {
				return err
			}
			pending, _ := ed.Pending()
			if yes, _ := cmd.Flags().GetBool("yes"); !yes && !confirm(pending.Prompt) {
				ed.Cancel()
				fmt.Println("Cancelled.")
				return nil
			}
			if err := ed.Confirm(); err != nil {
				return a.check(err)
			}
			return views.Document(os.Stdout, a.cfg.Currency, ed)
		},
	}
	deleteCmd.Flags().Bool("yes", false, "Do not ask for confirmation")

	return []*cobra.Command{addCmd, deleteCmd}
}

func runConvert(cmd *cobra.Command, args []string) error {
	a, err := authed(cmd)
	if err != nil {
		return err
	}
	ed, err := a.loadEditor(editor.KindQuote, args[0])
	if err != nil {
		return a.check(err)
	}
	invoice, err := ed.Convert()
	if err != nil {
		return a.check(err)
	}
	fmt.Printf("Converted to invoice %d (%s)\n", invoice.InvoiceNumber, invoice.ID)
	return nil
}

func addLineFlags(cmd *cobra.Command) {
	cmd.Flags().String("description", "", "Line description")
	cmd.Flags().String("qty", "", "Quantity")
	cmd.Flags().String("price", "", "Unit price")
}

// applyLineFlags copies the line flags that were set onto one line. --field
// and --value go last so they win over the named flags.
func applyLineFlags(cmd *cobra.Command, ed *editor.Editor, index int) error {
	fields := []struct {
		flag  string
		field editor.Field
	}{
		{"description", editor.FieldDescription},
		{"qty", editor.FieldQty},
		{"price", editor.FieldUnitPrice},
	}
	for _, f := range fields {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		value, _ := cmd.Flags().GetString(f.flag)
		if err := ed.UpdateLineItem(index, f.field, value); err != nil {
			return err
		}
	}

	if !cmd.Flags().Changed("field") {
		return nil
	}
	name, _ := cmd.Flags().GetString("field")
	field, err := editor.ParseField(name)
	if err != nil {
		return err
	}
	value, _ := cmd.Flags().GetString("value")
	return ed.UpdateLineItem(index, field, value)
}

// editAndSave loads a document, applies change, and saves it. A successful
// save prints the parent job the way the job view would show it.
func (a *app) editAndSave(kind editor.Kind, id string, change func(*editor.Editor) error) error {
	ed, err := a.loadEditor(kind, id)
	if err != nil {
		return a.check(err)
	}
	if err := change(ed); err != nil {
		return err
	}
	return a.check(ed.Save())
}

// loadEditor opens a non-interactive editor. Notices go to the log and
// navigation prints the job view.
func (a *app) loadEditor(kind editor.Kind, id string) (*editor.Editor, error) {
	nav := editor.NavigatorFunc(func(jobID string, tab editor.Tab) {
		if err := a.showJob(jobID, tab); err != nil {
			log.Printf("Could not show job %s: %v", jobID, err)
		}
	})
	ed := editor.New(kind, a.client, nav, a.notify)
	if err := ed.Load(id); err != nil {
		return nil, err
	}
	return ed, nil
}

func (a *app) runEditor(kind editor.Kind, id string) error {
	model, res, attach := tui.Open(kind, a.client, id, a.cfg.Currency)
	p := tea.NewProgram(model)
	attach(p)
	if _, err := p.Run(); err != nil {
		return err
	}
	if res.Navigated {
		return a.showJob(res.JobID, res.Tab)
	}
	return nil
}

func (a *app) downloadPDF(d docKind, id string) error {
	number := 0
	switch d.kind {
	case editor.KindInvoice:
		if inv, err := a.client.FetchInvoice(id); err == nil {
			number = inv.InvoiceNumber
		} else if errors.Is(err, api.ErrUnauthorized) {
			return err
		}
	case editor.KindQuote:
		if q, err := a.client.FetchQuote(id); err == nil {
			number = q.QuoteNumber
		} else if errors.Is(err, api.ErrUnauthorized) {
			return err
		}
	}

	filename := filepath.Join(a.cfg.OutDir, api.PDFFilename(d.pdfName, number, id))
	err := export.SavePDF(filename, func(id string) (io.ReadCloser, error) {
		return d.pdf(a.client, id)
	}, id)
	if err != nil {
		if d.softPDF && !errors.Is(err, api.ErrUnauthorized) {
			a.notify.Notify(editor.Notice{Kind: editor.NoticeSoft, Message: "PDF not available yet", Err: err})
			return nil
		}
		return err
	}
	fmt.Printf("Saved %s\n", filename)
	return nil
}
