// Package tui is an interactive terminal front end for the document editor.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rostved/sitebook/api"
	"github.com/rostved/sitebook/editor"
	"github.com/rostved/sitebook/views"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("25"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type mode int

const (
	modeBrowse mode = iota
	modeEditField
	modePaymentAmount
	modePaymentNote
	modeConfirm
)

type (
	loadedMsg    struct{ err error }
	savedMsg     struct{ err error }
	convertedMsg struct {
		invoice *api.Invoice
		err     error
	}
	paymentMsg struct{ err error }
	noticeMsg  editor.Notice
)

// Result tells the caller where the user ended up.
type Result struct {
	JobID     string
	Tab       editor.Tab
	Navigated bool
}

// Model is the bubbletea model wrapping one editor.
type Model struct {
	ed       *editor.Editor
	id       string
	currency string

	mode     mode
	row      int
	field    editor.Field
	payRow   int
	input    textinput.Model
	status   string
	statusOK bool
	working  bool
}

// New returns a model that loads the document on Init. The editor must have
// been built with the returned model's Navigator and Notifier, see Open.
func New(ed *editor.Editor, id, currency string) Model {
	in := textinput.New()
	in.CharLimit = 120
	return Model{ed: ed, id: id, currency: currency, input: in}
}

// Open wires an editor to a result holder and returns the model together
// with it. Notices reach the model through the program once it runs.
func Open(kind editor.Kind, svc editor.Service, id, currency string) (Model, *Result, func(*tea.Program)) {
	res := &Result{}
	var prog *tea.Program
	nav := editor.NavigatorFunc(func(jobID string, tab editor.Tab) {
		res.JobID, res.Tab, res.Navigated = jobID, tab, true
	})
	notify := editor.NotifierFunc(func(n editor.Notice) {
		if prog != nil {
			prog.Send(noticeMsg(n))
		}
	})
	m := New(editor.New(kind, svc, nav, notify), id, currency)
	return m, res, func(p *tea.Program) { prog = p }
}

func (m Model) Init() tea.Cmd {
	ed, id := m.ed, m.id
	return func() tea.Msg {
		return loadedMsg{ed.Load(id)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.working = false
		m.row, m.payRow = 0, 0
		m.report(msg.err, "Loaded")
		return m, nil
	case savedMsg:
		m.working = false
		if msg.err == nil {
			return m, tea.Quit
		}
		m.report(msg.err, "")
		return m, nil
	case convertedMsg:
		m.working = false
		if msg.err == nil {
			return m, tea.Quit
		}
		m.report(msg.err, "")
		return m, nil
	case paymentMsg:
		m.working = false
		m.report(msg.err, "Payments updated")
		m.clampPayRow()
		return m, nil
	case noticeMsg:
		m.setStatus(editor.Notice(msg).String(), msg.Kind == editor.NoticeInfo)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) setStatus(s string, ok bool) {
	m.status, m.statusOK = s, ok
}

// report shows err, or success when err is nil. A notice sent for the same
// failure may replace the text afterwards.
func (m *Model) report(err error, success string) {
	switch {
	case err != nil:
		m.setStatus(err.Error(), false)
	case success != "":
		m.setStatus(success, true)
	}
}

func (m *Model) clampRow() {
	n := len(m.ed.Items())
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m *Model) clampPayRow() {
	n := len(m.ed.Payments())
	if m.payRow >= n {
		m.payRow = n - 1
	}
	if m.payRow < 0 {
		m.payRow = 0
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.ed.Close()
		return m, tea.Quit
	}

	switch m.mode {
	case modeEditField, modePaymentAmount, modePaymentNote:
		return m.handleInput(msg)
	case modeConfirm:
		switch msg.String() {
		case "y", "Y":
			m.mode = modeBrowse
			m.working = true
			ed := m.ed
			return m, func() tea.Msg { return paymentMsg{ed.Confirm()} }
		default:
			m.ed.Cancel()
			m.mode = modeBrowse
			m.setStatus("Cancelled", true)
			return m, nil
		}
	}

	if m.working {
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.ed.Close()
		return m, tea.Quit
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(m.ed.Items())-1 {
			m.row++
		}
	case "tab", "right", "l":
		m.field = (m.field + 1) % 3
	case "shift+tab", "left", "h":
		m.field = (m.field + 2) % 3
	case "a":
		idx, err := m.ed.AddLineItem()
		if err != nil {
			m.setStatus(err.Error(), false)
			break
		}
		m.row, m.field = idx, editor.FieldDescription
		return m.startInput(modeEditField, "")
	case "d":
		if err := m.ed.RemoveLineItem(m.row); err != nil {
			m.setStatus(err.Error(), false)
		}
		m.clampRow()
	case "enter", "e":
		items := m.ed.Items()
		if m.row >= len(items) {
			break
		}
		return m.startInput(modeEditField, fieldValue(items[m.row], m.field))
	case "s":
		m.working = true
		ed := m.ed
		m.setStatus("Saving…", true)
		return m, func() tea.Msg { return savedMsg{ed.Save()} }
	case "c":
		if m.ed.Kind() != editor.KindQuote {
			break
		}
		m.working = true
		ed := m.ed
		m.setStatus("Converting…", true)
		return m, func() tea.Msg {
			inv, err := ed.Convert()
			return convertedMsg{inv, err}
		}
	case "p":
		if m.ed.Kind() != editor.KindInvoice {
			break
		}
		amount, _ := m.ed.PaymentDraft()
		return m.startInput(modePaymentAmount, amount)
	case "[":
		if m.payRow > 0 {
			m.payRow--
		}
	case "]":
		if m.payRow < len(m.ed.Payments())-1 {
			m.payRow++
		}
	case "x":
		payments := m.ed.Payments()
		if m.ed.Kind() != editor.KindInvoice || m.payRow >= len(payments) {
			break
		}
		if err := m.ed.RequestDeletePayment(payments[m.payRow].ID); err != nil {
			m.setStatus(err.Error(), false)
			break
		}
		m.mode = modeConfirm
	case "r":
		m.working = true
		ed, id := m.ed, m.id
		return m, func() tea.Msg { return loadedMsg{ed.Load(id)} }
	}
	return m, nil
}

func fieldValue(item api.LineItem, f editor.Field) string {
	switch f {
	case editor.FieldQty:
		return item.Qty.String()
	case editor.FieldUnitPrice:
		return item.UnitPrice.String()
	}
	return item.Description
}

func (m Model) startInput(md mode, value string) (tea.Model, tea.Cmd) {
	m.mode = md
	m.input.SetValue(value)
	m.input.CursorEnd()
	switch md {
	case modeEditField:
		m.input.Placeholder = m.field.String()
	case modePaymentAmount:
		m.input.Placeholder = "Amount"
	case modePaymentNote:
		m.input.Placeholder = "Note (optional)"
	}
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.mode = modeBrowse
		return m, nil
	case tea.KeyEnter:
		value := m.input.Value()
		m.input.Blur()
		switch m.mode {
		case modeEditField:
			m.mode = modeBrowse
			if err := m.ed.UpdateLineItem(m.row, m.field, value); err != nil {
				m.setStatus(err.Error(), false)
			}
			return m, nil
		case modePaymentAmount:
			_, note := m.ed.PaymentDraft()
			_ = m.ed.SetPaymentDraft(value, note)
			return m.startInput(modePaymentNote, note)
		case modePaymentNote:
			m.mode = modeBrowse
			amount, _ := m.ed.PaymentDraft()
			_ = m.ed.SetPaymentDraft(amount, value)
			m.working = true
			ed := m.ed
			return m, func() tea.Msg { return paymentMsg{ed.SubmitPayment()} }
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder

	title := " " + m.ed.Kind().Title()
	if n := m.ed.Number(); n > 0 {
		title += fmt.Sprintf(" #%d", n)
	}
	b.WriteString(titleStyle.Render(title+" ") + "\n\n")

	switch m.ed.State() {
	case editor.StateLoading:
		b.WriteString("  Loading…\n")
		return b.String()
	case editor.StateFailed:
		b.WriteString(errorStyle.Render("  "+m.status) + "\n\n")
		b.WriteString(helpStyle.Render("  r reload • q quit") + "\n")
		return b.String()
	}

	b.WriteString(boxStyle.Render(m.renderItems()) + "\n")
	if m.ed.Kind() == editor.KindInvoice {
		b.WriteString(boxStyle.Render(m.renderPayments()) + "\n")
	}
	b.WriteString(m.renderTotals() + "\n")

	switch m.mode {
	case modeEditField, modePaymentAmount, modePaymentNote:
		b.WriteString("  " + m.input.View() + "\n")
	case modeConfirm:
		if c, ok := m.ed.Pending(); ok {
			b.WriteString("  " + c.Prompt + " (y/n)\n")
		}
	}

	if m.status != "" {
		style := errorStyle
		if m.statusOK {
			style = successStyle
		}
		b.WriteString("  " + style.Render(m.status) + "\n")
	}
	b.WriteString(helpStyle.Render("  "+m.help()) + "\n")
	return b.String()
}

func (m Model) renderItems() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-3s %-32s %8s %14s %14s\n", "#", "Description", "Qty", "Unit Price", "Total"))
	for i, item := range m.ed.Items() {
		cells := []string{
			fmt.Sprintf("%-32s", truncate(item.Description, 32)),
			fmt.Sprintf("%8s", item.Qty.String()),
			fmt.Sprintf("%14s", views.Money(m.currency, item.UnitPrice)),
		}
		if i == m.row {
			cells[m.field] = selectedStyle.Render(cells[m.field])
		}
		marker := " "
		if i == m.row {
			marker = ">"
		}
		b.WriteString(fmt.Sprintf("%s%-2d %s %s %s %14s\n", marker, i, cells[0], cells[1], cells[2],
			views.Money(m.currency, editor.LineTotal(item))))
	}
	return b.String()
}

func (m Model) renderPayments() string {
	var b strings.Builder
	b.WriteString("Payments\n")
	payments := m.ed.Payments()
	if len(payments) == 0 {
		b.WriteString(helpStyle.Render("No payments yet") + "\n")
	}
	for i, p := range payments {
		line := fmt.Sprintf("%-12s %14s  %s", views.Date(p.PaymentDate), views.Money(m.currency, p.Amount), p.Note)
		if i == m.payRow {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderTotals() string {
	t := m.ed.Totals()
	if m.ed.Kind() == editor.KindQuote {
		return fmt.Sprintf("  Quote Total: %s\n", views.Money(m.currency, t.Total))
	}
	return fmt.Sprintf("  Total: %s\n  Paid: %s\n  Outstanding: %s\n",
		views.Money(m.currency, t.Total), views.Money(m.currency, t.Paid), views.Money(m.currency, t.Outstanding))
}

func (m Model) help() string {
	keys := []string{"↑/↓ row", "tab field", "enter edit", "a add", "d remove", "s save"}
	if m.ed.Kind() == editor.KindQuote {
		keys = append(keys, "c convert")
	} else {
		keys = append(keys, "p payment", "[/] pick payment", "x delete payment")
	}
	return strings.Join(append(keys, "q quit"), " • ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
