package tui

import (
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/rostved/sitebook/api"
	"github.com/rostved/sitebook/editor"
	"github.com/rostved/sitebook/internal/apitest"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// settle runs cmd and feeds editor results back into the model, the way the
// program loop would. Any other message is returned to the caller.
func settle(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Msg) {
	t.Helper()
	if cmd == nil {
		return m, nil
	}
	out := cmd()
	switch out.(type) {
	case loadedMsg, savedMsg, convertedMsg, paymentMsg:
		m, cmd = send(t, m, out)
		return settle(t, m, cmd)
	}
	return m, out
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m, _ = send(t, m, key(k))
	}
	return m
}

func start(t *testing.T, srv *apitest.Server, kind editor.Kind, id string) (Model, *Result) {
	t.Helper()
	m, res, _ := Open(kind, srv.Client(), id, "R")
	m, _ = settle(t, m, m.Init())
	if m.ed.State() != editor.StateReady {
		t.Fatalf("State after load = %s, status %q", m.ed.State(), m.status)
	}
	return m, res
}

func TestEditPayAndSave(t *testing.T) {
	srv := apitest.New(t)
	inv := srv.AddInvoice("job-1", []api.LineItem{{Description: "Labour", Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(250)}})
	m, res := start(t, srv, editor.KindInvoice, inv.ID)

	m = press(t, m, "a")
	if m.mode != modeEditField || m.row != 1 {
		t.Fatalf("mode, row after add = %d, %d", m.mode, m.row)
	}
	m = press(t, m, "Paint", "enter")
	if got := m.ed.Items()[1].Description; got != "Paint" {
		t.Errorf("new line description = %q, want Paint", got)
	}

	m = press(t, m, "p", "100", "enter")
	if m.mode != modePaymentNote {
		t.Fatalf("mode after amount = %d, want note", m.mode)
	}
	m = press(t, m, "deposit")
	m, cmd := send(t, m, key("enter"))
	m, _ = settle(t, m, cmd)
	if m.working {
		t.Error("still working after payment")
	}
	payments := m.ed.Payments()
	if len(payments) != 1 || payments[0].Note != "deposit" {
		t.Fatalf("payments = %+v", payments)
	}
	if got := m.ed.Totals().Outstanding; !got.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Outstanding = %s, want 150", got)
	}
	if view := m.View(); !strings.Contains(view, "R 150.00") {
		t.Errorf("view does not show outstanding:\n%s", view)
	}

	m, cmd = send(t, m, key("s"))
	if _, out := settle(t, m, cmd); out != tea.Quit() {
		t.Errorf("after save got %T, want tea.QuitMsg", out)
	}
	if !res.Navigated || res.JobID != "job-1" || res.Tab != editor.TabInvoices {
		t.Errorf("Result = %+v", res)
	}
}

func TestSaveRejectedStaysOpen(t *testing.T) {
	srv := apitest.New(t)
	q := srv.AddQuote("job-1", []api.LineItem{{Description: "Labour", Qty: decimal.NewFromInt(1)}})
	m, res := start(t, srv, editor.KindQuote, q.ID)

	m = press(t, m, "d")
	m, cmd := send(t, m, key("s"))
	m, out := settle(t, m, cmd)
	if out != nil {
		t.Errorf("save with no lines produced %T", out)
	}
	if res.Navigated {
		t.Error("navigated after rejected save")
	}
	if m.status == "" || m.statusOK {
		t.Errorf("status = %q ok=%v, want an error", m.status, m.statusOK)
	}
	if n := srv.CallsTo(http.MethodPut, "/quotes/"+q.ID); n != 0 {
		t.Errorf("PUT calls = %d, want 0", n)
	}
}

func TestDeletePaymentConfirm(t *testing.T) {
	srv := apitest.New(t)
	inv := srv.AddInvoice("job-1", []api.LineItem{{Description: "Labour", Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(250)}},
		api.Payment{ID: "p1", Amount: decimal.NewFromInt(50), PaymentDate: "2026-02-02"})
	m, _ := start(t, srv, editor.KindInvoice, inv.ID)
	deletePath := "/invoices/" + inv.ID + "/payments/p1"

	m = press(t, m, "x")
	if m.mode != modeConfirm {
		t.Fatalf("mode = %d, want confirm", m.mode)
	}
	if !strings.Contains(m.View(), "(y/n)") {
		t.Error("confirmation prompt not shown")
	}
	m = press(t, m, "n")
	if n := srv.CallsTo(http.MethodDelete, deletePath); n != 0 {
		t.Errorf("DELETE after cancel = %d, want 0", n)
	}

	m = press(t, m, "x")
	m, cmd := send(t, m, key("y"))
	m, _ = settle(t, m, cmd)
	if n := srv.CallsTo(http.MethodDelete, deletePath); n != 1 {
		t.Errorf("DELETE calls = %d, want 1", n)
	}
	if len(m.ed.Payments()) != 0 {
		t.Errorf("payments = %+v, want none", m.ed.Payments())
	}
}

func TestConvertQuits(t *testing.T) {
	srv := apitest.New(t)
	q := srv.AddQuote("job-7", []api.LineItem{{Description: "Labour", Qty: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50)}})
	m, res := start(t, srv, editor.KindQuote, q.ID)

	m, cmd := send(t, m, key("c"))
	if _, out := settle(t, m, cmd); out != tea.Quit() {
		t.Errorf("after convert got %T, want tea.QuitMsg", out)
	}
	if !res.Navigated || res.Tab != editor.TabInvoices || res.JobID != "job-7" {
		t.Errorf("Result = %+v", res)
	}
}

func TestLoadFailureView(t *testing.T) {
	srv := apitest.New(t)
	m, _, _ := Open(editor.KindInvoice, srv.Client(), "missing", "R")
	m, _ = settle(t, m, m.Init())

	if m.ed.State() != editor.StateFailed {
		t.Fatalf("State = %s, want failed", m.ed.State())
	}
	if view := m.View(); !strings.Contains(view, "r reload") {
		t.Errorf("failed view lacks reload hint:\n%s", view)
	}
}
