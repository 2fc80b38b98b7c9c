// Package apitest runs an in-memory stand-in for the contractor REST service.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rostved/sitebook/api"
)

const (
	Email    = "owner@example.com"
	Password = "secret"
	Token    = "test-token"
)

// Call records one request the server received.
type Call struct {
	Method string
	Path   string
	Body   string
}

type invoice struct {
	api.InvoiceDetail
	CreatedAt string
}

type quote struct {
	api.QuoteDetail
	CreatedAt string
}

// Server holds all state behind a mutex; tests seed it through the exported
// helpers and inspect it through Calls.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	calls     []Call
	customers []api.Customer
	jobs      map[string]*api.JobDetail
	jobOrder  []string
	invoices  map[string]*invoice
	quotes    map[string]*quote
	nextNum   int

	fail  map[string]int
	noPDF bool
}

func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		jobs:     make(map[string]*api.JobDetail),
		invoices: make(map[string]*invoice),
		quotes:   make(map[string]*quote),
		nextNum:  1000,
		fail:     make(map[string]int),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// Client returns an api client already holding a valid token.
func (s *Server) Client() *api.Client {
	c := api.NewClient(s.URL, 0)
	c.SetToken(Token)
	return c
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Post("/auth/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/clients", s.listCustomers)
		r.Post("/clients", s.createCustomer)
		r.Get("/jobs", s.listJobs)
		r.Get("/jobs/{id}", s.getJob)
		r.Put("/jobs/{id}/status", s.setJobStatus)
		r.Get("/jobs/{id}/overview", s.jobOverview)
		r.Get("/dashboard/summary", s.dashboard)

		r.Get("/invoices", s.listInvoices)
		r.Post("/invoices", s.createInvoice)
		r.Get("/invoices/{id}", s.getInvoice)
		r.Put("/invoices/{id}", s.putInvoice)
		r.Delete("/invoices/{id}", s.deleteInvoice)
		r.Post("/invoices/{id}/payments", s.addPayment)
		r.Delete("/invoices/{id}/payments/{paymentID}", s.deletePayment)
		r.Get("/invoices/{id}/pdf", s.pdf)

		r.Get("/quotes", s.listQuotes)
		r.Post("/quotes", s.createQuote)
		r.Get("/quotes/{id}", s.getQuote)
		r.Put("/quotes/{id}", s.putQuote)
		r.Delete("/quotes/{id}", s.deleteQuote)
		r.Post("/quotes/{id}/convert", s.convertQuote)
		r.Get("/quotes/{id}/pdf", s.pdf)
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body json.RawMessage
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
			r.Body.Close()
		}
		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		code := s.fail[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if code != 0 {
			http.Error(w, "injected failure", code)
			return
		}
		r.Body = nopBody{strings.NewReader(string(body))}
		next.ServeHTTP(w, r)
	})
}

type nopBody struct{ *strings.Reader }

func (nopBody) Close() error { return nil }

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+Token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Calls returns a copy of every request received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo counts requests matching method and path.
func (s *Server) CallsTo(method, path string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// FailOn makes every later request for method and path answer with code.
// A zero code clears the failure.
func (s *Server) FailOn(method, path string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == 0 {
		delete(s.fail, method+" "+path)
		return
	}
	s.fail[method+" "+path] = code
}

// DisablePDF makes the PDF endpoints answer 404.
func (s *Server) DisablePDF() {
	s.mu.Lock()
	s.noPDF = true
	s.mu.Unlock()
}

// Seeding

func (s *Server) AddCustomer(name string) api.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := api.Customer{ID: uuid.NewString(), Name: name}
	s.customers = append(s.customers, c)
	return c
}

func (s *Server) AddJob(clientID, title string) api.JobDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	var clientName string
	for _, c := range s.customers {
		if c.ID == clientID {
			clientName = c.Name
		}
	}
	job := &api.JobDetail{
		Job: api.Job{
			ID:        uuid.NewString(),
			ClientID:  clientID,
			Title:     title,
			StartDate: "2026-01-05",
			Status:    api.JobOpen,
			CreatedAt: "2026-01-05T08:00:00Z",
		},
		ClientName: clientName,
	}
	s.jobs[job.ID] = job
	s.jobOrder = append(s.jobOrder, job.ID)
	return *job
}

func (s *Server) AddInvoice(jobID string, items []api.LineItem, payments ...api.Payment) api.InvoiceDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addInvoiceLocked(jobID, items, payments)
}

func (s *Server) addInvoiceLocked(jobID string, items []api.LineItem, payments []api.Payment) api.InvoiceDetail {
	s.nextNum++
	inv := &invoice{
		InvoiceDetail: api.InvoiceDetail{
			ID:            uuid.NewString(),
			InvoiceNumber: s.nextNum,
			JobID:         jobID,
			LineItems:     append([]api.LineItem{}, items...),
			Payments:      append([]api.Payment{}, payments...),
		},
		CreatedAt: "2026-02-01T09:00:00Z",
	}
	s.invoices[inv.ID] = inv
	return inv.InvoiceDetail
}

func (s *Server) AddQuote(jobID string, items []api.LineItem) api.QuoteDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextNum++
	q := &quote{
		QuoteDetail: api.QuoteDetail{
			ID:          uuid.NewString(),
			QuoteNumber: s.nextNum,
			JobID:       jobID,
			LineItems:   append([]api.LineItem{}, items...),
		},
		CreatedAt: "2026-01-20T09:00:00Z",
	}
	s.quotes[q.ID] = q
	return q.QuoteDetail
}

// Invoice returns the stored invoice, if any.
func (s *Server) Invoice(id string) (api.InvoiceDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return api.InvoiceDetail{}, false
	}
	return inv.InvoiceDetail, true
}

// Quote returns the stored quote, if any.
func (s *Server) Quote(id string) (api.QuoteDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[id]
	if !ok {
		return api.QuoteDetail{}, false
	}
	return q.QuoteDetail, true
}

// Handlers

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(r, &in) || in.Email != Email || in.Password != Password {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": Token})
}

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]api.Customer{}, s.customers...))
}

func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	var in api.CustomerInput
	if !decode(r, &in) || in.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := api.Customer{ID: uuid.NewString(), Name: in.Name, Address: in.Address, Phone: in.Phone}
	s.customers = append(s.customers, c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := []api.Job{}
	for _, id := range s.jobOrder {
		if j := s.jobs[id]; j.ClientID == clientID {
			jobs = append(jobs, j.Job)
		}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[chi.URLParam(r, "id")]
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) setJobStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status api.JobStatus `json:"status"`
	}
	if !decode(r, &in) || (in.Status != api.JobOpen && in.Status != api.JobCompleted) {
		http.Error(w, "bad status", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[chi.URLParam(r, "id")]
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	job.Status = in.Status
	writeJSON(w, http.StatusOK, job.Job)
}

func documentTotal(items []api.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Qty.Mul(it.UnitPrice))
	}
	return total.Round(2)
}

func paymentsTotal(payments []api.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

func (s *Server) jobOverview(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	var o api.JobOverview
	for _, inv := range s.invoices {
		if inv.JobID == jobID {
			o.TotalInvoiced = o.TotalInvoiced.Add(documentTotal(inv.LineItems))
			o.TotalPaid = o.TotalPaid.Add(paymentsTotal(inv.Payments))
		}
	}
	for _, q := range s.quotes {
		if q.JobID == jobID {
			o.TotalQuoted = o.TotalQuoted.Add(documentTotal(q.LineItems))
			o.QuotesCount++
		}
	}
	o.Outstanding = o.TotalInvoiced.Sub(o.TotalPaid)
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var d api.DashboardSummary
	for _, inv := range s.invoices {
		d.OutstandingBalance = d.OutstandingBalance.Add(documentTotal(inv.LineItems).Sub(paymentsTotal(inv.Payments)))
	}
	for _, q := range s.quotes {
		d.QuotedPipeline = d.QuotedPipeline.Add(documentTotal(q.LineItems))
		d.QuotesCount++
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) listInvoices(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []api.Invoice{}
	for _, inv := range s.invoices {
		if inv.JobID == jobID {
			list = append(list, api.Invoice{
				ID:            inv.ID,
				InvoiceNumber: inv.InvoiceNumber,
				Total:         documentTotal(inv.LineItems),
				CreatedAt:     inv.CreatedAt,
			})
		}
	}
	writeJSON(w, http.StatusOK, list)
}

type createDocument struct {
	JobID     string         `json:"job_id"`
	LineItems []api.LineItem `json:"line_items"`
}

func (s *Server) createInvoice(w http.ResponseWriter, r *http.Request) {
	var in createDocument
	if !decode(r, &in) || in.JobID == "" {
		http.Error(w, "job_id required", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := s.addInvoiceLocked(in.JobID, in.LineItems, nil)
	writeJSON(w, http.StatusCreated, api.Invoice{ID: inv.ID, InvoiceNumber: inv.InvoiceNumber, Total: documentTotal(inv.LineItems)})
}

func (s *Server) getInvoice(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[chi.URLParam(r, "id")]
	if !ok {
		http.Error(w, "invoice not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, inv.InvoiceDetail)
}

func (s *Server) putInvoice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		LineItems []api.LineItem `json:"line_items"`
	}
	if !decode(r, &in) {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[chi.URLParam(r, "id")]
	if !ok {
		http.Error(w, "invoice not found", http.StatusNotFound)
		return
	}
	inv.LineItems = in.LineItems
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	if _, ok := s.invoices[id]; !ok {
		http.Error(w, "invoice not found", http.StatusNotFound)
		return
	}
	delete(s.invoices, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addPayment(w http.ResponseWriter, r *http.Request) {
	var in api.PaymentInput
	if !decode(r, &in) || !in.Amount.IsPositive() {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[chi.URLParam(r, "id")]
	if !ok {
		http.Error(w, "invoice not found", http.StatusNotFound)
		return
	}
	p := api.Payment{ID: uuid.NewString(), Amount: in.Amount, PaymentDate: "2026-03-01", Note: in.Note}
	inv.Payments = append(inv.Payments, p)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) deletePayment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[chi.URLParam(r, "id")]
	if !ok {
		http.Error(w, "invoice not found", http.StatusNotFound)
		return
	}
	paymentID := chi.URLParam(r, "paymentID")
	for i, p := range inv.Payments {
		if p.ID == paymentID {
			inv.Payments = append(inv.Payments[:i], inv.Payments[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.Error(w, "payment not found", http.StatusNotFound)
}

func (s *Server) listQuotes(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []api.Quote{}
	for _, q := range s.quotes {
		if q.JobID == jobID {
			list = append(list, api.Quote{ID: q.ID, QuoteNumber: q.QuoteNumber, CreatedAt: q.CreatedAt})
		}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createQuote(w http.ResponseWriter, r *http.Request) {
	var in createDocument
	if !decode(r, &in) || in.JobID == "" {
		http.Error(w, "job_id required", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextNum++
	q := &quote{
		QuoteDetail: api.QuoteDetail{ID: uuid.NewString(), QuoteNumber: s.nextNum, JobID: in.JobID, LineItems: in.LineItems},
		CreatedAt:   "2026-01-20T09:00:00Z",
	}
	s.quotes[q.ID] = q
	writeJSON(w, http.StatusCreated, api.Quote{ID: q.ID, QuoteNumber: q.QuoteNumber, CreatedAt: q.CreatedAt})
}

func (s *Server) getQuote(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[chi.URLParam(r, "id")]
	if !ok {
		http.Error(w, "quote not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, q.QuoteDetail)
}

func (s *Server) putQuote(w http.ResponseWriter, r *http.Request) {
	var in struct {
		LineItems []api.LineItem `json:"line_items"`
	}
	if !decode(r, &in) {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[chi.URLParam(r, "id")]
	if !ok {
		http.Error(w, "quote not found", http.StatusNotFound)
		return
	}
	q.LineItems = in.LineItems
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteQuote(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	if _, ok := s.quotes[id]; !ok {
		http.Error(w, "quote not found", http.StatusNotFound)
		return
	}
	delete(s.quotes, id)
	w.WriteHeader(http.StatusNoContent)
}

// convertQuote removes the quote, so its id no longer resolves.
func (s *Server) convertQuote(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	q, ok := s.quotes[id]
	if !ok {
		http.Error(w, "quote not found", http.StatusNotFound)
		return
	}
	delete(s.quotes, id)
	inv := s.addInvoiceLocked(q.JobID, q.LineItems, nil)
	writeJSON(w, http.StatusCreated, api.Invoice{ID: inv.ID, InvoiceNumber: inv.InvoiceNumber, Total: documentTotal(inv.LineItems)})
}

func (s *Server) pdf(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	noPDF := s.noPDF
	s.mu.Unlock()
	if noPDF {
		http.Error(w, "pdf not available", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	_, _ = w.Write([]byte("%PDF-1.4 " + chi.URLParam(r, "id")))
}
