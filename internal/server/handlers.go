package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tutorlink/walletview/internal/key"
	"github.com/tutorlink/walletview/internal/logger"
	"github.com/tutorlink/walletview/internal/model"
	"github.com/tutorlink/walletview/internal/view"
)

type entryResponse struct {
	Key           string           `json:"key"`
	ID            string           `json:"id"`
	Category      model.Category   `json:"category"`
	Source        model.SourceKind `json:"source"`
	Description   string           `json:"description"`
	Timestamp     *time.Time       `json:"timestamp"`
	Amount        decimal.Decimal  `json:"amount"`
	SignedAmount  decimal.Decimal  `json:"signedAmount"`
	BalanceBefore decimal.Decimal  `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal  `json:"balanceAfter"`
	Clamped       bool             `json:"clamped"`
}

type transactionsResponse struct {
	Items             []entryResponse `json:"items"`
	Page              int             `json:"page"`
	PageSize          int             `json:"pageSize"`
	TotalPages        int             `json:"totalPages"`
	Count             int             `json:"count"`
	IncomeTotal       decimal.Decimal `json:"incomeTotal"`
	ExpenseTotal      decimal.Decimal `json:"expenseTotal"`
	TotalSignedAmount decimal.Decimal `json:"totalSignedAmount"`
	Balance           decimal.Decimal `json:"balance"`
	BalanceKnown      bool            `json:"balanceKnown"`
}

type statusResponse struct {
	IsRefreshing bool       `json:"isRefreshing"`
	PassID       string     `json:"passId,omitempty"`
	FetchedAt    *time.Time `json:"fetchedAt"`
	BalanceKnown bool       `json:"balanceKnown"`
	Failed       []string   `json:"failedSources"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "walletview",
	})
}

// handleTransactions serves GET /api/wallet/transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := view.Filter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Flow:     view.Flow(q.Get("flow")),
		DateFrom: q.Get("from"),
		DateTo:   q.Get("to"),
	}

	page := 1
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "page must be an integer")
			return
		}
		page = n
	}

	pg, err := s.wallet.View(f, page)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Debug().Err(err).Msg("Rejected filter")
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap := s.wallet.Snapshot()

	resp := transactionsResponse{
		Items:             make([]entryResponse, 0, len(pg.Items)),
		Page:              pg.Number,
		PageSize:          pg.Size,
		TotalPages:        pg.TotalPages,
		Count:             pg.Summary.Count,
		IncomeTotal:       pg.Summary.IncomeTotal,
		ExpenseTotal:      pg.Summary.ExpenseTotal,
		TotalSignedAmount: pg.Summary.TotalSignedAmount,
		Balance:           snap.Balance,
		BalanceKnown:      snap.BalanceKnown,
	}
	for _, e := range pg.Items {
		resp.Items = append(resp.Items, toEntryResponse(e))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleTransaction serves GET /api/wallet/transactions/{key}, where key is
// a source-qualified ID such as "ledger:abc123".
func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	kind, id, err := key.ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, e := range s.wallet.Snapshot().Entries {
		if e.SourceKind == kind && e.ID == id {
			s.writeJSON(w, http.StatusOK, toEntryResponse(e))
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "transaction not found")
}

// handleRefresh serves POST /api/wallet/refresh. It runs the pass in the
// request and reports false when a pass was already in flight.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	refreshed := s.wallet.Refresh(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]bool{"refreshed": refreshed})
}

// handleAutoRefresh serves PUT /api/wallet/auto-refresh with a body of
// {"enabled": bool}.
func (s *Server) handleAutoRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		s.writeError(w, http.StatusBadRequest, `expected {"enabled": true|false}`)
		return
	}
	s.wallet.SetAutoRefresh(*req.Enabled)
	s.writeJSON(w, http.StatusOK, map[string]bool{"enabled": *req.Enabled})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.wallet.Snapshot()
	resp := statusResponse{
		IsRefreshing: s.wallet.IsRefreshing(),
		BalanceKnown: snap.BalanceKnown,
		Failed:       snap.Failed,
	}
	if !snap.FetchedAt.IsZero() {
		resp.PassID = snap.PassID.String()
		resp.FetchedAt = &snap.FetchedAt
	}
	if resp.Failed == nil {
		resp.Failed = []string{}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func toEntryResponse(e model.Entry) entryResponse {
	out := entryResponse{
		Key:           key.Of(e.Transaction),
		ID:            e.ID,
		Category:      e.Category,
		Source:        e.SourceKind,
		Description:   e.Description,
		Amount:        e.Amount,
		SignedAmount:  e.SignedAmount,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		Clamped:       e.Clamped,
	}
	if !e.Timestamp.IsZero() {
		ts := e.Timestamp
		out.Timestamp = &ts
	}
	return out
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
