package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/srm-sim/internal/contracts"
	"github.com/wonny/srm-sim/internal/engine"
	"github.com/wonny/srm-sim/internal/export"
	"github.com/wonny/srm-sim/internal/realtime"
	"github.com/wonny/srm-sim/internal/sessions"
	"github.com/wonny/srm-sim/pkg/logger"
)

// SessionHandler exposes hosted game sessions over HTTP
// ⭐ SSOT: 세션 API 핸들러는 이 구조체에서만
type SessionHandler struct {
	store  *sessions.Store
	hub    *realtime.Hub
	logger *logger.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(store *sessions.Store, hub *realtime.Hub, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		store:  store,
		hub:    hub,
		logger: log,
	}
}

// SessionState is the dashboard view of one session
type SessionState struct {
	ID           string                    `json:"id"`
	Seed         int64                     `json:"seed"`
	Day          int                       `json:"day"`
	MaxDays      int                       `json:"max_days"`
	GameOver     bool                      `json:"game_over"`
	KPIs         contracts.KPISnapshot     `json:"kpis"`
	TodayDemand  int                       `json:"today_demand"`
	ShortageRisk bool                      `json:"shortage_risk"`
	Outstanding  float64                   `json:"outstanding"`
	Orders       []contracts.PurchaseOrder `json:"orders"`
	Invoices     []contracts.Invoice       `json:"invoices"`
}

func stateOf(s *engine.Session) SessionState {
	return SessionState{
		ID:           s.ID(),
		Seed:         s.Seed(),
		Day:          s.Day(),
		MaxDays:      s.MaxDays(),
		GameOver:     s.GameOver(),
		KPIs:         s.KPIs(),
		TodayDemand:  s.TodayDemand(),
		ShortageRisk: s.ShortageRisk(),
		Outstanding:  s.Outstanding(),
		Orders:       s.Orders(),
		Invoices:     s.Invoices(),
	}
}

// CreateSessionRequest optionally pins the seed
type CreateSessionRequest struct {
	Seed *int64 `json:"seed,omitempty"`
}

// Create starts a new session
// POST /api/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	var opts []engine.Option
	if req.Seed != nil {
		opts = append(opts, engine.WithSeed(*req.Seed))
	}

	hosted, err := h.store.Create(opts...)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create session")
		respondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	var state SessionState
	_ = hosted.Do(func(s *engine.Session) error {
		state = stateOf(s)
		return nil
	})

	h.logger.WithFields(map[string]interface{}{
		"session": state.ID,
		"seed":    state.Seed,
	}).Info("Session created")

	respondJSON(w, http.StatusCreated, state)
}

// Get returns the dashboard state
// GET /api/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *engine.Session) {
		respondJSON(w, http.StatusOK, stateOf(s))
	})
}

// Delete ends a session
// DELETE /api/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(mux.Vars(r)["id"]); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Suppliers lists visible supplier terms
// GET /api/sessions/{id}/suppliers
func (h *SessionHandler) Suppliers(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *engine.Session) {
		respondJSON(w, http.StatusOK, s.Suppliers())
	})
}

// SupplierView returns performance stats derived from deliveries
// GET /api/sessions/{id}/suppliers/{supplier}
func (h *SessionHandler) SupplierView(w http.ResponseWriter, r *http.Request) {
	supplierID := contracts.SupplierID(mux.Vars(r)["supplier"])
	h.with(w, r, func(s *engine.Session) {
		stats, err := s.SupplierView(supplierID)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, stats)
	})
}

// PlaceOrderRequest is the procurement desk form
type PlaceOrderRequest struct {
	SupplierID contracts.SupplierID `json:"supplier_id"`
	Qty        int                  `json:"qty"`
	Committed  bool                 `json:"committed"`
}

// PlaceOrderResponse carries the new order id
type PlaceOrderResponse struct {
	OrderID contracts.OrderID `json:"order_id"`
}

// PlaceOrder creates a draft or committed order
// POST /api/sessions/{id}/orders
func (h *SessionHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.with(w, r, func(s *engine.Session) {
		id, err := s.PlaceOrder(req.SupplierID, req.Qty, req.Committed)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, PlaceOrderResponse{OrderID: id})
	})
}

// CountResponse reports how many items an operation touched
type CountResponse struct {
	Count int `json:"count"`
}

// CommitDrafts commits every pending draft
// POST /api/sessions/{id}/orders/commit
func (h *SessionHandler) CommitDrafts(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *engine.Session) {
		n, err := s.CommitDrafts()
		if err != nil {
			respondDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, CountResponse{Count: n})
	})
}

// CancelDrafts discards every pending draft
// DELETE /api/sessions/{id}/orders/drafts
func (h *SessionHandler) CancelDrafts(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *engine.Session) {
		n, err := s.CancelDrafts()
		if err != nil {
			respondDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, CountResponse{Count: n})
	})
}

// PayInvoice settles one invoice
// POST /api/sessions/{id}/invoices/{invoice}/pay
func (h *SessionHandler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := strconv.Atoi(mux.Vars(r)["invoice"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}

	h.with(w, r, func(s *engine.Session) {
		if err := s.PayInvoice(contracts.InvoiceID(invoiceID)); err != nil {
			respondDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, stateOf(s))
	})
}

// Advance plays one turn and pushes the report to stream subscribers
// POST /api/sessions/{id}/advance
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *engine.Session) {
		report, err := s.AdvanceTurn()
		if err != nil {
			respondDomainError(w, err)
			return
		}
		if h.hub != nil {
			h.hub.Publish(realtime.TurnEvent(s.ID(), report))
		}
		respondJSON(w, http.StatusOK, report)
	})
}

// History returns the KPI snapshot of every completed turn
// GET /api/sessions/{id}/history
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *engine.Session) {
		respondJSON(w, http.StatusOK, s.History())
	})
}

// Deliveries returns the delivery log
// GET /api/sessions/{id}/deliveries
func (h *SessionHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *engine.Session) {
		respondJSON(w, http.StatusOK, s.Deliveries())
	})
}

// Transactions downloads the delivery log as CSV
// GET /api/sessions/{id}/transactions.csv
func (h *SessionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *engine.Session) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="srm_transactions.csv"`)
		if err := export.WriteTransactions(w, s.ExportTransactions()); err != nil {
			h.logger.WithError(err).Warn("Failed to write transactions CSV")
		}
	})
}

// Stream upgrades to a websocket carrying turn reports
// GET /api/sessions/{id}/stream
func (h *SessionHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "Streaming is not enabled")
		return
	}
	id := mux.Vars(r)["id"]
	if _, err := h.store.Get(id); err != nil {
		respondDomainError(w, err)
		return
	}
	if err := h.hub.Serve(w, r, id); err != nil {
		h.logger.WithError(err).WithField("session", id).Debug("Stream ended")
	}
}

// with resolves the session, applies its rate limit and runs fn under its lock
func (h *SessionHandler) with(w http.ResponseWriter, r *http.Request, fn func(s *engine.Session)) {
	hosted, err := h.store.Get(mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !hosted.Allow() {
		respondError(w, http.StatusTooManyRequests, "Too many requests for this session")
		return
	}
	_ = hosted.Do(func(s *engine.Session) error {
		fn(s)
		return nil
	})
}
