// Package dashboard provides the HTTP handlers for browsing accounts, their
// derived performance and trade statistics, and for admin edits.
//
// All monetary values use shopspring/decimal, never float64.
package dashboard

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fxdash/dashboard/internal/admin"
	"github.com/fxdash/dashboard/internal/metrics"
	"github.com/fxdash/dashboard/internal/model"
	"github.com/fxdash/dashboard/internal/performance"
	"github.com/fxdash/dashboard/internal/store"
	"github.com/fxdash/dashboard/internal/synth"
	"github.com/fxdash/dashboard/internal/tradestats"
)

// AdminPasswordHeader carries the admin password on command requests.
const AdminPasswordHeader = "X-Admin-Password"

// maxBodyBytes bounds request bodies; a full dataset upload is the largest.
const maxBodyBytes = 32 << 20

// Options configures a Service.
type Options struct {
	AdminPassword string

	// SynthTrades fills empty trade logs with generated trades on read.
	SynthTrades bool
	SynthSeed   uint64

	// Now stamps command defaults; time.Now when nil.
	Now func() time.Time
}

// Service holds the loaded dataset. Reads compute on a deep copy taken under
// the read lock; edits and saves run under the write lock, so every derived
// view matches the dataset as it was when it was computed.
type Service struct {
	store store.Store
	hub   *WSHub // optional WebSocket hub for change notifications
	opts  Options

	mu sync.RWMutex
	ds *model.Dataset
}

// NewService creates a dashboard service over st.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(st store.Store, hub *WSHub, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store: st,
		hub:   hub,
		opts:  opts,
		ds:    &model.Dataset{Accounts: []model.Account{}},
	}
}

// Load replaces the in-memory dataset with the store's document.
func (s *Service) Load(ctx context.Context) error {
	ds, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	s.mu.Lock()
	s.ds = ds
	s.mu.Unlock()
	metrics.Accounts.Set(float64(len(ds.Accounts)))
	return nil
}

// Snapshot returns a deep copy of the current dataset.
func (s *Service) Snapshot() *model.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds.Clone()
}

// --- Request/Response types ---

// StatsResponse is the body of GET /api/v1/accounts/{index}/stats.
type StatsResponse struct {
	Trades    tradestats.TradeStats    `json:"trades"`
	Advanced  tradestats.AdvancedStats `json:"advanced"`
	Synthetic bool                     `json:"synthetic"`
}

// LoginRequest is the JSON body for POST /api/v1/admin/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// CommandResponse is the JSON body returned from POST /api/v1/admin/commands.
type CommandResponse struct {
	Applied bool   `json:"applied"`
	Saved   bool   `json:"saved"`
	Reason  string `json:"reason,omitempty"`
	Account int    `json:"account"`
	Summary string `json:"summary"`
}

// SaveResponse is the body of POST /save-data.
type SaveResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// --- HTTP Handlers ---

// GetDataset handles GET /data/accounts.json
func (s *Service) GetDataset(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, s.Snapshot())
}

// SaveDataset handles POST /save-data
// Replaces the whole dataset. The in-memory copy only changes once the
// store has accepted the document.
func (s *Service) SaveDataset(w http.ResponseWriter, r *http.Request) {
	var ds model.Dataset
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&ds); err != nil {
		writeStatus(w, SaveResponse{Error: "invalid dataset: " + err.Error()}, http.StatusBadRequest)
		return
	}
	if ds.Accounts == nil {
		ds.Accounts = []model.Account{}
	}

	s.mu.Lock()
	err := s.persist(r.Context(), &ds)
	if err == nil {
		s.ds = ds.Clone()
	}
	n := len(s.ds.Accounts)
	s.mu.Unlock()

	if err != nil {
		slog.Error("dataset save failed", "err", err)
		writeStatus(w, SaveResponse{Error: err.Error()}, http.StatusInternalServerError)
		return
	}

	slog.Info("dataset replaced", "accounts", n)
	metrics.Accounts.Set(float64(n))
	s.broadcast("save", nil, n)
	writeJSON(w, SaveResponse{Success: true})
}

// ListAccounts handles GET /api/v1/accounts
func (s *Service) ListAccounts(w http.ResponseWriter, r *http.Request) {
	ds := s.Snapshot()
	out := make([]performance.AccountSummary, 0, len(ds.Accounts))
	for i, acc := range ds.Accounts {
		out = append(out, performance.Summarize(i, acc))
	}
	writeJSON(w, out)
}

// GetAccount handles GET /api/v1/accounts/{index}
func (s *Service) GetAccount(w http.ResponseWriter, r *http.Request) {
	acc, _, ok := s.accountFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, acc)
}

// GetMetrics handles GET /api/v1/accounts/{index}/metrics
func (s *Service) GetMetrics(w http.ResponseWriter, r *http.Request) {
	acc, _, ok := s.accountFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, performance.ComputeMetrics(acc))
}

// GetSeries handles GET /api/v1/accounts/{index}/series
func (s *Service) GetSeries(w http.ResponseWriter, r *http.Request) {
	acc, _, ok := s.accountFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, performance.BuildAllSeries(acc))
}

// GetStats handles GET /api/v1/accounts/{index}/stats
// Admin overrides in stats.advanced take precedence over derived values.
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	acc, idx, ok := s.accountFromPath(w, r)
	if !ok {
		return
	}
	trades, synthetic := s.tradesFor(idx, acc)
	writeJSON(w, StatsResponse{
		Trades:    tradestats.ComputeTradeStats(trades),
		Advanced:  tradestats.Resolve(acc, trades),
		Synthetic: synthetic,
	})
}

// GetAnalytics handles GET /api/v1/accounts/{index}/analytics
func (s *Service) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	acc, idx, ok := s.accountFromPath(w, r)
	if !ok {
		return
	}
	trades, _ := s.tradesFor(idx, acc)
	writeJSON(w, tradestats.Analyze(trades))
}

// AdminLogin handles POST /api/v1/admin/login
func (s *Service) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !s.checkPassword(req.Password) {
		writeError(w, "invalid password", http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}

// ApplyCommand handles POST /api/v1/admin/commands
// Applies one edit and persists the dataset. A failed save is reported with
// saved=false; the edit stays applied in memory.
func (s *Service) ApplyCommand(w http.ResponseWriter, r *http.Request) {
	if !s.checkPassword(r.Header.Get(AdminPasswordHeader)) {
		writeError(w, "invalid password", http.StatusUnauthorized)
		return
	}

	var cmd admin.Command
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&cmd); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Serialize edits and saves.
	s.mu.Lock()
	change, err := admin.Apply(s.ds, cmd, s.opts.Now())
	if err != nil {
		s.mu.Unlock()
		metrics.CommandsTotal.WithLabelValues(cmd.Op, "rejected").Inc()
		writeError(w, err.Error(), commandErrorStatus(err))
		return
	}
	saveErr := s.persist(r.Context(), s.ds)
	n := len(s.ds.Accounts)
	s.mu.Unlock()

	metrics.CommandsTotal.WithLabelValues(cmd.Op, "applied").Inc()
	metrics.Accounts.Set(float64(n))

	resp := CommandResponse{
		Applied: true,
		Saved:   saveErr == nil,
		Account: change.Account,
		Summary: change.Summary,
	}
	if saveErr != nil {
		resp.Reason = saveErr.Error()
		slog.Error("command applied but not saved",
			"op", cmd.Op,
			"account", change.Account,
			"err", saveErr,
		)
	} else {
		slog.Info("command applied",
			"op", cmd.Op,
			"account", change.Account,
			"summary", change.Summary,
		)
	}

	account := change.Account
	s.broadcast(cmd.Op, &account, n)
	writeJSON(w, resp)
}

// --- Helpers ---

// persist saves ds to the store. Callers hold s.mu.
func (s *Service) persist(ctx context.Context, ds *model.Dataset) error {
	start := time.Now()
	err := s.store.Save(ctx, ds)
	metrics.SaveLatency.WithLabelValues("store").Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.SavesTotal.WithLabelValues("store", result).Inc()
	return err
}

// accountFromPath resolves the {index} URL parameter to a copy of the
// account, writing a 400 or 404 when it does not name one.
func (s *Service) accountFromPath(w http.ResponseWriter, r *http.Request) (model.Account, int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, "account index must be an integer", http.StatusBadRequest)
		return model.Account{}, 0, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx < 0 || idx >= len(s.ds.Accounts) {
		writeError(w, "account not found", http.StatusNotFound)
		return model.Account{}, 0, false
	}
	return s.ds.Accounts[idx].Clone(), idx, true
}

// tradesFor returns the account's trade log, or generated trades when the
// log is empty and synthetic trades are enabled. Generated trades are never
// written back to the dataset.
func (s *Service) tradesFor(idx int, acc model.Account) ([]model.Trade, bool) {
	if len(acc.Trades) > 0 || !s.opts.SynthTrades {
		return acc.Trades, false
	}
	// Seed per account so a profile looks the same on every request.
	return synth.NewGenerator(s.opts.SynthSeed + uint64(idx)).Generate(acc.Monthly), true
}

func (s *Service) checkPassword(got string) bool {
	if s.opts.AdminPassword == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.opts.AdminPassword)) == 1
}

func (s *Service) broadcast(op string, account *int, n int) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(WSMessage{
		Type:     MsgDatasetUpdated,
		Op:       op,
		Account:  account,
		Accounts: n,
	})
}

func commandErrorStatus(err error) int {
	switch {
	case errors.Is(err, admin.ErrAccountNotFound), errors.Is(err, admin.ErrIndexOutOfRange):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	writeStatus(w, v, http.StatusOK)
}

func writeStatus(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
