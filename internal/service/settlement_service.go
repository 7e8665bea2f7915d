// Package service exposes the settlement engine and its obligation store
// over a JSON HTTP API.
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyup/tallyup/internal/metrics"
	"github.com/tallyup/tallyup/internal/models"
	"github.com/tallyup/tallyup/internal/netting"
	"github.com/tallyup/tallyup/internal/storage"
)

// SettlementService orchestrates the obligation store and the netting
// engine behind the HTTP endpoints.
type SettlementService struct {
	store storage.Store
}

// NewSettlementService creates a new SettlementService with the given
// storage backend.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store}
}

// Register mounts the service's routes on the mux.
func (s *SettlementService) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/settle", s.handleSettle)
	mux.HandleFunc("POST /v1/groups/{group_id}/obligations", s.handleCreateObligations)
	mux.HandleFunc("DELETE /v1/groups/{group_id}/obligations", s.handleDeleteObligations)
	mux.HandleFunc("GET /v1/groups/{group_id}/settlements", s.handleGroupSettlements)
	mux.HandleFunc("GET /v1/users/{user_id}/balances", s.handleUserBalances)
}

type obligationInput struct {
	DebtorID   string          `json:"debtor_id"`
	CreditorID string          `json:"creditor_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency,omitempty"`
	Note       string          `json:"note,omitempty"`
}

type settleRequest struct {
	Currency    string            `json:"currency"`
	Obligations []obligationInput `json:"obligations"`
}

type settleResponse struct {
	Currency     string              `json:"currency"`
	Transactions []models.Settlement `json:"transactions"`
}

type createObligationsRequest struct {
	Obligations []obligationInput `json:"obligations"`
}

type createObligationsResponse struct {
	GroupID string `json:"group_id"`
	Created int    `json:"created"`
}

type currencySettlement struct {
	Currency     string              `json:"currency"`
	Transactions []models.Settlement `json:"transactions"`
}

type groupSettlementsResponse struct {
	GroupID     string               `json:"group_id"`
	Settlements []currencySettlement `json:"settlements"`
}

type balanceEntry struct {
	UserID  string          `json:"user_id"`
	Amount  decimal.Decimal `json:"amount"`
	YouOwe  bool            `json:"you_owe"`
	OwesYou bool            `json:"owes_you"`
}

type userCurrencyBalances struct {
	Currency       string          `json:"currency"`
	Balances       []balanceEntry  `json:"balances"`
	TotalYouOwe    decimal.Decimal `json:"total_you_owe"`
	TotalOwedToYou decimal.Decimal `json:"total_owed_to_you"`
}

type userBalancesResponse struct {
	UserID   string                 `json:"user_id"`
	Balances []userCurrencyBalances `json:"balances"`
}

// handleSettle is the stateless entry point: obligations in, settlement
// instructions out, nothing touches storage. One currency per call.
func (s *SettlementService) handleSettle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Currency == "" {
		writeError(w, http.StatusBadRequest, errors.New("currency is required"))
		return
	}
	for i, in := range req.Obligations {
		if in.Currency != "" && in.Currency != req.Currency {
			writeError(w, http.StatusBadRequest,
				fmt.Errorf("obligation %d: currency %q does not match batch currency %q", i, in.Currency, req.Currency))
			return
		}
	}

	obligations, err := toNettingObligations(req.Obligations)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	transactions, err := runEngine(obligations)
	if err != nil {
		slog.Error("Settle failed", "currency", req.Currency, "error", err)
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, settleResponse{
		Currency:     req.Currency,
		Transactions: toSettlements(req.Currency, transactions),
	})
}

// handleCreateObligations records a batch of obligations for a group.
func (s *SettlementService) handleCreateObligations(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("group_id")

	var req createObligationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if len(req.Obligations) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("obligations must not be empty"))
		return
	}

	records := make([]*models.Obligation, 0, len(req.Obligations))
	for i, in := range req.Obligations {
		if err := validateInput(in); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("obligation %d: %w", i, err))
			return
		}
		if in.Currency == "" {
			writeError(w, http.StatusBadRequest, fmt.Errorf("obligation %d: currency is required", i))
			return
		}
		records = append(records, &models.Obligation{
			GroupID:    groupID,
			DebtorID:   in.DebtorID,
			CreditorID: in.CreditorID,
			Amount:     in.Amount,
			Currency:   in.Currency,
			Note:       in.Note,
		})
	}

	if err := s.store.CreateObligations(r.Context(), records); err != nil {
		slog.Error("CreateObligations failed", "group_id", groupID, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("failed to record obligations"))
		return
	}
	slog.Info("Obligations recorded", "group_id", groupID, "count", len(records))

	writeJSON(w, http.StatusCreated, createObligationsResponse{GroupID: groupID, Created: len(records)})
}

// handleDeleteObligations clears a group's ledger, e.g. after everyone has
// actually paid up.
func (s *SettlementService) handleDeleteObligations(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("group_id")

	if err := s.store.DeleteGroupObligations(r.Context(), groupID); err != nil {
		slog.Error("DeleteGroupObligations failed", "group_id", groupID, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("failed to delete obligations"))
		return
	}
	slog.Info("Obligations cleared", "group_id", groupID)

	w.WriteHeader(http.StatusNoContent)
}

// handleGroupSettlements loads a group's open obligations and computes the
// settlement plan, one engine run per currency.
func (s *SettlementService) handleGroupSettlements(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("group_id")

	records, err := s.store.ListGroupObligations(r.Context(), groupID)
	if err != nil {
		slog.Error("ListGroupObligations failed", "group_id", groupID, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("failed to load obligations"))
		return
	}

	settlements, err := settleByCurrency(records)
	if err != nil {
		slog.Error("Group settlement failed", "group_id", groupID, "error", err)
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, groupSettlementsResponse{GroupID: groupID, Settlements: settlements})
}

// handleUserBalances is the user-centric view: who owes the user, whom the
// user owes, and the rolled-up totals, per currency.
func (s *SettlementService) handleUserBalances(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	records, err := s.store.ListUserObligations(r.Context(), userID)
	if err != nil {
		slog.Error("ListUserObligations failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("failed to load obligations"))
		return
	}

	settlements, err := settleByCurrency(records)
	if err != nil {
		slog.Error("User settlement failed", "user_id", userID, "error", err)
		writeError(w, statusFor(err), err)
		return
	}

	resp := userBalancesResponse{UserID: userID, Balances: []userCurrencyBalances{}}
	for _, cs := range settlements {
		cb := userCurrencyBalances{
			Currency: cs.Currency,
			Balances: []balanceEntry{},
		}
		for _, txn := range cs.Transactions {
			switch userID {
			case txn.FromUserID:
				cb.Balances = append(cb.Balances, balanceEntry{
					UserID: txn.ToUserID, Amount: txn.Amount, YouOwe: true,
				})
				cb.TotalYouOwe = cb.TotalYouOwe.Add(txn.Amount)
			case txn.ToUserID:
				cb.Balances = append(cb.Balances, balanceEntry{
					UserID: txn.FromUserID, Amount: txn.Amount, OwesYou: true,
				})
				cb.TotalOwedToYou = cb.TotalOwedToYou.Add(txn.Amount)
			}
		}
		resp.Balances = append(resp.Balances, cb)
	}

	writeJSON(w, http.StatusOK, resp)
}

// settleByCurrency partitions obligation records by currency and runs the
// engine once per currency, in sorted currency order. The engine never sees
// mixed currencies.
func settleByCurrency(records []*models.Obligation) ([]currencySettlement, error) {
	byCurrency := make(map[string][]netting.Obligation)
	for _, rec := range records {
		byCurrency[rec.Currency] = append(byCurrency[rec.Currency], netting.Obligation{
			Debtor:   rec.DebtorID,
			Creditor: rec.CreditorID,
			Amount:   rec.Amount,
		})
	}

	currencies := make([]string, 0, len(byCurrency))
	for currency := range byCurrency {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	settlements := make([]currencySettlement, 0, len(currencies))
	for _, currency := range currencies {
		transactions, err := runEngine(byCurrency[currency])
		if err != nil {
			return nil, fmt.Errorf("settling %s: %w", currency, err)
		}
		settlements = append(settlements, currencySettlement{
			Currency:     currency,
			Transactions: toSettlements(currency, transactions),
		})
	}
	return settlements, nil
}

// runEngine wraps netting.Settle with metrics.
func runEngine(obligations []netting.Obligation) ([]netting.Transaction, error) {
	start := time.Now()
	transactions, err := netting.Settle(obligations)
	metrics.SettleDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, netting.ErrInvalidObligation):
		metrics.SettleRuns.WithLabelValues("invalid_obligation").Inc()
	case errors.Is(err, netting.ErrUnbalancedLedger):
		metrics.SettleRuns.WithLabelValues("unbalanced_ledger").Inc()
	case err != nil:
		metrics.SettleRuns.WithLabelValues("error").Inc()
	default:
		metrics.SettleRuns.WithLabelValues("ok").Inc()
		metrics.SettleTransactions.Observe(float64(len(transactions)))
	}
	return transactions, err
}

func toNettingObligations(inputs []obligationInput) ([]netting.Obligation, error) {
	obligations := make([]netting.Obligation, 0, len(inputs))
	for i, in := range inputs {
		if err := validateInput(in); err != nil {
			return nil, fmt.Errorf("obligation %d: %w", i, err)
		}
		obligations = append(obligations, netting.Obligation{
			Debtor:   in.DebtorID,
			Creditor: in.CreditorID,
			Amount:   in.Amount,
		})
	}
	return obligations, nil
}

func validateInput(in obligationInput) error {
	if in.DebtorID == "" {
		return errors.New("debtor_id is required")
	}
	if in.CreditorID == "" {
		return errors.New("creditor_id is required")
	}
	return nil
}

func toSettlements(currency string, transactions []netting.Transaction) []models.Settlement {
	settlements := make([]models.Settlement, 0, len(transactions))
	for _, txn := range transactions {
		settlements = append(settlements, models.Settlement{
			FromUserID: txn.From,
			ToUserID:   txn.To,
			Amount:     txn.Amount,
			Currency:   currency,
		})
	}
	return settlements
}

func statusFor(err error) int {
	if errors.Is(err, netting.ErrInvalidObligation) || errors.Is(err, netting.ErrUnbalancedLedger) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
