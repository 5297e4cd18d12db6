package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/deal-desk/internal/approval"
	"github.com/sells-group/deal-desk/internal/finance"
	"github.com/sells-group/deal-desk/internal/model"
	"github.com/sells-group/deal-desk/internal/store"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// dealRequest is the writable subset of a deal. Server-owned fields (id,
// status, approval, timestamps) in the payload are ignored.
type dealRequest struct {
	Name                   string           `json:"name"`
	Customer               string           `json:"customer"`
	DealType               string           `json:"deal_type"`
	SalesChannel           string           `json:"sales_channel"`
	TotalValue             float64          `json:"total_value"`
	DiscountPercentage     float64          `json:"discount_percentage"`
	ContractTermMonths     int              `json:"contract_term_months"`
	HasNonStandardTerms    bool             `json:"has_non_standard_terms"`
	HasLegalExceptions     bool             `json:"has_legal_exceptions"`
	HasFinancialExceptions bool             `json:"has_financial_exceptions"`
	Tiers                  []model.DealTier `json:"tiers"`
}

func (req *dealRequest) validate() string {
	switch {
	case req.Name == "":
		return "name is required"
	case req.Customer == "":
		return "customer is required"
	case req.TotalValue < 0:
		return "total_value must be non-negative"
	case req.DiscountPercentage < 0 || req.DiscountPercentage > 100:
		return "discount_percentage must be between 0 and 100"
	case req.ContractTermMonths < 0:
		return "contract_term_months must be non-negative"
	}
	for _, tier := range req.Tiers {
		if tier.AnnualRevenue < 0 {
			return "tier annual_revenue must be non-negative"
		}
	}
	return ""
}

// apply copies the request onto a deal, normalizing tiers and margins at
// the boundary.
func (req *dealRequest) apply(deal *model.Deal) {
	deal.Name = req.Name
	deal.Customer = req.Customer
	deal.DealType = req.DealType
	deal.SalesChannel = req.SalesChannel
	deal.TotalValue = req.TotalValue
	deal.DiscountPercentage = req.DiscountPercentage
	deal.ContractTermMonths = req.ContractTermMonths
	deal.HasNonStandardTerms = req.HasNonStandardTerms
	deal.HasLegalExceptions = req.HasLegalExceptions
	deal.HasFinancialExceptions = req.HasFinancialExceptions

	tiers := model.NormalizeTiers(req.Tiers)
	for i := range tiers {
		tiers[i].AnnualGrossMargin = finance.NormalizeMargin(tiers[i].AnnualGrossMargin)
	}
	deal.Tiers = tiers
}

// approve computes the approval metadata for the deal's current inputs.
func (s *Server) approve(deal *model.Deal) *model.DealApproval {
	return approval.Evaluate(s.resolver, s.criteria, deal)
}

func (s *Server) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	var req dealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	var deal model.Deal
	req.apply(&deal)
	deal.Approval = s.approve(&deal)

	created, err := s.store.CreateDeal(r.Context(), deal)
	if err != nil {
		zap.L().Error("create deal", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create deal")
		return
	}

	zap.L().Info("deal created",
		zap.String("deal_id", created.ID),
		zap.String("customer", created.Customer),
		zap.Float64("total_value", created.TotalValue),
		zap.String("approval_level", string(created.Approval.Level)),
	)
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetDeal(w http.ResponseWriter, r *http.Request) {
	deal, err := s.store.GetDeal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "deal not found")
			return
		}
		zap.L().Error("get deal", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load deal")
		return
	}
	respondJSON(w, http.StatusOK, deal)
}

func (s *Server) handleListDeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.DealFilter{
		Customer: q.Get("customer"),
	}
	if status := q.Get("status"); status != "" {
		ds := model.DealStatus(status)
		if !ds.Valid() {
			respondError(w, http.StatusBadRequest, "unknown status: "+status)
			return
		}
		filter.Status = ds
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = n
	}

	deals, err := s.store.ListDeals(r.Context(), filter)
	if err != nil {
		zap.L().Error("list deals", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list deals")
		return
	}
	if deals == nil {
		deals = []model.Deal{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"deals": deals, "count": len(deals)})
}

func (s *Server) handleUpdateDeal(w http.ResponseWriter, r *http.Request) {
	deal, err := s.store.GetDeal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "deal not found")
			return
		}
		zap.L().Error("get deal for update", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load deal")
		return
	}

	var req dealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	req.apply(deal)
	// Inputs changed, so the routing decision is stale until recomputed.
	deal.Approval = s.approve(deal)

	if err := s.store.UpdateDeal(r.Context(), deal); err != nil {
		zap.L().Error("update deal", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to update deal")
		return
	}
	respondJSON(w, http.StatusOK, deal)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.DealStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		respondError(w, http.StatusBadRequest, "unknown status: "+string(req.Status))
		return
	}

	dealID := chi.URLParam(r, "id")
	deal, err := s.store.GetDeal(r.Context(), dealID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "deal not found")
			return
		}
		zap.L().Error("get deal for status update", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load deal")
		return
	}

	if !deal.Status.CanTransitionTo(req.Status) {
		respondError(w, http.StatusConflict,
			"illegal status transition: "+string(deal.Status)+" -> "+string(req.Status))
		return
	}

	if err := s.store.UpdateDealStatus(r.Context(), dealID, req.Status); err != nil {
		zap.L().Error("update deal status", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	zap.L().Info("deal status changed",
		zap.String("deal_id", dealID),
		zap.String("from", string(deal.Status)),
		zap.String("to", string(req.Status)),
	)
	deal.Status = req.Status
	respondJSON(w, http.StatusOK, deal)
}

func (s *Server) handleDeleteDeal(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteDeal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "deal not found")
			return
		}
		zap.L().Error("delete deal", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to delete deal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tiers    []model.DealTier  `json:"tiers"`
		Baseline *finance.Baseline `json:"baseline,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tiers := model.NormalizeTiers(req.Tiers)
	respondJSON(w, http.StatusOK, map[string]any{
		"tiers":     finance.ComputeTierMetrics(tiers, req.Baseline),
		"aggregate": finance.ComputeAggregateMetrics(tiers),
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var params model.DealParameters
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	respondJSON(w, http.StatusOK, s.resolver.Resolve(params))
}

func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	var params model.DealParameters
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sequence := approval.RequiredApprovers(s.criteria, params.TotalValue, params.DealType,
		params.SalesChannel, params.HasLegalExceptions, params.HasFinancialExceptions)
	respondJSON(w, http.StatusOK, map[string]any{"sequence": sequence})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"rules": approval.Rules()})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	respondJSON(w, http.StatusOK, s.matcher.Match(req.Query))
}
