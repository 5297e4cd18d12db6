package model

import "time"

// DealStatus represents the lifecycle state of a deal.
type DealStatus string

const (
	DealStatusDraft       DealStatus = "draft"
	DealStatusSubmitted   DealStatus = "submitted"
	DealStatusUnderReview DealStatus = "under_review"
	DealStatusApproved    DealStatus = "approved"
	DealStatusRejected    DealStatus = "rejected"
)

// legalTransitions maps each status to the statuses it may move to.
// A rejected deal may be reopened as a draft for resubmission.
var legalTransitions = map[DealStatus][]DealStatus{
	DealStatusDraft:       {DealStatusSubmitted},
	DealStatusSubmitted:   {DealStatusUnderReview},
	DealStatusUnderReview: {DealStatusApproved, DealStatusRejected},
	DealStatusRejected:    {DealStatusDraft},
}

// Valid reports whether s is a known deal status.
func (s DealStatus) Valid() bool {
	switch s {
	case DealStatusDraft, DealStatusSubmitted, DealStatusUnderReview,
		DealStatusApproved, DealStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle transition.
func (s DealStatus) CanTransitionTo(next DealStatus) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Incentive is one itemized incentive line on a deal tier.
type Incentive struct {
	Category    string  `json:"category"`
	SubCategory string  `json:"sub_category,omitempty"`
	Option      string  `json:"option,omitempty"`
	Value       float64 `json:"value"`
}

// DealTier is one row of a tiered deal structure. Gross profit is always
// derived from revenue and margin, never stored.
type DealTier struct {
	TierNumber        int         `json:"tier_number"`
	AnnualRevenue     float64     `json:"annual_revenue"`
	AnnualGrossMargin float64     `json:"annual_gross_margin"` // 0-1 fraction
	IncentiveValue    float64     `json:"incentive_value,omitempty"`
	Incentives        []Incentive `json:"incentives,omitempty"`
}

// NormalizeTiers renumbers tiers contiguously from 1, preserving order.
// Called after any tier add or remove so tier numbers never gap.
func NormalizeTiers(tiers []DealTier) []DealTier {
	for i := range tiers {
		tiers[i].TierNumber = i + 1
	}
	return tiers
}

// DealParameters is the transient input to the approval resolver. It is a
// projection of a Deal, constructed fresh per evaluation, never persisted.
type DealParameters struct {
	TotalValue             float64 `json:"total_value"`
	HasNonStandardTerms    bool    `json:"has_non_standard_terms"`
	DiscountPercentage     float64 `json:"discount_percentage"`
	ContractTermMonths     int     `json:"contract_term_months"`
	DealType               string  `json:"deal_type,omitempty"`
	SalesChannel           string  `json:"sales_channel,omitempty"`
	HasLegalExceptions     bool    `json:"has_legal_exceptions,omitempty"`
	HasFinancialExceptions bool    `json:"has_financial_exceptions,omitempty"`
}

// Deal is a submitted (or in-progress) deal.
type Deal struct {
	ID                     string        `json:"id"`
	Name                   string        `json:"name"`
	Customer               string        `json:"customer"`
	DealType               string        `json:"deal_type"`
	SalesChannel           string        `json:"sales_channel"`
	TotalValue             float64       `json:"total_value"`
	DiscountPercentage     float64       `json:"discount_percentage"`
	ContractTermMonths     int           `json:"contract_term_months"`
	HasNonStandardTerms    bool          `json:"has_non_standard_terms"`
	HasLegalExceptions     bool          `json:"has_legal_exceptions"`
	HasFinancialExceptions bool          `json:"has_financial_exceptions"`
	Tiers                  []DealTier    `json:"tiers"`
	Status                 DealStatus    `json:"status"`
	Approval               *DealApproval `json:"approval,omitempty"`
	CreatedAt              time.Time     `json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`
}

// Parameters projects the deal into resolver input.
func (d *Deal) Parameters() DealParameters {
	return DealParameters{
		TotalValue:             d.TotalValue,
		HasNonStandardTerms:    d.HasNonStandardTerms,
		DiscountPercentage:     d.DiscountPercentage,
		ContractTermMonths:     d.ContractTermMonths,
		DealType:               d.DealType,
		SalesChannel:           d.SalesChannel,
		HasLegalExceptions:     d.HasLegalExceptions,
		HasFinancialExceptions: d.HasFinancialExceptions,
	}
}

// DealApproval is the approval workflow metadata attached to a deal at
// submission time. It is recomputed whenever the deal's inputs change.
type DealApproval struct {
	Level      ApproverLevel   `json:"level"`
	Sequence   []ApproverLevel `json:"sequence"`
	Message    string          `json:"message"`
	Severity   AlertSeverity   `json:"severity"`
	ResolvedAt time.Time       `json:"resolved_at"`
}
