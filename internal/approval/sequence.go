package approval

import "github.com/sells-group/deal-desk/internal/model"

// StandardDealCriteria bounds what counts as a standard deal for the
// sequence resolver. Deals outside these bounds escalate the final step
// from Managing Director to Executive.
type StandardDealCriteria struct {
	DealTypes     []string `yaml:"deal_types" mapstructure:"deal_types"`
	SalesChannels []string `yaml:"sales_channels" mapstructure:"sales_channels"`
	MaxValue      float64  `yaml:"max_value" mapstructure:"max_value"`
}

// LegalReviewValue is the deal value above which Legal always joins the
// approval sequence, exceptions or not.
const LegalReviewValue = 250_000

// DefaultStandardDealCriteria returns the compiled-in standard-deal bounds.
func DefaultStandardDealCriteria() StandardDealCriteria {
	return StandardDealCriteria{
		DealTypes:     []string{"grow", "protect", "custom"},
		SalesChannels: []string{"direct", "independent_agency", "holding_company"},
		MaxValue:      500_000,
	}
}

// matches reports whether the deal falls entirely within standard bounds.
// Empty dealType or salesChannel is treated as non-standard.
func (c StandardDealCriteria) matches(value float64, dealType, salesChannel string) bool {
	if value > c.MaxValue {
		return false
	}
	if !contains(c.DealTypes, dealType) {
		return false
	}
	return contains(c.SalesChannels, salesChannel)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// RequiredApprovers returns the ordered approval workflow for a deal.
// Regional Director is always first and Finance always second. Legal joins
// when legal exceptions are flagged or value exceeds LegalReviewValue. The
// final step is Managing Director for standard deals with no financial
// exceptions, Executive otherwise.
//
// This is a separate policy from Resolver.Resolve, not a refinement of it.
func RequiredApprovers(criteria StandardDealCriteria, totalValue float64, dealType, salesChannel string, hasLegalExceptions, hasFinancialExceptions bool) []model.ApproverLevel {
	sequence := []model.ApproverLevel{
		model.LevelRegionalDirector,
		model.LevelFinance,
	}

	if hasLegalExceptions || totalValue > LegalReviewValue {
		sequence = append(sequence, model.LevelLegal)
	}

	if criteria.matches(totalValue, dealType, salesChannel) && !hasFinancialExceptions {
		sequence = append(sequence, model.LevelManagingDirector)
	} else {
		sequence = append(sequence, model.LevelExecutive)
	}

	return sequence
}
