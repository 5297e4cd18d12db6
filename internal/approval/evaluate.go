package approval

import (
	"time"

	"github.com/sells-group/deal-desk/internal/model"
)

// Evaluate resolves the full approval metadata for a deal's current
// inputs: the most senior sign-off level from the matrix plus the ordered
// approver sequence.
func Evaluate(r *Resolver, criteria StandardDealCriteria, deal *model.Deal) *model.DealApproval {
	decision := r.Resolve(deal.Parameters())
	sequence := RequiredApprovers(criteria, deal.TotalValue, deal.DealType,
		deal.SalesChannel, deal.HasLegalExceptions, deal.HasFinancialExceptions)

	return &model.DealApproval{
		Level:      decision.Level,
		Sequence:   sequence,
		Message:    decision.Message,
		Severity:   decision.Severity,
		ResolvedAt: time.Now().UTC(),
	}
}
