package approval

import "github.com/sells-group/deal-desk/internal/model"

// rules is the static approver reference data exposed read-only over the
// API. Order mirrors model.ApproverLevel.Order.
var rules = []model.ApprovalRule{
	{Level: model.LevelSalesDirector, Title: "Sales Director", Description: "Standard deals within regional discretion.", EstimatedTime: "same day", Order: 1},
	{Level: model.LevelRegionalDirector, Title: "Regional Director", Description: "First reviewer on every submitted deal.", EstimatedTime: "1 business day", Order: 2},
	{Level: model.LevelFinance, Title: "Finance", Description: "Margin and incentive validation.", EstimatedTime: "1-2 business days", Order: 3},
	{Level: model.LevelLegal, Title: "Legal", Description: "Contract exceptions and high-value terms review.", EstimatedTime: "2-3 business days", Order: 4},
	{Level: model.LevelVP, Title: "VP of Sales", Description: "Mid-range deals and moderate discounts.", EstimatedTime: "1-2 business days", Order: 5},
	{Level: model.LevelSVP, Title: "SVP of Sales", Description: "Large deals, high discounts, or multi-year terms.", EstimatedTime: "2-3 business days", Order: 6},
	{Level: model.LevelManagingDirector, Title: "Managing Director", Description: "Very large or non-standard deals.", EstimatedTime: "3-5 business days", Order: 7},
	{Level: model.LevelExecutive, Title: "Executive Committee", Description: "Deals outside all standard criteria.", EstimatedTime: "1-2 weeks", Order: 8},
}

// Rules returns the full rule set in seniority order.
func Rules() []model.ApprovalRule {
	out := make([]model.ApprovalRule, len(rules))
	copy(out, rules)
	return out
}

// RuleFor returns the descriptor for a level. Unknown levels get a bare
// descriptor carrying the raw level name.
func RuleFor(level model.ApproverLevel) model.ApprovalRule {
	for _, r := range rules {
		if r.Level == level {
			return r
		}
	}
	return model.ApprovalRule{Level: level, Title: string(level)}
}
