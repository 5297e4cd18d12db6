package chatbot

// DefaultCorpus returns the built-in deal-desk FAQ.
func DefaultCorpus() []Entry {
	return []Entry{
		{
			ID:       "submit-deal",
			Question: "How do I submit a deal?",
			Answer:   "Create the deal with its tiers via POST /api/deals, then move it to submitted with PATCH /api/deals/{id}/status. Approval routing is computed automatically at submission.",
			Keywords: []string{"submit", "submission", "create", "new deal"},
			Category: "deals",
		},
		{
			ID:       "approval-levels",
			Question: "What approval levels exist?",
			Answer:   "Deals route through Sales Director, Regional Director, Finance, Legal, VP, SVP, Managing Director, and Executive Committee depending on value, discount, and contract term.",
			Keywords: []string{"approval", "approver", "levels", "who approves"},
			Category: "approval",
		},
		{
			ID:       "approval-time",
			Question: "How long does approval take?",
			Answer:   "Sales Director sign-off is same day; VP and SVP reviews take 1-3 business days; Managing Director 3-5 business days; Executive Committee up to two weeks.",
			Keywords: []string{"how long", "time", "duration", "eta", "turnaround"},
			Category: "approval",
		},
		{
			ID:       "discount-limits",
			Question: "What discount can I offer without escalation?",
			Answer:   "Discounts under 10% stay with your Sales Director. 10% needs VP, 20% needs SVP, 30% needs Managing Director, and anything at 40% or above goes to the Executive Committee. Above 20% the deal is also treated as high-discount in the value matrix.",
			Keywords: []string{"discount", "percent", "markdown", "price reduction"},
			Category: "pricing",
		},
		{
			ID:       "contract-terms",
			Question: "How does contract length affect approval?",
			Answer:   "Contracts of 24 months or more need VP approval, 36 months SVP, and 60 months Managing Director, regardless of deal size.",
			Keywords: []string{"contract", "term", "months", "length", "multi-year"},
			Category: "approval",
		},
		{
			ID:       "incentives",
			Question: "How are incentives accounted for?",
			Answer:   "Incentive costs are subtracted from gross profit, never from revenue. Adjusted gross margin is adjusted profit divided by revenue, so heavy incentives can push a tier negative.",
			Keywords: []string{"incentive", "incentives", "rebate", "spiff"},
			Category: "finance",
		},
		{
			ID:       "gross-margin",
			Question: "How is gross margin calculated?",
			Answer:   "Gross profit is annual revenue times the margin fraction for each tier. Margins are stored as 0-1 fractions; percentage inputs are normalized on the way in.",
			Keywords: []string{"margin", "gross profit", "calculation", "profit"},
			Category: "finance",
		},
		{
			ID:       "deal-tiers",
			Question: "What are deal tiers?",
			Answer:   "Tiers are the rows of a tiered deal structure: each carries its own annual revenue, margin, and incentives. Tier numbers stay contiguous from 1; removing a tier renumbers the rest.",
			Keywords: []string{"tier", "tiers", "rows", "structure"},
			Category: "deals",
		},
		{
			ID:       "legal-review",
			Question: "When does Legal review a deal?",
			Answer:   "Legal joins the approval sequence when a deal has legal exceptions or its total value exceeds $250,000.",
			Keywords: []string{"legal", "exception", "review", "counsel"},
			Category: "approval",
		},
		{
			ID:       "deal-status",
			Question: "What do the deal statuses mean?",
			Answer:   "Deals move draft to submitted to under_review, then approved or rejected. Rejected deals can be reopened as drafts for resubmission.",
			Keywords: []string{"status", "lifecycle", "rejected", "approved", "draft"},
			Category: "deals",
		},
	}
}
