package model

// ApproverLevel identifies a seniority level in the approval chain.
type ApproverLevel string

const (
	LevelSalesDirector    ApproverLevel = "sales_director"
	LevelRegionalDirector ApproverLevel = "regional_director"
	LevelFinance          ApproverLevel = "finance"
	LevelLegal            ApproverLevel = "legal"
	LevelVP               ApproverLevel = "vp"
	LevelSVP              ApproverLevel = "svp"
	LevelManagingDirector ApproverLevel = "managing_director"
	LevelExecutive        ApproverLevel = "executive"
)

// levelOrder fixes the seniority ranking used when combining resolved
// levels. Comparison is always by this order, never by name.
var levelOrder = map[ApproverLevel]int{
	LevelSalesDirector:    1,
	LevelRegionalDirector: 2,
	LevelFinance:          3,
	LevelLegal:            4,
	LevelVP:               5,
	LevelSVP:              6,
	LevelManagingDirector: 7,
	LevelExecutive:        8,
}

// Order returns the seniority rank of the level; 0 for unknown levels.
func (l ApproverLevel) Order() int {
	return levelOrder[l]
}

// Max returns the more senior of l and other.
func (l ApproverLevel) Max(other ApproverLevel) ApproverLevel {
	if other.Order() > l.Order() {
		return other
	}
	return l
}

// AlertSeverity classifies how prominently an approval decision should be
// surfaced to the submitter.
type AlertSeverity string

const (
	SeverityInfo    AlertSeverity = "info"
	SeverityWarning AlertSeverity = "warning"
	SeverityAlert   AlertSeverity = "alert"
)

// ApprovalRule is a static descriptor for one approver level. Immutable
// reference data, not user-editable.
type ApprovalRule struct {
	Level         ApproverLevel `json:"level"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	EstimatedTime string        `json:"estimated_time"`
	Order         int           `json:"order"`
}
