// Package approval resolves which approver levels a deal requires.
//
// Two independent policies live here: a matrix resolver that returns the
// single most senior level triggered by a deal's value, discount, and
// contract term, and a sequence resolver that returns the ordered approver
// workflow. They encode different business rules and are not refinements
// of each other.
package approval

import (
	"fmt"
	"strings"

	"github.com/sells-group/deal-desk/internal/model"
)

// ValueBand is one row of the value axis with the approver level per
// terms column. Bands partition the axis: each band's Min equals the
// previous band's Max, and a nil Max means unbounded.
type ValueBand struct {
	Min              float64             `yaml:"min"`
	Max              *float64            `yaml:"max"`
	StandardTerms    model.ApproverLevel `yaml:"standard_terms"`
	NonStandardTerms model.ApproverLevel `yaml:"non_standard_terms"`
	HighDiscount     model.ApproverLevel `yaml:"high_discount"`
}

// contains reports whether value falls inside the band. Bands are
// half-open (Min, Max] so adjacent bands share a boundary without
// overlapping; the first band is closed at its Min to admit zero.
func (b ValueBand) contains(value float64, first bool) bool {
	if first {
		if value < b.Min {
			return false
		}
	} else if value <= b.Min {
		return false
	}
	return b.Max == nil || value <= *b.Max
}

// DiscountThreshold maps a minimum discount percentage to a level.
type DiscountThreshold struct {
	MinPercent float64             `yaml:"min_percent"`
	Level      model.ApproverLevel `yaml:"level"`
}

// TermThreshold maps a minimum contract length in months to a level.
type TermThreshold struct {
	MinMonths int                 `yaml:"min_months"`
	Level     model.ApproverLevel `yaml:"level"`
}

// Matrix holds the full approval-routing configuration. Thresholds are
// evaluated highest-first; bands are contiguous, covering every value
// from zero up, with an unbounded last band.
type Matrix struct {
	HighDiscountPercent float64             `yaml:"high_discount_percent"`
	ValueBands          []ValueBand         `yaml:"value_bands"`
	DiscountThresholds  []DiscountThreshold `yaml:"discount_thresholds"`
	TermThresholds      []TermThreshold     `yaml:"term_thresholds"`
	DefaultLevel        model.ApproverLevel `yaml:"default_level"`
}

// Decision is the resolver output attached to a deal's approval metadata.
type Decision struct {
	Level    model.ApproverLevel `json:"level"`
	Message  string              `json:"message"`
	Severity model.AlertSeverity `json:"severity"`
}

// DefaultMatrix returns the compiled-in routing tables.
func DefaultMatrix() Matrix {
	f := func(v float64) *float64 { return &v }
	return Matrix{
		HighDiscountPercent: 20,
		ValueBands: []ValueBand{
			{Min: 0, Max: f(50_000), StandardTerms: model.LevelSalesDirector, NonStandardTerms: model.LevelVP, HighDiscount: model.LevelVP},
			{Min: 50_000, Max: f(250_000), StandardTerms: model.LevelVP, NonStandardTerms: model.LevelSVP, HighDiscount: model.LevelSVP},
			{Min: 250_000, Max: f(1_000_000), StandardTerms: model.LevelSVP, NonStandardTerms: model.LevelManagingDirector, HighDiscount: model.LevelManagingDirector},
			{Min: 1_000_000, Max: nil, StandardTerms: model.LevelManagingDirector, NonStandardTerms: model.LevelExecutive, HighDiscount: model.LevelExecutive},
		},
		DiscountThresholds: []DiscountThreshold{
			{MinPercent: 40, Level: model.LevelExecutive},
			{MinPercent: 30, Level: model.LevelManagingDirector},
			{MinPercent: 20, Level: model.LevelSVP},
			{MinPercent: 10, Level: model.LevelVP},
		},
		TermThresholds: []TermThreshold{
			{MinMonths: 60, Level: model.LevelManagingDirector},
			{MinMonths: 36, Level: model.LevelSVP},
			{MinMonths: 24, Level: model.LevelVP},
		},
		DefaultLevel: model.LevelSalesDirector,
	}
}

// Validate checks that the matrix tables are well formed: ordered,
// contiguous value bands ending unbounded, thresholds sorted
// highest-first, and every referenced level known.
func (m Matrix) Validate() error {
	if len(m.ValueBands) == 0 {
		return fmt.Errorf("approval: matrix has no value bands")
	}
	for i, b := range m.ValueBands {
		if b.StandardTerms.Order() == 0 || b.NonStandardTerms.Order() == 0 || b.HighDiscount.Order() == 0 {
			return fmt.Errorf("approval: band %d references unknown level", i)
		}
		if b.Max != nil && *b.Max < b.Min {
			return fmt.Errorf("approval: band %d has max below min", i)
		}
		if i > 0 {
			prev := m.ValueBands[i-1]
			if prev.Max == nil {
				return fmt.Errorf("approval: band %d follows an unbounded band", i)
			}
			if b.Min != *prev.Max {
				return fmt.Errorf("approval: band %d is not contiguous with the previous band (min %v, previous max %v)", i, b.Min, *prev.Max)
			}
		}
	}
	if last := m.ValueBands[len(m.ValueBands)-1]; last.Max != nil {
		return fmt.Errorf("approval: last value band must be unbounded")
	}
	for i := 1; i < len(m.DiscountThresholds); i++ {
		if m.DiscountThresholds[i].MinPercent >= m.DiscountThresholds[i-1].MinPercent {
			return fmt.Errorf("approval: discount thresholds not sorted highest-first")
		}
	}
	for i := 1; i < len(m.TermThresholds); i++ {
		if m.TermThresholds[i].MinMonths >= m.TermThresholds[i-1].MinMonths {
			return fmt.Errorf("approval: term thresholds not sorted highest-first")
		}
	}
	if m.DefaultLevel.Order() == 0 {
		return fmt.Errorf("approval: default level %q unknown", m.DefaultLevel)
	}
	return nil
}

// Resolver evaluates deals against a Matrix.
type Resolver struct {
	matrix Matrix
}

// NewResolver creates a Resolver over the given matrix.
func NewResolver(matrix Matrix) *Resolver {
	return &Resolver{matrix: matrix}
}

// Resolve returns the single most senior approver level the deal
// triggers, with a message naming the contributing factors.
func (r *Resolver) Resolve(params model.DealParameters) Decision {
	highDiscount := params.DiscountPercentage > r.matrix.HighDiscountPercent

	valueLevel, bandMatched := r.valueLevel(params, highDiscount)
	discountLevel := r.discountLevel(params.DiscountPercentage)
	termLevel := r.termLevel(params.ContractTermMonths)

	level := valueLevel.Max(discountLevel).Max(termLevel)

	var factors []string
	if !bandMatched {
		factors = append(factors, "deal value outside configured bands")
	} else if valueLevel == level {
		factors = append(factors, fmt.Sprintf("deal value $%.0f", params.TotalValue))
	}
	if params.HasNonStandardTerms {
		factors = append(factors, "non-standard terms")
	}
	if highDiscount {
		factors = append(factors, fmt.Sprintf("discount %.1f%% above %.0f%%", params.DiscountPercentage, r.matrix.HighDiscountPercent))
	} else if discountLevel == level && discountLevel.Order() > r.matrix.DefaultLevel.Order() {
		factors = append(factors, fmt.Sprintf("discount %.1f%%", params.DiscountPercentage))
	}
	if termLevel == level && termLevel.Order() > r.matrix.DefaultLevel.Order() {
		factors = append(factors, fmt.Sprintf("contract term %d months", params.ContractTermMonths))
	}

	rule := RuleFor(level)
	msg := fmt.Sprintf("Requires %s approval", rule.Title)
	if len(factors) > 0 {
		msg += ": " + strings.Join(factors, ", ")
	}

	return Decision{
		Level:    level,
		Message:  msg,
		Severity: severityFor(level),
	}
}

// valueLevel selects the column for the band containing the deal value.
// The second return is false when no band matched, in which case the most
// senior configured level is returned as a conservative fallback.
func (r *Resolver) valueLevel(params model.DealParameters, highDiscount bool) (model.ApproverLevel, bool) {
	for i, band := range r.matrix.ValueBands {
		if !band.contains(params.TotalValue, i == 0) {
			continue
		}
		switch {
		case highDiscount:
			return band.HighDiscount, true
		case params.HasNonStandardTerms:
			return band.NonStandardTerms, true
		default:
			return band.StandardTerms, true
		}
	}
	return r.mostSeniorConfigured(), false
}

func (r *Resolver) discountLevel(discountPercent float64) model.ApproverLevel {
	for _, t := range r.matrix.DiscountThresholds {
		if discountPercent >= t.MinPercent {
			return t.Level
		}
	}
	return r.matrix.DefaultLevel
}

func (r *Resolver) termLevel(months int) model.ApproverLevel {
	for _, t := range r.matrix.TermThresholds {
		if months >= t.MinMonths {
			return t.Level
		}
	}
	return r.matrix.DefaultLevel
}

func (r *Resolver) mostSeniorConfigured() model.ApproverLevel {
	level := r.matrix.DefaultLevel
	for _, band := range r.matrix.ValueBands {
		level = level.Max(band.StandardTerms).Max(band.NonStandardTerms).Max(band.HighDiscount)
	}
	return level
}

// severityFor maps a resolved level onto how loudly the UI should flag it.
func severityFor(level model.ApproverLevel) model.AlertSeverity {
	switch {
	case level.Order() >= model.LevelExecutive.Order():
		return model.SeverityAlert
	case level.Order() >= model.LevelSVP.Order():
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}
