package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deal-desk/internal/model"
)

func TestResolve(t *testing.T) {
	t.Parallel()
	r := NewResolver(DefaultMatrix())

	tests := []struct {
		name         string
		params       model.DealParameters
		wantLevel    model.ApproverLevel
		wantSeverity model.AlertSeverity
	}{
		{
			name:         "mid-band standard terms resolves SVP",
			params:       model.DealParameters{TotalValue: 600000, DiscountPercentage: 5, ContractTermMonths: 12},
			wantLevel:    model.LevelSVP,
			wantSeverity: model.SeverityWarning,
		},
		{
			name:         "small standard deal stays at sales director",
			params:       model.DealParameters{TotalValue: 25000, DiscountPercentage: 5, ContractTermMonths: 12},
			wantLevel:    model.LevelSalesDirector,
			wantSeverity: model.SeverityInfo,
		},
		{
			name:         "non-standard terms escalate the band column",
			params:       model.DealParameters{TotalValue: 25000, HasNonStandardTerms: true, DiscountPercentage: 5, ContractTermMonths: 12},
			wantLevel:    model.LevelVP,
			wantSeverity: model.SeverityInfo,
		},
		{
			name:         "discount above 20 selects the high-discount column",
			params:       model.DealParameters{TotalValue: 600000, DiscountPercentage: 25, ContractTermMonths: 12},
			wantLevel:    model.LevelManagingDirector,
			wantSeverity: model.SeverityWarning,
		},
		{
			name:         "exactly 20 percent is not a high discount",
			params:       model.DealParameters{TotalValue: 100000, DiscountPercentage: 20, ContractTermMonths: 12},
			wantLevel:    model.LevelSVP, // discount threshold 20 wins over VP band
			wantSeverity: model.SeverityWarning,
		},
		{
			name:         "discount threshold beats a low value band",
			params:       model.DealParameters{TotalValue: 10000, DiscountPercentage: 45, ContractTermMonths: 12},
			wantLevel:    model.LevelExecutive,
			wantSeverity: model.SeverityAlert,
		},
		{
			name:         "long contract term beats a low value band",
			params:       model.DealParameters{TotalValue: 10000, DiscountPercentage: 0, ContractTermMonths: 60},
			wantLevel:    model.LevelManagingDirector,
			wantSeverity: model.SeverityWarning,
		},
		{
			name:         "unbounded top band",
			params:       model.DealParameters{TotalValue: 5_000_000, DiscountPercentage: 0, ContractTermMonths: 12},
			wantLevel:    model.LevelManagingDirector,
			wantSeverity: model.SeverityWarning,
		},
		{
			name:         "top band non-standard terms reach executive",
			params:       model.DealParameters{TotalValue: 5_000_000, HasNonStandardTerms: true, DiscountPercentage: 0, ContractTermMonths: 12},
			wantLevel:    model.LevelExecutive,
			wantSeverity: model.SeverityAlert,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := r.Resolve(tt.params)
			assert.Equal(t, tt.wantLevel, got.Level)
			assert.Equal(t, tt.wantSeverity, got.Severity)
			assert.NotEmpty(t, got.Message)
		})
	}
}

// Raising the deal value with all other parameters fixed never lowers the
// resolved level's seniority.
func TestResolveMonotonicInValue(t *testing.T) {
	t.Parallel()
	r := NewResolver(DefaultMatrix())

	variants := []model.DealParameters{
		{DiscountPercentage: 0, ContractTermMonths: 12},
		{HasNonStandardTerms: true, DiscountPercentage: 5, ContractTermMonths: 24},
		{DiscountPercentage: 25, ContractTermMonths: 36},
	}

	// Fractional values just past each band boundary would fall into a
	// gap if the bands were not contiguous.
	values := []float64{
		0, 10_000, 50_000, 50_000.005, 50_001, 100_000,
		250_000, 250_000.0001, 250_001, 600_000,
		1_000_000, 1_000_000.5, 1_000_001, 10_000_000,
	}

	for _, base := range variants {
		prev := -1
		for _, v := range values {
			params := base
			params.TotalValue = v
			order := r.Resolve(params).Level.Order()
			assert.GreaterOrEqual(t, order, prev, "value %.0f", v)
			prev = order
		}
	}
}

// Every non-negative value lands in exactly one band: values on a shared
// boundary stay in the lower band, and anything strictly above it belongs
// to the next band rather than the unmatched-value fallback.
func TestResolveBandBoundaries(t *testing.T) {
	t.Parallel()
	r := NewResolver(DefaultMatrix())

	tests := []struct {
		value     float64
		wantLevel model.ApproverLevel
	}{
		{50_000, model.LevelSalesDirector},
		{50_000.005, model.LevelVP},
		{250_000, model.LevelVP},
		{250_000.0001, model.LevelSVP},
		{1_000_000, model.LevelSVP},
		{1_000_000.5, model.LevelManagingDirector},
	}

	for _, tt := range tests {
		d := r.Resolve(model.DealParameters{TotalValue: tt.value, ContractTermMonths: 12})
		assert.Equal(t, tt.wantLevel, d.Level, "value %v", tt.value)
		assert.NotContains(t, d.Message, "outside configured bands", "value %v", tt.value)
	}
}

func TestResolveMessageFactors(t *testing.T) {
	t.Parallel()
	r := NewResolver(DefaultMatrix())

	d := r.Resolve(model.DealParameters{
		TotalValue:          600000,
		HasNonStandardTerms: true,
		DiscountPercentage:  25,
		ContractTermMonths:  12,
	})
	assert.Contains(t, d.Message, "non-standard terms")
	assert.Contains(t, d.Message, "discount 25.0%")
}

func TestMatrixValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultMatrix().Validate())

	t.Run("no bands", func(t *testing.T) {
		m := DefaultMatrix()
		m.ValueBands = nil
		assert.Error(t, m.Validate())
	})

	t.Run("bounded last band", func(t *testing.T) {
		m := DefaultMatrix()
		max := 100.0
		m.ValueBands[len(m.ValueBands)-1].Max = &max
		assert.Error(t, m.Validate())
	})

	t.Run("overlapping bands", func(t *testing.T) {
		m := DefaultMatrix()
		m.ValueBands[1].Min = 0
		assert.ErrorContains(t, m.Validate(), "not contiguous")
	})

	t.Run("gapped bands", func(t *testing.T) {
		m := DefaultMatrix()
		m.ValueBands[1].Min = 50_000.01
		assert.ErrorContains(t, m.Validate(), "not contiguous")
	})

	t.Run("unknown level", func(t *testing.T) {
		m := DefaultMatrix()
		m.ValueBands[0].StandardTerms = "intern"
		assert.Error(t, m.Validate())
	})

	t.Run("unsorted discount thresholds", func(t *testing.T) {
		m := DefaultMatrix()
		m.DiscountThresholds[0].MinPercent = 5
		assert.Error(t, m.Validate())
	})
}

func TestRules(t *testing.T) {
	t.Parallel()

	got := Rules()
	require.Len(t, got, 8)
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i].Order, got[i-1].Order)
	}

	svp := RuleFor(model.LevelSVP)
	assert.Equal(t, "SVP of Sales", svp.Title)

	unknown := RuleFor("intern")
	assert.Equal(t, "intern", unknown.Title)
}
