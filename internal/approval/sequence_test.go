package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deal-desk/internal/model"
)

func TestRequiredApprovers(t *testing.T) {
	t.Parallel()
	criteria := DefaultStandardDealCriteria()

	tests := []struct {
		name         string
		value        float64
		dealType     string
		salesChannel string
		legalExc     bool
		finExc       bool
		want         []model.ApproverLevel
	}{
		{
			name:  "standard small deal",
			value: 100000, dealType: "grow", salesChannel: "direct",
			want: []model.ApproverLevel{model.LevelRegionalDirector, model.LevelFinance, model.LevelManagingDirector},
		},
		{
			name:  "value above legal threshold adds legal",
			value: 300000, dealType: "grow", salesChannel: "direct",
			want: []model.ApproverLevel{model.LevelRegionalDirector, model.LevelFinance, model.LevelLegal, model.LevelManagingDirector},
		},
		{
			name:  "value above standard ceiling escalates to executive",
			value: 600000, dealType: "grow", salesChannel: "independent_agency",
			want: []model.ApproverLevel{model.LevelRegionalDirector, model.LevelFinance, model.LevelLegal, model.LevelExecutive},
		},
		{
			name:  "legal exceptions add legal below the value threshold",
			value: 50000, dealType: "grow", salesChannel: "direct", legalExc: true,
			want: []model.ApproverLevel{model.LevelRegionalDirector, model.LevelFinance, model.LevelLegal, model.LevelManagingDirector},
		},
		{
			name:  "financial exceptions escalate a standard deal",
			value: 100000, dealType: "protect", salesChannel: "holding_company", finExc: true,
			want: []model.ApproverLevel{model.LevelRegionalDirector, model.LevelFinance, model.LevelExecutive},
		},
		{
			name:  "unknown deal type is non-standard",
			value: 100000, dealType: "land_grab", salesChannel: "direct",
			want: []model.ApproverLevel{model.LevelRegionalDirector, model.LevelFinance, model.LevelExecutive},
		},
		{
			name:  "empty channel is non-standard",
			value: 100000, dealType: "grow",
			want: []model.ApproverLevel{model.LevelRegionalDirector, model.LevelFinance, model.LevelExecutive},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := RequiredApprovers(criteria, tt.value, tt.dealType, tt.salesChannel, tt.legalExc, tt.finExc)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Regardless of input, the sequence always opens with Regional Director
// followed by Finance.
func TestRequiredApproversPrefix(t *testing.T) {
	t.Parallel()
	criteria := DefaultStandardDealCriteria()

	for _, value := range []float64{0, 1, 250_000, 250_001, 10_000_000} {
		for _, legal := range []bool{false, true} {
			for _, fin := range []bool{false, true} {
				got := RequiredApprovers(criteria, value, "grow", "direct", legal, fin)
				require.GreaterOrEqual(t, len(got), 3)
				assert.Equal(t, model.LevelRegionalDirector, got[0])
				assert.Equal(t, model.LevelFinance, got[1])
			}
		}
	}
}
