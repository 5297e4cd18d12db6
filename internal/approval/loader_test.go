package approval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deal-desk/internal/model"
)

const validMatrixYAML = `
high_discount_percent: 15
default_level: sales_director
value_bands:
  - min: 0
    max: 100000
    standard_terms: sales_director
    non_standard_terms: vp
    high_discount: vp
  - min: 100000
    standard_terms: svp
    non_standard_terms: managing_director
    high_discount: executive
discount_thresholds:
  - min_percent: 30
    level: managing_director
  - min_percent: 15
    level: svp
term_thresholds:
  - min_months: 36
    level: svp
`

func writeMatrix(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matrix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMatrix(t *testing.T) {
	t.Parallel()

	m, err := LoadMatrix(writeMatrix(t, validMatrixYAML))
	require.NoError(t, err)
	assert.InDelta(t, 15, m.HighDiscountPercent, 0.01)
	assert.Len(t, m.ValueBands, 2)
	assert.Nil(t, m.ValueBands[1].Max)

	d := NewResolver(m).Resolve(model.DealParameters{TotalValue: 200000, DiscountPercentage: 0, ContractTermMonths: 12})
	assert.Equal(t, model.LevelSVP, d.Level)
}

func TestLoadMatrixDefaultsFill(t *testing.T) {
	t.Parallel()

	yaml := `
value_bands:
  - min: 0
    standard_terms: vp
    non_standard_terms: svp
    high_discount: svp
`
	m, err := LoadMatrix(writeMatrix(t, yaml))
	require.NoError(t, err)
	assert.InDelta(t, DefaultMatrix().HighDiscountPercent, m.HighDiscountPercent, 0.01)
	assert.Equal(t, DefaultMatrix().DefaultLevel, m.DefaultLevel)
}

func TestLoadMatrixErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadMatrix(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadMatrix(writeMatrix(t, "value_bands: [whoops"))
		assert.Error(t, err)
	})

	t.Run("gapped bands", func(t *testing.T) {
		yaml := `
value_bands:
  - min: 0
    max: 100000
    standard_terms: vp
    non_standard_terms: svp
    high_discount: svp
  - min: 100000.01
    standard_terms: svp
    non_standard_terms: executive
    high_discount: executive
`
		_, err := LoadMatrix(writeMatrix(t, yaml))
		assert.ErrorContains(t, err, "not contiguous")
	})

	t.Run("invalid matrix", func(t *testing.T) {
		yaml := `
value_bands:
  - min: 0
    max: 100
    standard_terms: vp
    non_standard_terms: svp
    high_discount: svp
`
		_, err := LoadMatrix(writeMatrix(t, yaml))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unbounded")
	})
}
