package approval

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadMatrix reads a routing matrix override from a YAML file and
// validates it. Operators use this to tune bands and thresholds without a
// rebuild; the compiled-in DefaultMatrix applies when no file is set.
func LoadMatrix(path string) (Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Matrix{}, eris.Wrapf(err, "approval: read matrix %s", path)
	}

	var m Matrix
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Matrix{}, eris.Wrapf(err, "approval: parse matrix %s", path)
	}

	if m.HighDiscountPercent == 0 {
		m.HighDiscountPercent = DefaultMatrix().HighDiscountPercent
	}
	if m.DefaultLevel == "" {
		m.DefaultLevel = DefaultMatrix().DefaultLevel
	}

	if err := m.Validate(); err != nil {
		return Matrix{}, eris.Wrapf(err, "approval: invalid matrix %s", path)
	}
	return m, nil
}
