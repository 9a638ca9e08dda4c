package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Loads(t *testing.T) {
	c := Default()

	conds := c.Conditions()
	require.NotEmpty(t, conds)

	opts := c.TreatmentOptions("C3")
	require.Len(t, opts, 3)
	assert.Equal(t, 7, opts[0].StepCount(), "default C3 option is the full crown path")
	assert.Equal(t, "Pulpectomy", opts[0].Step(1).Name)

	assert.ElementsMatch(t, []string{"per", "pul", "C4"}, c.AcuteCodes())
	assert.Len(t, c.ExclusivityRules(), 3)
}

func TestGenerationOrder_AppendsUnlistedCodes(t *testing.T) {
	c := Default()
	order := c.GenerationOrder()

	assert.Equal(t, []string{"per", "pul", "C4", "C3", "P2", "C2", "P1", "C1"}, order[:8])
	assert.Contains(t, order, "MT", "codes missing from the configured order still appear")
	assert.Len(t, order, len(c.Conditions()))
}

func TestOption_OutOfRange(t *testing.T) {
	c := Default()

	_, err := c.Option("C2", 5)
	assert.ErrorIs(t, err, domain.ErrUnknownReference)

	opt, err := c.Option("C2", 1)
	require.NoError(t, err)
	assert.Equal(t, "Inlay", opt.Name)
	assert.Equal(t, 1, c.OptionIndex("C2", "Inlay"))
	assert.Equal(t, -1, c.OptionIndex("C2", "Bridge"))
}

func TestParse_RejectsInvalidSchema(t *testing.T) {
	doc := `
conditions:
  - {code: A}
  - {code: A}
steps:
  - {id: s1, name: One}
treatments:
  A:
    - {name: Opt, steps: [s1, s2]}
  B:
    - {name: Other, steps: [s1]}
exclusivity:
  - name: single
    groups: [[A]]
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate code "A"`)
	assert.Contains(t, err.Error(), `unknown step "s2"`)
	assert.Contains(t, err.Error(), `unknown condition "B"`)
	assert.Contains(t, err.Error(), "at least two groups")
}

func TestLoad_FromFile(t *testing.T) {
	doc := `
conditions:
  - {code: A, name: Alpha, acute: true}
steps:
  - {id: s1, name: One}
  - {id: s2, name: Two}
treatments:
  A:
    - {name: Opt, steps: [s1, s2, s1]}
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	cond, ok := c.Condition("A")
	require.True(t, ok)
	assert.Equal(t, "A", cond.Symbol, "symbol defaults to the code")

	opts := c.TreatmentOptions("A")
	require.Len(t, opts, 1)
	assert.Equal(t, 3, opts[0].StepCount(), "repeated step ids are kept")
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	_, ok := c.Condition("per")
	assert.True(t, ok)
}
