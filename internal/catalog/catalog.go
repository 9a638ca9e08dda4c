package catalog

import (
	"cmp"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/alexanderramin/odontos/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// Catalog is the read-only master data consumed by the engine: conditions,
// their treatment options and the exclusivity rules.
type Catalog struct {
	conditions []domain.Condition
	byCode     map[string]domain.Condition
	options    map[string][]domain.TreatmentOption
	rules      []domain.ExclusivityRule
	order      []string
}

// Default returns the embedded dental catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file. An empty path yields Default().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var schema CatalogSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return FromSchema(&schema)
}

// FromSchema builds a Catalog from an already decoded schema.
func FromSchema(schema *CatalogSchema) (*Catalog, error) {
	if errs := ValidateSchema(schema); len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog: %w", errors.Join(errs...))
	}

	steps := make(map[string]domain.StepDescriptor, len(schema.Steps))
	for _, s := range schema.Steps {
		steps[s.ID] = domain.StepDescriptor{
			ID:            s.ID,
			Name:          s.Name,
			ProcedureCode: s.ProcedureCode,
			Points:        s.Points,
		}
	}

	c := &Catalog{
		byCode:  make(map[string]domain.Condition, len(schema.Conditions)),
		options: make(map[string][]domain.TreatmentOption, len(schema.Treatments)),
	}
	for _, cc := range schema.Conditions {
		cond := domain.Condition{
			Code:        cc.Code,
			Name:        cc.Name,
			Symbol:      cmp.Or(cc.Symbol, cc.Code),
			DiseaseCode: cc.DiseaseCode,
			Acute:       cc.Acute,
		}
		c.conditions = append(c.conditions, cond)
		c.byCode[cond.Code] = cond
	}
	for code, opts := range schema.Treatments {
		for _, o := range opts {
			opt := domain.TreatmentOption{ConditionCode: code, Name: o.Name}
			for _, id := range o.StepIDs {
				opt.Steps = append(opt.Steps, steps[id])
			}
			c.options[code] = append(c.options[code], opt)
		}
	}
	for _, r := range schema.Exclusivity {
		groups := make([][]string, len(r.Groups))
		for i, g := range r.Groups {
			groups[i] = slices.Clone(g)
		}
		c.rules = append(c.rules, domain.ExclusivityRule{Name: r.Name, Groups: groups})
	}

	seen := map[string]bool{}
	for _, code := range schema.GenerationOrder {
		if !seen[code] {
			c.order = append(c.order, code)
			seen[code] = true
		}
	}
	for _, cond := range c.conditions {
		if !seen[cond.Code] {
			c.order = append(c.order, cond.Code)
			seen[cond.Code] = true
		}
	}
	return c, nil
}

// Conditions returns every condition in catalog order.
func (c *Catalog) Conditions() []domain.Condition {
	return slices.Clone(c.conditions)
}

func (c *Catalog) Condition(code string) (domain.Condition, bool) {
	cond, ok := c.byCode[code]
	return cond, ok
}

// TreatmentOptions returns the options of a condition; index 0 is the default.
func (c *Catalog) TreatmentOptions(code string) []domain.TreatmentOption {
	return slices.Clone(c.options[code])
}

// Option resolves one option of a condition by index.
func (c *Catalog) Option(code string, index int) (domain.TreatmentOption, error) {
	opts := c.options[code]
	if index < 0 || index >= len(opts) {
		return domain.TreatmentOption{}, domain.UnknownRef("treatment option", fmt.Sprintf("%s[%d]", code, index))
	}
	return opts[index], nil
}

// OptionIndex returns the index of the named option of a condition, or -1.
func (c *Catalog) OptionIndex(code, name string) int {
	for i, o := range c.options[code] {
		if o.Name == name {
			return i
		}
	}
	return -1
}

func (c *Catalog) ExclusivityRules() []domain.ExclusivityRule {
	return slices.Clone(c.rules)
}

// GenerationOrder lists every condition code, most severe first. Codes
// absent from the configured order follow in catalog order.
func (c *Catalog) GenerationOrder() []string {
	return slices.Clone(c.order)
}

// AcuteCodes lists the conditions flagged acute.
func (c *Catalog) AcuteCodes() []string {
	var out []string
	for _, cond := range c.conditions {
		if cond.Acute {
			out = append(out, cond.Code)
		}
	}
	return out
}
