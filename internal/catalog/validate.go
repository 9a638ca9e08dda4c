package catalog

import "fmt"

// ValidateSchema checks a CatalogSchema for structural errors.
// Returns a slice of errors (empty if valid).
func ValidateSchema(schema *CatalogSchema) []error {
	var errs []error

	if len(schema.Conditions) == 0 {
		errs = append(errs, fmt.Errorf("at least one condition is required"))
	}

	codes := map[string]bool{}
	for i, c := range schema.Conditions {
		if c.Code == "" {
			errs = append(errs, fmt.Errorf("condition[%d]: code is required", i))
			continue
		}
		if codes[c.Code] {
			errs = append(errs, fmt.Errorf("condition[%d]: duplicate code %q", i, c.Code))
		}
		codes[c.Code] = true
	}

	stepIDs := map[string]bool{}
	for i, s := range schema.Steps {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("step[%d]: id is required", i))
			continue
		}
		if stepIDs[s.ID] {
			errs = append(errs, fmt.Errorf("step[%d]: duplicate id %q", i, s.ID))
		}
		stepIDs[s.ID] = true
	}

	for code, options := range schema.Treatments {
		if !codes[code] {
			errs = append(errs, fmt.Errorf("treatments: unknown condition %q", code))
		}
		names := map[string]bool{}
		for i, o := range options {
			if o.Name == "" {
				errs = append(errs, fmt.Errorf("treatments[%s][%d]: name is required", code, i))
			}
			if names[o.Name] {
				errs = append(errs, fmt.Errorf("treatments[%s][%d]: duplicate option %q", code, i, o.Name))
			}
			names[o.Name] = true
			if len(o.StepIDs) == 0 {
				errs = append(errs, fmt.Errorf("treatments[%s][%d]: at least one step is required", code, i))
			}
			for _, id := range o.StepIDs {
				if !stepIDs[id] {
					errs = append(errs, fmt.Errorf("treatments[%s][%d]: unknown step %q", code, i, id))
				}
			}
		}
	}

	for i, r := range schema.Exclusivity {
		if len(r.Groups) < 2 {
			errs = append(errs, fmt.Errorf("exclusivity[%d]: at least two groups are required", i))
		}
		seen := map[string]bool{}
		for _, g := range r.Groups {
			for _, c := range g {
				if !codes[c] {
					errs = append(errs, fmt.Errorf("exclusivity[%d]: unknown condition %q", i, c))
				}
				if seen[c] {
					errs = append(errs, fmt.Errorf("exclusivity[%d]: condition %q appears in more than one group", i, c))
				}
				seen[c] = true
			}
		}
	}

	for _, c := range schema.GenerationOrder {
		if !codes[c] {
			errs = append(errs, fmt.Errorf("generation_order: unknown condition %q", c))
		}
	}

	return errs
}
