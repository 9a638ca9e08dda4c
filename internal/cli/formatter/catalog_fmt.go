package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/odontos/internal/catalog"
)

// FormatCatalog lists conditions with their options and the exclusivity rules.
func FormatCatalog(cat *catalog.Catalog) string {
	rows := [][]string{}
	for _, c := range cat.Conditions() {
		opts := cat.TreatmentOptions(c.Code)
		names := make([]string, 0, len(opts))
		for _, o := range opts {
			names = append(names, fmt.Sprintf("%s(%d)", o.Name, o.StepCount()))
		}
		rows = append(rows, []string{
			ConditionBadge(c.Code, c.Acute),
			c.Name,
			Dim(c.DiseaseCode),
			strings.Join(names, ", "),
		})
	}
	var b strings.Builder
	b.WriteString(RenderTable([]string{"CODE", "NAME", "ICD", "OPTIONS"}, rows))

	if rules := cat.ExclusivityRules(); len(rules) > 0 {
		b.WriteString("\n" + Header("Exclusivity") + "\n")
		for _, r := range rules {
			groups := make([]string, 0, len(r.Groups))
			for _, g := range r.Groups {
				groups = append(groups, "{"+strings.Join(g, ",")+"}")
			}
			fmt.Fprintf(&b, "%s  %s\n", Bold(r.Name), strings.Join(groups, Dim(" ⊥ ")))
		}
	}
	return RenderBox("Catalog", strings.TrimRight(b.String(), "\n"))
}
