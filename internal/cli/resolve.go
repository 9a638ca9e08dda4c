package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/service"
)

// resolveItem maps an item id or #seq number to the item id.
func resolveItem(s *service.Session, ref string) (string, error) {
	return s.ResolveItem(strings.TrimPrefix(ref, "#"))
}

// resolveGroup accepts a group id or the #seq of any of its items.
func resolveGroup(s *service.Session, ref string) (string, error) {
	return s.ResolveGroup(strings.TrimPrefix(ref, "#"))
}

// parseDay accepts YYYY-MM-DD, "today" or "+N" days from today.
func parseDay(input string, today time.Time) (time.Time, error) {
	switch {
	case input == "today":
		return today, nil
	case strings.HasPrefix(input, "+"):
		n, err := strconv.Atoi(input[1:])
		if err != nil {
			return time.Time{}, domain.InvalidInputf("relative day %q", input)
		}
		return today.AddDate(0, 0, n), nil
	default:
		return domain.ParseDate(input)
	}
}

// splitUnits parses "11,12 21" style unit lists.
func splitUnits(args ...string) []string {
	var out []string
	for _, a := range args {
		for _, u := range strings.FieldsFunc(a, func(r rune) bool { return r == ',' || r == ' ' }) {
			out = append(out, u)
		}
	}
	return domain.NormalizeUnits(out)
}

func parseIndex(input string) (int, error) {
	n, err := strconv.Atoi(input)
	if err != nil || n < 0 {
		return 0, domain.InvalidInputf("option index %q", input)
	}
	return n, nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
