package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		return boxStyle.Render(titleRendered + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// RelativeDay describes date against today in days or weeks.
func RelativeDay(date, today time.Time) string {
	days := int(math.Round(domain.DateOnly(date).Sub(domain.DateOnly(today)).Hours() / 24))
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("in %dd", days)
	case days > 0:
		return fmt.Sprintf("in %dw", days/7)
	case days > -14:
		return fmt.Sprintf("%dd ago", -days)
	default:
		return fmt.Sprintf("%dw ago", -days/7)
	}
}

// DayLabel renders "2025-06-02 Mon" with the relative distance dimmed.
func DayLabel(date, today time.Time) string {
	return fmt.Sprintf("%s %s %s",
		StyleBold.Render(domain.FormatDate(date)),
		StyleFg.Render(date.Format("Mon")),
		Dim("("+RelativeDay(date, today)+")"),
	)
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// Units joins a unit set, or "--" when empty.
func Units(units []string) string {
	if len(units) == 0 {
		return Dim("--")
	}
	return strings.Join(units, ",")
}
