// Package render draws the coupon board for a terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Cheertaboi/coupon-board/internal/models"
	"github.com/Cheertaboi/coupon-board/internal/service"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	featuredCardStyle = cardStyle.BorderForeground(lipgloss.Color("220"))
	bestStyle         = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(lipgloss.Color("208")).
				Padding(0, 1)
	badgeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("27")).Padding(0, 1)
	verifiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	featuredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	titleStyle    = lipgloss.NewStyle().Bold(true)
)

// Card renders a single coupon.
func Card(c models.Coupon, copied bool) string {
	tags := []string{badgeStyle.Render(c.DiscountLabel)}
	if c.Verified {
		tags = append(tags, verifiedStyle.Render("✓ Verified"))
	}
	if c.Featured {
		tags = append(tags, featuredStyle.Render("⭐ Featured"))
	}

	lines := []string{
		strings.Join(tags, " "),
		c.Description,
		dimStyle.Render("⏰ " + c.Expiry),
		action(c, copied, "Copy: "+c.Code, "✓ Copied!", "Shop This Deal →"),
	}

	style := cardStyle
	if c.Featured {
		style = featuredCardStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

// BestDeal renders the highlighted best-deal panel.
func BestDeal(c models.Coupon, copied bool) string {
	lines := []string{
		titleStyle.Render("🏆 BEST DEAL") + "  " + badgeStyle.Render(c.DiscountLabel),
		c.Description,
		action(c, copied, "COPY CODE: "+c.Code, "✓ COPIED!", "SHOP NOW →"),
		dimStyle.Render("⏰ Expires: " + c.Expiry),
	}
	return bestStyle.Render(strings.Join(lines, "\n"))
}

func action(c models.Coupon, copied bool, copyLabel, copiedLabel, shopLabel string) string {
	if !c.Copyable() {
		return shopLabel
	}
	if copied {
		return copiedLabel
	}
	return copyLabel
}

// Tabs renders the filter controls with the selected one bracketed.
func Tabs(selected models.Filter) string {
	parts := make([]string, 0, len(models.Filters))
	for _, t := range models.Filters {
		label := t.Icon + " " + t.Label
		if t.Filter == selected {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

// Board writes the best deal, the filter tabs and the filtered cards.
func Board(w io.Writer, s service.Snapshot) error {
	var b strings.Builder
	if s.Best != nil {
		b.WriteString(BestDeal(*s.Best, s.IsCopied(s.Best.Code)))
		b.WriteString("\n\n")
	}
	b.WriteString(Tabs(s.Filter))
	b.WriteString("\n\n")
	if len(s.View) == 0 {
		b.WriteString(dimStyle.Render("no coupons in this category"))
		b.WriteString("\n")
	}
	for _, c := range s.View {
		b.WriteString(Card(c, s.IsCopied(c.Code)))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("render board: %w", err)
	}
	return nil
}
