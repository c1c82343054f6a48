package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"filamento/internal/hexcolor"
	"filamento/internal/matcher"
	"filamento/internal/models"
)

// placeholderHex is shown for colors without a usable hex value.
const placeholderHex = "#cccccc"

var (
	accent      = lipgloss.Color("#86AAEC")
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	scoreStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#50FA7B"))
	selectedBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1)
	cardBox     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

func swatch(hex string) string {
	display := placeholderHex
	if c, ok := hexcolor.Decode(hex); ok {
		display = c.Hex()
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(display)).Render("    ")
}

func card(box lipgloss.Style, r models.ColorRecord, extra string) string {
	lines := []string{
		swatch(r.Hex) + " " + titleStyle.Render(r.Brand),
		r.ColorName,
	}
	meta := []string{}
	if r.Code != "" {
		meta = append(meta, r.Code)
	}
	if hexcolor.Valid(r.Hex) {
		meta = append(meta, hexcolor.Normalize(r.Hex))
	} else {
		meta = append(meta, "sin color")
	}
	lines = append(lines, faintStyle.Render(strings.Join(meta, " · ")))
	if extra != "" {
		lines = append(lines, extra)
	}
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderCards lays out cards in rows of perRow.
func renderCards(cards []string, perRow int) string {
	if perRow < 1 {
		perRow = 1
	}
	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderFilters(w io.Writer, f matcher.Filters) {
	fmt.Fprintln(w, titleStyle.Render("Tipos"), strings.Join(f.Types, ", "))
	fmt.Fprintln(w, titleStyle.Render("Colores base"), strings.Join(f.BaseColors, ", "))
	fmt.Fprintln(w, titleStyle.Render("Marcas"), strings.Join(f.Brands, ", "))
}

func renderComparison(w io.Writer, c matcher.Comparison, perRow int) {
	fmt.Fprintln(w, card(selectedBox, c.Selected, ""))
	fmt.Fprintln(w, titleStyle.Render("Equivalencias"))
	if len(c.Equivalents) == 0 {
		fmt.Fprintln(w, faintStyle.Render("Sin equivalencias en otras marcas"))
		return
	}
	cards := make([]string, len(c.Equivalents))
	for i, r := range c.Equivalents {
		cards[i] = card(cardBox, r, "")
	}
	fmt.Fprintln(w, renderCards(cards, perRow))
}

func renderMatches(w io.Writer, m matcher.Matches, perRow int) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render("Colores similares"),
		faintStyle.Render(fmt.Sprintf("(%s, umbral %g)", m.Metric, m.Threshold)))
	if len(m.Results) == 0 {
		fmt.Fprintln(w, faintStyle.Render("Sin colores similares"))
		return
	}
	cards := make([]string, len(m.Results))
	for i, r := range m.Results {
		cards[i] = card(cardBox, r.Record, scoreStyle.Render(fmt.Sprintf("%g%% similar", r.Similarity)))
	}
	fmt.Fprintln(w, renderCards(cards, perRow))
}

func renderScore(w io.Writer, s matcher.ScoreResult) {
	fmt.Fprintf(w, "%s %s  %s %s  %s\n",
		swatch(s.A), s.A, swatch(s.B), s.B,
		scoreStyle.Render(fmt.Sprintf("%g%% (%s)", s.Similarity, s.Metric)))
}
