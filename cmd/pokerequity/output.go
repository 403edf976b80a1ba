package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/pokerequity/analysis"
	"github.com/lox/pokerequity/poker"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	handStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	equityStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	tieStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))

	redSuitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

// Grid cell styles by which ranges contain the hand.
var (
	cellNone = lipgloss.NewStyle().Width(4).Foreground(lipgloss.Color("8"))
	cellA    = lipgloss.NewStyle().Width(4).Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#2ecc71"))
	cellB    = lipgloss.NewStyle().Width(4).Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#3498db"))
	cellBoth = lipgloss.NewStyle().Width(4).Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("#9b59b6"))
)

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// formatBoard renders cards with suit symbols, red suits highlighted.
func formatBoard(cards []poker.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		if c.Suit.IsRed() {
			parts[i] = redSuitStyle.Render(c.Pretty())
		} else {
			parts[i] = c.Pretty()
		}
	}
	return strings.Join(parts, " ")
}

// equityView is everything printed for one simulation.
type equityView struct {
	LabelA, LabelB string
	Board          analysis.Board
	Result         analysis.EquityResult
	Seed           int64
	Elapsed        time.Duration
	Ranges         bool
}

func renderEquity(out io.Writer, v equityView) error {
	if len(v.Board) > 0 {
		fmt.Fprintf(out, "%s\n", headerStyle.Render("board"))
		fmt.Fprintf(out, "%s\n\n", formatBoard(v.Board))
	}

	r := v.Result
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("hand"),
		headerStyle.Render("equity"),
		headerStyle.Render("win"),
		headerStyle.Render("tie"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		handStyle.Render(v.LabelA),
		equityStyle.Render(percent(r.EquityA)),
		winStyle.Render(percent(r.WinRateA())),
		tieStyle.Render(percent(r.TieRate())))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		handStyle.Render(v.LabelB),
		equityStyle.Render(percent(r.EquityB)),
		winStyle.Render(percent(r.WinRateB())),
		tieStyle.Render(percent(r.TieRate())))
	if err := w.Flush(); err != nil {
		return err
	}

	lower, upper := r.ConfidenceInterval()
	fmt.Fprintln(out)
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("95%% CI for %s: %.1f%% to %.1f%%", v.LabelA, lower, upper)))
	if v.Ranges {
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d vs %d hands, %d pairs and %d combos sampled",
			r.HandsA, r.HandsB, r.PairsSampled, r.CombosSampled)))
	}
	_, err := fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d trials in %v (seed %d)",
		r.Trials, v.Elapsed.Round(time.Millisecond), v.Seed)))
	return err
}

// renderNotation lists every hand in a range with its combo count.
func renderNotation(out io.Writer, notation string, rng *analysis.Range) error {
	fmt.Fprintf(out, "%s\n\n", headerStyle.Render(notation))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("hand"),
		headerStyle.Render("name"),
		headerStyle.Render("type"),
		headerStyle.Render("combos"))
	for _, h := range rng.Hands() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", handStyle.Render(h.String()), h.DisplayName(), h.Kind(), h.ComboCount())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	total := rng.ComboCount()
	_, err := fmt.Fprintf(out, "\n%s\n", dimStyle.Render(fmt.Sprintf("%d hands, %d combos (%.1f%% of all starting hands)",
		rng.Len(), total, float64(total)/float64(totalCombos)*100)))
	return err
}

const totalCombos = 52 * 51 / 2

// renderGrid draws the 13x13 chart with pairs on the diagonal, suited hands
// above it and offsuit hands below. b may be nil.
func renderGrid(out io.Writer, a, b *analysis.Range) error {
	inA := a.GridMembership()
	var inB [analysis.GridSize][analysis.GridSize]bool
	if b != nil {
		inB = b.GridMembership()
	}

	var sb strings.Builder
	for row := range analysis.GridSize {
		for col := range analysis.GridSize {
			label := analysis.GridHand(row, col).String()
			style := cellNone
			switch {
			case inA[row][col] && inB[row][col]:
				style = cellBoth
			case inA[row][col]:
				style = cellA
			case inB[row][col]:
				style = cellB
			}
			sb.WriteString(style.Render(label))
		}
		sb.WriteByte('\n')
	}
	if _, err := io.WriteString(out, sb.String()); err != nil {
		return err
	}

	legend := cellA.Render("A") + " " + fmt.Sprintf("%d combos", a.ComboCount())
	if b != nil {
		legend += "  " + cellB.Render("B") + " " + fmt.Sprintf("%d combos", b.ComboCount()) +
			"  " + cellBoth.Render("A+B")
	}
	_, err := fmt.Fprintf(out, "\n%s\n", legend)
	return err
}

// renderPresets lists position presets with their sizes.
func renderPresets(out io.Writer, names []string, lookup func(string) (string, bool)) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("position"),
		headerStyle.Render("hands"),
		headerStyle.Render("combos"),
		headerStyle.Render("range"))
	for _, name := range names {
		notation, ok := lookup(name)
		if !ok {
			continue
		}
		rng, err := analysis.ParseRange(notation)
		if err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
		fmt.Fprintf(w, "%s\t%d\t%d (%s)\t%s\n",
			handStyle.Render(name),
			rng.Len(),
			rng.ComboCount(),
			percent(float64(rng.ComboCount())/float64(totalCombos)*100),
			dimStyle.Render(notation))
	}
	return w.Flush()
}
