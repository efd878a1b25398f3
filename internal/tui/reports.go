package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pixelpomo/internal/orchestrator"
	"github.com/sadopc/pixelpomo/internal/timer"
)

// logPageSize is how many session log rows fit on one page.
const logPageSize = 8

// reportsModel shows the quick stats, a bar chart of the last seven days and
// the session log.
type reportsModel struct {
	stats  orchestrator.Stats
	width  int
	height int

	page int // session log page, 0 = newest

	chart barchart.Model
}

func newReportsModel(o *orchestrator.Orchestrator) reportsModel {
	r := reportsModel{
		stats: o.Snapshot().Stats,
		chart: barchart.New(60, 12),
	}
	r.buildChart()
	return r
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

func (r *reportsModel) setSnapshot(s orchestrator.Snapshot) {
	r.stats = s.Stats
	if r.page > r.lastPage() {
		r.page = r.lastPage()
	}
	r.buildChart()
}

func (r reportsModel) lastPage() int {
	n := len(r.stats.Recent)
	if n == 0 {
		return 0
	}
	return (n - 1) / logPageSize
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left):
			if r.page < r.lastPage() {
				r.page++
			}
		case key.Matches(msg, keys.Right):
			if r.page > 0 {
				r.page--
			}
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if r.height > 30 {
		chartHeight = 14
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	bar := lipgloss.NewStyle().Foreground(colorPrimary)
	empty := lipgloss.NewStyle().Foreground(colorSubtle)

	var bars []barchart.BarData
	for _, d := range r.stats.Last7Days {
		style := bar
		if d.Count == 0 {
			style = empty
		}
		bars = append(bars, barchart.BarData{
			Label:  d.Label,
			Values: []barchart.BarValue{{Name: d.Date, Value: float64(d.Count), Style: style}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	header := titleStyle.Render("Stats")
	cards := r.renderCards()

	chartTitle := subtitleStyle.Render("Sessions, last 7 days")
	chartView := r.chart.View()

	logView := r.renderSessionLog(w)

	nav := mutedStyle.Render("  ←/→: older/newer sessions")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", cards, "", chartTitle, chartView, "", logView, "", nav,
		),
	)
}

func (r reportsModel) renderCards() string {
	s := r.stats
	card := func(label, value string, color lipgloss.Color) string {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 2).
			MarginRight(1).
			Render(lipgloss.JoinVertical(lipgloss.Center,
				mutedStyle.Render(label),
				lipgloss.NewStyle().Bold(true).Foreground(color).Render(value),
			))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("TODAY", fmt.Sprintf("%d", s.TodayCount), colorHighlight),
		card("FOCUS TODAY", fmt.Sprintf("%dm", s.TodayMinutes), colorSuccess),
		card("STREAK", fmt.Sprintf("%dd", s.Streak), colorPrimary),
		card("SESSIONS", fmt.Sprintf("%d", s.TotalSessions), colorFg),
		card("TOTAL FOCUS", timer.FormatFocusTime(s.TotalMinutes), colorFocus),
	)
}

func (r reportsModel) renderSessionLog(w int) string {
	if len(r.stats.Recent) == 0 {
		return mutedStyle.Render("  No sessions yet. Finish a work interval to start your log.")
	}

	start := r.page * logPageSize
	end := min(start+logPageSize, len(r.stats.Recent))

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %-8s %8s", "Date", "Time", "Minutes")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 30))))
	for _, s := range r.stats.Recent[start:end] {
		rows = append(rows, fmt.Sprintf("  %-12s %-8s %8d",
			s.Date, s.Timestamp.Local().Format("15:04"), s.DurationMinutes,
		))
	}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  page %d/%d", r.page+1, r.lastPage()+1)))
	return strings.Join(rows, "\n")
}
