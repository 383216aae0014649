// Package report renders session and series statistics for the terminal.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"

	"github.com/kmatts/pokernight/internal/parser"
	"github.com/kmatts/pokernight/internal/series"
	"github.com/kmatts/pokernight/internal/stats"
)

// Renderer builds the terminal report. Render methods return the styled
// text so callers decide where it goes.
type Renderer struct {
	section pterm.SectionPrinter
	table   pterm.TablePrinter
}

func NewRenderer() *Renderer {
	return &Renderer{
		section: *pterm.DefaultSection.WithLevel(2),
		table:   *pterm.DefaultTable.WithHasHeader().WithBoxed(),
	}
}

// Session renders the full per-session report.
func (r *Renderer) Session(s *stats.Stats, evening *parser.Evening) string {
	var b strings.Builder
	b.WriteString(r.WinStats(s))
	b.WriteString(r.PlayStats(s))
	b.WriteString(r.PreflopStats(s))
	b.WriteString(r.Shapes(s))
	b.WriteString(r.ChipProgression(evening))
	if len(evening.Corrections) > 0 {
		b.WriteString(r.Corrections(evening))
	}
	return b.String()
}

// WinStats answers "where did the money come from" per player.
func (r *Renderer) WinStats(s *stats.Stats) string {
	data := pterm.TableData{{"Player", "Wins", "Median win", "Showdown", "Preshowdown"}}
	for _, name := range sortedPlayers(s) {
		p := s.Player(name)
		data = append(data, []string{
			name,
			fmt.Sprintf("%d", p.Wins()),
			fmt.Sprintf("%.0f", p.MedianWin()),
			percent(p.ShowdownShare()),
			percent(1 - p.ShowdownShare()),
		})
	}
	return r.renderSection(fmt.Sprintf("Win stats (%d rounds)", s.Rounds), data)
}

// PlayStats answers "what happened when you played a round".
func (r *Renderer) PlayStats(s *stats.Stats) string {
	data := pterm.TableData{{"Player", "Present", "Voluntary", "VPIP", "Won/voluntary", "Showdowns won"}}
	for _, name := range sortedPlayers(s) {
		p := s.Player(name)
		data = append(data, []string{
			name,
			fmt.Sprintf("%d", p.RoundsPresent),
			fmt.Sprintf("%d", p.RoundsContributed),
			percent(p.VPIP()),
			percent(p.WinRate()),
			fmt.Sprintf("%d / %d (%s)", p.ShowdownsWon, p.ShowdownsPlayed, percent(p.ShowdownWinRate())),
		})
	}
	return r.renderSection("Play stats", data)
}

// PreflopStats summarizes preflop aggression.
func (r *Renderer) PreflopStats(s *stats.Stats) string {
	data := pterm.TableData{{"Player", "PFR", "3-bet", "Limped", "Avg raise", "Avg 3-bet"}}
	for _, name := range sortedPlayers(s) {
		p := s.Player(name)
		data = append(data, []string{
			name,
			percent(p.PFR()),
			percent(p.ThreeBetRate()),
			percent(p.LimpRate()),
			fmt.Sprintf("%.0f", p.AvgRaise()),
			fmt.Sprintf("%.0f", p.AvgThreeBet()),
		})
	}
	return r.renderSection("Preflop behavior", data)
}

// Shapes summarizes the user's dealt hands and board texture.
func (r *Renderer) Shapes(s *stats.Stats) string {
	sh := s.Shapes
	if sh == nil || sh.HandsSeen == 0 {
		return ""
	}

	type shapeCount struct {
		shape string
		n     int
	}
	counts := make([]shapeCount, 0, len(sh.Shapes))
	for shape, n := range sh.Shapes {
		counts = append(counts, shapeCount{shape, n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].n != counts[j].n {
			return counts[i].n > counts[j].n
		}
		return counts[i].shape < counts[j].shape
	})

	data := pterm.TableData{{"Shape", "Dealt"}}
	for _, c := range counts {
		data = append(data, []string{c.shape, fmt.Sprintf("%d", c.n)})
	}
	title := fmt.Sprintf("Dealt hands for %s (%d known, monotone flops %s)",
		s.Username, sh.HandsSeen, percent(sh.MonotoneFlopRate()))
	return r.renderSection(title, data)
}

// ChipProgression shows each player's stack from first to last round.
func (r *Renderer) ChipProgression(evening *parser.Evening) string {
	players := make([]string, 0, len(evening.HistoricalAmounts))
	for player := range evening.HistoricalAmounts {
		players = append(players, player)
	}
	sort.Strings(players)

	data := pterm.TableData{{"Player", "Start", "End", "Net"}}
	for _, player := range players {
		points := evening.HistoricalAmounts[player]
		if len(points) == 0 {
			continue
		}
		start := points[0].Amount
		end := evening.Players[player]
		net := end - start
		netStr := fmt.Sprintf("%+d", net)
		switch {
		case net > 0:
			netStr = pterm.LightGreen(netStr)
		case net < 0:
			netStr = pterm.LightRed(netStr)
		}
		data = append(data, []string{player, fmt.Sprintf("%d", start), fmt.Sprintf("%d", end), netStr})
	}
	return r.renderSection("Chip progression", data)
}

// Corrections lists reconciliation mismatches, with the snapshot value that
// was taken as truth.
func (r *Renderer) Corrections(evening *parser.Evening) string {
	data := pterm.TableData{{"Round", "Player", "Computed", "Snapshot"}}
	for _, c := range evening.Corrections {
		data = append(data, []string{
			fmt.Sprintf("%d", c.Round),
			c.Player,
			fmt.Sprintf("%d", c.Computed),
			fmt.Sprintf("%d", c.Reported),
		})
	}
	title := pterm.LightYellow(fmt.Sprintf("Stack corrections (%d)", len(evening.Corrections)))
	return r.renderSection(title, data)
}

// Series renders the tournament leaderboards.
func (r *Renderer) Series(s *series.Stats) string {
	var b strings.Builder
	boards := []struct {
		title  string
		metric func(*series.PlayerSeries) float64
		format string
	}{
		{"Total winnings", (*series.PlayerSeries).TotalWon, "%.0f"},
		{"Total spending", (*series.PlayerSeries).TotalSpent, "%.0f"},
		{"Won/spent ratio", (*series.PlayerSeries).LastRatio, "%.2f"},
		{"Absolute winnings", (*series.PlayerSeries).LastDiff, "%+.0f"},
	}
	for _, board := range boards {
		data := pterm.TableData{{"Player", board.title}}
		for _, entry := range s.Leaderboard(board.metric) {
			data = append(data, []string{entry.Player, fmt.Sprintf(board.format, entry.Value)})
		}
		b.WriteString(r.renderSection(board.title, data))
	}
	return b.String()
}

func (r *Renderer) renderSection(title string, data pterm.TableData) string {
	table, err := r.table.WithData(data).Srender()
	if err != nil {
		table = fmt.Sprintf("render table: %v", err)
	}
	return r.section.Sprintln(title) + table + "\n\n"
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func sortedPlayers(s *stats.Stats) []string {
	names := make([]string, 0, len(s.Players))
	for name := range s.Players {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
