// Package series aggregates tournament results across a whole run of
// sessions. Tournament play cares about elimination order rather than chip
// counts: prizes are awarded by finishing position, and chips only break
// ties.
package series

import (
	"sort"
	"strings"

	"github.com/kmatts/pokernight/internal/parser"
)

// NameMapping resolves player aliases to canonical names. Players change
// nicknames between games, and the "@ id" suffix of a PokerNow identity
// changes every session, so both are normalized away before aggregating.
type NameMapping struct {
	aliases map[string]string
}

// NewNameMapping builds a mapping from alias to canonical name.
func NewNameMapping(aliases map[string]string) *NameMapping {
	m := make(map[string]string, len(aliases))
	for alias, canonical := range aliases {
		m[alias] = canonical
	}
	return &NameMapping{aliases: m}
}

// Normalize strips the "@ id" suffix and applies the alias table.
func (n *NameMapping) Normalize(name string) string {
	actual := strings.TrimSpace(strings.SplitN(name, "@", 2)[0])
	if canonical, ok := n.aliases[actual]; ok {
		return canonical
	}
	return actual
}

// TournamentSpec describes the payout structure of one tournament in the
// series. PrizeFractions maps a finishing position (1 is the winner) to the
// fraction of the prize pool awarded; positions not listed win nothing.
// StartAmount is the buy-in every player contributes.
type TournamentSpec struct {
	PrizeFractions map[int]float64
	StartAmount    float64
}

// PrizeFractionForPosition returns the pool fraction paid to the given
// finishing position.
func (t TournamentSpec) PrizeFractionForPosition(pos int) float64 {
	return t.PrizeFractions[pos]
}

// PlayerSeries tracks one player's results game by game.
type PlayerSeries struct {
	Player string
	// GameNumbers lists the 1-based games the player appeared in; the
	// remaining slices are parallel to it.
	GameNumbers []int
	Wins        []float64
	Spending    []float64

	CumulatedWins     []float64
	CumulatedSpending []float64

	// Ratios is won/spent cumulated over time; Diffs is won-spent, the
	// absolute winnings.
	Ratios []float64
	Diffs  []float64
}

// RecordGame appends one game's result and extends the cumulative views.
func (p *PlayerSeries) RecordGame(gameNo int, won, spent float64) {
	p.GameNumbers = append(p.GameNumbers, gameNo)
	p.Wins = append(p.Wins, won)
	p.Spending = append(p.Spending, spent)

	totalWon := won
	if n := len(p.CumulatedWins); n > 0 {
		totalWon += p.CumulatedWins[n-1]
	}
	p.CumulatedWins = append(p.CumulatedWins, totalWon)

	totalSpent := spent
	if n := len(p.CumulatedSpending); n > 0 {
		totalSpent += p.CumulatedSpending[n-1]
	}
	p.CumulatedSpending = append(p.CumulatedSpending, totalSpent)

	p.Ratios = append(p.Ratios, totalWon/totalSpent)
	p.Diffs = append(p.Diffs, totalWon-totalSpent)
}

// TotalWon is the player's cumulative prize money.
func (p *PlayerSeries) TotalWon() float64 {
	if len(p.CumulatedWins) == 0 {
		return 0
	}
	return p.CumulatedWins[len(p.CumulatedWins)-1]
}

// TotalSpent is the player's cumulative buy-ins.
func (p *PlayerSeries) TotalSpent() float64 {
	if len(p.CumulatedSpending) == 0 {
		return 0
	}
	return p.CumulatedSpending[len(p.CumulatedSpending)-1]
}

// LastRatio is the final won/spent ratio.
func (p *PlayerSeries) LastRatio() float64 {
	if len(p.Ratios) == 0 {
		return 0
	}
	return p.Ratios[len(p.Ratios)-1]
}

// LastDiff is the final absolute winnings.
func (p *PlayerSeries) LastDiff() float64 {
	if len(p.Diffs) == 0 {
		return 0
	}
	return p.Diffs[len(p.Diffs)-1]
}

// EveningRanking orders one session's players by finishing position, winner
// first. A player's elimination point is the first round where their stack
// hit zero; players never eliminated rank above everyone else by their
// final stack, and among the eliminated a later bust beats an earlier one,
// with the stack just before busting as the tie breaker.
func EveningRanking(evening *parser.Evening) []string {
	type standing struct {
		player   string
		survived bool
		bustedAt int
		amount   int
	}

	players := make([]string, 0, len(evening.HistoricalAmounts))
	for player := range evening.HistoricalAmounts {
		players = append(players, player)
	}
	sort.Strings(players)

	standings := make([]standing, 0, len(players))
	for _, player := range players {
		points := evening.HistoricalAmounts[player]
		st := standing{player: player}
		busted := -1
		for i, pt := range points {
			if pt.Amount == 0 {
				busted = i
				break
			}
		}
		if busted < 0 {
			st.survived = true
			if len(points) > 0 {
				st.amount = points[len(points)-1].Amount
			}
		} else {
			// Rank by the round the bust happened in, not the sample
			// index: a mid-session joiner's samples start late.
			st.bustedAt = points[busted].Round
			if busted > 0 {
				st.amount = points[busted-1].Amount
			}
		}
		standings = append(standings, st)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.survived != b.survived {
			return a.survived
		}
		if !a.survived && a.bustedAt != b.bustedAt {
			return a.bustedAt > b.bustedAt
		}
		return a.amount > b.amount
	})

	ranking := make([]string, len(standings))
	for i, st := range standings {
		ranking[i] = st.player
	}
	return ranking
}

// Stats aggregates a tournament series over multiple reconstructed
// sessions.
type Stats struct {
	spec    TournamentSpec
	mapping *NameMapping
	Players map[string]*PlayerSeries
}

// NewStats creates an empty series aggregation.
func NewStats(spec TournamentSpec, mapping *NameMapping) *Stats {
	if mapping == nil {
		mapping = NewNameMapping(nil)
	}
	return &Stats{
		spec:    spec,
		mapping: mapping,
		Players: make(map[string]*PlayerSeries),
	}
}

// AddEvenings folds the given sessions, in order, into the series.
func (s *Stats) AddEvenings(evenings []*parser.Evening) {
	for i, evening := range evenings {
		gameNo := i + 1
		ranking := EveningRanking(evening)
		totalPot := s.spec.StartAmount * float64(len(ranking))
		for pos, player := range ranking {
			name := s.mapping.Normalize(player)
			ps, ok := s.Players[name]
			if !ok {
				ps = &PlayerSeries{Player: name}
				s.Players[name] = ps
			}
			won := float64(int(s.spec.PrizeFractionForPosition(pos+1) * totalPot))
			ps.RecordGame(gameNo, won, s.spec.StartAmount)
		}
	}
}

// Entry is one row of a leaderboard.
type Entry struct {
	Player string
	Value  float64
}

// Leaderboard returns players sorted descending by the given metric.
func (s *Stats) Leaderboard(metric func(*PlayerSeries) float64) []Entry {
	entries := make([]Entry, 0, len(s.Players))
	for _, ps := range s.Players {
		entries = append(entries, Entry{Player: ps.Player, Value: metric(ps)})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Player < entries[j].Player
	})
	return entries
}
