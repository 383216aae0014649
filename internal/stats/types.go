package stats

// PlayerStats holds one player's aggregated numbers for a session.
type PlayerStats struct {
	Player string

	// Win amounts, split by how the pot was taken.
	WinAmounts         []int
	ShowdownAmounts    []int
	PreshowdownAmounts []int

	// Participation counts.
	RoundsPresent     int
	RoundsContributed int // voluntary money in preflop
	ShowdownsPlayed   int
	ShowdownsWon      int

	// Preflop behavior.
	LimpRounds      int
	RaiseRounds     int
	RaiseAmounts    []int
	ThreeBetRounds  int
	ThreeBetAmounts []int
}

// Wins is the total number of pots the player took.
func (p *PlayerStats) Wins() int {
	return len(p.WinAmounts)
}

// VPIP is the share of rounds present where the player voluntarily put
// money in the pot.
func (p *PlayerStats) VPIP() float64 {
	return safeDiv(p.RoundsContributed, p.RoundsPresent)
}

// PFR is the share of rounds present where the player raised preflop.
func (p *PlayerStats) PFR() float64 {
	return safeDiv(p.RaiseRounds, p.RoundsPresent)
}

// ThreeBetRate is the share of rounds present where the player re-raised a
// preflop open.
func (p *PlayerStats) ThreeBetRate() float64 {
	return safeDiv(p.ThreeBetRounds, p.RoundsPresent)
}

// LimpRate is the share of voluntary rounds entered by flat-calling the
// big blind.
func (p *PlayerStats) LimpRate() float64 {
	return safeDiv(p.LimpRounds, p.RoundsContributed)
}

// WinRate is pots won per voluntary round.
func (p *PlayerStats) WinRate() float64 {
	return safeDiv(p.Wins(), p.RoundsContributed)
}

// ShowdownWinRate is showdowns won per showdown played.
func (p *PlayerStats) ShowdownWinRate() float64 {
	return safeDiv(p.ShowdownsWon, p.ShowdownsPlayed)
}

// ShowdownShare is the fraction of the player's wins taken at showdown.
func (p *PlayerStats) ShowdownShare() float64 {
	return safeDiv(len(p.ShowdownAmounts), p.Wins())
}

// MedianWin is the median pot the player took, zero when they never won.
func (p *PlayerStats) MedianWin() float64 {
	return median(p.WinAmounts)
}

// AvgRaise is the player's average preflop raise size.
func (p *PlayerStats) AvgRaise() float64 {
	return avg(p.RaiseAmounts)
}

// AvgThreeBet is the player's average preflop re-raise size.
func (p *PlayerStats) AvgThreeBet() float64 {
	return avg(p.ThreeBetAmounts)
}

// ShapeStats describes the observing user's dealt hands and the session's
// boards.
type ShapeStats struct {
	// Shapes counts dealt holdings by standard two-card label ("AKs",
	// "TT"). Only hands where both hole cards are known contribute.
	Shapes map[string]int
	// RankFrequency is how often each rank appeared among the user's hole
	// cards, as a fraction of all dealt cards.
	RankFrequency map[string]float64
	HandsSeen     int

	// FlopsSeen counts rounds that reached a flop; MonotoneFlops counts
	// the single-suit ones.
	FlopsSeen     int
	MonotoneFlops int
}

// MonotoneFlopRate is the fraction of flops where all three cards shared a
// suit.
func (s *ShapeStats) MonotoneFlopRate() float64 {
	return safeDiv(s.MonotoneFlops, s.FlopsSeen)
}

// Stats is the full statistical summary of one session.
type Stats struct {
	Username string
	// Rounds is the number of rounds where money moved.
	Rounds  int
	Players map[string]*PlayerStats
	Shapes  *ShapeStats
}

// Player returns the named player's stats, or an empty value so callers
// can read rates without a nil check.
func (s *Stats) Player(name string) *PlayerStats {
	if p, ok := s.Players[name]; ok {
		return p
	}
	return &PlayerStats{Player: name}
}
