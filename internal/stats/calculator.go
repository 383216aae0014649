package stats

import (
	"github.com/kmatts/pokernight/internal/parser"
)

// Calculator computes session statistics from a reconstructed evening.
type Calculator struct{}

// NewCalculator creates a new stats calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate aggregates every player's numbers over the rounds where money
// actually moved.
func (c *Calculator) Calculate(evening *parser.Evening) *Stats {
	s := &Stats{
		Username: evening.Username,
		Players:  make(map[string]*PlayerStats),
	}

	rounds := evening.ActiveRounds()
	s.Rounds = len(rounds)

	for _, r := range rounds {
		c.accumulateWins(s, r)
		c.accumulateParticipation(s, r)
		c.accumulatePreflop(s, r)
	}
	s.Shapes = c.calculateShapes(evening)
	return s
}

func (c *Calculator) ensure(s *Stats, player string) *PlayerStats {
	p, ok := s.Players[player]
	if !ok {
		p = &PlayerStats{Player: player}
		s.Players[player] = p
	}
	return p
}

func (c *Calculator) accumulateWins(s *Stats, r *parser.Round) {
	for _, w := range r.Winners {
		p := c.ensure(s, w.Player)
		p.WinAmounts = append(p.WinAmounts, w.Amount)
		if w.Hand == nil {
			p.PreshowdownAmounts = append(p.PreshowdownAmounts, w.Amount)
		} else {
			p.ShowdownAmounts = append(p.ShowdownAmounts, w.Amount)
			p.ShowdownsWon++
		}
	}
}

func (c *Calculator) accumulateParticipation(s *Stats, r *parser.Round) {
	for _, player := range r.NamesInShowdown() {
		c.ensure(s, player).ShowdownsPlayed++
	}
	for player := range r.VoluntaryContributors() {
		c.ensure(s, player).RoundsContributed++
	}
	for player := range r.PlayersPresent() {
		c.ensure(s, player).RoundsPresent++
	}
}

func (c *Calculator) accumulatePreflop(s *Stats, r *parser.Round) {
	// A limp is entering the pot for exactly the big blind without ever
	// folding preflop. Rounds without a big-blind posting are skipped.
	if bb, err := r.BigBlind(); err == nil {
		for player, amt := range r.PreflopContributions() {
			if amt != bb.Amount {
				continue
			}
			if len(r.FindMoves(player, parser.ActionFold, r.PreflopMoves)) == 0 {
				c.ensure(s, player).LimpRounds++
			}
		}
	}

	// The first preflop raise is the open; the next one by anyone is the
	// 3-bet. A player raising twice keeps only the later amount.
	raises := make(map[string]int)
	threeBets := make(map[string]int)
	raiseOrder := make([]string, 0, 2)
	threeBetOrder := make([]string, 0, 1)
	openSeen := false
	threeBetSeen := false
	for _, m := range r.PreflopMoves {
		if m.Kind != parser.ActionRaise {
			continue
		}
		if _, ok := raises[m.Player]; !ok {
			raiseOrder = append(raiseOrder, m.Player)
		}
		raises[m.Player] = m.Amount
		if !openSeen {
			openSeen = true
		} else if !threeBetSeen {
			threeBets[m.Player] = m.Amount
			threeBetOrder = append(threeBetOrder, m.Player)
			threeBetSeen = true
		}
	}
	for _, player := range raiseOrder {
		p := c.ensure(s, player)
		p.RaiseRounds++
		p.RaiseAmounts = append(p.RaiseAmounts, raises[player])
	}
	for _, player := range threeBetOrder {
		p := c.ensure(s, player)
		p.ThreeBetRounds++
		p.ThreeBetAmounts = append(p.ThreeBetAmounts, threeBets[player])
	}
}

// calculateShapes summarizes the observing user's dealt hands and the
// community boards across the whole session, moneyless rounds included.
func (c *Calculator) calculateShapes(evening *parser.Evening) *ShapeStats {
	shapes := &ShapeStats{
		Shapes:        make(map[string]int),
		RankFrequency: make(map[string]float64),
	}

	rankCounts := make(map[string]int)
	for _, r := range evening.Rounds {
		cards, ok := r.KnownHands[evening.Username]
		if ok && len(cards) == 2 {
			shapes.HandsSeen++
			shapes.Shapes[parser.HandShape(cards[0], cards[1])]++
			rankCounts[parser.CardRank(cards[0])]++
			rankCounts[parser.CardRank(cards[1])]++
		}

		if len(r.Flop) == 3 {
			shapes.FlopsSeen++
			s0 := parser.CardSuit(r.Flop[0])
			if s0 == parser.CardSuit(r.Flop[1]) && s0 == parser.CardSuit(r.Flop[2]) {
				shapes.MonotoneFlops++
			}
		}
	}

	total := shapes.HandsSeen * 2
	for rank, n := range rankCounts {
		shapes.RankFrequency[rank] = safeDiv(n, total)
	}
	return shapes
}
