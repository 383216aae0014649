// gen_testlog generates synthetic PokerNow session exports for testing.
//
// It plays out random No Limit Hold'em hands between a configurable number
// of players and writes the resulting entries as a CSV in the site's export
// format: one row per entry with "entry,at,order" columns, newest first.
//
// Usage:
//
//	go run ./tools/gen_testlog [flags]
//
// Flags:
//
//	--output      output file path (default: "./poker_now_log_generated.csv")
//	--players     number of players at the table (default: 4)
//	--hands       number of hands to generate (default: 50)
//	--stack       starting stack for every player (default: 1000)
//	--seed        random seed; 0 = use current time (default: 0)
//	--start-date  base date for generated timestamps, YYYY-MM-DD (default: 2025-01-01)
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"
)

var ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
var suits = []string{"s", "h", "d", "c"}

var playerNames = []string{
	"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi",
	"ivan", "judy", "mallory", "niaj", "olivia", "peggy",
}

type generator struct {
	rng     *rand.Rand
	players []string
	stacks  map[string]int
	now     time.Time
	entries []entry
}

type entry struct {
	text string
	at   time.Time
}

func main() {
	var (
		output    = flag.String("output", "./poker_now_log_generated.csv", "output file path")
		players   = flag.Int("players", 4, "number of players at the table")
		hands     = flag.Int("hands", 50, "number of hands to generate")
		stack     = flag.Int("stack", 1000, "starting stack for every player")
		seed      = flag.Int64("seed", 0, "random seed; 0 = use current time")
		startDate = flag.String("start-date", "2025-01-01", "base date for timestamps, YYYY-MM-DD")
	)
	flag.Parse()

	if *players < 2 || *players > len(playerNames) {
		fmt.Fprintf(os.Stderr, "players must be between 2 and %d\n", len(playerNames))
		os.Exit(1)
	}

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad start-date: %v\n", err)
		os.Exit(1)
	}

	g := newGenerator(rand.New(rand.NewSource(s)), *players, *stack, start.Add(20*time.Hour))
	for i := 0; i < *hands; i++ {
		g.playHand(i + 1)
	}

	if err := g.write(*output); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d entries (%d hands, seed %d) to %s\n", len(g.entries), *hands, s, *output)
}

func newGenerator(rng *rand.Rand, players, stack int, start time.Time) *generator {
	g := &generator{rng: rng, now: start, stacks: make(map[string]int)}
	for i := 0; i < players; i++ {
		name := fmt.Sprintf("%s @ %08x", playerNames[i], rng.Uint32())
		g.players = append(g.players, name)
		g.stacks[name] = stack
	}

	g.add("%q created the game with a stack of %d.", g.players[0], stack)
	for _, p := range g.players[1:] {
		g.add("The admin approved the player %q participation with a stack of %d.", p, stack)
	}
	return g
}

func (g *generator) add(format string, args ...any) {
	g.now = g.now.Add(time.Duration(1+g.rng.Intn(8)) * time.Second)
	g.entries = append(g.entries, entry{text: fmt.Sprintf(format, args...), at: g.now})
}

func (g *generator) card(used map[string]bool) string {
	for {
		c := ranks[g.rng.Intn(len(ranks))] + suits[g.rng.Intn(len(suits))]
		if !used[c] {
			used[c] = true
			return c
		}
	}
}

// playHand emits the entries of one hand: blinds, a preflop round where
// everyone calls or folds, boards dealt while two or more players remain,
// and a win entry. Stacks are tracked so rebuys appear as stack snapshots.
func (g *generator) playHand(number int) {
	dealer := g.players[(number-1)%len(g.players)]
	g.add("-- starting hand #%d  (No Limit Texas Hold'em) (dealer: %q) --", number, dealer)

	sbIdx := number % len(g.players)
	sb := g.players[sbIdx]
	bb := g.players[(sbIdx+1)%len(g.players)]
	g.add("%q posts a small blind of 5", sb)
	g.add("%q posts a big blind of 10", bb)

	used := make(map[string]bool)
	g.add("Your hand is %s, %s", g.card(used), g.card(used))

	pot := 15
	contrib := map[string]int{sb: 5, bb: 10}
	active := make([]string, 0, len(g.players))
	for i := range g.players {
		p := g.players[(sbIdx+i)%len(g.players)]
		if p == sb || p == bb {
			active = append(active, p)
			continue
		}
		if g.rng.Intn(3) == 0 {
			g.add("%q folds", p)
			continue
		}
		g.add("%q calls 10", p)
		pot += 10
		contrib[p] = 10
		active = append(active, p)
	}
	pot += 10 - contrib[sb]
	contrib[sb] = 10
	g.add("%q calls 10", sb)
	g.add("%q checks", bb)

	deals := []int{3, 1, 1}
	labels := []string{"Flop", "Turn", "River"}
	board := make([]string, 0, 5)
	for street, count := range deals {
		if len(active) < 2 {
			break
		}
		for c := 0; c < count; c++ {
			board = append(board, g.card(used))
		}
		switch street {
		case 0:
			g.add("Flop:  [%s, %s, %s]", board[0], board[1], board[2])
		default:
			g.add("%s: %s [%s]", labels[street], joinCards(board[:len(board)-1]), board[len(board)-1])
		}

		// One bet, the rest call or fold.
		bettor := active[g.rng.Intn(len(active))]
		bet := (1 + g.rng.Intn(4)) * 10
		g.add("%q bets %d", bettor, bet)
		pot += bet
		contrib[bettor] += bet
		remaining := []string{bettor}
		for _, p := range active {
			if p == bettor {
				continue
			}
			if g.rng.Intn(4) == 0 {
				g.add("%q folds", p)
				continue
			}
			g.add("%q calls %d", p, bet)
			pot += bet
			contrib[p] += bet
			remaining = append(remaining, p)
		}
		if len(remaining) == 1 {
			g.add("Uncalled bet of %d returned to %q", bet, bettor)
			pot -= bet
			contrib[bettor] -= bet
		}
		active = remaining
	}

	winner := active[g.rng.Intn(len(active))]
	if len(active) > 1 {
		hole := []string{g.card(used), g.card(used)}
		g.add("%q shows a %s, %s.", winner, hole[0], hole[1])
		g.add("%q collected %d from pot with a Pair (combination: %s, %s, %s, %s, %s)",
			winner, pot, hole[0], hole[1], board[0], board[1], board[2])
	} else {
		g.add("%q collected %d from pot", winner, pot)
	}
	g.add("-- ending hand #%d --", number)

	g.settle(pot, winner, contrib)
}

// settle applies the hand's money movement to tracked stacks and resets
// broke players with a rebuy snapshot.
func (g *generator) settle(pot int, winner string, contrib map[string]int) {
	for p, c := range contrib {
		g.stacks[p] -= c
	}
	g.stacks[winner] += pot

	rebuy := false
	for _, p := range g.players {
		if g.stacks[p] < 20 {
			g.stacks[p] = 1000
			rebuy = true
		}
	}
	if rebuy {
		snapshot := "Player stacks:"
		for i, p := range g.players {
			if i > 0 {
				snapshot += " |"
			}
			snapshot += fmt.Sprintf(" #%d %q (%d)", i+1, p, g.stacks[p])
		}
		g.add("%s", snapshot)
	}
}

func joinCards(cards []string) string {
	out := ""
	for i, c := range cards {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}

// write emits the export CSV, newest entry first, with a header row.
func (g *generator) write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"entry", "at", "order"}); err != nil {
		return err
	}
	for i := len(g.entries) - 1; i >= 0; i-- {
		e := g.entries[i]
		row := []string{e.text, e.at.UTC().Format(time.RFC3339), fmt.Sprintf("%d", e.at.UnixNano()/int64(time.Millisecond))}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
