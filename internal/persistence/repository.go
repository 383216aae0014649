package persistence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kmatts/pokernight/internal/parser"
)

// SessionFilter narrows session queries.
type SessionFilter struct {
	Username string
	FromTime *time.Time
	ToTime   *time.Time
	// Limit and Offset paginate ListSessionSummaries. Limit == 0 returns
	// all matching rows.
	Limit  int
	Offset int
}

// SessionSourceRef ties a stored session back to the export it came from.
type SessionSourceRef struct {
	SourcePath string
	SessionUID string
}

// PersistedSession pairs a reconstructed session with its source.
type PersistedSession struct {
	Evening *parser.Evening
	Source  SessionSourceRef
}

// SessionSummary is a lightweight session record for list display. It
// avoids loading the per-round action joins needed by a full Evening.
type SessionSummary struct {
	SessionUID  string
	Username    string
	SourcePath  string
	StartedAt   time.Time
	NumRounds   int
	NumPlayers  int
	Corrections int
	ImportedAt  time.Time
}

type UpsertResult struct {
	Inserted int
	Updated  int
	Skipped  int
}

// SessionRepository stores reconstructed sessions keyed by a
// content-derived UID, so re-importing the same export is idempotent.
type SessionRepository interface {
	UpsertSessions(ctx context.Context, sessions []PersistedSession) (UpsertResult, error)
	// GetSessionByUID returns the full session, or nil, nil if not found.
	GetSessionByUID(ctx context.Context, uid string) (*parser.Evening, error)
	// ListSessions returns full sessions matching the filter, oldest first.
	ListSessions(ctx context.Context, f SessionFilter) ([]*parser.Evening, error)
	// ListSessionSummaries returns summaries newest first plus the total
	// count of matching rows (ignoring Limit/Offset).
	ListSessionSummaries(ctx context.Context, f SessionFilter) ([]SessionSummary, int, error)
	Close() error
}

// GenerateSessionUID derives a stable identifier from the session content.
// Two imports of the same export produce the same UID regardless of file
// path.
func GenerateSessionUID(e *parser.Evening, src SessionSourceRef) string {
	if e == nil {
		s := sha256.Sum256([]byte("src:" + src.SourcePath))
		return hex.EncodeToString(s[:])
	}

	b := strings.Builder{}
	b.WriteString("v1|")
	b.WriteString(e.Username)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(len(e.Rounds)))

	players := make([]string, 0, len(e.Players))
	for player := range e.Players {
		players = append(players, player)
	}
	sort.Strings(players)
	b.WriteString("|P:")
	for _, player := range players {
		b.WriteString(player)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(e.Players[player]))
		b.WriteByte(';')
	}

	b.WriteString("|R:")
	for _, r := range e.Rounds {
		b.WriteString(r.Dealer)
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(len(r.PreflopMoves) + len(r.FlopMoves) + len(r.TurnMoves) + len(r.RiverMoves)))
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(r.TotalMoneyInRound()))
		for _, w := range r.Winners {
			b.WriteByte('/')
			b.WriteString(w.Player)
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(w.Amount))
			b.WriteByte(':')
			b.WriteString(w.At.UTC().Format(time.RFC3339Nano))
		}
		b.WriteByte(';')
	}

	s := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(s[:])
}

// sessionStartTime is the earliest action timestamp in the session, used
// for time-range filtering. The zero time means the session had no
// timestamped actions.
func sessionStartTime(e *parser.Evening) time.Time {
	var start time.Time
	for _, r := range e.Rounds {
		for _, moves := range [][]parser.Action{r.PreflopMoves, r.FlopMoves, r.TurnMoves, r.RiverMoves} {
			for _, m := range moves {
				if m.At.IsZero() {
					continue
				}
				if start.IsZero() || m.At.Before(start) {
					start = m.At
				}
			}
		}
	}
	return start
}
