package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kmatts/pokernight/internal/parser"
)

type memoryEntry struct {
	evening    *parser.Evening
	source     SessionSourceRef
	startedAt  time.Time
	importedAt time.Time
}

// MemoryRepository is the fallback store used when sqlite is unavailable.
// It hands out deep clones so callers can never mutate stored state.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]memoryEntry),
	}
}

func (r *MemoryRepository) UpsertSessions(_ context.Context, sessions []PersistedSession) (UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := UpsertResult{}
	for _, ps := range sessions {
		if ps.Evening == nil {
			res.Skipped++
			continue
		}
		uid := ps.Source.SessionUID
		if uid == "" {
			uid = GenerateSessionUID(ps.Evening, ps.Source)
		}
		if _, ok := r.sessions[uid]; ok {
			res.Updated++
		} else {
			res.Inserted++
		}
		r.sessions[uid] = memoryEntry{
			evening:    parser.CloneEvening(ps.Evening),
			source:     ps.Source,
			startedAt:  sessionStartTime(ps.Evening),
			importedAt: time.Now().UTC(),
		}
	}
	return res, nil
}

func (r *MemoryRepository) GetSessionByUID(_ context.Context, uid string) (*parser.Evening, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[uid]
	if !ok {
		return nil, nil
	}
	return parser.CloneEvening(entry.evening), nil
}

func (r *MemoryRepository) ListSessions(_ context.Context, f SessionFilter) ([]*parser.Evening, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uids := r.matchingUIDs(f)
	sort.Slice(uids, func(i, j int) bool {
		a, b := r.sessions[uids[i]], r.sessions[uids[j]]
		if !a.startedAt.Equal(b.startedAt) {
			return a.startedAt.Before(b.startedAt)
		}
		return uids[i] < uids[j]
	})

	evenings := make([]*parser.Evening, 0, len(uids))
	for _, uid := range uids {
		evenings = append(evenings, parser.CloneEvening(r.sessions[uid].evening))
	}
	return evenings, nil
}

func (r *MemoryRepository) ListSessionSummaries(_ context.Context, f SessionFilter) ([]SessionSummary, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uids := r.matchingUIDs(f)
	total := len(uids)
	sort.Slice(uids, func(i, j int) bool {
		a, b := r.sessions[uids[i]], r.sessions[uids[j]]
		if !a.startedAt.Equal(b.startedAt) {
			return a.startedAt.After(b.startedAt)
		}
		return uids[i] > uids[j]
	})

	if f.Offset > 0 {
		if f.Offset >= len(uids) {
			uids = nil
		} else {
			uids = uids[f.Offset:]
		}
	}
	if f.Limit > 0 && len(uids) > f.Limit {
		uids = uids[:f.Limit]
	}

	summaries := make([]SessionSummary, 0, len(uids))
	for _, uid := range uids {
		entry := r.sessions[uid]
		summaries = append(summaries, SessionSummary{
			SessionUID:  uid,
			Username:    entry.evening.Username,
			SourcePath:  entry.source.SourcePath,
			StartedAt:   entry.startedAt,
			NumRounds:   len(entry.evening.Rounds),
			NumPlayers:  len(entry.evening.Players),
			Corrections: len(entry.evening.Corrections),
			ImportedAt:  entry.importedAt,
		})
	}
	return summaries, total, nil
}

func (r *MemoryRepository) Close() error {
	return nil
}

func (r *MemoryRepository) matchingUIDs(f SessionFilter) []string {
	var uids []string
	for uid, entry := range r.sessions {
		if f.Username != "" && entry.evening.Username != f.Username {
			continue
		}
		if f.FromTime != nil && entry.startedAt.Before(*f.FromTime) {
			continue
		}
		if f.ToTime != nil && entry.startedAt.After(*f.ToTime) {
			continue
		}
		uids = append(uids, uid)
	}
	return uids
}
