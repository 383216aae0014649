package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kmatts/pokernight/internal/parser"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// WAL mode reduces write latency by avoiding full fsync on every commit.
	// synchronous=NORMAL is safe with WAL and significantly faster than the default FULL.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}
	repo := &SQLiteRepository{db: db}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLiteRepository) UpsertSessions(ctx context.Context, sessions []PersistedSession) (UpsertResult, error) {
	var res UpsertResult
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = r.upsertSessionsTx(ctx, tx, sessions)
		return err
	})
	if err != nil {
		return UpsertResult{}, err
	}
	return res, nil
}

func (r *SQLiteRepository) upsertSessionsTx(ctx context.Context, tx *sql.Tx, sessions []PersistedSession) (UpsertResult, error) {
	res := UpsertResult{}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	for _, ps := range sessions {
		if ps.Evening == nil {
			res.Skipped++
			continue
		}
		e := ps.Evening
		uid := ps.Source.SessionUID
		if uid == "" {
			uid = GenerateSessionUID(e, ps.Source)
		}

		exists, err := rowExists(ctx, tx, `SELECT 1 FROM sessions WHERE session_uid = ? LIMIT 1`, uid)
		if err != nil {
			return UpsertResult{}, err
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO sessions(
			session_uid, username, source_path, started_at, num_rounds, imported_at
		) VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_uid) DO UPDATE SET
			username=excluded.username,
			source_path=excluded.source_path,
			started_at=excluded.started_at,
			num_rounds=excluded.num_rounds,
			imported_at=excluded.imported_at`,
			uid,
			e.Username,
			ps.Source.SourcePath,
			timeOrNil(sessionStartTime(e)),
			len(e.Rounds),
			now,
		); err != nil {
			return UpsertResult{}, err
		}

		if err := clearSessionChildrenTx(ctx, tx, uid); err != nil {
			return UpsertResult{}, err
		}
		if err := insertSessionChildrenTx(ctx, tx, uid, e); err != nil {
			return UpsertResult{}, err
		}

		if exists {
			res.Updated++
		} else {
			res.Inserted++
		}
	}
	return res, nil
}

var sessionChildTables = []string{
	"session_players",
	"rounds",
	"round_actions",
	"round_winners",
	"round_known_hands",
	"round_initial_stacks",
	"stack_points",
	"stack_corrections",
}

func clearSessionChildrenTx(ctx context.Context, tx *sql.Tx, uid string) error {
	for _, table := range sessionChildTables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE session_uid = ?`, uid); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func insertSessionChildrenTx(ctx context.Context, tx *sql.Tx, uid string, e *parser.Evening) error {
	for player, stack := range e.Players {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_players(session_uid, player, final_stack) VALUES(?, ?, ?)`,
			uid, player, stack); err != nil {
			return err
		}
	}

	for player, points := range e.HistoricalAmounts {
		for _, pt := range points {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO stack_points(session_uid, player, round_no, amount) VALUES(?, ?, ?, ?)`,
				uid, player, pt.Round, pt.Amount); err != nil {
				return err
			}
		}
	}

	for seq, c := range e.Corrections {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stack_corrections(session_uid, seq, round_no, player, reported, computed, at)
			 VALUES(?, ?, ?, ?, ?, ?, ?)`,
			uid, seq, c.Round, c.Player, c.Reported, c.Computed, timeOrNil(c.At)); err != nil {
			return err
		}
	}

	for _, round := range e.Rounds {
		if err := insertRoundTx(ctx, tx, uid, round); err != nil {
			return fmt.Errorf("round %d: %w", round.Number, err)
		}
	}
	return nil
}

func insertRoundTx(ctx context.Context, tx *sql.Tx, uid string, round *parser.Round) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO rounds(
		session_uid, round_no, dealer, flop, turn, river, second_flop, second_turn, second_river
	) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uid,
		round.Number,
		round.Dealer,
		cardsOrNil(round.Flop),
		round.Turn,
		round.River,
		cardsOrNil(round.SecondFlop),
		round.SecondTurn,
		round.SecondRiver,
	); err != nil {
		return err
	}

	phases := [][]parser.Action{round.PreflopMoves, round.FlopMoves, round.TurnMoves, round.RiverMoves}
	for phase, moves := range phases {
		for seq, m := range moves {
			if _, err := tx.ExecContext(ctx, `INSERT INTO round_actions(
				session_uid, round_no, phase, seq, player, kind, amount, at
			) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
				uid, round.Number, phase, seq, m.Player, int(m.Kind), m.Amount, timeOrNil(m.At)); err != nil {
				return err
			}
		}
	}

	for seq, w := range round.Winners {
		if _, err := tx.ExecContext(ctx, `INSERT INTO round_winners(
			session_uid, round_no, seq, player, hand, amount, at
		) VALUES(?, ?, ?, ?, ?, ?, ?)`,
			uid, round.Number, seq, w.Player, cardsOrNil(w.Hand), w.Amount, timeOrNil(w.At)); err != nil {
			return err
		}
	}

	for player, cards := range round.KnownHands {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO round_known_hands(session_uid, round_no, player, cards) VALUES(?, ?, ?, ?)`,
			uid, round.Number, player, strings.Join(cards, " ")); err != nil {
			return err
		}
	}

	for player, amount := range round.InitialAmounts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO round_initial_stacks(session_uid, round_no, player, amount) VALUES(?, ?, ?, ?)`,
			uid, round.Number, player, amount); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) GetSessionByUID(ctx context.Context, uid string) (*parser.Evening, error) {
	var username string
	err := r.db.QueryRowContext(ctx,
		`SELECT username FROM sessions WHERE session_uid = ?`, uid).Scan(&username)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.loadEvening(ctx, uid, username)
}

func (r *SQLiteRepository) ListSessions(ctx context.Context, f SessionFilter) ([]*parser.Evening, error) {
	where, args := sessionFilterClause(f)
	rows, err := r.db.QueryContext(ctx,
		`SELECT session_uid, username FROM sessions `+where+` ORDER BY started_at ASC, session_uid ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type ref struct{ uid, username string }
	var refs []ref
	for rows.Next() {
		var rf ref
		if err := rows.Scan(&rf.uid, &rf.username); err != nil {
			return nil, err
		}
		refs = append(refs, rf)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	evenings := make([]*parser.Evening, 0, len(refs))
	for _, rf := range refs {
		e, err := r.loadEvening(ctx, rf.uid, rf.username)
		if err != nil {
			return nil, fmt.Errorf("load session %s: %w", rf.uid, err)
		}
		evenings = append(evenings, e)
	}
	return evenings, nil
}

func (r *SQLiteRepository) ListSessionSummaries(ctx context.Context, f SessionFilter) ([]SessionSummary, int, error) {
	where, args := sessionFilterClause(f)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT s.session_uid, s.username, s.source_path, s.started_at, s.num_rounds, s.imported_at,
		(SELECT COUNT(*) FROM session_players p WHERE p.session_uid = s.session_uid),
		(SELECT COUNT(*) FROM stack_corrections c WHERE c.session_uid = s.session_uid)
		FROM sessions s ` + where + ` ORDER BY s.started_at DESC, s.session_uid DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var summaries []SessionSummary
	for rows.Next() {
		var s SessionSummary
		var startedAt, importedAt sql.NullString
		if err := rows.Scan(&s.SessionUID, &s.Username, &s.SourcePath, &startedAt, &s.NumRounds,
			&importedAt, &s.NumPlayers, &s.Corrections); err != nil {
			return nil, 0, err
		}
		s.StartedAt = parseStoredTime(startedAt)
		s.ImportedAt = parseStoredTime(importedAt)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func sessionFilterClause(f SessionFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Username != "" {
		conds = append(conds, "username = ?")
		args = append(args, f.Username)
	}
	if f.FromTime != nil {
		conds = append(conds, "started_at >= ?")
		args = append(args, f.FromTime.UTC().Format(time.RFC3339Nano))
	}
	if f.ToTime != nil {
		conds = append(conds, "started_at <= ?")
		args = append(args, f.ToTime.UTC().Format(time.RFC3339Nano))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *SQLiteRepository) loadEvening(ctx context.Context, uid, username string) (*parser.Evening, error) {
	e := parser.NewEvening(username)

	rows, err := r.db.QueryContext(ctx,
		`SELECT player, final_stack FROM session_players WHERE session_uid = ?`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var player string
		var stack int
		if err := rows.Scan(&player, &stack); err != nil {
			return nil, err
		}
		e.Players[player] = stack
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadStackPoints(ctx, uid, e); err != nil {
		return nil, err
	}
	if err := r.loadCorrections(ctx, uid, e); err != nil {
		return nil, err
	}
	if err := r.loadRounds(ctx, uid, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *SQLiteRepository) loadStackPoints(ctx context.Context, uid string, e *parser.Evening) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT player, round_no, amount FROM stack_points WHERE session_uid = ? ORDER BY player, round_no`, uid)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var player string
		var pt parser.StackPoint
		if err := rows.Scan(&player, &pt.Round, &pt.Amount); err != nil {
			return err
		}
		e.HistoricalAmounts[player] = append(e.HistoricalAmounts[player], pt)
	}
	return rows.Err()
}

func (r *SQLiteRepository) loadCorrections(ctx context.Context, uid string, e *parser.Evening) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT round_no, player, reported, computed, at FROM stack_corrections
		 WHERE session_uid = ? ORDER BY seq`, uid)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var c parser.StackCorrection
		var at sql.NullString
		if err := rows.Scan(&c.Round, &c.Player, &c.Reported, &c.Computed, &at); err != nil {
			return err
		}
		c.At = parseStoredTime(at)
		e.Corrections = append(e.Corrections, c)
	}
	return rows.Err()
}

func (r *SQLiteRepository) loadRounds(ctx context.Context, uid string, e *parser.Evening) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT round_no, dealer, flop, turn, river, second_flop, second_turn, second_river
		 FROM rounds WHERE session_uid = ? ORDER BY round_no`, uid)
	if err != nil {
		return err
	}
	defer rows.Close()

	byNumber := make(map[int]*parser.Round)
	for rows.Next() {
		round := &parser.Round{KnownHands: make(map[string][]string), InitialAmounts: make(map[string]int)}
		var flop, secondFlop sql.NullString
		if err := rows.Scan(&round.Number, &round.Dealer, &flop, &round.Turn, &round.River,
			&secondFlop, &round.SecondTurn, &round.SecondRiver); err != nil {
			return err
		}
		round.Flop = splitStoredCards(flop)
		round.SecondFlop = splitStoredCards(secondFlop)
		e.Rounds = append(e.Rounds, round)
		byNumber[round.Number] = round
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if err := r.loadActions(ctx, uid, byNumber); err != nil {
		return err
	}
	if err := r.loadWinners(ctx, uid, byNumber); err != nil {
		return err
	}
	if err := r.loadKnownHands(ctx, uid, byNumber); err != nil {
		return err
	}
	return r.loadInitialStacks(ctx, uid, byNumber)
}

func (r *SQLiteRepository) loadActions(ctx context.Context, uid string, rounds map[int]*parser.Round) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT round_no, phase, player, kind, amount, at FROM round_actions
		 WHERE session_uid = ? ORDER BY round_no, phase, seq`, uid)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var roundNo, phase, kind int
		var m parser.Action
		var at sql.NullString
		if err := rows.Scan(&roundNo, &phase, &m.Player, &kind, &m.Amount, &at); err != nil {
			return err
		}
		m.Kind = parser.ActionKind(kind)
		m.At = parseStoredTime(at)
		round, ok := rounds[roundNo]
		if !ok {
			return fmt.Errorf("action references unknown round %d", roundNo)
		}
		switch phase {
		case 0:
			round.PreflopMoves = append(round.PreflopMoves, m)
		case 1:
			round.FlopMoves = append(round.FlopMoves, m)
		case 2:
			round.TurnMoves = append(round.TurnMoves, m)
		case 3:
			round.RiverMoves = append(round.RiverMoves, m)
		default:
			return fmt.Errorf("action with phase %d out of range", phase)
		}
	}
	return rows.Err()
}

func (r *SQLiteRepository) loadWinners(ctx context.Context, uid string, rounds map[int]*parser.Round) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT round_no, player, hand, amount, at FROM round_winners
		 WHERE session_uid = ? ORDER BY round_no, seq`, uid)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var roundNo int
		var w parser.Winner
		var hand, at sql.NullString
		if err := rows.Scan(&roundNo, &w.Player, &hand, &w.Amount, &at); err != nil {
			return err
		}
		w.Hand = splitStoredCards(hand)
		w.At = parseStoredTime(at)
		round, ok := rounds[roundNo]
		if !ok {
			return fmt.Errorf("winner references unknown round %d", roundNo)
		}
		round.Winners = append(round.Winners, w)
	}
	return rows.Err()
}

func (r *SQLiteRepository) loadKnownHands(ctx context.Context, uid string, rounds map[int]*parser.Round) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT round_no, player, cards FROM round_known_hands WHERE session_uid = ?`, uid)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var roundNo int
		var player, cards string
		if err := rows.Scan(&roundNo, &player, &cards); err != nil {
			return err
		}
		if round, ok := rounds[roundNo]; ok {
			round.KnownHands[player] = strings.Fields(cards)
		}
	}
	return rows.Err()
}

func (r *SQLiteRepository) loadInitialStacks(ctx context.Context, uid string, rounds map[int]*parser.Round) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT round_no, player, amount FROM round_initial_stacks WHERE session_uid = ?`, uid)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var roundNo, amount int
		var player string
		if err := rows.Scan(&roundNo, &player, &amount); err != nil {
			return err
		}
		if round, ok := rounds[roundNo]; ok {
			round.InitialAmounts[player] = amount
		}
	}
	return rows.Err()
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func rowExists(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func cardsOrNil(cards []string) any {
	if cards == nil {
		return nil
	}
	return strings.Join(cards, " ")
}

func splitStoredCards(s sql.NullString) []string {
	if !s.Valid {
		return nil
	}
	return strings.Fields(s.String)
}

func timeOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseStoredTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
