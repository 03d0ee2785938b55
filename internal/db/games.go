package db

import (
	"fmt"
	"time"

	"gameshow/internal/stats"
)

type GameRecord struct {
	ID              string     `json:"id"`
	SessionCode     string     `json:"sessionCode"`
	SessionID       string     `json:"sessionId"`
	CompetitionName string     `json:"competitionName"`
	Rounds          int        `json:"rounds"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type GameResult struct {
	ContestantIndex int     `json:"contestantIndex"`
	Name            string  `json:"name"`
	Color           string  `json:"color"`
	TotalScore      int     `json:"totalScore"`
	Accuracy        float64 `json:"accuracy"`
	CorrectCount    int     `json:"correctCount"`
	TotalRounds     int     `json:"totalRounds"`
	Comeback        int     `json:"comeback"`
	Rank            int     `json:"rank"`
}

// Archive is a finished game ready to be stored.
type Archive struct {
	SessionCode     string
	SessionID       string
	CompetitionName string
	Rounds          int
	StartedAt       time.Time
	EndedAt         time.Time
	Snapshot        stats.Snapshot
}

// ArchiveGame stores the game and one result row per contestant in a
// single transaction and returns the new game id.
func (d *DB) ArchiveGame(a Archive) (string, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning archive: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRow(`
		INSERT INTO games (session_code, session_id, competition_name, rounds, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, a.SessionCode, a.SessionID, a.CompetitionName, a.Rounds, nullTime(a.StartedAt), nullTime(a.EndedAt)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("creating game: %w", err)
	}

	for rank, s := range stats.Standings(a.Snapshot) {
		_, err := tx.Exec(`
			INSERT INTO game_results
				(game_id, contestant_index, name, color, total_score, accuracy, correct_count, total_rounds, comeback, rank)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, id, s.Index, s.Name, s.Color, s.TotalScore, s.Accuracy, s.CorrectCount, s.TotalRounds, s.Comeback, rank+1)
		if err != nil {
			return "", fmt.Errorf("adding result for %s: %w", s.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing archive: %w", err)
	}
	return id, nil
}

// ListGames returns the most recently finished games first.
func (d *DB) ListGames(limit int) ([]GameRecord, error) {
	rows, err := d.conn.Query(`
		SELECT id, session_code, session_id, competition_name, rounds, started_at, ended_at, created_at
		FROM games
		ORDER BY ended_at DESC NULLS LAST, created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		if err := rows.Scan(&g.ID, &g.SessionCode, &g.SessionID, &g.CompetitionName, &g.Rounds, &g.StartedAt, &g.EndedAt, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (d *DB) GameResults(gameID string) ([]GameResult, error) {
	rows, err := d.conn.Query(`
		SELECT contestant_index, name, color, total_score, accuracy, correct_count, total_rounds, comeback, rank
		FROM game_results
		WHERE game_id = $1
		ORDER BY rank
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	var results []GameResult
	for rows.Next() {
		var r GameResult
		if err := rows.Scan(&r.ContestantIndex, &r.Name, &r.Color, &r.TotalScore, &r.Accuracy, &r.CorrectCount, &r.TotalRounds, &r.Comeback, &r.Rank); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
