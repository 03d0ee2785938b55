package db

import (
	"errors"
	"os"
	"testing"
	"time"

	"gameshow/internal/kv"
	"gameshow/internal/stats"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	database, err := Connect(dsn)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	t.Cleanup(func() {
		// Clean up test data
		database.conn.Exec("DELETE FROM game_results")
		database.conn.Exec("DELETE FROM games")
		database.conn.Exec("DELETE FROM kv_store")
		database.Close()
	})
	return database
}

func TestConnect(t *testing.T) {
	database := getTestDB(t)
	if err := database.Ping(); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	database := getTestDB(t)

	tables := []string{"kv_store", "games", "game_results"}
	for _, table := range tables {
		var exists bool
		err := database.conn.QueryRow(`
			SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)
		`, table).Scan(&exists)
		if err != nil {
			t.Errorf("checking table %s: %v", table, err)
		}
		if !exists {
			t.Errorf("table %s does not exist", table)
		}
	}

	// Migrations must be re-runnable.
	if err := database.Migrate(); err != nil {
		t.Errorf("second Migrate() error: %v", err)
	}
}

func TestKV(t *testing.T) {
	database := getTestDB(t)

	if _, err := database.Get("soundEnabled"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("Get() on missing key error = %v, want kv.ErrNotFound", err)
	}

	if err := database.Set("soundEnabled", "true"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := database.Set("soundEnabled", "false"); err != nil {
		t.Fatalf("Set() overwrite error: %v", err)
	}
	v, err := database.Get("soundEnabled")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if v != "false" {
		t.Errorf("Get() = %q, want %q", v, "false")
	}

	if err := database.Delete("soundEnabled"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := database.Get("soundEnabled"); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want kv.ErrNotFound", err)
	}
}

func TestArchiveGame(t *testing.T) {
	database := getTestDB(t)

	started := time.Now().Add(-30 * time.Minute).UTC()
	id, err := database.ArchiveGame(Archive{
		SessionCode:     "ABCD",
		SessionID:       "session-1",
		CompetitionName: "Friday Quiz",
		Rounds:          3,
		StartedAt:       started,
		EndedAt:         time.Now().UTC(),
		Snapshot: stats.Snapshot{
			{Index: 0, Name: "Alice", TotalScore: 5, Accuracy: 66.7, CorrectCount: 2, TotalRounds: 3},
			{Index: 1, Name: "Bob", TotalScore: 12, Accuracy: 100, CorrectCount: 3, TotalRounds: 3, Comeback: 4},
		},
	})
	if err != nil {
		t.Fatalf("ArchiveGame() error: %v", err)
	}
	if id == "" {
		t.Fatal("ArchiveGame() returned empty ID")
	}

	results, err := database.GameResults(id)
	if err != nil {
		t.Fatalf("GameResults() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Name != "Bob" || results[0].Rank != 1 {
		t.Errorf("first result = %+v, want Bob ranked 1", results[0])
	}
	if results[1].Accuracy != 66.7 {
		t.Errorf("Alice accuracy = %v, want 66.7", results[1].Accuracy)
	}

	games, err := database.ListGames(10)
	if err != nil {
		t.Fatalf("ListGames() error: %v", err)
	}
	if len(games) != 1 || games[0].ID != id {
		t.Fatalf("ListGames() = %+v, want the archived game", games)
	}
	if games[0].StartedAt == nil || games[0].EndedAt == nil {
		t.Error("archived game should carry start and end times")
	}
}
