package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gameshow/internal/db"
	"gameshow/internal/gamestate"
	"gameshow/internal/session"
	"gameshow/internal/setup"
	"gameshow/internal/stats"
	"gameshow/internal/viewer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeArchive struct {
	archived []db.Archive
	err      error
}

func (f *fakeArchive) Ping() error { return f.err }

func (f *fakeArchive) ArchiveGame(a db.Archive) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.archived = append(f.archived, a)
	return "game-1", nil
}

func (f *fakeArchive) ListGames(limit int) ([]db.GameRecord, error) {
	return []db.GameRecord{{ID: "game-1", SessionCode: "ABCD"}}, f.err
}

func (f *fakeArchive) GameResults(gameID string) ([]db.GameResult, error) {
	return []db.GameResult{{Name: "Alice", Rank: 1}}, f.err
}

func newTestServer(t *testing.T, archive Archive) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(Options{Session: session.DefaultConfig(), Archive: archive})
	t.Cleanup(srv.Close)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func quizSetup() setup.Setup {
	return setup.Setup{
		CompetitionName: "Friday Quiz",
		Contestants:     []setup.ContestantSetup{{Name: "Alice"}, {Name: "Bob"}},
		Rounds: []setup.RoundSetup{
			{Number: 1, Name: "Warm up", CorrectPoints: 3, IncorrectPoints: 1},
			{Number: 2, Name: "History", CorrectPoints: 1},
		},
	}
}

// startGame creates a session, loads the quiz setup and starts round 1.
func startGame(t *testing.T, baseURL string) string {
	t.Helper()
	resp := do(t, "POST", baseURL+"/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var info session.Info
	decodeBody(t, resp, &info)

	resp = do(t, "PUT", baseURL+"/sessions/"+info.Code+"/setup", quizSetup())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, "POST", baseURL+"/sessions/"+info.Code+"/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return info.Code
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := do(t, "GET", ts.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, ts = newTestServer(t, &fakeArchive{err: errors.New("down")})
	resp = do(t, "GET", ts.URL+"/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSessionNotFound(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := do(t, "GET", ts.URL+"/sessions/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStats_NoGameState(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp := do(t, "POST", ts.URL+"/sessions", nil)
	var info session.Info
	decodeBody(t, resp, &info)

	for _, path := range []string{"/stats", "/stats.csv", "/stats.xlsx", "/chart.png"} {
		resp := do(t, "GET", ts.URL+"/sessions/"+info.Code+path, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode, path)
	}
}

func TestGameFlow(t *testing.T) {
	_, ts := newTestServer(t, nil)
	code := startGame(t, ts.URL)
	base := ts.URL + "/sessions/" + code

	resp := do(t, "POST", base+"/rounds", roundRequest{Entries: []gamestate.RoundEntry{
		{Contestant: 0, Points: 3, Correct: true},
		{Contestant: 1, Points: -1},
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, "POST", base+"/rounds/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, "POST", base+"/rounds", roundRequest{Entries: []gamestate.RoundEntry{
		{Contestant: 0, Points: -1},
		{Contestant: 1, Points: 1, Correct: true},
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, "POST", base+"/bonus", bonusRequest{Name: "bob", Points: 5, Reason: "fastest"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, "GET", base+"/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got statsResponse
	decodeBody(t, resp, &got)

	require.Len(t, got.Contestants, 2)
	assert.Equal(t, 2, got.Contestants[0].TotalScore)
	assert.Equal(t, 50.0, got.Contestants[0].Accuracy)
	assert.Equal(t, 5, got.Contestants[1].TotalScore)
	assert.Equal(t, 1, got.Contestants[1].Comeback)
	assert.Equal(t, "Bob", got.Highlights.Winner.Name)
	assert.Equal(t, []string{
		"Winner: Bob with 5 points",
		"Biggest Comeback: Bob (+1 recovery)",
		"Most Accurate: Alice (50.0%)",
	}, got.Summary)
}

func TestBonusValidation(t *testing.T) {
	_, ts := newTestServer(t, nil)
	code := startGame(t, ts.URL)
	base := ts.URL + "/sessions/" + code

	resp := do(t, "POST", base+"/bonus", bonusRequest{Contestant: 0, Points: 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, "POST", base+"/bonus", bonusRequest{Name: "Zed", Points: 2})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, "POST", base+"/bonus", bonusRequest{Contestant: 7, Points: 2})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, "POST", base+"/bonus", bonusRequest{Contestant: 0, Points: 101})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUndoAndPause(t *testing.T) {
	_, ts := newTestServer(t, nil)
	code := startGame(t, ts.URL)
	base := ts.URL + "/sessions/" + code

	resp := do(t, "POST", base+"/undo", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	do(t, "POST", base+"/bonus", bonusRequest{Contestant: 0, Points: 4})
	resp = do(t, "POST", base+"/undo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, "GET", base, nil)
	var info session.Info
	decodeBody(t, resp, &info)
	assert.Equal(t, []int{0, 0}, info.Scores)
	assert.False(t, info.CanUndo)

	resp = do(t, "POST", base+"/pause", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, "POST", base+"/rounds/next", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestExports(t *testing.T) {
	_, ts := newTestServer(t, nil)
	code := startGame(t, ts.URL)
	base := ts.URL + "/sessions/" + code
	do(t, "POST", base+"/rounds", roundRequest{Entries: []gamestate.RoundEntry{{Contestant: 0, Points: 3, Correct: true}}})

	resp := do(t, "GET", base+"/stats.csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "game-stats-")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t,
		"Name,Total Score,Accuracy,Correct Answers,Total Rounds,Biggest Comeback\n"+
			"\"Alice\",3,100.0,1,1,0\n"+
			"\"Bob\",0,0,0,0,0\n",
		string(body))

	resp = do(t, "GET", base+"/stats.xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	v, err := f.GetCellValue("Statistics", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Alice", v)

	resp = do(t, "GET", base+"/chart.png", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, err = png.Decode(resp.Body)
	assert.NoError(t, err)
}

func TestFinishArchives(t *testing.T) {
	archive := &fakeArchive{}
	_, ts := newTestServer(t, archive)
	code := startGame(t, ts.URL)
	base := ts.URL + "/sessions/" + code
	do(t, "POST", base+"/rounds", roundRequest{Entries: []gamestate.RoundEntry{{Contestant: 1, Points: 2, Correct: true}}})

	resp := do(t, "POST", base+"/finish", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got finishResponse
	decodeBody(t, resp, &got)

	assert.Equal(t, "game-1", got.GameID)
	assert.Equal(t, "Bob", got.Highlights.Winner.Name)
	require.Len(t, archive.archived, 1)
	assert.Equal(t, "Friday Quiz", archive.archived[0].CompetitionName)
	assert.Equal(t, code, archive.archived[0].SessionCode)

	// Statistics stay available after the game ends.
	resp = do(t, "GET", base+"/stats", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, "GET", ts.URL+"/games", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGamesWithoutDatabase(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := do(t, "GET", ts.URL+"/games", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSetupOperations(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp := do(t, "POST", ts.URL+"/sessions", nil)
	var info session.Info
	decodeBody(t, resp, &info)
	base := ts.URL + "/sessions/" + info.Code

	bad := quizSetup()
	bad.Contestants[0].Name = ""
	resp = do(t, "PUT", base+"/setup", bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	do(t, "PUT", base+"/setup", quizSetup())

	resp = do(t, "POST", base+"/setup/rounds/1/paste", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, "POST", base+"/setup/apply-scoring", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, "POST", base+"/setup/rounds/1/copy", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, "POST", base+"/setup/rounds/2/paste", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got setup.Setup
	decodeBody(t, resp, &got)
	assert.Equal(t, "Warm up", got.Rounds[1].Name)
	assert.Equal(t, 3, got.Rounds[1].CorrectPoints)

	resp = do(t, "POST", base+"/setup/rounds/9/copy", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTemplates(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := do(t, "PUT", ts.URL+"/templates/pub", quizSetup())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, "GET", ts.URL+"/templates", nil)
	var list []map[string]any
	decodeBody(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "pub", list[0]["name"])

	resp = do(t, "POST", ts.URL+"/sessions", nil)
	var info session.Info
	decodeBody(t, resp, &info)
	resp = do(t, "POST", ts.URL+"/sessions/"+info.Code+"/setup/template/pub", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got setup.Setup
	decodeBody(t, resp, &got)
	assert.Equal(t, "Friday Quiz", got.CompetitionName)

	resp = do(t, "DELETE", ts.URL+"/templates/pub", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, "GET", ts.URL+"/templates/pub", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPreferences(t *testing.T) {
	srv, ts := newTestServer(t, nil)

	resp := do(t, "POST", ts.URL+"/preferences/sound/toggle", nil)
	var toggled map[string]bool
	decodeBody(t, resp, &toggled)
	assert.False(t, toggled["soundEnabled"])
	assert.False(t, srv.Prefs.SoundEnabled())

	resp = do(t, "POST", ts.URL+"/preferences/dark-mode/toggle", nil)
	decodeBody(t, resp, &toggled)
	assert.True(t, toggled["darkMode"])

	resp = do(t, "GET", ts.URL+"/preferences", nil)
	var p map[string]bool
	decodeBody(t, resp, &p)
	assert.Equal(t, map[string]bool{"soundEnabled": false, "darkMode": true}, p)
}

func TestViewerBonus(t *testing.T) {
	_, ts := newTestServer(t, nil)
	code := startGame(t, ts.URL)
	base := ts.URL + "/sessions/" + code
	do(t, "POST", base+"/bonus", bonusRequest{Contestant: 0, Points: 2, Reason: "style"})

	resp := do(t, "GET", base+"/viewer/bonus?name=alice", nil)
	var panel viewer.BonusPanel
	decodeBody(t, resp, &panel)
	assert.True(t, panel.Visible)
	assert.Equal(t, "+2 Bonus Points", panel.Items[0].Label)
}

func TestEventsStream(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	code := startGame(t, ts.URL)

	resp, err := http.Get(ts.URL + "/sessions/" + code + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sess := srv.Sessions.Get(code)
	require.Eventually(t, func() bool {
		sess.Broadcaster.Mu.Lock()
		defer sess.Broadcaster.Mu.Unlock()
		return len(sess.Broadcaster.Clients) == 1
	}, time.Second, 10*time.Millisecond)

	_, err = sess.TogglePause()
	require.NoError(t, err)

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: pauseChanged\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, `data: {"paused":true}`))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(stats.ErrNoGameState))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
