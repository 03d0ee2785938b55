package stats

type Contestant struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type RoundResult struct {
	Points  int  `json:"points"`
	Correct bool `json:"correct"`
}

// GameState is the read-only view of a running game that statistics are
// computed from. Scores may include bonus points that never appear in
// RoundHistory.
type GameState struct {
	Contestants  []Contestant
	Scores       map[int]int
	RoundHistory map[int][]RoundResult
}

type RoundPerformance struct {
	Round   int  `json:"round"`
	Points  int  `json:"points"`
	Correct bool `json:"correct"`
}

type ContestantStats struct {
	Index            int                `json:"index"`
	Name             string             `json:"name"`
	Color            string             `json:"color,omitempty"`
	TotalScore       int                `json:"totalScore"`
	RoundPerformance []RoundPerformance `json:"roundPerformance"`
	BestRound        *RoundPerformance  `json:"bestRound,omitempty"`
	WorstRound       *RoundPerformance  `json:"worstRound,omitempty"`
	Accuracy         float64            `json:"accuracy"`
	CorrectCount     int                `json:"correctCount"`
	TotalRounds      int                `json:"totalRounds"`
	Comeback         int                `json:"comeback"`
}

// Snapshot holds one record per contestant in contestant order.
type Snapshot []ContestantStats
