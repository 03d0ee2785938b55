package stats

import (
	"errors"
	"math"
)

var ErrNoGameState = errors.New("no game state available")

// Compute builds a fresh snapshot for every contestant in gs. It never
// mutates gs.
func Compute(gs *GameState) (Snapshot, error) {
	if gs == nil || gs.Contestants == nil {
		return nil, ErrNoGameState
	}

	snapshot := make(Snapshot, 0, len(gs.Contestants))
	for idx, c := range gs.Contestants {
		snapshot = append(snapshot, computeContestant(idx, c, gs.Scores[idx], gs.RoundHistory[idx]))
	}
	return snapshot, nil
}

func computeContestant(idx int, c Contestant, total int, history []RoundResult) ContestantStats {
	perf := make([]RoundPerformance, len(history))
	correct := 0
	for k, r := range history {
		perf[k] = RoundPerformance{Round: k + 1, Points: r.Points, Correct: r.Correct}
		if r.Correct {
			correct++
		}
	}

	s := ContestantStats{
		Index:            idx,
		Name:             c.Name,
		Color:            c.Color,
		TotalScore:       total,
		RoundPerformance: perf,
		CorrectCount:     correct,
		TotalRounds:      len(perf),
		Accuracy:         accuracy(correct, len(perf)),
		Comeback:         Comeback(perf),
	}
	s.BestRound, s.WorstRound = bestAndWorst(perf)
	return s
}

// bestAndWorst returns copies of the highest and lowest scoring rounds.
// The earliest round wins a tie on either end.
func bestAndWorst(perf []RoundPerformance) (*RoundPerformance, *RoundPerformance) {
	if len(perf) == 0 {
		return nil, nil
	}
	best, worst := perf[0], perf[0]
	for _, r := range perf[1:] {
		if r.Points > best.Points {
			best = r
		}
		if r.Points < worst.Points {
			worst = r
		}
	}
	return &best, &worst
}

func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return roundHalfUp(float64(correct)/float64(total)*100, 1)
}

func roundHalfUp(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Floor(v*p+0.5) / p
}

// Comeback is the largest rise of the cumulative score above its running
// minimum. A single big round is not a comeback unless the score had
// dropped before it.
func Comeback(perf []RoundPerformance) int {
	cur := 0
	minSoFar := math.MaxInt
	best := 0
	for _, r := range perf {
		cur += r.Points
		minSoFar = min(minSoFar, cur)
		if recovery := cur - minSoFar; recovery > best {
			best = recovery
		}
	}
	return best
}
