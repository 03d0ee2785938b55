package stats

import (
	"fmt"
	"sort"
)

type Highlights struct {
	Winner          *ContestantStats `json:"winner,omitempty"`
	BiggestComeback *ContestantStats `json:"biggestComeback,omitempty"`
	MostAccurate    *ContestantStats `json:"mostAccurate,omitempty"`
}

// Rank picks the leader of three independent orderings of the snapshot.
// Ties go to the contestant that joined first.
func Rank(snapshot Snapshot) Highlights {
	if len(snapshot) == 0 {
		return Highlights{}
	}
	return Highlights{
		Winner:          top(snapshot, func(a, b ContestantStats) bool { return a.TotalScore > b.TotalScore }),
		BiggestComeback: top(snapshot, func(a, b ContestantStats) bool { return a.Comeback > b.Comeback }),
		MostAccurate:    top(snapshot, func(a, b ContestantStats) bool { return a.Accuracy > b.Accuracy }),
	}
}

func top(snapshot Snapshot, greater func(a, b ContestantStats) bool) *ContestantStats {
	ranked := sorted(snapshot, greater)
	return &ranked[0]
}

// Standings orders a copy of the snapshot by total score, highest first.
func Standings(snapshot Snapshot) Snapshot {
	return sorted(snapshot, func(a, b ContestantStats) bool { return a.TotalScore > b.TotalScore })
}

func sorted(snapshot Snapshot, greater func(a, b ContestantStats) bool) Snapshot {
	ranked := make(Snapshot, len(snapshot))
	copy(ranked, snapshot)
	sort.SliceStable(ranked, func(i, j int) bool { return greater(ranked[i], ranked[j]) })
	return ranked
}

// Lines renders the highlights the way the statistics dialog lists them.
func (h Highlights) Lines() []string {
	var lines []string
	if h.Winner != nil {
		lines = append(lines, fmt.Sprintf("Winner: %s with %d points", h.Winner.Name, h.Winner.TotalScore))
	}
	if h.BiggestComeback != nil {
		lines = append(lines, fmt.Sprintf("Biggest Comeback: %s (+%d recovery)", h.BiggestComeback.Name, h.BiggestComeback.Comeback))
	}
	if h.MostAccurate != nil {
		lines = append(lines, fmt.Sprintf("Most Accurate: %s (%s%%)", h.MostAccurate.Name, FormatAccuracy(*h.MostAccurate)))
	}
	return lines
}
