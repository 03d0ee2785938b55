package stats

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const csvHeader = "Name,Total Score,Accuracy,Correct Answers,Total Rounds,Biggest Comeback\n"

// FormatAccuracy renders accuracy with one decimal place. A contestant
// with no rounds reports a bare 0.
func FormatAccuracy(s ContestantStats) string {
	if s.TotalRounds == 0 {
		return "0"
	}
	return strconv.FormatFloat(s.Accuracy, 'f', 1, 64)
}

// WriteCSV writes one row per contestant. Names are always quoted.
func WriteCSV(w io.Writer, snapshot Snapshot) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, s := range snapshot {
		_, err := fmt.Fprintf(bw, "%s,%d,%s,%d,%d,%d\n",
			quote(s.Name), s.TotalScore, FormatAccuracy(s), s.CorrectCount, s.TotalRounds, s.Comeback)
		if err != nil {
			return fmt.Errorf("writing csv row for %q: %w", s.Name, err)
		}
	}
	return bw.Flush()
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ExportFileName names an export of the given extension after the day it
// was taken, e.g. game-stats-2025-12-24.csv.
func ExportFileName(at time.Time, ext string) string {
	return "game-stats-" + at.UTC().Format("2006-01-02") + "." + ext
}
