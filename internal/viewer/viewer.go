// Package viewer builds the per-contestant views shown on the contestant
// viewer page.
package viewer

import (
	"fmt"

	"gameshow/internal/gamestate"
	"gameshow/internal/utility"
)

const timeLayout = "15:04"

type BonusItem struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
	Round  string `json:"round"`
	Time   string `json:"time"`
	Points int    `json:"points"`
}

type BonusPanel struct {
	Visible   bool        `json:"visible"`
	Items     []BonusItem `json:"items,omitempty"`
	Total     int         `json:"total"`
	ShowTotal bool        `json:"showTotal"`
}

// BonusDisplay lists the bonuses of the named contestant. The panel stays
// hidden for unknown names and contestants without bonuses.
func BonusDisplay(state *gamestate.State, name string) BonusPanel {
	idx, ok := state.FindContestant(name)
	if !ok {
		return BonusPanel{}
	}
	bonuses := state.Bonuses(idx)
	if len(bonuses) == 0 {
		return BonusPanel{}
	}

	panel := BonusPanel{Visible: true, Items: make([]BonusItem, len(bonuses))}
	for i, b := range bonuses {
		panel.Items[i] = BonusItem{
			Label:  fmt.Sprintf("+%d Bonus %s", b.Points, utility.Plural(b.Points, "Point")),
			Reason: b.Reason,
			Round:  fmt.Sprintf("Round %d", b.Round),
			Time:   b.AwardedAt.Format(timeLayout),
			Points: b.Points,
		}
		panel.Total += b.Points
	}
	panel.ShowTotal = len(bonuses) > 1
	return panel
}
