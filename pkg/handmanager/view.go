package handmanager

import "holdem-server/pkg/model"

// ViewFor returns a copy of the state that is safe to show the player
// Other players' hole cards are hidden unless they were shown down. A viewer of zero
// sees no hole cards before showdown.
func (s *State) ViewFor(viewerID int64) *State {
	view := *s
	view.Players = make([]*model.HandPlayer, len(s.Players))
	for i, p := range s.Players {
		cp := *p
		if p.PlayerID != viewerID && p.BestHand == "" {
			cp.HoleCards = nil
		}

		view.Players[i] = &cp
	}

	return &view
}
