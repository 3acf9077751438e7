package handmanager

import (
	"context"

	"github.com/sirupsen/logrus"
	"holdem-server/pkg/model"
	"holdem-server/pkg/poker"
	"holdem-server/pkg/poker/action"
	"holdem-server/pkg/poker/gamestate"
	"holdem-server/pkg/poker/showdown"
)

// settle awards the pots and pays the winners into their room stacks
// Players left without chips sit out of the room until they buy back in.
func (m *Manager) settle(ctx context.Context, hc *handContext) error {
	in := showdown.Input{
		Players:    make([]showdown.Player, len(hc.players)),
		Community:  hc.hand.CommunityCards,
		DealerSeat: hc.hand.DealerSeat,
	}

	for i, p := range hc.players {
		in.Players[i] = showdown.Player{
			PlayerID:    p.PlayerID,
			Seat:        p.Seat,
			HoleCards:   p.HoleCards,
			Contributed: p.TotalBet,
			Folded:      p.IsFolded(),
		}
	}

	result, err := showdown.Resolve(in)
	if err != nil {
		return err
	}

	paid := 0
	for _, p := range hc.players {
		rp := hc.roomPlayers[p.PlayerID]

		p.AmountWon = result.Winnings[p.PlayerID]
		if h, ok := result.Hands[p.PlayerID]; ok {
			p.BestHand = h.Description
		}

		rp.Chips += p.AmountWon
		paid += p.AmountWon

		if rp.Chips == 0 {
			p.Status = gamestate.Out
			rp.Status = model.RoomPlayerStatusSittingOut
		}
	}

	if paid != hc.hand.Pot {
		return poker.NewError(poker.CodeInvariantViolation, "hand %s paid out %d from a pot of %d", hc.hand.ID, paid, hc.hand.Pot)
	}

	now := m.now()
	hc.hand.Stage = gamestate.Settlement
	hc.hand.EndedAt = &now
	hc.room.Status = model.RoomStatusWaiting
	hc.result = result

	hc.logger.WithFields(logrus.Fields{
		"pot":         hc.hand.Pot,
		"winnings":    result.Winnings,
		"uncontested": result.Uncontested,
	}).Info("settled hand")

	return hc.record(ctx, &model.HandAction{
		Action: action.Settle,
		Amount: hc.hand.Pot,
		Stage:  gamestate.Settlement,
	})
}
