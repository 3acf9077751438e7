package handmanager

import (
	"context"

	"github.com/sirupsen/logrus"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/model"
	"holdem-server/pkg/poker"
	"holdem-server/pkg/poker/action"
	"holdem-server/pkg/poker/betting"
	"holdem-server/pkg/poker/gamestate"
	"holdem-server/pkg/poker/validator"
	"holdem-server/pkg/store"
)

// ProcessAction applies a player's action and advances the hand as far as it can go
// For a raise, amount is the player's total bet for the street. Other actions ignore it.
func (m *Manager) ProcessAction(ctx context.Context, handID string, playerID int64, act action.Action, amount int) (*model.Hand, error) {
	unlock := m.handLocks.Lock(handID)
	defer unlock()

	var hc *handContext
	err := m.store.Tx(ctx, func(tx store.Tx) error {
		var err error
		if hc, err = m.load(ctx, tx, handID, true); err != nil {
			return err
		}

		if err := validator.Validate(hc.request(playerID, act, amount)); err != nil {
			return err
		}

		if err := hc.apply(ctx, playerID, act, amount); err != nil {
			return err
		}

		if err := m.advance(ctx, hc); err != nil {
			return err
		}

		return hc.save(ctx)
	})
	if err != nil {
		if hc != nil && poker.IsRuleViolation(err) {
			hc.logger.WithError(err).WithFields(logrus.Fields{
				"player": playerID,
				"action": string(act),
			}).Debug("rejected action")
		}

		return nil, err
	}

	m.afterCommit(ctx, hc)
	return hc.hand, nil
}

// request describes the action for the validator
func (hc *handContext) request(playerID int64, act action.Action, amount int) validator.Request {
	r := validator.Request{
		Stage:    hc.hand.Stage,
		PlayerID: playerID,
		Action:   act,
		Amount:   amount,
	}

	if p := hc.player(playerID); p != nil {
		r.InHand = true
		r.Status = p.Status
	}

	if hc.hand.Stage.IsBetting() {
		r.CurrentPlayerID = hc.currentPlayerID()
		r.CurrentBet = hc.round.CurrentBet
		r.MinRaise = hc.round.MinRaise
		if state, ok := hc.round.Player(playerID); ok {
			r.PlayerBet = state.Bet
		}
	}

	return r
}

// advance moves the hand forward until a player has a decision to make or the hand is settled
// Streets with nobody left to bet are dealt one after another.
func (m *Manager) advance(ctx context.Context, hc *handContext) error {
	for {
		if hc.hand.Stage.IsBetting() && awaitingAction(hc.round) {
			return nil
		}

		t := gamestate.Next(hc.hand.Stage, hc.statuses())
		hc.logger.WithFields(logrus.Fields{
			"from":        t.From.String(),
			"to":          t.To.String(),
			"fastForward": t.FastForward,
		}).Debug("advancing hand")

		switch t.To {
		case gamestate.Flop, gamestate.Turn, gamestate.River:
			if err := m.deal(ctx, hc, t); err != nil {
				return err
			}

			start, err := hc.streetStart(nil)
			if err != nil {
				return err
			}

			hc.round = betting.New(start)
		case gamestate.Showdown:
			hc.hand.Stage = gamestate.Showdown
		case gamestate.Settlement:
			return m.settle(ctx, hc)
		default:
			return poker.NewError(poker.CodeInvariantViolation, "hand %s cannot move from %s to %s", hc.hand.ID, t.From, t.To)
		}
	}
}

// deal deals the community cards for the next street
// The deck is rebuilt without every card already dealt in the hand.
func (m *Manager) deal(ctx context.Context, hc *handContext, t gamestate.Transition) error {
	known := make([][]deck.Card, 0, len(hc.players)+1)
	known = append(known, hc.hand.CommunityCards)
	for _, p := range hc.players {
		known = append(known, p.HoleCards)
	}

	d := deck.NewWithout(known...)
	d.Shuffle(m.random)

	cards, err := d.Deal(t.Deal)
	if err != nil {
		return poker.NewError(poker.CodeInvariantViolation, "could not deal %d cards for %s: %v", t.Deal, t.To, err)
	}

	community := make([]deck.Card, 0, len(hc.hand.CommunityCards)+len(cards))
	community = append(community, hc.hand.CommunityCards...)
	hc.hand.CommunityCards = append(community, cards...)
	hc.hand.Stage = t.To

	hc.logger.WithFields(logrus.Fields{
		"stage": t.To.String(),
		"cards": deck.CardsToString(cards),
	}).Debug("dealt community cards")

	return hc.record(ctx, &model.HandAction{
		Action: action.Deal,
		Stage:  t.To,
		Cards:  cards,
	})
}
