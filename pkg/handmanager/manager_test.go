package handmanager

import (
	"context"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"holdem-server/internal/rng"
	"holdem-server/pkg/cache"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/model"
	"holdem-server/pkg/poker"
	"holdem-server/pkg/poker/action"
	"holdem-server/pkg/poker/gamestate"
	"holdem-server/pkg/poker/handanalyzer"
	"holdem-server/pkg/store"
	"holdem-server/pkg/store/memstore"
)

var cbg = context.Background()

type recorder struct {
	mu      sync.Mutex
	actions []*model.HandAction
}

func (r *recorder) Publish(ctx context.Context, a *model.HandAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.actions = append(r.actions, a)
	return nil
}

func (r *recorder) kinds() []action.Action {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]action.Action, len(r.actions))
	for i, a := range r.actions {
		kinds[i] = a.Action
	}

	return kinds
}

type fixture struct {
	t         *testing.T
	store     *memstore.Store
	m         *Manager
	room      *model.Room
	published *recorder
}

// newFixture seats one player per stack, player n+1 in seat n, at a 5/10 room
func newFixture(t *testing.T, seed int64, stacks ...int) *fixture {
	t.Helper()

	logger, _ := test.NewNullLogger()
	f := &fixture{
		t:         t,
		store:     memstore.New(),
		published: &recorder{},
	}

	f.m = New(f.store,
		WithLogger(logger),
		WithGenerator(rng.Seeded(seed)),
		WithPublisher(f.published),
		WithCache(cache.NewMemory()),
	)

	room, err := f.m.CreateRoom(cbg, RoomOptions{Name: "test", SmallBlind: 5, BigBlind: 10, MaxPlayers: 9})
	require.NoError(t, err)
	f.room = room

	for i, chips := range stacks {
		_, err := f.m.SitDown(cbg, room.ID, int64(i+1), i, chips)
		require.NoError(t, err)
	}

	return f
}

func (f *fixture) start() *model.Hand {
	f.t.Helper()

	hand, err := f.m.StartNewHand(cbg, f.room.ID)
	require.NoError(f.t, err)
	return hand
}

func (f *fixture) act(handID string, playerID int64, act action.Action, amount int) *model.Hand {
	f.t.Helper()

	hand, err := f.m.ProcessAction(cbg, handID, playerID, act, amount)
	require.NoError(f.t, err, "%d %s %d", playerID, act, amount)
	return hand
}

func (f *fixture) assertTurn(handID string, expects int64) {
	f.t.Helper()

	id, ok, err := f.m.GetCurrentPlayerID(cbg, handID)
	assert.NoError(f.t, err)
	assert.Equal(f.t, expects != 0, ok)
	assert.Equal(f.t, expects, id)
}

func (f *fixture) chips() map[int64]int {
	f.t.Helper()

	state, err := f.m.GetRoom(cbg, f.room.ID)
	require.NoError(f.t, err)

	chips := make(map[int64]int)
	for _, p := range state.Players {
		chips[p.PlayerID] = p.Chips
	}

	return chips
}

func (f *fixture) totalChips() int {
	total := 0
	for _, c := range f.chips() {
		total += c
	}

	return total
}

func (f *fixture) state(handID string) *State {
	f.t.Helper()

	state, err := f.m.GetHand(cbg, handID)
	require.NoError(f.t, err)
	return state
}

func assertCode(t *testing.T, err error, code poker.Code) {
	t.Helper()

	if assert.Error(t, err) {
		assert.Equal(t, code, poker.CodeOf(err), err.Error())
	}
}

func TestManager_StartNewHand(t *testing.T) {
	f := newFixture(t, 1, 100, 100)
	hand := f.start()

	assert.Equal(t, 1, hand.HandNumber)
	assert.Equal(t, 0, hand.DealerSeat)
	assert.Equal(t, gamestate.PreFlop, hand.Stage)
	assert.Equal(t, 15, hand.Pot)
	assert.Empty(t, hand.CommunityCards)

	// heads up, the dealer posts the small blind and acts first
	assert.Equal(t, map[int64]int{1: 95, 2: 90}, f.chips())
	f.assertTurn(hand.ID, 1)

	state := f.state(hand.ID)
	require.Len(t, state.Players, 2)
	for _, p := range state.Players {
		assert.Len(t, p.HoleCards, 2)
		assert.Equal(t, gamestate.Active, p.Status)
	}

	_, dup := deck.HasDuplicates(state.Players[0].HoleCards, state.Players[1].HoleCards)
	assert.False(t, dup)

	require.Len(t, state.Actions, 2)
	assert.Equal(t, action.SmallBlind, state.Actions[0].Action)
	assert.Equal(t, int64(1), state.Actions[0].PlayerID)
	assert.Equal(t, 5, state.Actions[0].Amount)
	assert.Equal(t, action.BigBlind, state.Actions[1].Action)
	assert.Equal(t, int64(2), state.Actions[1].PlayerID)
	assert.Equal(t, []action.Action{action.SmallBlind, action.BigBlind}, f.published.kinds())

	room, _ := f.m.GetRoom(cbg, f.room.ID)
	assert.Equal(t, model.RoomStatusInProgress, room.Room.Status)
	assert.Equal(t, hand.ID, room.LatestHandID)

	// only one hand at a time
	_, err := f.m.StartNewHand(cbg, f.room.ID)
	assertCode(t, err, poker.CodeInvalidHandState)
}

func TestManager_StartNewHand_Errors(t *testing.T) {
	f := newFixture(t, 1, 100)

	_, err := f.m.StartNewHand(cbg, "missing")
	assertCode(t, err, poker.CodeRoomNotFound)

	_, err = f.m.StartNewHand(cbg, f.room.ID)
	assertCode(t, err, poker.CodeInsufficientPlayers)
}

func TestManager_BlindsThreeHanded(t *testing.T) {
	f := newFixture(t, 1, 100, 100, 100)
	hand := f.start()

	// dealer in seat 0, small blind seat 1, big blind seat 2, first to act is the dealer
	assert.Equal(t, map[int64]int{1: 100, 2: 95, 3: 90}, f.chips())
	f.assertTurn(hand.ID, 1)
}

func TestManager_FoldIsUncontested(t *testing.T) {
	f := newFixture(t, 1, 100, 100)
	hand := f.start()

	hand = f.act(hand.ID, 1, action.Fold, 0)
	assert.Equal(t, gamestate.Settlement, hand.Stage)
	assert.True(t, hand.IsComplete())
	assert.Empty(t, hand.CommunityCards)
	assert.Equal(t, map[int64]int{1: 95, 2: 105}, f.chips())
	f.assertTurn(hand.ID, 0)

	state := f.state(hand.ID)
	assert.Equal(t, gamestate.Folded, state.Players[0].Status)
	assert.Equal(t, 0, state.Players[0].AmountWon)
	assert.Equal(t, 15, state.Players[1].AmountWon)
	assert.Equal(t, "", state.Players[1].BestHand)

	last := state.Actions[len(state.Actions)-1]
	assert.Equal(t, action.Settle, last.Action)
	assert.Equal(t, 15, last.Amount)
	assert.Equal(t, []action.Action{action.SmallBlind, action.BigBlind, action.Fold, action.Settle}, f.published.kinds())

	room, _ := f.m.GetRoom(cbg, f.room.ID)
	assert.Equal(t, model.RoomStatusWaiting, room.Room.Status)

	_, err := f.m.ProcessAction(cbg, hand.ID, 2, action.Check, 0)
	assertCode(t, err, poker.CodeInvalidHandState)
}

func TestManager_CheckDown(t *testing.T) {
	f := newFixture(t, 7, 100, 100)
	hand := f.start()

	f.act(hand.ID, 1, action.Call, 0)
	f.assertTurn(hand.ID, 2)

	hand = f.act(hand.ID, 2, action.Check, 0)
	assert.Equal(t, gamestate.Flop, hand.Stage)
	assert.Len(t, hand.CommunityCards, 3)
	assert.Equal(t, 20, hand.Pot)

	// after the flop, the first player left of the dealer acts
	f.assertTurn(hand.ID, 2)

	for _, stage := range []gamestate.Stage{gamestate.Turn, gamestate.River} {
		f.act(hand.ID, 2, action.Check, 0)
		f.assertTurn(hand.ID, 1)

		hand = f.act(hand.ID, 1, action.Check, 0)
		assert.Equal(t, stage, hand.Stage)
		assert.Len(t, hand.CommunityCards, stage.CommunityCards())
	}

	f.act(hand.ID, 2, action.Check, 0)
	hand = f.act(hand.ID, 1, action.Check, 0)
	assert.Equal(t, gamestate.Settlement, hand.Stage)
	assert.Len(t, hand.CommunityCards, 5)
	assert.Equal(t, 200, f.totalChips())

	state := f.state(hand.ID)
	assertShowdown(t, state)

	deals := 0
	for _, a := range state.Actions {
		if a.Action == action.Deal {
			deals++
			assert.Equal(t, int64(0), a.PlayerID)
		}
	}
	assert.Equal(t, 3, deals)

	for i, a := range state.Actions {
		assert.Equal(t, i+1, a.Sequence)
	}
}

// assertShowdown checks the winnings against an independent evaluation of every live hand
// It only applies when nobody was all-in for less than the others.
func assertShowdown(t *testing.T, state *State) {
	t.Helper()

	best := 0
	scores := make(map[int64]int)
	for _, p := range state.Players {
		if p.IsFolded() && p.AmountWon == 0 && p.BestHand == "" {
			continue
		}

		cards := append(append([]deck.Card{}, p.HoleCards...), state.Hand.CommunityCards...)
		r := handanalyzer.MustEvaluate(cards)
		assert.Equal(t, r.Description, p.BestHand)

		scores[p.PlayerID] = r.Score
		if r.Score > best {
			best = r.Score
		}
	}

	winners := 0
	for _, score := range scores {
		if score == best {
			winners++
		}
	}

	for id, score := range scores {
		p := findPlayer(state, id)
		if score == best {
			assert.InDelta(t, state.Hand.Pot/winners, p.AmountWon, 1, "player %d", id)
		} else {
			assert.Equal(t, 0, p.AmountWon, "player %d", id)
		}
	}
}

func findPlayer(state *State, playerID int64) *model.HandPlayer {
	for _, p := range state.Players {
		if p.PlayerID == playerID {
			return p
		}
	}

	return nil
}

func TestManager_ActionErrors(t *testing.T) {
	f := newFixture(t, 1, 100, 100)
	hand := f.start()

	_, err := f.m.ProcessAction(cbg, "missing", 1, action.Fold, 0)
	assertCode(t, err, poker.CodeHandNotFound)

	_, err = f.m.ProcessAction(cbg, hand.ID, 2, action.Call, 0)
	assertCode(t, err, poker.CodeNotYourTurn)

	_, err = f.m.ProcessAction(cbg, hand.ID, 99, action.Fold, 0)
	assertCode(t, err, poker.CodeNotInHand)

	_, err = f.m.ProcessAction(cbg, hand.ID, 1, action.Deal, 0)
	assertCode(t, err, poker.CodeInvalidActionType)

	_, err = f.m.ProcessAction(cbg, hand.ID, 1, action.Check, 0)
	assertCode(t, err, poker.CodeInvalidAction)

	_, err = f.m.ProcessAction(cbg, hand.ID, 1, action.Raise, 10)
	assertCode(t, err, poker.CodeRaiseTooLow)

	_, err = f.m.ProcessAction(cbg, hand.ID, 1, action.Raise, 15)
	assertCode(t, err, poker.CodeRaiseTooSmall)

	_, err = f.m.ProcessAction(cbg, hand.ID, 1, action.Raise, 500)
	assertCode(t, err, poker.CodeInvalidRaiseAmount)

	// rejected actions leave no trace
	assert.Len(t, f.state(hand.ID).Actions, 2)
	assert.Equal(t, map[int64]int{1: 95, 2: 90}, f.chips())

	f.act(hand.ID, 1, action.Call, 0)
	_, err = f.m.ProcessAction(cbg, hand.ID, 2, action.Call, 0)
	assertCode(t, err, poker.CodeNothingToCall)
}

func TestManager_RaiseReopensAction(t *testing.T) {
	f := newFixture(t, 1, 200, 200, 200)
	hand := f.start()

	// player 1 is the dealer and first to act
	hand = f.act(hand.ID, 1, action.Raise, 30)
	assert.Equal(t, 45, hand.Pot)
	f.act(hand.ID, 2, action.Call, 0)

	hand = f.act(hand.ID, 3, action.Raise, 80)
	assert.Equal(t, gamestate.PreFlop, hand.Stage)
	f.assertTurn(hand.ID, 1)

	f.act(hand.ID, 1, action.Call, 0)
	hand = f.act(hand.ID, 2, action.Fold, 0)
	assert.Equal(t, gamestate.Flop, hand.Stage)
	assert.Equal(t, 190, hand.Pot)
	assert.Equal(t, map[int64]int{1: 120, 2: 170, 3: 120}, f.chips())

	// seat 1 folded, so seat 2 is first after the flop
	f.assertTurn(hand.ID, 3)

	// a bet on the flop is a raise from zero
	f.act(hand.ID, 3, action.Raise, 10)
	hand = f.act(hand.ID, 1, action.Raise, 40)
	assert.Equal(t, 240, hand.Pot)

	_, err := f.m.ProcessAction(cbg, hand.ID, 3, action.Raise, 50)
	assertCode(t, err, poker.CodeRaiseTooSmall)

	hand = f.act(hand.ID, 3, action.Call, 0)
	assert.Equal(t, gamestate.Turn, hand.Stage)
	assert.Equal(t, 270, hand.Pot)
}

func TestManager_AllInFastForward(t *testing.T) {
	f := newFixture(t, 3, 100, 100)
	hand := f.start()

	f.act(hand.ID, 1, action.AllIn, 0)
	f.assertTurn(hand.ID, 2)

	hand = f.act(hand.ID, 2, action.Call, 0)
	assert.Equal(t, gamestate.Settlement, hand.Stage)
	assert.Len(t, hand.CommunityCards, 5)
	assert.Equal(t, 200, hand.Pot)
	assert.Equal(t, 200, f.totalChips())

	state := f.state(hand.ID)
	assertShowdown(t, state)

	kinds := f.published.kinds()
	assert.Equal(t, []action.Action{
		action.SmallBlind, action.BigBlind, action.AllIn, action.Call,
		action.Deal, action.Deal, action.Deal, action.Settle,
	}, kinds)

	_, dup := deck.HasDuplicates(state.Hand.CommunityCards, state.Players[0].HoleCards, state.Players[1].HoleCards)
	assert.False(t, dup)
}

func TestManager_SidePots(t *testing.T) {
	f := newFixture(t, 5, 50, 100, 200)
	hand := f.start()

	f.act(hand.ID, 1, action.AllIn, 0)
	f.act(hand.ID, 2, action.AllIn, 0)
	hand = f.act(hand.ID, 3, action.Call, 0)

	// only player 3 can still bet, so the board runs out
	assert.Equal(t, gamestate.Settlement, hand.Stage)
	assert.Equal(t, 250, hand.Pot)
	assert.Equal(t, 350, f.totalChips())

	state := f.state(hand.ID)
	won := 0
	for _, p := range state.Players {
		won += p.AmountWon
		assert.NotEmpty(t, p.BestHand)
	}
	assert.Equal(t, 250, won)

	// the short stack can only win the main pot
	assert.LessOrEqual(t, findPlayer(state, 1).AmountWon, 150)
	assert.GreaterOrEqual(t, f.chips()[3], 100)
}

func TestManager_ShortAllInDoesNotReopen(t *testing.T) {
	f := newFixture(t, 1, 200, 200, 25)
	hand := f.start()

	// player 1 deals, 2 posts 5, 3 posts 10 of a 25 stack
	f.act(hand.ID, 1, action.Raise, 20)
	f.act(hand.ID, 2, action.Call, 0)

	// 25 is only 5 more than 20
	f.act(hand.ID, 3, action.AllIn, 0)
	f.assertTurn(hand.ID, 1)

	_, err := f.m.ProcessAction(cbg, hand.ID, 1, action.Raise, 60)
	assertCode(t, err, poker.CodeInvalidAction)

	f.act(hand.ID, 1, action.Call, 0)
	hand = f.act(hand.ID, 2, action.Call, 0)
	assert.Equal(t, gamestate.Flop, hand.Stage)
	assert.Equal(t, 75, hand.Pot)
}

func TestManager_DealerRotation(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := memstore.New()
	m := New(s, WithLogger(logger), WithGenerator(rng.Seeded(1)))

	room, err := m.CreateRoom(cbg, RoomOptions{SmallBlind: 1, BigBlind: 2, MaxPlayers: 9})
	require.NoError(t, err)
	assert.NotEmpty(t, room.Name)

	for i, seat := range []int{2, 5, 7} {
		_, err := m.SitDown(cbg, room.ID, int64(i+1), seat, 100)
		require.NoError(t, err)
	}

	for i, expects := range []int{2, 5, 7, 2} {
		hand, err := m.StartNewHand(cbg, room.ID)
		require.NoError(t, err)
		assert.Equal(t, expects, hand.DealerSeat)
		assert.Equal(t, i+1, hand.HandNumber)

		// fold around to the big blind
		for {
			id, ok, err := m.GetCurrentPlayerID(cbg, hand.ID)
			require.NoError(t, err)
			if !ok {
				break
			}

			hand, err = m.ProcessAction(cbg, hand.ID, id, action.Fold, 0)
			require.NoError(t, err)
		}

		assert.True(t, hand.IsComplete())
	}
}

func TestManager_BustedPlayerSitsOut(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		f := newFixture(t, seed, 100, 100)
		hand := f.start()
		f.act(hand.ID, 1, action.AllIn, 0)
		f.act(hand.ID, 2, action.Call, 0)

		chips := f.chips()
		if chips[1] == chips[2] {
			// split pot
			continue
		}

		loser := int64(1)
		if chips[1] > chips[2] {
			loser = 2
		}

		assert.Equal(t, 0, chips[loser])
		assert.Equal(t, 200, chips[3-loser])

		state := f.state(hand.ID)
		assert.Equal(t, gamestate.Out, findPlayer(state, loser).Status)

		room, _ := f.m.GetRoom(cbg, f.room.ID)
		for _, p := range room.Players {
			if p.PlayerID == loser {
				assert.Equal(t, model.RoomPlayerStatusSittingOut, p.Status)
			}
		}

		_, err := f.m.StartNewHand(cbg, f.room.ID)
		assertCode(t, err, poker.CodeInsufficientPlayers)
		return
	}

	t.Fatal("every hand was a split pot")
}

func TestManager_ConcurrentActions(t *testing.T) {
	f := newFixture(t, 1, 100, 100)
	hand := f.start()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.m.ProcessAction(cbg, hand.ID, 1, action.Call, 0)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		assertCode(t, err, poker.CodeNotYourTurn)
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 20, f.state(hand.ID).Hand.Pot)
	assert.Equal(t, 0, f.m.handLocks.size())
}

func TestManager_CachedRoundMatchesRebuild(t *testing.T) {
	f := newFixture(t, 1, 100, 100, 100)
	hand := f.start()
	f.act(hand.ID, 1, action.Raise, 30)
	f.act(hand.ID, 2, action.Call, 0)

	var rebuilt *handContext
	uncached := New(f.store, WithLogger(f.m.logger))
	err := f.store.Tx(cbg, func(tx store.Tx) error {
		var err error
		rebuilt, err = uncached.load(cbg, tx, hand.ID, false)
		return err
	})
	require.NoError(t, err)

	cached, err := f.m.cache.Get(cbg, hand.ID, rebuilt.version)
	require.NoError(t, err)
	assert.Equal(t, rebuilt.round, cached)
	assert.Equal(t, 4, rebuilt.version)
}

func TestState_ViewFor(t *testing.T) {
	state := &State{
		Hand: &model.Hand{ID: "h"},
		Players: []*model.HandPlayer{
			{PlayerID: 1, HoleCards: deck.CardsFromString("Ah,Ad")},
			{PlayerID: 2, HoleCards: deck.CardsFromString("Kh,Kd")},
			{PlayerID: 3, HoleCards: deck.CardsFromString("2c,7d"), BestHand: "High card, Ace"},
		},
	}

	view := state.ViewFor(1)
	assert.Len(t, view.Players[0].HoleCards, 2)
	assert.Nil(t, view.Players[1].HoleCards)
	assert.Len(t, view.Players[2].HoleCards, 2)

	// the original is untouched
	assert.Len(t, state.Players[1].HoleCards, 2)

	anonymous := state.ViewFor(0)
	assert.Nil(t, anonymous.Players[0].HoleCards)
}
