package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"holdem-server/pkg/poker"
)

func TestFromString(t *testing.T) {
	a := assert.New(t)

	for _, s := range []string{"FOLD", "CHECK", "CALL", "RAISE", "ALL_IN"} {
		act, err := FromString(s)
		a.NoError(err)
		a.Equal(Action(s), act)
	}

	for _, s := range []string{"fold", "BET", "SMALL_BLIND", "DEAL", ""} {
		_, err := FromString(s)
		a.Equal(poker.CodeInvalidActionType, poker.CodeOf(err), s)
	}
}

func TestAction_kinds(t *testing.T) {
	a := assert.New(t)

	a.True(Raise.IsPlayerAction())
	a.False(BigBlind.IsPlayerAction())
	a.True(BigBlind.IsBlind())
	a.True(SmallBlind.IsBlind())
	a.False(Call.IsBlind())
	a.True(Settle.IsValid())
	a.False(Action("BET").IsValid())
}

func TestAction_String(t *testing.T) {
	a := assert.New(t)

	a.Equal("All-in", AllIn.String())
	a.Equal("Big blind", BigBlind.String())
	a.Panics(func() {
		_ = Action("nope").String()
	})
}

func TestAction_LogMessage(t *testing.T) {
	a := assert.New(t)

	a.Equal("called ${25}", Call.LogMessage(25))
	a.Equal("raised ${100}", Raise.LogMessage(100))
	a.Equal("folded", Fold.LogMessage(0))
	a.Equal("", Action("nope").LogMessage(0))
}
