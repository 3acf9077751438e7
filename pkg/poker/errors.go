package poker

import (
	"errors"
	"fmt"
)

// Code is a machine-readable reason attached to an engine error
type Code string

// input validation codes
const (
	CodeInvalidInput          Code = "INVALID_INPUT"
	CodeInvalidCard           Code = "INVALID_CARD"
	CodeInvalidHoleCards      Code = "INVALID_HOLE_CARDS"
	CodeInvalidCommunityCards Code = "INVALID_COMMUNITY_CARDS"
	CodeInvalidOpponents      Code = "INVALID_OPPONENTS"
	CodeTooManyOpponents      Code = "TOO_MANY_OPPONENTS"
	CodeDuplicateCards        Code = "DUPLICATE_CARDS"
)

// lookup codes
const (
	CodeRoomNotFound        Code = "ROOM_NOT_FOUND"
	CodeHandNotFound        Code = "HAND_NOT_FOUND"
	CodeInsufficientPlayers Code = "INSUFFICIENT_PLAYERS"
	CodeSeatTaken           Code = "SEAT_TAKEN"
)

// game-rule codes
const (
	CodeNotInHand          Code = "NOT_IN_HAND"
	CodePlayerCannotAct    Code = "PLAYER_CANNOT_ACT"
	CodeNotYourTurn        Code = "NOT_YOUR_TURN"
	CodeInvalidHandState   Code = "INVALID_HAND_STATE"
	CodeInvalidActionType  Code = "INVALID_ACTION_TYPE"
	CodeNothingToCall      Code = "NOTHING_TO_CALL"
	CodeInvalidRaiseAmount Code = "INVALID_RAISE_AMOUNT"
	CodeRaiseTooLow        Code = "RAISE_TOO_LOW"
	CodeRaiseTooSmall      Code = "RAISE_TOO_SMALL"
	CodeInvalidAction      Code = "INVALID_ACTION"
)

// CodeInvariantViolation marks a programmer or integration error. These are never retried.
const CodeInvariantViolation Code = "INVARIANT_VIOLATION"

// Error is an error raised by the engine
// The message is safe to return to a client
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError returns a new engine error
func NewError(code Code, format string, a ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, a...),
	}
}

// CodeOf returns the code of the first *Error in the chain, or an empty code
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ""
}

// HasCode returns true if the error chain contains an engine error with the code
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// IsRuleViolation returns true if the error was caused by an illegal action
func IsRuleViolation(err error) bool {
	switch CodeOf(err) {
	case CodeNotInHand, CodePlayerCannotAct, CodeNotYourTurn, CodeInvalidHandState,
		CodeInvalidActionType, CodeNothingToCall, CodeInvalidRaiseAmount, CodeRaiseTooLow,
		CodeRaiseTooSmall, CodeInvalidAction:
		return true
	}

	return false
}

// IsInputError returns true if the error was caused by malformed input
func IsInputError(err error) bool {
	switch CodeOf(err) {
	case CodeInvalidInput, CodeInvalidCard, CodeInvalidHoleCards, CodeInvalidCommunityCards,
		CodeInvalidOpponents, CodeTooManyOpponents, CodeDuplicateCards, CodeInsufficientPlayers:
		return true
	}

	return false
}
