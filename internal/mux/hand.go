package mux

import (
	"net/http"

	gmux "github.com/gorilla/mux"
	"holdem-server/pkg/poker/action"
)

// getHandID returns the hand as seen by the player in the query string
// Without a player, only showdown hands are revealed.
func (m *Mux) getHandID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := parsePlayerID(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		state, err := m.manager.GetHand(r.Context(), gmux.Vars(r)["id"])
		if err != nil {
			writeEngineError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, state.ViewFor(playerID))
	}
}

type getHandIDTurnResponse struct {
	PlayerID int64 `json:"playerId,omitempty"`
	// Waiting is false once nobody can act
	Waiting bool `json:"waiting"`
}

func (m *Mux) getHandIDTurn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, ok, err := m.manager.GetCurrentPlayerID(r.Context(), gmux.Vars(r)["id"])
		if err != nil {
			writeEngineError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, getHandIDTurnResponse{
			PlayerID: playerID,
			Waiting:  ok,
		})
	}
}

type postHandIDActionPayload struct {
	PlayerID int64  `json:"playerId"`
	Action   string `json:"action"`
	// Amount is the total bet for the street when raising
	Amount int `json:"amount"`
}

func (m *Mux) postHandIDAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postHandIDActionPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		act, err := action.FromString(pp.Action)
		if err != nil {
			writeEngineError(w, r, err)
			return
		}

		handID := gmux.Vars(r)["id"]
		if _, err := m.manager.ProcessAction(r.Context(), handID, pp.PlayerID, act, pp.Amount); err != nil {
			writeEngineError(w, r, err)
			return
		}

		state, err := m.manager.GetHand(r.Context(), handID)
		if err != nil {
			writeEngineError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, state.ViewFor(pp.PlayerID))
	}
}
