package mux

import (
	"net/http"

	gmux "github.com/gorilla/mux"
	"holdem-server/pkg/handmanager"
)

type postRoomPayload struct {
	Name       string `json:"name"`
	SmallBlind int    `json:"smallBlind"`
	BigBlind   int    `json:"bigBlind"`
	MaxPlayers int    `json:"maxPlayers"`
}

func (m *Mux) postRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postRoomPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		opts := handmanager.RoomOptions{
			Name:       pp.Name,
			SmallBlind: pp.SmallBlind,
			BigBlind:   pp.BigBlind,
			MaxPlayers: pp.MaxPlayers,
		}

		if opts.SmallBlind == 0 && opts.BigBlind == 0 {
			opts.SmallBlind = m.table.smallBlind
			opts.BigBlind = m.table.bigBlind
		}

		if opts.MaxPlayers == 0 {
			opts.MaxPlayers = m.table.maxPlayers
		}

		room, err := m.manager.CreateRoom(r.Context(), opts)
		if err != nil {
			writeEngineError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, room)
	}
}

func (m *Mux) getRoomID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := m.manager.GetRoom(r.Context(), gmux.Vars(r)["id"])
		if err != nil {
			writeEngineError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, state)
	}
}

type postRoomIDSeatPayload struct {
	PlayerID int64 `json:"playerId"`
	Seat     int   `json:"seat"`
	// Chips defaults to the configured starting stack
	Chips int `json:"chips"`
}

func (m *Mux) postRoomIDSeat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postRoomIDSeatPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if pp.Chips == 0 {
			pp.Chips = m.table.startingChips
		}

		rp, err := m.manager.SitDown(r.Context(), gmux.Vars(r)["id"], pp.PlayerID, pp.Seat, pp.Chips)
		if err != nil {
			writeEngineError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, rp)
	}
}

func (m *Mux) postRoomIDHand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hand, err := m.manager.StartNewHand(r.Context(), gmux.Vars(r)["id"])
		if err != nil {
			writeEngineError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, hand)
	}
}
