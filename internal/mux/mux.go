package mux

import (
	"context"
	"net/http"

	gmux "github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"holdem-server/internal/config"
	"holdem-server/pkg/handmanager"
	"holdem-server/pkg/poker/simulator"
	"holdem-server/pkg/token"
)

type ctxKey int

const (
	ctxRequestIDKey ctxKey = iota
)

const requestIDHeader = "X-Request-ID"

const uuidPattern = "(?i)[a-f0-9]{8}(?:-[a-f0-9]{4}){3}-[a-f0-9]{12}"

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version   string
	manager   *handmanager.Manager
	simulator *simulator.Simulator
	table     tableDefaults
}

// tableDefaults fill in anything a request leaves out
type tableDefaults struct {
	smallBlind    int
	bigBlind      int
	startingChips int
	maxPlayers    int
}

// NewMux returns a new HTTP mux
func NewMux(version string, manager *handmanager.Manager, sim *simulator.Simulator) *Mux {
	cfg := config.Instance()

	this := &Mux{
		Router:    gmux.NewRouter(),
		version:   version,
		manager:   manager,
		simulator: sim,
		table: tableDefaults{
			smallBlind:    cfg.Table.SmallBlind,
			bigBlind:      cfg.Table.BigBlind,
			startingChips: cfg.Table.StartingChips,
			maxPlayers:    cfg.Table.MaxPlayers,
		},
	}

	this.Router.Use(this.requestIDMiddleware)

	r := this.Router
	r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	r.Methods(http.MethodPost).Path("/simulate").Handler(this.postSimulate())
	r.Methods(http.MethodPost).Path("/room").Handler(this.postRoom())

	{
		rr := r.PathPrefix("/room/{id:" + uuidPattern + "}").Subrouter()
		rr.Methods(http.MethodGet).Path("").Handler(this.getRoomID())
		rr.Methods(http.MethodPost).Path("/seat").Handler(this.postRoomIDSeat())
		rr.Methods(http.MethodPost).Path("/hand").Handler(this.postRoomIDHand())
	}

	{
		hr := r.PathPrefix("/hand/{id:" + uuidPattern + "}").Subrouter()
		hr.Methods(http.MethodGet).Path("").Handler(this.getHandID())
		hr.Methods(http.MethodGet).Path("/turn").Handler(this.getHandIDTurn())
		hr.Methods(http.MethodPost).Path("/action").Handler(this.postHandIDAction())
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, nil)
	})

	return this
}

// requestIDMiddleware tags the request with an ID, reusing the caller's if one was sent
func (m *Mux) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = token.RequestID()
		}

		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxRequestIDKey, id)))
	})
}

func requestLogger(r *http.Request) logrus.FieldLogger {
	id, _ := r.Context().Value(ctxRequestIDKey).(string)
	return logrus.WithField("requestId", id)
}
