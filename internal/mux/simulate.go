package mux

import (
	"net/http"

	"holdem-server/pkg/poker/simulator"
)

type postSimulatePayload struct {
	HoleCards      []string `json:"holeCards"`
	CommunityCards []string `json:"communityCards"`
	NumOpponents   int      `json:"numOpponents"`
	Trials         int      `json:"trials"`
}

func (m *Mux) postSimulate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postSimulatePayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		req, err := simulator.NewRequest(pp.HoleCards, pp.CommunityCards, pp.NumOpponents, pp.Trials)
		if err != nil {
			writeEngineError(w, r, err)
			return
		}

		result, err := m.simulator.Simulate(r.Context(), req)
		if err != nil {
			writeEngineError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
