package mux

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"holdem-server/pkg/poker"
)

// parsePlayerID reads an optional player ID from the query string
// Returns zero if none was given
func parsePlayerID(r *http.Request) (int64, error) {
	s := r.FormValue("playerId")
	if s == "" {
		return 0, nil
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("playerId must be a positive integer")
	}

	return id, nil
}

func decodeRequest(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" && ct != "text/json" {
		writeJSONError(w, http.StatusUnsupportedMediaType, nil)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("could not write JSON response")
	}
}

type errorResponse struct {
	Message    string     `json:"message"`
	StatusCode int        `json:"statusCode"`
	Code       poker.Code `json:"code,omitempty"`
}

// statusCode returns the HTTP status for an engine error
func statusCode(err error) int {
	switch code := poker.CodeOf(err); {
	case code == "":
		return http.StatusInternalServerError
	case code == poker.CodeRoomNotFound, code == poker.CodeHandNotFound:
		return http.StatusNotFound
	case code == poker.CodeNotYourTurn, code == poker.CodeInvalidHandState,
		code == poker.CodeSeatTaken, code == poker.CodeInsufficientPlayers:
		return http.StatusConflict
	case poker.IsRuleViolation(err), poker.IsInputError(err):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// writeEngineError writes an error returned by the hand manager or simulator
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusCode(err)
	if status >= 500 {
		requestLogger(r).WithError(err).WithField("statusCode", status).Error("request failed")
		writeJSON(w, status, errorResponse{
			Message:    http.StatusText(status),
			StatusCode: status,
		})
		return
	}

	writeJSON(w, status, errorResponse{
		Message:    err.Error(),
		StatusCode: status,
		Code:       poker.CodeOf(err),
	})
}

func writeJSONError(w http.ResponseWriter, statusCode int, err error) {
	var msg string

	if statusCode < 500 && err != nil {
		msg = err.Error()
	} else {
		msg = http.StatusText(statusCode)
	}

	if statusCode >= 500 {
		logrus.WithField("statusCode", statusCode).Error(err)
	}

	writeJSON(w, statusCode, errorResponse{
		Message:    msg,
		StatusCode: statusCode,
	})
}

func assertDo(t *testing.T, req *http.Request, respObj interface{}, statusCode int) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Error(err)
		return nil
	}
	defer resp.Body.Close()

	if statusCode != resp.StatusCode {
		b, _ := io.ReadAll(resp.Body)
		t.Log(string(b))
		assert.Equal(t, statusCode, resp.StatusCode)
		return nil
	}

	if respObj != nil {
		if err := json.NewDecoder(resp.Body).Decode(respObj); err != nil {
			t.Error(err)
			return nil
		}
	}

	return resp
}

func assertGet(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Error(err)
		return nil
	}

	return assertDo(t, req, respObj, statusCode)
}

func assertPost(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int) *http.Response {
	t.Helper()

	var body io.Reader
	switch val := payload.(type) {
	case string:
		body = strings.NewReader(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			t.Error(err)
			return nil
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	if err != nil {
		t.Error(err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	return assertDo(t, req, respObj, statusCode)
}

func roomPath(roomID string, parts ...string) string {
	return fmt.Sprintf("/room/%s%s", roomID, strings.Join(parts, ""))
}
