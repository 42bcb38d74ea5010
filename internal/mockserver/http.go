package mockserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/zappabad/solotrader/internal/remote"
)

// Handler returns the HTTP routes and the websocket endpoint at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /games", s.handleCreate)
	mux.HandleFunc("GET /games/{id}", s.handleState)
	mux.HandleFunc("POST /games/{id}/next-price", s.handleNextPrice)
	mux.HandleFunc("POST /games/{id}/pause", s.handlePause)
	mux.HandleFunc("POST /games/{id}/resume", s.handleResume)
	mux.HandleFunc("POST /games/{id}/orders", s.handleSubmit)
	mux.HandleFunc("DELETE /games/{id}/orders/pending", s.handleRemovePending)
	mux.HandleFunc("GET /games/{id}/stocks/{stock}/orders", s.handleDayOrders)
	mux.HandleFunc("GET /games/{id}/players/{player}/interest", s.handleInterest)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeResult(w http.ResponseWriter, v any, aerr *apiError) {
	if aerr != nil {
		writeJSON(w, aerr.Code, remote.ErrorBody{Error: aerr.Msg})
		return
	}
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, remote.ErrorBody{Error: "malformed body: " + err.Error()})
		return false
	}
	return true
}

func dayParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	day, err := strconv.Atoi(r.URL.Query().Get("day"))
	if err != nil || day < 1 {
		writeJSON(w, http.StatusBadRequest, remote.ErrorBody{Error: "day must be a positive integer"})
		return 0, false
	}
	return day, true
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var p remote.CreateParams
	if !decode(w, r, &p) {
		return
	}
	res, aerr := s.createGame(p)
	writeResult(w, res, aerr)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	res, aerr := s.gameState(r.PathValue("id"))
	writeResult(w, res, aerr)
}

func (s *Server) handleNextPrice(w http.ResponseWriter, r *http.Request) {
	var p remote.NextPriceParams
	if !decode(w, r, &p) {
		return
	}
	res, aerr := s.nextPrice(r.PathValue("id"), p)
	writeResult(w, res, aerr)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	var p remote.PauseParams
	if !decode(w, r, &p) {
		return
	}
	writeResult(w, nil, s.pause(r.PathValue("id"), p))
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	writeResult(w, nil, s.resume(r.PathValue("id")))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var p remote.SubmitParams
	if !decode(w, r, &p) {
		return
	}
	res, aerr := s.submitOrder(r.PathValue("id"), p)
	writeResult(w, res, aerr)
}

func (s *Server) handleRemovePending(w http.ResponseWriter, r *http.Request) {
	res, aerr := s.removePending(r.PathValue("id"))
	writeResult(w, res, aerr)
}

func (s *Server) handleDayOrders(w http.ResponseWriter, r *http.Request) {
	day, ok := dayParam(w, r)
	if !ok {
		return
	}
	res, aerr := s.dayOrders(remote.DayOrdersParams{
		GameID:  r.PathValue("id"),
		StockID: r.PathValue("stock"),
		Day:     day,
	})
	writeResult(w, res, aerr)
}

func (s *Server) handleInterest(w http.ResponseWriter, r *http.Request) {
	day, ok := dayParam(w, r)
	if !ok {
		return
	}
	res, aerr := s.interest(remote.InterestParams{
		GameID:   r.PathValue("id"),
		PlayerID: r.PathValue("player"),
		Day:      day,
	})
	writeResult(w, res, aerr)
}
