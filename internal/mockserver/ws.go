package mockserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/zappabad/solotrader/internal/remote"
)

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	s.logger.Info("websocket client connected", "remote", r.RemoteAddr)

	var writeMu sync.Mutex
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			s.logger.Debug("websocket client gone", "err", err)
			return
		}
		var req remote.Envelope
		if err := json.Unmarshal(msg, &req); err != nil {
			s.logger.Warn("malformed envelope", "err", err)
			continue
		}

		// answered concurrently; responses may go out of order
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := s.dispatch(req)
			data, err := json.Marshal(resp)
			if err != nil {
				s.logger.Error("marshal response", "err", err)
				return
			}
			writeMu.Lock()
			defer writeMu.Unlock()
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Debug("write response", "err", err)
			}
		}()
	}
}

func params[T any](req remote.Envelope) (T, *apiError) {
	var p T
	if len(req.Params) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return p, errf(http.StatusBadRequest, "malformed params: %v", err)
	}
	return p, nil
}

func (s *Server) dispatch(req remote.Envelope) remote.Envelope {
	var (
		res  any
		aerr *apiError
	)

	switch req.Method {
	case remote.MethodCreateGame:
		var p remote.CreateParams
		if p, aerr = params[remote.CreateParams](req); aerr == nil {
			res, aerr = s.createGame(p)
		}
	case remote.MethodGameState:
		var p remote.GameParams
		if p, aerr = params[remote.GameParams](req); aerr == nil {
			res, aerr = s.gameState(p.GameID)
		}
	case remote.MethodNextPrice:
		var p remote.NextPriceParams
		if p, aerr = params[remote.NextPriceParams](req); aerr == nil {
			res, aerr = s.nextPrice(p.GameID, p)
		}
	case remote.MethodPause:
		var p remote.PauseParams
		if p, aerr = params[remote.PauseParams](req); aerr == nil {
			aerr = s.pause(p.GameID, p)
		}
	case remote.MethodResume:
		var p remote.GameParams
		if p, aerr = params[remote.GameParams](req); aerr == nil {
			aerr = s.resume(p.GameID)
		}
	case remote.MethodSubmitOrder:
		var p remote.SubmitParams
		if p, aerr = params[remote.SubmitParams](req); aerr == nil {
			res, aerr = s.submitOrder(p.GameID, p)
		}
	case remote.MethodDayOrders:
		var p remote.DayOrdersParams
		if p, aerr = params[remote.DayOrdersParams](req); aerr == nil {
			res, aerr = s.dayOrders(p)
		}
	case remote.MethodInterest:
		var p remote.InterestParams
		if p, aerr = params[remote.InterestParams](req); aerr == nil {
			res, aerr = s.interest(p)
		}
	case remote.MethodRemovePending:
		var p remote.GameParams
		if p, aerr = params[remote.GameParams](req); aerr == nil {
			res, aerr = s.removePending(p.GameID)
		}
	default:
		aerr = errf(http.StatusNotFound, "unknown method %q", req.Method)
	}

	resp := remote.Envelope{ID: req.ID}
	if aerr != nil {
		resp.Error = aerr.Msg
		resp.Code = aerr.Code
		return resp
	}
	if res != nil {
		data, err := json.Marshal(res)
		if err != nil {
			resp.Error = err.Error()
			resp.Code = http.StatusInternalServerError
			return resp
		}
		resp.Result = data
	}
	return resp
}
