package api

import (
	"net/http"
	"sync"

	"StockSage/internal/domain/models"
	"StockSage/internal/usecase"
	xlogger "StockSage/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamEvent is one websocket frame. Type is "result" while symbols
// complete, then a single "ranked" frame carries the final ordering.
type streamEvent struct {
	Type    string                `json:"type"`
	Result  *models.SymbolResult  `json:"result,omitempty"`
	Ranked  []models.SymbolResult `json:"ranked,omitempty"`
	Message string                `json:"message,omitempty"`
}

// RankStream upgrades to a websocket, reads one rank request and streams
// results back as each symbol completes, finishing with the ranked list.
func (h *AnalysisEchoHandler) RankStream(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	var req models.RankRequest
	if err := conn.ReadJSON(&req); err != nil {
		return writeStreamError(conn, "invalid rank request: "+err.Error())
	}
	if len(req.Symbols) == 0 {
		return writeStreamError(conn, "symbols are required")
	}

	specs, err := h.specsFor(req.Profile, req.Agents)
	if err != nil {
		return writeStreamError(conn, err.Error())
	}

	// The batch workers report completions concurrently; serialize frames.
	var writeMu sync.Mutex
	onResult := func(r models.SymbolResult) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(streamEvent{Type: "result", Result: &r}); err != nil {
			h.logger.Warn("rank stream write error", xlogger.Error(err))
		}
	}

	results, err := h.scoring.AnalyzeMany(c.Request().Context(), req.Symbols, req.Datasets, specs, onResult)
	if err != nil {
		return writeStreamError(conn, err.Error())
	}
	if req.Threshold != nil {
		results = usecase.Rank(results, *req.Threshold)
	}

	writeMu.Lock()
	defer writeMu.Unlock()
	if err := conn.WriteJSON(streamEvent{Type: "ranked", Ranked: results}); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func writeStreamError(conn *websocket.Conn, msg string) error {
	return conn.WriteJSON(streamEvent{Type: "error", Message: msg})
}
