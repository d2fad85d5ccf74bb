package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Cheertaboi/coupon-board/internal/api/middleware"
	"github.com/Cheertaboi/coupon-board/internal/events"
	"github.com/Cheertaboi/coupon-board/internal/service"
)

// EventState is sent first on every stream so a reconnecting page catches
// up on whatever it missed.
const EventState = "state"

// BoardEventPublisher forwards one session's board changes to that
// session's streams.
func BoardEventPublisher(hub *events.Hub, sessionID string, logger *zap.Logger) service.Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(e service.Event) {
		evt, err := events.New(string(e.Type), e)
		if err != nil {
			logger.Error("encode board event", zap.String("type", string(e.Type)), zap.Error(err))
			return
		}
		hub.Publish(sessionID, evt)
	}
}

type EventsHandler struct {
	Hub    *events.Hub
	Boards BoardFor
	Logger *zap.Logger
}

// ServeSSE handles GET /events
func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	logger := h.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "stream_unsupported", "streaming unsupported")
		return
	}
	board, ok := boardOr(w, r, h.Boards, logger)
	if !ok {
		return
	}

	// the stream outlives the server's WriteTimeout
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.Warn("clear sse write deadline", zap.Error(err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := h.Hub.Subscribe(middleware.SessionIDFrom(r.Context()))
	defer h.Hub.Unsubscribe(sub)

	// subscribed before reading state, so nothing falls between the two
	state, err := events.New(EventState, stateOf(board))
	if err != nil {
		logger.Error("encode state event", zap.Error(err))
		return
	}
	if err := state.WriteSSE(w); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, open := <-sub.Events():
			if !open {
				return
			}
			if err := evt.WriteSSE(w); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
