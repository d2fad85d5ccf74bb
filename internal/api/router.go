package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Cheertaboi/coupon-board/internal/api/handlers"
	"github.com/Cheertaboi/coupon-board/internal/api/middleware"
	"github.com/Cheertaboi/coupon-board/internal/catalog"
	"github.com/Cheertaboi/coupon-board/internal/events"
	"github.com/Cheertaboi/coupon-board/internal/service"
)

// Sessions hands out one board per browser session.
type Sessions interface {
	Board(ctx context.Context, sessionID string) (*service.CouponBoard, error)
}

type Deps struct {
	Sessions   Sessions
	Hub        *events.Hub
	Page       catalog.Page
	Storefront string
	CopyReset  time.Duration
	Logger     *zap.Logger
}

// NewRouter builds the HTTP router for the coupon board
func NewRouter(d Deps) http.Handler {
	return newMux(d)
}

func newMux(d Deps) *chi.Mux {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	boardFor := func(r *http.Request) (handlers.Board, error) {
		b, err := d.Sessions.Board(r.Context(), middleware.SessionIDFrom(r.Context()))
		if err != nil {
			return nil, err
		}
		return b, nil
	}

	r := chi.NewRouter()
	// Logger sits outside Recover so a panicking request still gets its access line.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	pageHandler := handlers.NewPageHandler(boardFor, d.Page, d.Storefront, d.CopyReset, logger)
	couponHandler := handlers.NewCouponHandler(boardFor, logger)
	eventsHandler := handlers.EventsHandler{Hub: d.Hub, Boards: boardFor, Logger: logger}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session)

		r.Get("/", pageHandler.Index)

		r.Route("/api", func(r chi.Router) {
			r.Get("/coupons", couponHandler.ListCoupons)
			r.Get("/best-deal", couponHandler.BestDeal)
			r.Put("/filter", couponHandler.SelectFilter)
			r.Post("/copy", couponHandler.CopyCode)
			r.Get("/state", couponHandler.State)
		})

		r.Get("/events", eventsHandler.ServeSSE)
	})

	r.Get("/shop", pageHandler.Shop)

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
