package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Cheertaboi/coupon-board/internal/api"
	"github.com/Cheertaboi/coupon-board/internal/api/handlers"
	"github.com/Cheertaboi/coupon-board/internal/catalog"
	"github.com/Cheertaboi/coupon-board/internal/clipboard"
	"github.com/Cheertaboi/coupon-board/internal/events"
	"github.com/Cheertaboi/coupon-board/internal/service"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the coupon page over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	hub := events.NewHub()
	sessions := service.NewSessionStore(a.sessionBoards(hub), a.cfg.Board.SessionTTL)
	defer sessions.Close()

	handler := api.NewRouter(api.Deps{
		Sessions:   sessions,
		Hub:        hub,
		Page:       catalog.DefaultPage(),
		Storefront: a.cfg.Storefront.URL,
		CopyReset:  a.cfg.Board.CopyReset,
		Logger:     a.logger,
	})

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
		// SSE streams end when the server is asked to stop
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting coupon-board", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.logger.Info("server stopped", zap.Int("sessions", sessions.Len()))
	return err
}

// sessionBoards builds each browser session its own board. The browser
// writes the clipboard; the server only tracks the acknowledgment.
func (a *app) sessionBoards(hub *events.Hub) service.BoardFactory {
	return func(ctx context.Context, id string) (*service.CouponBoard, error) {
		logger := a.logger.With(zap.String("session", id))
		logger.Debug("new session")
		return service.NewCouponBoard(ctx, catalog.Default(),
			service.WithClipboard(clipboard.Nop{}),
			service.WithResetDelay(a.cfg.Board.CopyReset),
			service.WithObserver(handlers.BoardEventPublisher(hub, id, logger)),
			service.WithLogger(logger),
		)
	}
}
