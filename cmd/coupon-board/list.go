package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cheertaboi/coupon-board/internal/catalog"
	"github.com/Cheertaboi/coupon-board/internal/clipboard"
	"github.com/Cheertaboi/coupon-board/internal/models"
	"github.com/Cheertaboi/coupon-board/internal/render"
	"github.com/Cheertaboi/coupon-board/internal/service"
)

func (a *app) newBoard(ctx context.Context, clip clipboard.Writer) (*service.CouponBoard, error) {
	return service.NewCouponBoard(ctx, catalog.Default(),
		service.WithClipboard(clip),
		service.WithResetDelay(a.cfg.Board.CopyReset),
		service.WithLogger(a.logger),
	)
}

func newListCmd(a *app) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List coupons, highest savings first",
		Example: `  coupon-board list
  coupon-board list --filter sale`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := models.ParseFilter(filter)
			if err != nil {
				return err
			}
			board, err := a.newBoard(cmd.Context(), clipboard.Nop{})
			if err != nil {
				return err
			}
			defer board.Close()

			board.SelectFilter(f)
			return render.Board(cmd.OutOrStdout(), board.Snapshot())
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", string(models.FilterAll), "one of: all, code, sale, app, student")
	return cmd
}

func newBestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "best",
		Short: "Show the best featured deal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.newBoard(cmd.Context(), clipboard.Nop{})
			if err != nil {
				return err
			}
			defer board.Close()

			best, ok := board.BestDeal()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no featured coupon")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.BestDeal(best, false))
			return nil
		},
	}
}
