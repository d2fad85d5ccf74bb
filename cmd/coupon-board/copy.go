package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Cheertaboi/coupon-board/internal/service"
)

func newCopyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "copy <code>",
		Short:   "Copy a promo code to the system clipboard",
		Example: "  coupon-board copy JDS15",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.newBoard(cmd.Context(), a.newClipboard())
			if err != nil {
				return err
			}
			defer board.Close()

			c, err := board.CopyCoupon(args[0])
			if errors.Is(err, service.ErrCodeNotFound) {
				return err
			}
			// acknowledged even if the write failed
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Copied! %s (%s)\n", c.Code, c.DiscountLabel)
			if err != nil {
				a.logger.Debug("clipboard write failed", zap.Error(err))
				return fmt.Errorf("clipboard: %w", err)
			}
			return nil
		},
	}
}
