package catalog

import (
	"context"

	"github.com/Cheertaboi/coupon-board/internal/models"
)

// Source supplies the coupon set a board is initialized from.
type Source interface {
	ListCoupons(ctx context.Context) ([]models.Coupon, error)
}

// StaticSource serves a fixed, in-memory coupon list.
type StaticSource struct {
	coupons []models.Coupon
}

// NewStaticSource copies coupons so later changes by the caller are not seen.
func NewStaticSource(coupons []models.Coupon) *StaticSource {
	cp := make([]models.Coupon, len(coupons))
	copy(cp, coupons)
	return &StaticSource{coupons: cp}
}

// Default is the compiled-in storefront catalog.
func Default() *StaticSource {
	return &StaticSource{coupons: Coupons()}
}

func (s *StaticSource) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.Coupon, len(s.coupons))
	copy(out, s.coupons)
	return out, nil
}
