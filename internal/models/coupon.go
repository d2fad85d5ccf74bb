package models

// CouponType is the category a coupon is listed under.
type CouponType string

const (
	TypeCode    CouponType = "code"
	TypeSale    CouponType = "sale"
	TypeApp     CouponType = "app"
	TypeStudent CouponType = "student"
)

// Coupon is a single discount offer. Coupons are defined once at load time
// and never mutated afterwards.
type Coupon struct {
	ID            string     `json:"id" yaml:"id"`
	Code          string     `json:"code,omitempty" yaml:"code"`
	Description   string     `json:"description" yaml:"description"`
	DiscountLabel string     `json:"discount_label" yaml:"discount_label"`
	Expiry        string     `json:"expiry" yaml:"expiry"` // display text, not a date
	Type          CouponType `json:"type" yaml:"type"`
	Verified      bool       `json:"verified" yaml:"verified"`
	Featured      bool       `json:"featured" yaml:"featured"`
	SavingsValue  float64    `json:"savings_value" yaml:"savings_value"`
}

// Copyable reports whether the coupon carries a code the user can copy.
// Sale, app and student offers link to the storefront instead.
func (c Coupon) Copyable() bool {
	return c.Type == TypeCode && c.Code != ""
}
