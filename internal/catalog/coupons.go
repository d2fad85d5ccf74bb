// Package catalog holds the coupon set and page copy compiled into the binary.
package catalog

import "github.com/Cheertaboi/coupon-board/internal/models"

// Coupons returns the storefront's current offers in load order.
// A fresh slice is returned on every call.
func Coupons() []models.Coupon {
	return []models.Coupon{
		{
			ID:            "1",
			Code:          "JDS15",
			Description:   "$15 off orders over $150",
			DiscountLabel: "$15 OFF",
			Expiry:        "September 30, 2025",
			Type:          models.TypeCode,
			Verified:      true,
			Featured:      true,
			SavingsValue:  15,
		},
		{
			ID:            "2",
			Code:          "JDS10",
			Description:   "$10 off orders over $100",
			DiscountLabel: "$10 OFF",
			Expiry:        "September 30, 2025",
			Type:          models.TypeCode,
			Verified:      true,
			Featured:      true,
			SavingsValue:  10,
		},
		{
			ID:            "3",
			Code:          "APP20",
			Description:   "Extra 20% off when you shop through the JD Sports app",
			DiscountLabel: "20% OFF",
			Expiry:        "Ongoing",
			Type:          models.TypeApp,
			Verified:      true,
			Featured:      true,
			SavingsValue:  20,
		},
		{
			ID:            "4",
			Code:          "SALE60",
			Description:   "Up to 60% off on sale items including sneakers, apparel, and more",
			DiscountLabel: "Up to 60% OFF",
			Expiry:        "While stocks last",
			Type:          models.TypeSale,
			Verified:      true,
			Featured:      true,
			SavingsValue:  60,
		},
		{
			ID:            "5",
			Code:          "STUDENT15",
			Description:   "15% off regular-priced items for students (requires SPC membership)",
			DiscountLabel: "15% OFF",
			Expiry:        "Ongoing",
			Type:          models.TypeStudent,
			Verified:      true,
			SavingsValue:  15,
		},
		{
			ID:            "6",
			Code:          "BOGO50",
			Description:   "Buy one, get one 50% off on select styles",
			DiscountLabel: "BOGO 50% OFF",
			Expiry:        "No expiration",
			Type:          models.TypeSale,
			Verified:      true,
			SavingsValue:  50,
		},
		{
			ID:            "7",
			Code:          "FREESHIP",
			Description:   "Free standard shipping on orders over $99",
			DiscountLabel: "FREE SHIPPING",
			Expiry:        "Ongoing",
			Type:          models.TypeSale,
			Verified:      true,
			SavingsValue:  0,
		},
		{
			ID:            "8",
			Code:          "JORDAN65",
			Description:   "65% off Jordan Essentials clothing",
			DiscountLabel: "65% OFF",
			Expiry:        "While stocks last",
			Type:          models.TypeSale,
			Verified:      true,
			Featured:      true,
			SavingsValue:  65,
		},
		{
			ID:            "9",
			Code:          "NIKE45",
			Description:   "45% off Nike Air Max 90 and select styles",
			DiscountLabel: "45% OFF",
			Expiry:        "While stocks last",
			Type:          models.TypeSale,
			Verified:      true,
			SavingsValue:  45,
		},
		{
			ID:            "10",
			Code:          "UNDERARMOUR50",
			Description:   "50% off select Under Armour footwear",
			DiscountLabel: "50% OFF",
			Expiry:        "While stocks last",
			Type:          models.TypeSale,
			Verified:      true,
			SavingsValue:  50,
		},
	}
}
