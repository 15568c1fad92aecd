package service

import (
	"context"
	"testing"
	"time"

	"github.com/saifpatel9/dropme/internal/models"
)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestPromoApplyFlat(t *testing.T) {
	promos := newFakePromoRepo(&models.PromoCode{
		ID:             "promo-1",
		Code:           "SAVE50",
		Type:           models.PromoTypeFlat,
		DiscountAmount: 50,
	})
	svc := NewPromoService(promos)

	resp, err := svc.Apply(context.Background(), "p1", "save50", 200)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if resp.Discount != 50 || resp.DiscountedFare != 150 {
		t.Errorf("got %+v, want discount 50, fare 150", resp)
	}
}

func TestPromoApplyPercentWithCap(t *testing.T) {
	promos := newFakePromoRepo(&models.PromoCode{
		ID:              "promo-2",
		Code:            "TEN",
		Type:            models.PromoTypePercent,
		PercentageValue: 10,
		DiscountAmount:  15, // cap
	})
	svc := NewPromoService(promos)

	// 10% of 100 = 10, under the cap
	resp, err := svc.Apply(context.Background(), "p1", "TEN", 100)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if resp.Discount != 10 {
		t.Errorf("discount = %v, want 10", resp.Discount)
	}

	// 10% of 500 = 50, capped at 15
	resp, err = svc.Apply(context.Background(), "p2", "TEN", 500)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if resp.Discount != 15 || resp.DiscountedFare != 485 {
		t.Errorf("got %+v, want capped discount 15", resp)
	}
}

func TestPromoDiscountNeverExceedsFare(t *testing.T) {
	promos := newFakePromoRepo(&models.PromoCode{
		ID:             "promo-3",
		Code:           "BIG",
		Type:           models.PromoTypeFlat,
		DiscountAmount: 500,
	})
	svc := NewPromoService(promos)

	resp, err := svc.Apply(context.Background(), "p1", "BIG", 80)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if resp.DiscountedFare != 0 || resp.Discount != 80 {
		t.Errorf("got %+v, want fare floored at 0", resp)
	}
}

func TestPromoApplyRejections(t *testing.T) {
	now := time.Now()
	promos := newFakePromoRepo(
		&models.PromoCode{
			ID:             "promo-future",
			Code:           "SOON",
			Type:           models.PromoTypeFlat,
			DiscountAmount: 10,
			StartTime:      timePtr(now.Add(time.Hour)),
		},
		&models.PromoCode{
			ID:             "promo-past",
			Code:           "GONE",
			Type:           models.PromoTypeFlat,
			DiscountAmount: 10,
			ExpiryTime:     timePtr(now.Add(-time.Hour)),
		},
		&models.PromoCode{
			ID:             "promo-weird",
			Code:           "BOGO",
			Type:           "buy_one_get_one",
			DiscountAmount: 10,
		},
	)
	svc := NewPromoService(promos)

	for _, code := range []string{"NOPE", "SOON", "GONE", "BOGO"} {
		if _, err := svc.Apply(context.Background(), "p1", code, 100); err == nil {
			t.Errorf("Apply(%q) succeeded, want error", code)
		}
	}
}

func TestPromoUsageCaps(t *testing.T) {
	promos := newFakePromoRepo(&models.PromoCode{
		ID:              "promo-cap",
		Code:            "ONCE",
		Type:            models.PromoTypeFlat,
		DiscountAmount:  10,
		MaxUsage:        intPtr(2),
		MaxUsagePerUser: intPtr(1),
	})
	svc := NewPromoService(promos)

	if _, err := svc.Apply(context.Background(), "p1", "ONCE", 100); err != nil {
		t.Fatalf("first use: %v", err)
	}
	if _, err := svc.Apply(context.Background(), "p1", "ONCE", 100); err == nil {
		t.Error("second use by same passenger should fail")
	}
	if _, err := svc.Apply(context.Background(), "p2", "ONCE", 100); err != nil {
		t.Fatalf("first use by second passenger: %v", err)
	}
	if _, err := svc.Apply(context.Background(), "p3", "ONCE", 100); err == nil {
		t.Error("global cap should reject the third passenger")
	}
}
