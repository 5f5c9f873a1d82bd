package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/gocql/gocql"

	"coupon_forge/internal/models"
)

func TestOnOrderStateChangedMarksIssuedCouponsUsed(t *testing.T) {
	issued := &models.HistoryRecord{
		ID:            gocql.TimeUUID(),
		OrderID:       501,
		CouponCode:    "ALICEMARTI-K7Q2",
		CustomerEmail: "alice@example.com",
		RuleID:        gocql.TimeUUID(),
		CreatedAt:     testNow,
	}

	ledger := &memLedger{records: []*models.HistoryRecord{issued}}
	orders := newMemOrders(&models.Order{
		ID:          802,
		Status:      models.OrderStatusProcessing,
		CouponCodes: []string{"ALICEMARTI-K7Q2", "SUMMER10"},
	})
	e := New(&memRules{}, orders, ledger, newMemCoupons(), nil)

	if err := e.OnOrderStateChanged(context.Background(), 802); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, err := ledger.FindByCode(context.Background(), "ALICEMARTI-K7Q2")
	if err != nil {
		t.Fatalf("record vanished: %v", err)
	}
	if !rec.IsUsed {
		t.Error("applied coupon not marked used")
	}
}

func TestOnOrderStateChangedIgnoresForeignCodes(t *testing.T) {
	ledger := &memLedger{}
	orders := newMemOrders(&models.Order{
		ID:          802,
		CouponCodes: []string{"SUMMER10"},
	})
	e := New(&memRules{}, orders, ledger, newMemCoupons(), nil)

	// SUMMER10 was never issued by us; it must neither fail nor be recorded
	if err := e.OnOrderStateChanged(context.Background(), 802); err != nil {
		t.Fatalf("foreign code should be ignored: %v", err)
	}
	if len(ledger.records) != 0 {
		t.Fatalf("ledger records = %d, want 0", len(ledger.records))
	}
}

func TestOnOrderStateChangedIsIdempotent(t *testing.T) {
	issued := &models.HistoryRecord{
		ID:         gocql.TimeUUID(),
		OrderID:    501,
		CouponCode: "BOB-X2YZ",
		RuleID:     gocql.TimeUUID(),
		CreatedAt:  testNow,
	}
	ledger := &memLedger{records: []*models.HistoryRecord{issued}}
	orders := newMemOrders(&models.Order{
		ID:          803,
		CouponCodes: []string{"BOB-X2YZ"},
	})
	e := New(&memRules{}, orders, ledger, newMemCoupons(), nil)

	for i := 0; i < 3; i++ {
		if err := e.OnOrderStateChanged(context.Background(), 803); err != nil {
			t.Fatalf("pass %d: %v", i+1, err)
		}
	}

	rec, _ := ledger.FindByCode(context.Background(), "BOB-X2YZ")
	if !rec.IsUsed {
		t.Error("coupon not marked used")
	}
}

func TestOnOrderStateChangedConcurrentDeliveries(t *testing.T) {
	// Deux livraisons simultanées pour deux commandes distinctes: chacune
	// doit marquer SON code, jamais celui de l'autre
	recA := &models.HistoryRecord{
		ID:         gocql.TimeUUID(),
		OrderID:    501,
		CouponCode: "ALICE-AAAA",
		RuleID:     gocql.TimeUUID(),
		CreatedAt:  testNow,
	}
	recB := &models.HistoryRecord{
		ID:         gocql.TimeUUID(),
		OrderID:    502,
		CouponCode: "BOB-BBBB",
		RuleID:     gocql.TimeUUID(),
		CreatedAt:  testNow,
	}
	ledger := &memLedger{records: []*models.HistoryRecord{recA, recB}}
	orders := newMemOrders(
		&models.Order{ID: 801, CouponCodes: []string{"ALICE-AAAA"}},
		&models.Order{ID: 802, CouponCodes: []string{"BOB-BBBB"}},
	)
	e := New(&memRules{}, orders, ledger, newMemCoupons(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		orderID := int64(801 + i%2)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := e.OnOrderStateChanged(context.Background(), orderID); err != nil {
				t.Errorf("commande %d: %v", orderID, err)
			}
		}()
	}
	wg.Wait()

	a, _ := ledger.FindByCode(context.Background(), "ALICE-AAAA")
	b, _ := ledger.FindByCode(context.Background(), "BOB-BBBB")
	if !a.IsUsed || !b.IsUsed {
		t.Errorf("used flags = (%v, %v), want both true", a.IsUsed, b.IsUsed)
	}
}

func TestOnOrderStateChangedUnknownOrder(t *testing.T) {
	e := New(&memRules{}, newMemOrders(), &memLedger{}, newMemCoupons(), nil)

	if err := e.OnOrderStateChanged(context.Background(), 404); err != nil {
		t.Fatalf("unknown order should be ignored: %v", err)
	}
}
