package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gocql/gocql"

	"coupon_forge/internal/models"
)

// In-memory doubles for the engine's storage and service ports.

type memRules struct {
	rules []models.Rule
	err   error
}

func (m *memRules) ActiveRules(ctx context.Context) ([]models.Rule, error) {
	return m.rules, m.err
}

type memOrders struct {
	mu     sync.Mutex
	orders map[int64]*models.Order
}

func newMemOrders(orders ...*models.Order) *memOrders {
	m := &memOrders{orders: make(map[int64]*models.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *memOrders) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) ClaimCouponGeneration(ctx context.Context, orderID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return false, ErrOrderNotFound
	}
	if o.CouponsGenerated {
		return false, nil
	}
	o.CouponsGenerated = true
	return true, nil
}

func (m *memOrders) ReleaseCouponGeneration(ctx context.Context, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[orderID]; ok {
		o.CouponsGenerated = false
	}
	return nil
}

func (m *memOrders) AppliedCouponCodes(ctx context.Context, orderID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return append([]string(nil), o.CouponCodes...), nil
}

func (m *memOrders) markerSet(orderID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[orderID].CouponsGenerated
}

type memLedger struct {
	mu      sync.Mutex
	records []*models.HistoryRecord

	// codeCollisions rejette les N prochains Append comme si le code
	// était encore vivant dans l'historique
	codeCollisions int
}

func pairKey(orderID int64, ruleID gocql.UUID) string {
	return fmt.Sprintf("%d/%s", orderID, ruleID)
}

func (m *memLedger) Append(ctx context.Context, rec *models.HistoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codeCollisions > 0 {
		m.codeCollisions--
		return ErrCodeCollision
	}
	for _, r := range m.records {
		if r.CouponCode == rec.CouponCode {
			return ErrCodeCollision
		}
		if pairKey(r.OrderID, r.RuleID) == pairKey(rec.OrderID, rec.RuleID) {
			return ErrAlreadyIssued
		}
	}
	cp := *rec
	m.records = append(m.records, &cp)
	return nil
}

func (m *memLedger) FindByCode(ctx context.Context, code string) (*models.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.CouponCode == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *memLedger) MarkUsed(ctx context.Context, id gocql.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			r.IsUsed = true
			return nil
		}
	}
	return ErrRecordNotFound
}

func (m *memLedger) ListByOrder(ctx context.Context, orderID int64) ([]models.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.HistoryRecord
	for _, r := range m.records {
		if r.OrderID == orderID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memLedger) ListPaged(ctx context.Context, page, pageSize int) ([]models.HistoryRecord, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.HistoryRecord
	for _, r := range m.records {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (m *memLedger) byRule(ruleID gocql.UUID) *models.HistoryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.RuleID == ruleID {
			cp := *r
			return &cp
		}
	}
	return nil
}

type memCoupons struct {
	mu      sync.Mutex
	created map[string]CouponSpec // coupon ID -> spec
	deleted []string
	nextID  int

	// collisions forces the next N creations to fail as duplicates
	collisions int
	// failAmount makes any creation with this amount fail outright
	failAmount float64
	failErr    error
}

func newMemCoupons() *memCoupons {
	return &memCoupons{created: make(map[string]CouponSpec)}
}

func (m *memCoupons) CreateCoupon(ctx context.Context, spec CouponSpec) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil && spec.Amount == m.failAmount {
		return "", m.failErr
	}
	if m.collisions > 0 {
		m.collisions--
		return "", ErrCodeCollision
	}
	for _, s := range m.created {
		if s.Code == spec.Code {
			return "", ErrCodeCollision
		}
	}
	m.nextID++
	id := fmt.Sprintf("cpn_%03d", m.nextID)
	m.created[id] = spec
	return id, nil
}

func (m *memCoupons) DeleteCoupon(ctx context.Context, couponID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.created, couponID)
	m.deleted = append(m.deleted, couponID)
	return nil
}

func (m *memCoupons) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

type memNotifier struct {
	sent chan string
}

func newMemNotifier() *memNotifier {
	return &memNotifier{sent: make(chan string, 16)}
}

func (m *memNotifier) SendCoupon(order *models.Order, code string, rule models.Rule) error {
	m.sent <- code
	return nil
}

type memSink struct {
	mu     sync.Mutex
	events []IssuanceEvent
}

func (m *memSink) Publish(ev IssuanceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

var errServiceDown = errors.New("commerce service unavailable")

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestEngine(rules []models.Rule, orders *memOrders) (*Engine, *memLedger, *memCoupons) {
	ledger := &memLedger{}
	coupons := newMemCoupons()
	e := New(&memRules{rules: rules}, orders, ledger, coupons, nil)
	e.Now = func() time.Time { return testNow }
	return e, ledger, coupons
}
