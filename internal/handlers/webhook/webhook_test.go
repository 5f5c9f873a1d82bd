package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"coupon_forge/internal/engine"
	"coupon_forge/internal/models"
)

// Stubs that make the engine treat every order as unknown, so handler
// tests exercise routing and signature checks without a database.

type stubRules struct{}

func (stubRules) ActiveRules(ctx context.Context) ([]models.Rule, error) { return nil, nil }

type stubOrders struct{}

func (stubOrders) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return nil, engine.ErrOrderNotFound
}
func (stubOrders) ClaimCouponGeneration(ctx context.Context, orderID int64) (bool, error) {
	return false, engine.ErrOrderNotFound
}
func (stubOrders) ReleaseCouponGeneration(ctx context.Context, orderID int64) error { return nil }
func (stubOrders) AppliedCouponCodes(ctx context.Context, orderID int64) ([]string, error) {
	return nil, engine.ErrOrderNotFound
}

type stubLedger struct{}

func (stubLedger) Append(ctx context.Context, rec *models.HistoryRecord) error { return nil }
func (stubLedger) FindByCode(ctx context.Context, code string) (*models.HistoryRecord, error) {
	return nil, engine.ErrRecordNotFound
}
func (stubLedger) MarkUsed(ctx context.Context, id gocql.UUID) error { return nil }
func (stubLedger) ListByOrder(ctx context.Context, orderID int64) ([]models.HistoryRecord, error) {
	return nil, nil
}
func (stubLedger) ListPaged(ctx context.Context, page, pageSize int) ([]models.HistoryRecord, int, error) {
	return nil, 0, nil
}

type stubCoupons struct{}

func (stubCoupons) CreateCoupon(ctx context.Context, spec engine.CouponSpec) (string, error) {
	return "cpn_test", nil
}
func (stubCoupons) DeleteCoupon(ctx context.Context, couponID string) error { return nil }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Forge = engine.New(stubRules{}, stubOrders{}, stubLedger{}, stubCoupons{}, nil)

	r := gin.New()
	r.POST("/api/webhooks/orders", OrderWebhook)
	return r
}

func sign(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"event":"order.completed","order_id":501}`)
	secret := "whsec_test"
	good := sign(string(payload), secret)

	if !verifySignature(payload, good, secret) {
		t.Error("valid signature rejected")
	}
	if verifySignature(payload, "bogus", secret) {
		t.Error("forged signature accepted")
	}
	if verifySignature(payload, "", secret) {
		t.Error("empty signature accepted")
	}
	if verifySignature([]byte(`tampered`), good, secret) {
		t.Error("signature accepted for a tampered payload")
	}
}

func TestOrderWebhookRejectsBadSignature(t *testing.T) {
	t.Setenv("ORDER_WEBHOOK_SECRET", "whsec_test")
	r := newTestRouter(t)

	body := `{"event":"order.completed","order_id":501}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/orders", strings.NewReader(body))
	req.Header.Set("X-Webhook-Signature", "not-the-right-one")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestOrderWebhookAcceptsSignedEvent(t *testing.T) {
	t.Setenv("ORDER_WEBHOOK_SECRET", "whsec_test")
	r := newTestRouter(t)

	body := `{"event":"order.completed","order_id":501}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/orders", strings.NewReader(body))
	req.Header.Set("X-Webhook-Signature", sign(body, "whsec_test"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// Unknown orders are ignored, the event is still acknowledged
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestOrderWebhookRejectsMissingOrderID(t *testing.T) {
	t.Setenv("ORDER_WEBHOOK_SECRET", "")
	r := newTestRouter(t)

	body := `{"event":"order.completed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/orders", strings.NewReader(body))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestOrderWebhookIgnoresUnknownEventType(t *testing.T) {
	t.Setenv("ORDER_WEBHOOK_SECRET", "")
	r := newTestRouter(t)

	body := `{"event":"order.refunded","order_id":501}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/orders", strings.NewReader(body))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
