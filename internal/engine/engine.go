package engine

import (
	"context"
	"time"

	"github.com/gocql/gocql"

	"coupon_forge/internal/models"
)

// RuleStore expose les règles actives (lecture seule côté moteur)
type RuleStore interface {
	ActiveRules(ctx context.Context) ([]models.Rule, error)
}

// OrderStore est la vue sur les commandes de la plateforme hôte
type OrderStore interface {
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	// ClaimCouponGeneration pose le marqueur de génération de façon atomique
	// (compare-and-set). Retourne false si le marqueur était déjà posé.
	ClaimCouponGeneration(ctx context.Context, orderID int64) (bool, error)
	// ReleaseCouponGeneration relâche le marqueur quand aucune émission n'a
	// abouti, pour permettre une nouvelle tentative à la redélivrance.
	ReleaseCouponGeneration(ctx context.Context, orderID int64) error
	AppliedCouponCodes(ctx context.Context, orderID int64) ([]string, error)
}

// HistoryLedger est l'historique append-only des coupons émis
type HistoryLedger interface {
	// Append rejette un enregistrement dont le code existe déjà
	// (ErrCodeCollision) ou dont la paire (commande, règle) a déjà été
	// servie (ErrAlreadyIssued).
	Append(ctx context.Context, rec *models.HistoryRecord) error
	FindByCode(ctx context.Context, code string) (*models.HistoryRecord, error)
	// MarkUsed est idempotent: re-marquer un enregistrement déjà utilisé est un no-op
	MarkUsed(ctx context.Context, id gocql.UUID) error
	ListByOrder(ctx context.Context, orderID int64) ([]models.HistoryRecord, error)
	ListPaged(ctx context.Context, page, pageSize int) ([]models.HistoryRecord, int, error)
}

// CouponSpec décrit le coupon à matérialiser chez le service commerce
type CouponSpec struct {
	Code             string
	Amount           float64
	Type             string // "percent", "fixed_cart", "fixed_product"
	Description      string
	EmailRestriction string // Seul cet e-mail peut utiliser le coupon
	ExpiresAt        *time.Time
}

// CouponService est le service commerce externe (Stripe en production)
type CouponService interface {
	// CreateCoupon retourne ErrCodeCollision si le code existe déjà
	CreateCoupon(ctx context.Context, spec CouponSpec) (string, error)
	DeleteCoupon(ctx context.Context, couponID string) error
}

// Notifier envoie l'e-mail de coupon. Fire-and-forget: un échec est loggé
// mais ne remet jamais en cause l'émission.
type Notifier interface {
	SendCoupon(order *models.Order, code string, rule models.Rule) error
}

// IssuanceEvent est diffusé au dashboard admin après chaque émission
type IssuanceEvent struct {
	OrderID       int64     `json:"order_id"`
	RuleID        string    `json:"rule_id"`
	RuleName      string    `json:"rule_name"`
	CouponCode    string    `json:"coupon_code"`
	CustomerEmail string    `json:"customer_email"`
	CreatedAt     time.Time `json:"created_at"`
}

type EventSink interface {
	Publish(ev IssuanceEvent)
}

// Engine orchestre l'émission et la réconciliation des coupons
type Engine struct {
	Rules    RuleStore
	Orders   OrderStore
	Ledger   HistoryLedger
	Coupons  CouponService
	Notifier Notifier
	Events   EventSink // Optionnel (flux temps réel du dashboard)

	// Horloge injectable pour les tests
	Now func() time.Time
}

func New(rules RuleStore, orders OrderStore, ledger HistoryLedger, coupons CouponService, notifier Notifier) *Engine {
	return &Engine{
		Rules:    rules,
		Orders:   orders,
		Ledger:   ledger,
		Coupons:  coupons,
		Notifier: notifier,
		Now:      time.Now,
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
