package models

import (
	"time"

	"github.com/gocql/gocql"
)

// HistoryRecord trace chaque coupon émis et son état d'utilisation
type HistoryRecord struct {
	ID            gocql.UUID `json:"id"`
	OrderID       int64      `json:"order_id"`
	CouponID      string     `json:"coupon_id"` // ID du coupon chez le service commerce
	CouponCode    string     `json:"coupon_code"`
	CustomerEmail string     `json:"customer_email"`
	RuleID        gocql.UUID `json:"rule_id"`
	IsUsed        bool       `json:"is_used"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"` // nil = n'expire jamais
	CreatedAt     time.Time  `json:"created_at"`

	// Enrichi à la lecture depuis le service commerce (peut être absent
	// si le coupon a été supprimé côté plateforme)
	CouponAmount *float64 `json:"coupon_amount,omitempty"`
	CouponType   *string  `json:"coupon_type,omitempty"`
}
