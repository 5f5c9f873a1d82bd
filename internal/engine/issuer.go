package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gocql/gocql"

	"coupon_forge/internal/models"
)

// Nombre maximum de générations de code avant d'abandonner l'émission
const maxCodeAttempts = 3

// issueForRule matérialise un coupon pour une paire (commande, règle):
// génération du code, création chez le service commerce, écriture dans
// l'historique, puis notification du client.
func (e *Engine) issueForRule(ctx context.Context, order *models.Order, rule models.Rule) error {
	var expiresAt *time.Time
	if rule.ExpiryDays > 0 {
		t := e.now().AddDate(0, 0, rule.ExpiryDays)
		expiresAt = &t
	}

	amount := rule.EffectiveAmount(order.ProductIDs())

	// L'unicité du code est probabiliste: une collision peut surgir chez
	// le service commerce OU dans l'historique (un code y reste vivant
	// même si son coupon externe a disparu côté plateforme). Dans les
	// deux cas on régénère avec un nouveau suffixe.
	var rec *models.HistoryRecord
	var err error
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code := GenerateCode(order.BillingFirstName, order.BillingLastName)

		var couponID string
		couponID, err = e.Coupons.CreateCoupon(ctx, CouponSpec{
			Code:             code,
			Amount:           amount,
			Type:             rule.Type,
			Description:      fmt.Sprintf("Generated for order #%d", order.ID),
			EmailRestriction: order.BillingEmail,
			ExpiresAt:        expiresAt,
		})
		if errors.Is(err, ErrCodeCollision) {
			log.Printf("⚠️ Collision sur le code %s (tentative %d/%d), régénération", code, attempt, maxCodeAttempts)
			continue
		}
		if err != nil {
			return fmt.Errorf("création du coupon: %w", err)
		}

		rec = &models.HistoryRecord{
			ID:            gocql.TimeUUID(),
			OrderID:       order.ID,
			CouponID:      couponID,
			CouponCode:    code,
			CustomerEmail: order.BillingEmail,
			RuleID:        rule.ID,
			IsUsed:        false,
			ExpiresAt:     expiresAt,
			CreatedAt:     e.now(),
		}

		err = e.Ledger.Append(ctx, rec)
		if err == nil {
			break
		}

		if errors.Is(err, ErrAlreadyIssued) {
			// Une tentative précédente a déjà servi cette paire: on détruit
			// le coupon qu'on vient de créer pour ne pas laisser d'orphelin
			if delErr := e.Coupons.DeleteCoupon(ctx, couponID); delErr != nil {
				log.Printf("🚨 COUPON ORPHELIN: coupon %s (code %s) en doublon et la suppression a échoué: %v — réconciliation manuelle requise", couponID, code, delErr)
			}
			return err
		}
		if errors.Is(err, ErrCodeCollision) {
			// Le code vit encore dans l'historique: détruire le coupon
			// fraîchement créé puis retenter avec un autre code
			if delErr := e.Coupons.DeleteCoupon(ctx, couponID); delErr != nil {
				log.Printf("🚨 COUPON ORPHELIN: coupon %s (code %s) en collision d'historique et la suppression a échoué: %v — réconciliation manuelle requise", couponID, code, delErr)
			}
			log.Printf("⚠️ Code %s encore présent dans l'historique (tentative %d/%d), régénération", code, attempt, maxCodeAttempts)
			continue
		}

		// Coupon créé côté plateforme mais historique non écrit: état
		// incohérent qui exige une réconciliation manuelle, jamais de
		// nouvelle tentative automatique
		log.Printf("🚨 COUPON ORPHELIN: coupon %s (code %s, commande %d) créé mais écriture historique échouée: %v", couponID, code, order.ID, err)
		return fmt.Errorf("écriture historique: %w", err)
	}
	if err != nil {
		return fmt.Errorf("création du coupon après %d tentatives: %w", maxCodeAttempts, err)
	}

	if e.Events != nil {
		e.Events.Publish(IssuanceEvent{
			OrderID:       order.ID,
			RuleID:        rule.ID.String(),
			RuleName:      rule.Name,
			CouponCode:    rec.CouponCode,
			CustomerEmail: order.BillingEmail,
			CreatedAt:     rec.CreatedAt,
		})
	}

	// Notification fire-and-forget: un échec d'envoi ne remet jamais
	// l'émission en cause
	if e.Notifier != nil {
		o := *order
		code := rec.CouponCode
		go func() {
			if err := e.Notifier.SendCoupon(&o, code, rule); err != nil {
				log.Printf("❌ Erreur envoi e-mail coupon à %s: %v", o.BillingEmail, err)
			} else {
				log.Printf("📧 E-mail coupon envoyé à %s (code %s)", o.BillingEmail, code)
			}
		}()
	}

	return nil
}
