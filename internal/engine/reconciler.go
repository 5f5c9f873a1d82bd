package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// OnOrderStateChanged réconcilie l'état d'utilisation des coupons: quand une
// commande passe en "processing" ou "completed", les codes appliqués à cette
// commande sont croisés avec l'historique et marqués utilisés.
//
// Invocable autant de fois que nécessaire et dans n'importe quel ordre:
// MarkUsed est idempotent et les codes inconnus (coupons organiques de la
// boutique) sont simplement ignorés.
func (e *Engine) OnOrderStateChanged(ctx context.Context, orderID int64) error {
	codes, err := e.Orders.AppliedCouponCodes(ctx, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lecture des codes appliqués à la commande %d: %w", orderID, err)
	}
	if len(codes) == 0 {
		return nil
	}

	for _, code := range codes {
		rec, err := e.Ledger.FindByCode(ctx, code)
		if errors.Is(err, ErrRecordNotFound) {
			continue // Coupon qui ne vient pas de nous
		}
		if err != nil {
			log.Printf("❌ Réconciliation: lecture du code %s: %v", code, err)
			continue
		}

		if err := e.Ledger.MarkUsed(ctx, rec.ID); err != nil {
			log.Printf("❌ Réconciliation: marquage du code %s: %v", code, err)
			continue
		}
		if !rec.IsUsed {
			log.Printf("✅ Code %s utilisé dans la commande %d", code, orderID)
		}
	}

	return nil
}
