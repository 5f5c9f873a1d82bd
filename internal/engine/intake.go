package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// OnOrderCompleted traite un événement "commande terminée" de la plateforme.
// Idempotent: les redélivrances du même événement sont absorbées par le
// marqueur posé sur la commande (compare-and-set, voir OrderStore).
func (e *Engine) OnOrderCompleted(ctx context.Context, orderID int64) error {
	order, err := e.Orders.GetOrder(ctx, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		// L'événement peut concerner autre chose qu'une commande — on ignore
		log.Printf("⚠️ Commande %d introuvable, événement ignoré", orderID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("lecture commande %d: %w", orderID, err)
	}

	if order.CouponsGenerated {
		log.Printf("🔁 Coupons déjà générés pour la commande %d, on ignore", orderID)
		return nil
	}

	rules, err := e.Rules.ActiveRules(ctx)
	if err != nil {
		return fmt.Errorf("lecture des règles actives: %w", err)
	}
	if len(rules) == 0 {
		return nil
	}

	productIDs := order.ProductIDs()
	matched := MatchRules(productIDs, rules)
	if len(matched) == 0 {
		return nil
	}

	// Réclamer le marqueur AVANT d'émettre: en cas de livraison concurrente
	// du même événement, le perdant du compare-and-set s'arrête ici
	claimed, err := e.Orders.ClaimCouponGeneration(ctx, orderID)
	if err != nil {
		return fmt.Errorf("pose du marqueur sur la commande %d: %w", orderID, err)
	}
	if !claimed {
		log.Printf("🔁 Génération déjà en cours ou terminée pour la commande %d", orderID)
		return nil
	}

	// L'échec d'une règle n'empêche jamais le traitement des suivantes
	created := 0
	for _, rule := range matched {
		if err := e.issueForRule(ctx, order, rule); err != nil {
			log.Printf("❌ Émission échouée (commande %d, règle %q): %v", orderID, rule.Name, err)
			continue
		}
		created++
	}

	if created == 0 {
		// Aucune émission n'a abouti: on relâche le marqueur pour que la
		// redélivrance de la plateforme puisse retenter
		if err := e.Orders.ReleaseCouponGeneration(ctx, orderID); err != nil {
			log.Printf("❌ Impossible de relâcher le marqueur de la commande %d: %v", orderID, err)
		}
		return fmt.Errorf("aucune émission n'a abouti pour la commande %d", orderID)
	}

	log.Printf("✅ %d coupon(s) émis pour la commande %d", created, orderID)
	return nil
}
