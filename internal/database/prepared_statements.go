package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var warmupOnce sync.Once

// WarmPreparedStatements exécute une fois les requêtes chaudes du moteur
// pour que gocql les prépare et les garde dans son cache interne: le
// premier webhook ne paie pas l'aller-retour de préparation.
//
// FindByCode est appelé pour chaque code de chaque commande payée, et les
// règles actives sont relues à chaque événement: ce sont les requêtes
// les plus fréquentes du service. Chaque appelant construit ensuite sa
// propre Query via session.Query — aucune instance n'est partagée entre
// goroutines.
func WarmPreparedStatements() {
	warmupOnce.Do(func() {
		session, err := GetCouponsSession()
		if err != nil {
			log.Printf("⚠️ Impossible de préchauffer les prepared statements: %v", err)
			return
		}

		warm := []*gocql.Query{
			// Recherche d'un coupon par code (réconciliation)
			session.Query(`SELECT id, order_id, coupon_id, coupon_code, customer_email, rule_id, is_used, expires_at, created_at
				FROM history_by_code WHERE coupon_code = ?`, ""),

			// Coupons d'une commande (affichage client)
			session.Query(`SELECT id, order_id, coupon_id, coupon_code, customer_email, rule_id, is_used, expires_at, created_at
				FROM history_by_order WHERE order_id = ?`, int64(0)),

			// Règles (intake + back-office)
			session.Query(`SELECT id, name, product_ids, coupon_amount, coupon_type, expiry_days, template_id, is_active, use_per_product_discount, product_discounts, created_at, updated_at
				FROM rules`),
		}

		for _, q := range warm {
			if err := q.Iter().Close(); err != nil {
				log.Printf("⚠️ Préchauffage d'une requête échoué: %v", err)
			}
		}

		log.Println("✅ Prepared statements préchauffés")
	})
}
