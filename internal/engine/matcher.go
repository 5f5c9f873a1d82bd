package engine

import "coupon_forge/internal/models"

// MatchRules retourne les règles applicables aux produits de la commande,
// dans l'ordre d'entrée. Fonction pure, sans I/O.
//
// Une règle sans produit cible s'applique à TOUTES les commandes — y compris
// une commande sans produit. C'est un choix délibéré: le wildcard est porté
// par la règle, jamais par la commande.
func MatchRules(orderProductIDs []int64, rules []models.Rule) []models.Rule {
	inOrder := make(map[int64]bool, len(orderProductIDs))
	for _, id := range orderProductIDs {
		inOrder[id] = true
	}

	var matched []models.Rule
	for _, rule := range rules {
		if len(rule.ProductIDs) == 0 {
			matched = append(matched, rule)
			continue
		}
		for _, pid := range rule.ProductIDs {
			if inOrder[pid] {
				matched = append(matched, rule)
				break
			}
		}
	}

	return matched
}
