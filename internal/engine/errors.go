package engine

import "errors"

var (
	// ErrOrderNotFound: la commande n'existe pas (ou n'est pas une commande
	// e-commerce). L'événement est ignoré sans faire échouer le webhook.
	ErrOrderNotFound = errors.New("commande introuvable")

	// ErrCodeCollision: le code coupon existe déjà (côté service commerce ou
	// dans l'historique). Déclenche une régénération du code.
	ErrCodeCollision = errors.New("code coupon déjà existant")

	// ErrAlreadyIssued: un coupon a déjà été émis pour cette paire
	// (commande, règle)
	ErrAlreadyIssued = errors.New("coupon déjà émis pour cette commande et cette règle")

	// ErrRecordNotFound: aucun enregistrement d'historique pour ce code
	ErrRecordNotFound = errors.New("enregistrement d'historique introuvable")
)
