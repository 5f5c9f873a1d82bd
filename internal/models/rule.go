package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

// Types de remise supportés (alignés sur la plateforme e-commerce)
const (
	DiscountPercent      = "percent"
	DiscountFixedCart    = "fixed_cart"
	DiscountFixedProduct = "fixed_product"
)

type Rule struct {
	ID         gocql.UUID  `json:"id"`
	Name       string      `json:"name"`
	ProductIDs []int64     `json:"product_ids"` // Vide = s'applique à toutes les commandes
	Amount     float64     `json:"coupon_amount"`
	Type       string      `json:"coupon_type"` // "percent", "fixed_cart", "fixed_product"
	ExpiryDays int         `json:"expiry_days"` // 0 = n'expire jamais
	TemplateID *gocql.UUID `json:"template_id,omitempty"`
	IsActive   bool        `json:"is_active"`

	// Remises par produit (optionnel, activé par le flag)
	UsePerProductDiscount bool              `json:"use_per_product_discount"`
	ProductDiscounts      map[int64]float64 `json:"product_discounts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate vérifie une règle à l'écriture (jamais au matching)
func (r *Rule) Validate() error {
	if r.Name == "" {
		return errors.New("le nom de la règle est requis")
	}

	switch r.Type {
	case DiscountPercent, DiscountFixedCart, DiscountFixedProduct:
	default:
		return fmt.Errorf("type de remise inconnu: %q", r.Type)
	}

	if r.Amount <= 0 {
		return errors.New("le montant de la remise doit être positif")
	}
	if r.Type == DiscountPercent && r.Amount > 100 {
		return errors.New("un pourcentage doit être entre 1 et 100")
	}
	if r.ExpiryDays < 0 {
		return errors.New("le délai d'expiration ne peut pas être négatif")
	}

	for pid, amount := range r.ProductDiscounts {
		if amount <= 0 {
			return fmt.Errorf("remise par produit invalide pour le produit %d", pid)
		}
	}

	return nil
}

// EffectiveAmount retourne le montant applicable pour les produits de la commande.
// Quand les remises par produit sont activées, la meilleure remise parmi les
// produits ciblés présents dans la commande l'emporte sur le montant de base.
func (r *Rule) EffectiveAmount(orderProductIDs []int64) float64 {
	if !r.UsePerProductDiscount || len(r.ProductDiscounts) == 0 {
		return r.Amount
	}

	best := 0.0
	for _, pid := range orderProductIDs {
		if amount, ok := r.ProductDiscounts[pid]; ok && amount > best {
			best = amount
		}
	}

	if best == 0 {
		return r.Amount
	}
	return best
}
