package models

import "time"

// Statuts de commande émis par la plateforme
const (
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
)

type OrderItem struct {
	ProductID   int64   `json:"product_id"`
	VariationID int64   `json:"variation_id"` // 0 = produit simple
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Order est une vue en lecture seule des commandes de la plateforme.
// Le moteur n'écrit que le marqueur coupons_generated.
type Order struct {
	ID               int64       `json:"id"`
	Status           string      `json:"status"`
	BillingEmail     string      `json:"billing_email"`
	BillingFirstName string      `json:"billing_first_name"`
	BillingLastName  string      `json:"billing_last_name"`
	Items            []OrderItem `json:"items"`
	CouponCodes      []string    `json:"coupon_codes"` // Codes appliqués à CETTE commande
	CouponsGenerated bool        `json:"coupons_generated"`
	CreatedAt        time.Time   `json:"created_at"`
}

// ProductIDs retourne les IDs distincts de produits et variations de la
// commande, en écartant les IDs vides
func (o *Order) ProductIDs() []int64 {
	seen := make(map[int64]bool)
	var ids []int64

	for _, item := range o.Items {
		if item.ProductID != 0 && !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
		if item.VariationID != 0 && !seen[item.VariationID] {
			seen[item.VariationID] = true
			ids = append(ids, item.VariationID)
		}
	}

	return ids
}
