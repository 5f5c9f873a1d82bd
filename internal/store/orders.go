package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocql/gocql"

	"coupon_forge/internal/database"
	"coupon_forge/internal/engine"
	"coupon_forge/internal/models"
)

// ScyllaOrderStore est la vue sur les commandes de la plateforme hôte.
// Lecture seule, à l'exception du marqueur coupons_generated.
type ScyllaOrderStore struct{}

func NewOrderStore() *ScyllaOrderStore {
	return &ScyllaOrderStore{}
}

// GetOrder lit une commande et ses lignes
func (s *ScyllaOrderStore) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, fmt.Errorf("connexion base de données: %w", err)
	}

	var order models.Order
	err = session.Query(`SELECT order_id, status, billing_email, billing_first_name, billing_last_name, coupon_codes, coupons_generated, created_at
		FROM orders WHERE order_id = ?`, orderID).WithContext(ctx).Scan(
		&order.ID, &order.Status, &order.BillingEmail, &order.BillingFirstName,
		&order.BillingLastName, &order.CouponCodes, &order.CouponsGenerated, &order.CreatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, engine.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture de la commande %d: %w", orderID, err)
	}

	iter := session.Query(`SELECT product_id, variation_id, quantity, price
		FROM order_items WHERE order_id = ?`, orderID).WithContext(ctx).Iter()

	var item models.OrderItem
	for iter.Scan(&item.ProductID, &item.VariationID, &item.Quantity, &item.Price) {
		order.Items = append(order.Items, item)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture des lignes de la commande %d: %w", orderID, err)
	}

	return &order, nil
}

// ClaimCouponGeneration pose le marqueur de génération par transaction
// légère. Deux livraisons concurrentes du même événement ne peuvent pas
// gagner toutes les deux: le perdant reçoit false et n'émet rien.
func (s *ScyllaOrderStore) ClaimCouponGeneration(ctx context.Context, orderID int64) (bool, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return false, fmt.Errorf("connexion base de données: %w", err)
	}

	// != true couvre aussi le cas où le marqueur n'a jamais été écrit (null)
	applied, err := session.Query(`UPDATE orders SET coupons_generated = true WHERE order_id = ? IF coupons_generated != true`,
		orderID).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return false, fmt.Errorf("pose du marqueur sur la commande %d: %w", orderID, err)
	}
	return applied, nil
}

// ReleaseCouponGeneration relâche le marqueur quand aucune émission n'a
// abouti, pour que la redélivrance de l'événement puisse retenter
func (s *ScyllaOrderStore) ReleaseCouponGeneration(ctx context.Context, orderID int64) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return fmt.Errorf("connexion base de données: %w", err)
	}

	if err := session.Query(`UPDATE orders SET coupons_generated = false WHERE order_id = ?`,
		orderID).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("relâchement du marqueur sur la commande %d: %w", orderID, err)
	}
	return nil
}

// AppliedCouponCodes retourne les codes appliqués à une commande, tels que
// rapportés par la plateforme (pas par notre historique)
func (s *ScyllaOrderStore) AppliedCouponCodes(ctx context.Context, orderID int64) ([]string, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, fmt.Errorf("connexion base de données: %w", err)
	}

	var codes []string
	err = session.Query(`SELECT coupon_codes FROM orders WHERE order_id = ?`, orderID).
		WithContext(ctx).Scan(&codes)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, engine.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture des codes de la commande %d: %w", orderID, err)
	}
	return codes, nil
}

// AddOrderNote trace une action administrative sur la commande
// (suppression de coupon depuis le back-office)
func (s *ScyllaOrderStore) AddOrderNote(ctx context.Context, orderID int64, note string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return fmt.Errorf("connexion base de données: %w", err)
	}

	if err := session.Query(`UPDATE orders SET notes = notes + ? WHERE order_id = ?`,
		[]string{note}, orderID).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("ajout de la note sur la commande %d: %w", orderID, err)
	}
	return nil
}
