package store

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/gocql/gocql"

	"coupon_forge/internal/database"
	"coupon_forge/internal/engine"
	"coupon_forge/internal/models"
)

// ScyllaHistoryStore implémente l'historique des coupons émis sur trois
// tables dénormalisées (même donnée, trois clés d'accès):
//   - history          (id)                 → listing paginé, suppression
//   - history_by_code  (coupon_code)        → réconciliation + unicité du code
//   - history_by_order (order_id, rule_id)  → affichage client + unicité de la paire
//
// Les deux contraintes d'unicité s'appuient sur INSERT ... IF NOT EXISTS
// (transaction légère), pas sur une lecture préalable.
type ScyllaHistoryStore struct{}

func NewHistoryStore() *ScyllaHistoryStore {
	return &ScyllaHistoryStore{}
}

const historyColumns = `id, order_id, coupon_id, coupon_code, customer_email, rule_id, is_used, expires_at, created_at`

func historyValues(rec *models.HistoryRecord) []interface{} {
	var expiresAt time.Time
	if rec.ExpiresAt != nil {
		expiresAt = *rec.ExpiresAt
	}
	return []interface{}{rec.ID, rec.OrderID, rec.CouponID, rec.CouponCode,
		rec.CustomerEmail, rec.RuleID, rec.IsUsed, expiresAt, rec.CreatedAt}
}

func scanHistory(iter *gocql.Iter, rec *models.HistoryRecord) bool {
	var expiresAt time.Time
	ok := iter.Scan(&rec.ID, &rec.OrderID, &rec.CouponID, &rec.CouponCode,
		&rec.CustomerEmail, &rec.RuleID, &rec.IsUsed, &expiresAt, &rec.CreatedAt)
	if !ok {
		return false
	}
	// Un timestamp nul ou pré-epoch signifie "n'expire jamais"
	if expiresAt.IsZero() || expiresAt.Unix() <= 0 {
		rec.ExpiresAt = nil
	} else {
		t := expiresAt
		rec.ExpiresAt = &t
	}
	return true
}

// Append ajoute un enregistrement. Rejette un code déjà vivant
// (engine.ErrCodeCollision) et une paire (commande, règle) déjà servie
// (engine.ErrAlreadyIssued).
func (s *ScyllaHistoryStore) Append(ctx context.Context, rec *models.HistoryRecord) error {
	session, err := database.GetCouponsSession()
	if err != nil {
		return fmt.Errorf("connexion base de données: %w", err)
	}

	// 1. Réserver le code (unicité globale des codes vivants)
	applied, err := session.Query(`INSERT INTO history_by_code (`+historyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
		historyValues(rec)...,
	).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return fmt.Errorf("réservation du code: %w", err)
	}
	if !applied {
		return engine.ErrCodeCollision
	}

	// 2. Réserver la paire (commande, règle)
	applied, err = session.Query(`INSERT INTO history_by_order (`+historyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
		historyValues(rec)...,
	).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return fmt.Errorf("réservation de la paire commande/règle: %w", err)
	}
	if !applied {
		// Libérer le code réservé à l'étape 1
		if delErr := session.Query(`DELETE FROM history_by_code WHERE coupon_code = ?`, rec.CouponCode).WithContext(ctx).Exec(); delErr != nil {
			log.Printf("⚠️ Impossible de libérer le code %s après doublon: %v", rec.CouponCode, delErr)
		}
		return engine.ErrAlreadyIssued
	}

	// 3. Ligne canonique
	if err := session.Query(`INSERT INTO history (`+historyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		historyValues(rec)...,
	).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("écriture de l'historique: %w", err)
	}

	return nil
}

// FindByCode retourne l'enregistrement d'un code, ou engine.ErrRecordNotFound
func (s *ScyllaHistoryStore) FindByCode(ctx context.Context, code string) (*models.HistoryRecord, error) {
	session, err := database.GetCouponsSession()
	if err != nil {
		return nil, fmt.Errorf("connexion base de données: %w", err)
	}

	// gocql prépare et met en cache le statement à la première exécution
	// (voir database.WarmPreparedStatements); chaque appel garde sa propre
	// Query — jamais de Bind sur une instance partagée
	iter := session.Query(`SELECT `+historyColumns+` FROM history_by_code WHERE coupon_code = ?`, code).
		WithContext(ctx).Iter()
	var rec models.HistoryRecord
	found := scanHistory(iter, &rec)
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture du code %s: %w", code, err)
	}
	if !found {
		return nil, engine.ErrRecordNotFound
	}
	return &rec, nil
}

// GetByID retourne l'enregistrement canonique
func (s *ScyllaHistoryStore) GetByID(ctx context.Context, id gocql.UUID) (*models.HistoryRecord, error) {
	session, err := database.GetCouponsSession()
	if err != nil {
		return nil, fmt.Errorf("connexion base de données: %w", err)
	}

	iter := session.Query(`SELECT `+historyColumns+` FROM history WHERE id = ?`, id).WithContext(ctx).Iter()
	var rec models.HistoryRecord
	found := scanHistory(iter, &rec)
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture de l'historique %s: %w", id, err)
	}
	if !found {
		return nil, engine.ErrRecordNotFound
	}
	return &rec, nil
}

// MarkUsed marque un coupon utilisé. Idempotent: re-marquer un
// enregistrement déjà utilisé est un no-op, pas une erreur.
func (s *ScyllaHistoryStore) MarkUsed(ctx context.Context, id gocql.UUID) error {
	rec, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.IsUsed {
		return nil
	}

	session, err := database.GetCouponsSession()
	if err != nil {
		return fmt.Errorf("connexion base de données: %w", err)
	}

	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`UPDATE history SET is_used = true WHERE id = ?`, id)
	batch.Query(`UPDATE history_by_code SET is_used = true WHERE coupon_code = ?`, rec.CouponCode)
	batch.Query(`UPDATE history_by_order SET is_used = true WHERE order_id = ? AND rule_id = ?`, rec.OrderID, rec.RuleID)

	if err := session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("marquage du coupon %s: %w", id, err)
	}
	return nil
}

// ListByOrder retourne les coupons émis pour une commande
func (s *ScyllaHistoryStore) ListByOrder(ctx context.Context, orderID int64) ([]models.HistoryRecord, error) {
	session, err := database.GetCouponsSession()
	if err != nil {
		return nil, fmt.Errorf("connexion base de données: %w", err)
	}

	iter := session.Query(`SELECT `+historyColumns+` FROM history_by_order WHERE order_id = ?`, orderID).
		WithContext(ctx).Iter()

	var records []models.HistoryRecord
	var rec models.HistoryRecord
	for scanHistory(iter, &rec) {
		records = append(records, rec)
		rec = models.HistoryRecord{}
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture de l'historique de la commande %d: %w", orderID, err)
	}
	return records, nil
}

// ListPaged retourne une page d'historique (du plus récent au plus ancien)
// et le nombre total d'enregistrements
func (s *ScyllaHistoryStore) ListPaged(ctx context.Context, page, pageSize int) ([]models.HistoryRecord, int, error) {
	session, err := database.GetCouponsSession()
	if err != nil {
		return nil, 0, fmt.Errorf("connexion base de données: %w", err)
	}

	iter := session.Query(`SELECT ` + historyColumns + ` FROM history`).WithContext(ctx).Iter()

	var records []models.HistoryRecord
	var rec models.HistoryRecord
	for scanHistory(iter, &rec) {
		records = append(records, rec)
		rec = models.HistoryRecord{}
	}

	if err := iter.Close(); err != nil {
		return nil, 0, fmt.Errorf("lecture de l'historique: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	total := len(records)
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []models.HistoryRecord{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return records[start:end], total, nil
}

// Delete supprime un enregistrement des trois tables (suppression
// administrative — le coupon externe est supprimé par l'appelant)
func (s *ScyllaHistoryStore) Delete(ctx context.Context, id gocql.UUID) error {
	rec, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	session, err := database.GetCouponsSession()
	if err != nil {
		return fmt.Errorf("connexion base de données: %w", err)
	}

	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM history WHERE id = ?`, id)
	batch.Query(`DELETE FROM history_by_code WHERE coupon_code = ?`, rec.CouponCode)
	batch.Query(`DELETE FROM history_by_order WHERE order_id = ? AND rule_id = ?`, rec.OrderID, rec.RuleID)

	if err := session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("suppression de l'historique %s: %w", id, err)
	}
	return nil
}

// CountGenerated retourne (total émis, total utilisés) pour les stats
func (s *ScyllaHistoryStore) CountGenerated(ctx context.Context) (int, int, error) {
	session, err := database.GetCouponsSession()
	if err != nil {
		return 0, 0, fmt.Errorf("connexion base de données: %w", err)
	}

	var total, used int
	if err := session.Query(`SELECT COUNT(*) FROM history`).WithContext(ctx).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("comptage de l'historique: %w", err)
	}
	if err := session.Query(`SELECT COUNT(*) FROM history WHERE is_used = true ALLOW FILTERING`).WithContext(ctx).Scan(&used); err != nil {
		return 0, 0, fmt.Errorf("comptage des coupons utilisés: %w", err)
	}
	return total, used, nil
}
