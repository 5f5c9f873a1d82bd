package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"coupon_forge/internal/cache"
	"coupon_forge/internal/database"
	"coupon_forge/internal/models"
)

// ScyllaRuleStore lit et écrit les règles de génération dans ScyllaDB,
// avec un cache Redis en lecture pour les règles actives
type ScyllaRuleStore struct{}

func NewRuleStore() *ScyllaRuleStore {
	return &ScyllaRuleStore{}
}

const ruleColumns = `id, name, product_ids, coupon_amount, coupon_type, expiry_days, template_id, is_active, use_per_product_discount, product_discounts, created_at, updated_at`

func scanRule(iter *gocql.Iter, rule *models.Rule) bool {
	var templateID gocql.UUID
	ok := iter.Scan(&rule.ID, &rule.Name, &rule.ProductIDs, &rule.Amount, &rule.Type,
		&rule.ExpiryDays, &templateID, &rule.IsActive, &rule.UsePerProductDiscount,
		&rule.ProductDiscounts, &rule.CreatedAt, &rule.UpdatedAt)
	if !ok {
		return false
	}
	if templateID != (gocql.UUID{}) {
		id := templateID
		rule.TemplateID = &id
	} else {
		rule.TemplateID = nil
	}
	return true
}

// ActiveRules retourne les règles actives, via Redis puis ScyllaDB.
// Toujours relu depuis le stockage partagé au-delà du TTL: plusieurs
// handlers d'événements concurrents tournent sans mémoire commune.
func (s *ScyllaRuleStore) ActiveRules(ctx context.Context) ([]models.Rule, error) {
	if rules, ok := cache.GetActiveRules(ctx); ok {
		return rules, nil
	}

	all, err := s.ListRules(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]models.Rule, 0, len(all))
	for _, rule := range all {
		if rule.IsActive {
			active = append(active, rule)
		}
	}

	cache.SetActiveRules(ctx, active)
	return active, nil
}

// ListRules retourne toutes les règles (back-office)
func (s *ScyllaRuleStore) ListRules(ctx context.Context) ([]models.Rule, error) {
	session, err := database.GetCouponsSession()
	if err != nil {
		return nil, fmt.Errorf("connexion base de données: %w", err)
	}

	iter := session.Query(`SELECT ` + ruleColumns + ` FROM rules`).WithContext(ctx).Iter()

	var rules []models.Rule
	var rule models.Rule
	for scanRule(iter, &rule) {
		rules = append(rules, rule)
		rule = models.Rule{}
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture des règles: %w", err)
	}
	return rules, nil
}

// SaveRule crée ou met à jour une règle. La validation a lieu ICI, à
// l'écriture — jamais au matching.
func (s *ScyllaRuleStore) SaveRule(ctx context.Context, rule *models.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	session, err := database.GetCouponsSession()
	if err != nil {
		return fmt.Errorf("connexion base de données: %w", err)
	}

	now := time.Now()
	isNew := rule.ID == gocql.UUID{}
	if isNew {
		rule.ID = gocql.TimeUUID()
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	var templateID gocql.UUID
	if rule.TemplateID != nil {
		templateID = *rule.TemplateID
	}

	if err := session.Query(`INSERT INTO rules (`+ruleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.Name, rule.ProductIDs, rule.Amount, rule.Type, rule.ExpiryDays,
		templateID, rule.IsActive, rule.UsePerProductDiscount, rule.ProductDiscounts,
		rule.CreatedAt, rule.UpdatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("écriture de la règle: %w", err)
	}

	// Le moteur relit les règles via le cache: invalider après toute écriture
	cache.InvalidateRules(ctx)
	return nil
}

// DeleteRule supprime une règle de configuration
func (s *ScyllaRuleStore) DeleteRule(ctx context.Context, id gocql.UUID) error {
	session, err := database.GetCouponsSession()
	if err != nil {
		return fmt.Errorf("connexion base de données: %w", err)
	}

	if err := session.Query(`DELETE FROM rules WHERE id = ?`, id).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("suppression de la règle: %w", err)
	}

	cache.InvalidateRules(ctx)
	return nil
}

// CountActiveRules alimente les stats du dashboard
func (s *ScyllaRuleStore) CountActiveRules(ctx context.Context) (int, error) {
	rules, err := s.ActiveRules(ctx)
	if err != nil {
		return 0, err
	}
	return len(rules), nil
}

var ErrRuleNotFound = errors.New("règle introuvable")

// GetRule retourne une règle par ID
func (s *ScyllaRuleStore) GetRule(ctx context.Context, id gocql.UUID) (*models.Rule, error) {
	session, err := database.GetCouponsSession()
	if err != nil {
		return nil, fmt.Errorf("connexion base de données: %w", err)
	}

	iter := session.Query(`SELECT `+ruleColumns+` FROM rules WHERE id = ?`, id).WithContext(ctx).Iter()
	var rule models.Rule
	found := scanRule(iter, &rule)
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture de la règle: %w", err)
	}
	if !found {
		return nil, ErrRuleNotFound
	}
	return &rule, nil
}
