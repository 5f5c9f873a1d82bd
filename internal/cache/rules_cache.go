package cache

import (
	"context"
	"encoding/json"
	"time"

	"coupon_forge/internal/database"
	"coupon_forge/internal/models"
)

const (
	ActiveRulesKey = "couponforge:active_rules"
	RulesCacheTTL  = 5 * time.Minute
)

// GetActiveRules récupère les règles actives depuis Redis.
// Retourne (nil, false) en cas de cache miss ou de cache indisponible.
func GetActiveRules(ctx context.Context) ([]models.Rule, bool) {
	data, err := database.Redis.Get(ctx, ActiveRulesKey).Result()
	if err != nil {
		return nil, false
	}

	var rules []models.Rule
	if json.Unmarshal([]byte(data), &rules) != nil {
		return nil, false
	}
	return rules, true
}

// SetActiveRules met les règles actives en cache
func SetActiveRules(ctx context.Context, rules []models.Rule) {
	jsonData, err := json.Marshal(rules)
	if err != nil {
		return
	}
	database.Redis.Set(ctx, ActiveRulesKey, jsonData, RulesCacheTTL)
}

// InvalidateRules invalide le cache après toute écriture de règle
func InvalidateRules(ctx context.Context) {
	database.Redis.Del(ctx, ActiveRulesKey)
}
