package admin

import (
	"coupon_forge/internal/commerce"
	"coupon_forge/internal/store"
)

// Dépendances du back-office, câblées au démarrage (voir routes.RegisterRoutes)
var (
	Rules     *store.ScyllaRuleStore
	History   *store.ScyllaHistoryStore
	Templates *store.ScyllaTemplateStore
	Settings  *store.ScyllaSettingsStore
	Orders    *store.ScyllaOrderStore
	Coupons   *commerce.StripeCouponService
)

func Init(rules *store.ScyllaRuleStore, history *store.ScyllaHistoryStore,
	templates *store.ScyllaTemplateStore, settings *store.ScyllaSettingsStore,
	orders *store.ScyllaOrderStore, coupons *commerce.StripeCouponService) {
	Rules = rules
	History = history
	Templates = templates
	Settings = settings
	Orders = orders
	Coupons = coupons
}
