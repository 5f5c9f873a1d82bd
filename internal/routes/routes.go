package routes

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"coupon_forge/internal/commerce"
	"coupon_forge/internal/engine"
	"coupon_forge/internal/handlers/admin"
	"coupon_forge/internal/handlers/orders"
	"coupon_forge/internal/handlers/webhook"
	"coupon_forge/internal/middleware"
	"coupon_forge/internal/store"
	"coupon_forge/internal/utils"
)

func RegisterRoutes(r *gin.Engine) {
	r.Use(corsConfig())

	// Stores (Scylla + cache Redis)
	ruleStore := store.NewRuleStore()
	historyStore := store.NewHistoryStore()
	orderStore := store.NewOrderStore()
	templateStore := store.NewTemplateStore()
	settingsStore := store.NewSettingsStore()

	// Services externes
	coupons := commerce.NewStripeCouponService()
	mailer := utils.NewCouponMailer(templateStore)

	// Moteur d'émission
	forge := engine.New(ruleStore, orderStore, historyStore, coupons, mailer)
	forge.Events = admin.RedisEventSink{}

	webhook.Forge = forge
	admin.Init(ruleStore, historyStore, templateStore, settingsStore, orderStore, coupons)
	orders.Init(historyStore, settingsStore)

	// Webhooks de la boutique (signés, pas de JWT)
	r.POST("/api/webhooks/orders", middleware.WebhookRateLimit(), webhook.OrderWebhook)

	// Espace client
	client := r.Group("/api", middleware.AuthRequired())
	{
		client.GET("/orders/:id/coupons", orders.GetOrderCoupons)
	}

	// Back-office admin
	adminGroup := r.Group("/api/admin", middleware.AuthRequired(), middleware.RequireAdmin, middleware.APIRateLimit())
	{
		adminGroup.GET("/stats", admin.GetStats)

		adminGroup.GET("/history", admin.GetHistory)
		adminGroup.DELETE("/history/:id", admin.DeleteHistoryItem)

		adminGroup.GET("/rules", admin.GetRules)
		adminGroup.POST("/rules", admin.SaveRule)
		adminGroup.DELETE("/rules/:id", admin.DeleteRule)

		adminGroup.GET("/templates", admin.GetTemplates)
		adminGroup.POST("/templates", admin.SaveTemplate)
		adminGroup.DELETE("/templates/:id", admin.DeleteTemplate)

		adminGroup.GET("/settings", admin.GetSettings)
		adminGroup.POST("/settings", admin.SaveSettings)

		adminGroup.GET("/products/search", admin.SearchProducts)

		adminGroup.GET("/live", admin.LiveFeed)
	}
}

func corsConfig() gin.HandlerFunc {
	origins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
