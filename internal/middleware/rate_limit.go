package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"coupon_forge/internal/database"
)

const (
	// Limites par endpoint
	APIMaxRequests     = 100 // Par minute pour le back-office
	WebhookMaxRequests = 600 // La plateforme peut redélivrer en rafale

	APICooldown = 1 * time.Minute
)

// APIRateLimit limite le nombre de requêtes back-office par IP
func APIRateLimit() gin.HandlerFunc {
	return rateLimit("api_requests:", APIMaxRequests)
}

// WebhookRateLimit limite les webhooks entrants par IP. Plafond large:
// refuser une livraison légitime ne fait que retarder l'émission (la
// plateforme redélivre), mais un emballement doit être coupé.
func WebhookRateLimit() gin.HandlerFunc {
	return rateLimit("webhook_requests:", WebhookMaxRequests)
}

func rateLimit(prefix string, max int) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		key := prefix + c.ClientIP()

		attempts, _ := database.Redis.Get(ctx, key).Int()
		if attempts >= max {
			ttl := database.Redis.TTL(ctx, key).Val()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de requêtes. Réessayez dans %d secondes", int(ttl.Seconds())),
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		count := database.Redis.Incr(ctx, key).Val()
		if count == 1 {
			database.Redis.Expire(ctx, key, APICooldown)
		}

		c.Next()
	}
}
