package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"coupon_forge/internal/engine"
)

// Forge est le moteur câblé au démarrage (voir routes.RegisterRoutes)
var Forge *engine.Engine

// Événements de cycle de vie émis par la plateforme
const (
	EventOrderCompleted  = "order.completed"
	EventOrderProcessing = "order.processing"
)

type orderEvent struct {
	Event   string `json:"event"`
	OrderID int64  `json:"order_id"`
}

// OrderWebhook reçoit les événements de commande de la plateforme hôte.
// Répondre autre chose que 2xx déclenche une redélivrance côté plateforme:
// c'est le mécanisme de retry du service, il n'y a pas de boucle interne.
func OrderWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	secret := os.Getenv("ORDER_WEBHOOK_SECRET")
	if secret == "" {
		log.Println("⚠️ Pas de ORDER_WEBHOOK_SECRET — mode test")
	} else if !verifySignature(payload, c.GetHeader("X-Webhook-Signature"), secret) {
		log.Println("❌ Signature webhook invalide")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
		return
	}

	var event orderEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Println("❌ JSON invalide:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "JSON invalide"})
		return
	}
	if event.OrderID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id manquant"})
		return
	}

	log.Printf("📥 Événement commande reçu: %s (commande %d)", event.Event, event.OrderID)

	ctx := c.Request.Context()
	switch event.Event {
	case EventOrderCompleted:
		// Une commande terminée peut à la fois déclencher une génération
		// ET contenir un de nos codes: les deux passes tournent
		if err := Forge.OnOrderStateChanged(ctx, event.OrderID); err != nil {
			log.Printf("❌ Réconciliation de la commande %d: %v", event.OrderID, err)
		}
		if err := Forge.OnOrderCompleted(ctx, event.OrderID); err != nil {
			log.Printf("❌ Traitement de la commande %d: %v", event.OrderID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Traitement incomplet"})
			return
		}
	case EventOrderProcessing:
		if err := Forge.OnOrderStateChanged(ctx, event.OrderID); err != nil {
			log.Printf("❌ Réconciliation de la commande %d: %v", event.OrderID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Réconciliation incomplète"})
			return
		}
	default:
		log.Printf("ℹ️ Événement ignoré: %s", event.Event)
	}

	c.Status(http.StatusOK)
}

// verifySignature vérifie le HMAC-SHA256 (base64) du payload, à la
// manière des webhooks de la plateforme
func verifySignature(payload []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
