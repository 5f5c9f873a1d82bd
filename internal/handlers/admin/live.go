package admin

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"coupon_forge/internal/database"
	"coupon_forge/internal/engine"
)

// Canal Redis des émissions, partagé entre le moteur et le dashboard
const issuanceChannel = "couponforge:issuances"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// RedisEventSink relaie chaque émission de coupon sur Redis pub/sub
// pour que tous les dashboards connectés la voient en direct
type RedisEventSink struct{}

func (RedisEventSink) Publish(ev engine.IssuanceEvent) {
	if database.Redis == nil {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("⚠️ Erreur sérialisation événement: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := database.Redis.Publish(ctx, issuanceChannel, data).Err(); err != nil {
		// Le flux temps réel est du confort, jamais une raison d'échouer
		log.Printf("⚠️ Erreur publication événement: %v", err)
	}
}

// LiveFeed pousse les émissions de coupons en temps réel au dashboard admin
func LiveFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()

	// S'abonner au canal des émissions
	pubsub := database.Redis.Subscribe(ctx, issuanceChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	// Envoyer un message de connexion
	conn.WriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "Flux des émissions activé",
	})

	// Boucle d'écoute
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var ev engine.IssuanceEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("⚠️ Événement illisible sur %s: %v", issuanceChannel, err)
				continue
			}

			response := map[string]interface{}{
				"type":  "coupon_issued",
				"event": ev,
			}
			if err := conn.WriteJSON(response); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-time.After(30 * time.Second):
			// Ping pour garder la connexion active
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
