package orders

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coupon_forge/internal/models"
	"coupon_forge/internal/store"
)

// Dépendances câblées au démarrage (voir routes.RegisterRoutes)
var (
	History  *store.ScyllaHistoryStore
	Settings *store.ScyllaSettingsStore
)

func Init(history *store.ScyllaHistoryStore, settings *store.ScyllaSettingsStore) {
	History = history
	Settings = settings
}

// GetOrderCoupons - Les coupons générés pour une commande du client connecté,
// avec les paramètres d'affichage de l'encart "récompenses"
func GetOrderCoupons(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	records, err := History.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		log.Printf("❌ Erreur lecture coupons commande %d: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	// Un client ne voit que ses propres coupons
	email := c.GetString("email")
	visible := make([]models.HistoryRecord, 0, len(records))
	for _, rec := range records {
		if rec.CustomerEmail == email {
			visible = append(visible, rec)
		}
	}

	if len(visible) == 0 {
		c.JSON(http.StatusOK, gin.H{"coupons": []models.HistoryRecord{}})
		return
	}

	settings, err := Settings.GetDisplaySettings(c.Request.Context())
	if err != nil {
		log.Printf("⚠️ Paramètres d'affichage indisponibles: %v", err)
		settings = models.DefaultDisplaySettings()
	}

	c.JSON(http.StatusOK, gin.H{
		"coupons":  visible,
		"settings": settings,
	})
}
