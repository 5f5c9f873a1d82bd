package admin

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStats - Statistiques du dashboard
func GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	totalGenerated, totalUsed, err := History.CountGenerated(ctx)
	if err != nil {
		log.Printf("❌ Erreur comptage historique: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	activeRules, err := Rules.CountActiveRules(ctx)
	if err != nil {
		log.Printf("❌ Erreur comptage règles: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_generated": totalGenerated,
		"total_used":      totalUsed,
		"active_rules":    activeRules,
	})
}
