package admin

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	services "coupon_forge/internal/service"
)

// SearchProducts - Autocomplétion produits de l'éditeur de règles
func SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len(query) < 2 {
		c.JSON(http.StatusOK, []services.ProductHit{})
		return
	}

	hits, err := services.SearchProducts(c.Request.Context(), query)
	if err != nil {
		log.Printf("⚠️ Recherche produits échouée: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recherche indisponible"})
		return
	}

	c.JSON(http.StatusOK, hits)
}
