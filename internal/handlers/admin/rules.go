package admin

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"coupon_forge/internal/models"
)

// GetRules - Toutes les règles de génération
func GetRules(c *gin.Context) {
	rules, err := Rules.ListRules(c.Request.Context())
	if err != nil {
		log.Printf("❌ Erreur lecture règles: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	if rules == nil {
		rules = []models.Rule{}
	}
	c.JSON(http.StatusOK, rules)
}

// SaveRule - Créer ou mettre à jour une règle. Une règle malformée est
// rejetée ICI, jamais au moment du matching.
func SaveRule(c *gin.Context) {
	var req struct {
		ID                    string            `json:"id"`
		Name                  string            `json:"name"`
		ProductIDs            []int64           `json:"product_ids"`
		Amount                float64           `json:"coupon_amount"`
		Type                  string            `json:"coupon_type"`
		ExpiryDays            int               `json:"expiry_days"`
		TemplateID            string            `json:"template_id"`
		IsActive              bool              `json:"is_active"`
		UsePerProductDiscount bool              `json:"use_per_product_discount"`
		ProductDiscounts      map[int64]float64 `json:"product_discounts"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	rule := models.Rule{
		Name:                  req.Name,
		ProductIDs:            req.ProductIDs,
		Amount:                req.Amount,
		Type:                  req.Type,
		ExpiryDays:            req.ExpiryDays,
		IsActive:              req.IsActive,
		UsePerProductDiscount: req.UsePerProductDiscount,
		ProductDiscounts:      req.ProductDiscounts,
	}

	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID règle invalide"})
			return
		}
		existing, err := Rules.GetRule(c.Request.Context(), gocql.UUID(id))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Règle introuvable"})
			return
		}
		rule.ID = existing.ID
		rule.CreatedAt = existing.CreatedAt
	}

	if req.TemplateID != "" {
		tid, err := uuid.Parse(req.TemplateID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID template invalide"})
			return
		}
		gid := gocql.UUID(tid)
		rule.TemplateID = &gid
	}

	if err := Rules.SaveRule(c.Request.Context(), &rule); err != nil {
		// Les erreurs de validation (type inconnu, expiration négative…)
		// sont des erreurs de configuration, pas des erreurs serveur
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("✅ Règle enregistrée: %s", rule.Name)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Règle enregistrée avec succès",
		"rule":    rule,
	})
}

// DeleteRule - Supprimer une règle
func DeleteRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID règle invalide"})
		return
	}

	if err := Rules.DeleteRule(c.Request.Context(), gocql.UUID(id)); err != nil {
		log.Printf("❌ Erreur suppression règle: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Règle supprimée avec succès"})
}
