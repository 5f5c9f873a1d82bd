package admin

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"coupon_forge/internal/models"
)

// GetTemplates - Tous les templates d'e-mail
func GetTemplates(c *gin.Context) {
	templates, err := Templates.List(c.Request.Context())
	if err != nil {
		log.Printf("❌ Erreur lecture templates: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	if templates == nil {
		templates = []models.EmailTemplate{}
	}
	c.JSON(http.StatusOK, templates)
}

// SaveTemplate - Créer ou mettre à jour un template d'e-mail
func SaveTemplate(c *gin.Context) {
	var req struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		Subject         string `json:"subject"`
		Heading         string `json:"heading"`
		Message         string `json:"message"`
		FooterText      string `json:"footer_text"`
		PrimaryColor    string `json:"primary_color"`
		BackgroundColor string `json:"background_color"`
		IsDefault       bool   `json:"is_default"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	tpl := models.EmailTemplate{
		Name:            req.Name,
		Subject:         req.Subject,
		Heading:         req.Heading,
		Message:         req.Message,
		FooterText:      req.FooterText,
		PrimaryColor:    req.PrimaryColor,
		BackgroundColor: req.BackgroundColor,
		IsDefault:       req.IsDefault,
	}

	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID template invalide"})
			return
		}
		existing, err := Templates.GetByID(c.Request.Context(), gocql.UUID(id))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template introuvable"})
			return
		}
		tpl.ID = existing.ID
		tpl.CreatedAt = existing.CreatedAt
	}

	if err := Templates.Save(c.Request.Context(), &tpl); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("✅ Template enregistré: %s", tpl.Name)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Template enregistré avec succès",
		"template": tpl,
	})
}

// DeleteTemplate - Supprimer un template. Les règles qui le référencent
// retomberont sur le template par défaut à la prochaine émission.
func DeleteTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID template invalide"})
		return
	}

	if err := Templates.Delete(c.Request.Context(), gocql.UUID(id)); err != nil {
		log.Printf("❌ Erreur suppression template: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template supprimé avec succès"})
}
