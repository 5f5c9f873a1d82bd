package admin

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"coupon_forge/internal/models"
)

// GetSettings - Paramètres d'affichage de l'encart client
func GetSettings(c *gin.Context) {
	settings, err := Settings.GetDisplaySettings(c.Request.Context())
	if err != nil {
		log.Printf("❌ Erreur lecture paramètres: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// SaveSettings - Mettre à jour les paramètres d'affichage
func SaveSettings(c *gin.Context) {
	var settings models.DisplaySettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	// Les champs vides reprennent leur valeur par défaut
	defaults := models.DefaultDisplaySettings()
	if settings.Title == "" {
		settings.Title = defaults.Title
	}
	if settings.Message == "" {
		settings.Message = defaults.Message
	}
	if settings.BgColor == "" {
		settings.BgColor = defaults.BgColor
	}
	if settings.BorderColor == "" {
		settings.BorderColor = defaults.BorderColor
	}
	if settings.TextColor == "" {
		settings.TextColor = defaults.TextColor
	}
	if settings.CodeColor == "" {
		settings.CodeColor = defaults.CodeColor
	}

	if err := Settings.SaveDisplaySettings(c.Request.Context(), settings); err != nil {
		log.Printf("❌ Erreur sauvegarde paramètres: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la sauvegarde"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Paramètres enregistrés avec succès",
		"settings": settings,
	})
}
