package admin

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"coupon_forge/internal/engine"
)

const historyPerPage = 20

// GetHistory - Historique paginé des coupons émis, enrichi avec le
// montant et le type lus chez le service commerce
func GetHistory(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	ctx := c.Request.Context()
	records, total, err := History.ListPaged(ctx, page, historyPerPage)
	if err != nil {
		log.Printf("❌ Erreur lecture historique: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	// Enrichir depuis le service commerce. Un coupon supprimé côté
	// plateforme laisse simplement les champs à null.
	for i := range records {
		amount, ctype, err := Coupons.FetchCouponDetails(ctx, records[i].CouponID)
		if err != nil {
			log.Printf("⚠️ Lecture du coupon %s échouée: %v", records[i].CouponID, err)
			continue
		}
		records[i].CouponAmount = amount
		records[i].CouponType = ctype
	}

	c.JSON(http.StatusOK, gin.H{
		"data": records,
		"meta": gin.H{
			"current_page": page,
			"total_pages":  int(math.Ceil(float64(total) / float64(historyPerPage))),
			"total_items":  total,
		},
	})
}

// DeleteHistoryItem - Suppression administrative: retire aussi le coupon
// chez le service commerce et trace une note sur la commande
func DeleteHistoryItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID historique invalide"})
		return
	}

	ctx := c.Request.Context()
	rec, err := History.GetByID(ctx, gocql.UUID(id))
	if errors.Is(err, engine.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entrée d'historique introuvable"})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur lecture historique: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	// Supprimer le coupon externe d'abord: s'il reste vivant alors que
	// l'historique a disparu, plus personne ne peut le retrouver
	if rec.CouponID != "" {
		if err := Coupons.DeleteCoupon(ctx, rec.CouponID); err != nil {
			log.Printf("⚠️ Suppression du coupon externe %s échouée: %v", rec.CouponID, err)
		}
	}

	if rec.OrderID != 0 {
		note := fmt.Sprintf("Coupon \"%s\" supprimé de CouponForge par un administrateur.", rec.CouponCode)
		if err := Orders.AddOrderNote(ctx, rec.OrderID, note); err != nil {
			log.Printf("⚠️ Note sur la commande %d non ajoutée: %v", rec.OrderID, err)
		}
	}

	if err := History.Delete(ctx, gocql.UUID(id)); err != nil {
		log.Printf("❌ Erreur suppression historique: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression"})
		return
	}

	log.Printf("🗑️ Coupon %s supprimé par un administrateur", rec.CouponCode)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Coupon supprimé avec succès",
	})
}
