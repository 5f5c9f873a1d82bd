package utils

import (
	"strings"
	"testing"

	"coupon_forge/internal/models"
)

func TestGenerateCouponEmailHTML(t *testing.T) {
	tpl := models.FallbackTemplate()

	html := GenerateCouponEmailHTML(tpl, "ALICEMARTI-K7Q2", 7)

	if !strings.Contains(html, "ALICEMARTI-K7Q2") {
		t.Error("coupon code missing from email body")
	}
	if !strings.Contains(html, tpl.Heading) {
		t.Error("template heading missing from email body")
	}
	if !strings.Contains(html, tpl.PrimaryColor) {
		t.Error("template primary color not applied")
	}
	if !strings.Contains(html, "Expires in 7 days") {
		t.Error("expiry notice missing for an expiring coupon")
	}
}

func TestGenerateCouponEmailHTMLNeverExpires(t *testing.T) {
	html := GenerateCouponEmailHTML(models.FallbackTemplate(), "FREE-X2YZ", 0)

	if strings.Contains(html, "Expires in") {
		t.Error("expiry notice present for a coupon that never expires")
	}
}

func TestGenerateCouponEmailHTMLCustomColors(t *testing.T) {
	tpl := models.EmailTemplate{
		Heading:         "Merci !",
		Message:         "Voici votre code :",
		FooterText:      "À bientôt",
		PrimaryColor:    "#123456",
		BackgroundColor: "#fafafa",
	}

	html := GenerateCouponEmailHTML(tpl, "BOB-H3J4", 0)
	if !strings.Contains(html, "#123456") || !strings.Contains(html, "#fafafa") {
		t.Error("custom template colors not applied")
	}
}
