package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/wneessen/go-mail"

	"coupon_forge/internal/models"
	"coupon_forge/internal/store"
)

// CouponMailer envoie l'e-mail de coupon au client. Implémente le
// Notifier du moteur: fire-and-forget, un échec est loggé côté moteur
// et ne remet jamais l'émission en cause.
type CouponMailer struct {
	Templates *store.ScyllaTemplateStore
}

func NewCouponMailer(templates *store.ScyllaTemplateStore) *CouponMailer {
	return &CouponMailer{Templates: templates}
}

func (m *CouponMailer) SendCoupon(order *models.Order, code string, rule models.Rule) error {
	if order.BillingEmail == "" {
		return fmt.Errorf("commande %d sans e-mail de facturation", order.ID)
	}

	// Chaîne de repli: template de la règle → template par défaut → défaut câblé
	tpl := m.Templates.ResolveForRule(context.Background(), rule.TemplateID)
	html := GenerateCouponEmailHTML(tpl, code, rule.ExpiryDays)

	return sendMail(order.BillingEmail, tpl.Subject, html)
}

func sendMail(to, subject, htmlBody string) error {
	msg := mail.NewMsg()

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@couponforge.local"
	}
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil {
		port = p
	}

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail coupon à", to)
	return client.DialAndSend(msg)
}

// GenerateCouponEmailHTML génère le corps HTML de l'e-mail de coupon
func GenerateCouponEmailHTML(tpl models.EmailTemplate, code string, expiryDays int) string {
	storeURL := os.Getenv("STORE_URL")
	if storeURL == "" {
		storeURL = "http://localhost:5173"
	}

	expiryHTML := ""
	if expiryDays > 0 {
		expiryHTML = fmt.Sprintf(`<p style="font-size:13px; color:#9ca3af;">Expires in %d days.</p>`, expiryDays)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="margin:0; padding:0; background-color:%s; font-family:'Helvetica Neue', Helvetica, Arial, sans-serif;">
	<div style="max-width:600px; margin:40px auto; background:#ffffff; border-radius:16px; overflow:hidden; box-shadow:0 4px 20px rgba(0,0,0,0.05);">

		<div style="background: %s; padding: 50px 30px; text-align:center;">
			<h1 style="color:#ffffff; margin:0; font-size:28px; font-weight:800;">%s</h1>
		</div>

		<div style="padding:50px 40px; text-align:center; color:#495057;">
			<p style="font-size:16px; line-height:1.6; margin-bottom:30px; color:#555;">%s</p>

			<div style="background: #f9fafb; border:2px dashed %s; padding:30px; border-radius:12px; margin-bottom:30px;">
				<span style="display:block; font-size:13px; text-transform:uppercase; color:#868e96; margin-bottom:10px; letter-spacing:1px;">YOUR COUPON CODE</span>
				<span style="display:block; font-size:32px; font-weight:800; color:%s; letter-spacing:2px; font-family:'Courier New', monospace;">%s</span>
				<div style="margin-top:10px; font-size:13px; color:#6b7280;">Click to copy and paste at checkout</div>
			</div>

			%s

			<a href="%s" style="display:inline-block; background:%s; color:#ffffff; text-decoration:none; padding:14px 32px; border-radius:8px; font-weight:600; font-size:15px;">Shop Now</a>
		</div>

		<div style="background:#f9fafb; padding:24px 30px; text-align:center; border-top:1px solid #e5e7eb;">
			<p style="color:#6b7280; font-size:14px; margin:0;">%s</p>
		</div>
	</div>
</body>
</html>`,
		tpl.BackgroundColor, tpl.PrimaryColor, tpl.Heading, tpl.Message,
		tpl.PrimaryColor, tpl.PrimaryColor, code, expiryHTML,
		storeURL, tpl.PrimaryColor, tpl.FooterText)
}
