package models

import (
	"errors"
	"time"

	"github.com/gocql/gocql"
)

// EmailTemplate personnalise l'e-mail envoyé avec le coupon
type EmailTemplate struct {
	ID              gocql.UUID `json:"id"`
	Name            string     `json:"name"`
	Subject         string     `json:"subject"`
	Heading         string     `json:"heading"`
	Message         string     `json:"message"`
	FooterText      string     `json:"footer_text"`
	PrimaryColor    string     `json:"primary_color"`
	BackgroundColor string     `json:"background_color"`
	IsDefault       bool       `json:"is_default"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (t *EmailTemplate) Validate() error {
	if t.Name == "" || t.Subject == "" || t.Heading == "" || t.Message == "" {
		return errors.New("nom, sujet, titre et message sont requis")
	}
	return nil
}

// FallbackTemplate est utilisé quand aucun template n'existe en base
func FallbackTemplate() EmailTemplate {
	return EmailTemplate{
		Name:            "Default Template",
		Subject:         "Your Exclusive Coupon is Ready!",
		Heading:         "Thank You for Your Order!",
		Message:         "We appreciate your business. Here's a special coupon code just for you:",
		FooterText:      "Questions? Contact us anytime.",
		PrimaryColor:    "#d6336c",
		BackgroundColor: "#f7f7f7",
		IsDefault:       true,
	}
}
