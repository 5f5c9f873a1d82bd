package commerce

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/coupon"
	"github.com/stripe/stripe-go/v83/customer"
	"github.com/stripe/stripe-go/v83/promotioncode"

	"coupon_forge/internal/engine"
)

// StripeCouponService matérialise les coupons chez Stripe: un coupon
// (la remise) plus un code promotionnel (le code saisi par le client),
// restreint au client de la commande et à une seule utilisation.
type StripeCouponService struct {
	Currency string
}

func NewStripeCouponService() *StripeCouponService {
	currency := os.Getenv("STRIPE_CURRENCY")
	if currency == "" {
		currency = "eur"
	}
	return &StripeCouponService{Currency: currency}
}

// CreateCoupon crée la remise et son code. Retourne l'ID du coupon Stripe,
// ou engine.ErrCodeCollision si le code existe déjà.
func (s *StripeCouponService) CreateCoupon(ctx context.Context, spec engine.CouponSpec) (string, error) {
	couponParams := &stripe.CouponParams{
		Params:         stripe.Params{Context: ctx},
		Name:           stripe.String(spec.Description),
		Duration:       stripe.String(string(stripe.CouponDurationOnce)),
		MaxRedemptions: stripe.Int64(1), // Usage unique, c'est la promesse du produit
		Metadata: map[string]string{
			"source":        "coupon_forge",
			"discount_type": spec.Type,
		},
	}

	// "percent" devient une remise en pourcentage, les deux types fixes
	// deviennent un montant en centimes
	if spec.Type == "percent" {
		couponParams.PercentOff = stripe.Float64(spec.Amount)
	} else {
		couponParams.AmountOff = stripe.Int64(int64(spec.Amount * 100))
		couponParams.Currency = stripe.String(s.Currency)
	}

	if spec.ExpiresAt != nil {
		couponParams.RedeemBy = stripe.Int64(spec.ExpiresAt.Unix())
	}

	cpn, err := coupon.New(couponParams)
	if err != nil {
		return "", fmt.Errorf("création du coupon Stripe: %w", err)
	}

	// Restriction par e-mail: le code n'est utilisable que par le client
	// Stripe correspondant à l'e-mail de facturation
	customerID, err := s.customerIDForEmail(ctx, spec.EmailRestriction)
	if err != nil {
		s.rollbackCoupon(ctx, cpn.ID)
		return "", err
	}

	promoParams := &stripe.PromotionCodeParams{
		Params: stripe.Params{Context: ctx},
		Promotion: &stripe.PromotionCodePromotionParams{
			Type:   stripe.String("coupon"),
			Coupon: stripe.String(cpn.ID),
		},
		Code:           stripe.String(spec.Code),
		MaxRedemptions: stripe.Int64(1),
		Metadata: map[string]string{
			"source": "coupon_forge",
		},
	}
	if customerID != "" {
		promoParams.Customer = stripe.String(customerID)
	}
	if spec.ExpiresAt != nil {
		promoParams.ExpiresAt = stripe.Int64(spec.ExpiresAt.Unix())
	}

	if _, err := promotioncode.New(promoParams); err != nil {
		s.rollbackCoupon(ctx, cpn.ID)
		if isCodeCollision(err) {
			return "", engine.ErrCodeCollision
		}
		return "", fmt.Errorf("création du code promotionnel: %w", err)
	}

	return cpn.ID, nil
}

// DeleteCoupon supprime le coupon Stripe (et désactive son code)
func (s *StripeCouponService) DeleteCoupon(ctx context.Context, couponID string) error {
	if _, err := coupon.Del(couponID, &stripe.CouponParams{Params: stripe.Params{Context: ctx}}); err != nil {
		return fmt.Errorf("suppression du coupon Stripe %s: %w", couponID, err)
	}
	return nil
}

// FetchCouponDetails lit montant et type d'un coupon pour enrichir
// l'historique du back-office. Retourne (nil, nil, nil) si le coupon a
// été supprimé côté Stripe.
func (s *StripeCouponService) FetchCouponDetails(ctx context.Context, couponID string) (*float64, *string, error) {
	cpn, err := coupon.Get(couponID, &stripe.CouponParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("lecture du coupon Stripe %s: %w", couponID, err)
	}

	var amount float64
	if cpn.PercentOff > 0 {
		amount = cpn.PercentOff
	} else {
		amount = float64(cpn.AmountOff) / 100
	}

	discountType := cpn.Metadata["discount_type"]
	return &amount, &discountType, nil
}

// customerIDForEmail retrouve (ou crée) le client Stripe d'un e-mail
func (s *StripeCouponService) customerIDForEmail(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", nil
	}

	listParams := &stripe.CustomerListParams{Email: stripe.String(email)}
	listParams.Context = ctx
	listParams.Limit = stripe.Int64(1)

	it := customer.List(listParams)
	for it.Next() {
		return it.Customer().ID, nil
	}
	if err := it.Err(); err != nil {
		return "", fmt.Errorf("recherche du client Stripe %s: %w", email, err)
	}

	cust, err := customer.New(&stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
	})
	if err != nil {
		return "", fmt.Errorf("création du client Stripe %s: %w", email, err)
	}
	return cust.ID, nil
}

// rollbackCoupon détruit un coupon dont le code n'a pas pu être créé,
// pour ne pas accumuler de remises sans code
func (s *StripeCouponService) rollbackCoupon(ctx context.Context, couponID string) {
	if _, err := coupon.Del(couponID, &stripe.CouponParams{Params: stripe.Params{Context: ctx}}); err != nil {
		log.Printf("⚠️ Impossible de supprimer le coupon Stripe %s après échec: %v", couponID, err)
	}
}

func isCodeCollision(err error) bool {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	if stripeErr.Code == stripe.ErrorCodeResourceAlreadyExists {
		return true
	}
	return strings.Contains(strings.ToLower(stripeErr.Msg), "already exists")
}
