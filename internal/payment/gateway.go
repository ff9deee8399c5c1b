package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type ChargeRequest struct {
	Amount      int64
	Currency    string
	Description string
	SourceToken string
}

type ChargeResult struct {
	ID     string
	Status string
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// StripeGateway charges card tokens through the Stripe charges API.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(req.Amount),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String(req.Description),
		Source:      &stripe.PaymentSourceSourceParams{Token: stripe.String(req.SourceToken)},
	}
	params.Context = ctx

	charge, err := g.api.Charges.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
			return ChargeResult{}, errors.New(stripeErr.Msg)
		}
		return ChargeResult{}, fmt.Errorf("stripe charge: %w", err)
	}
	return ChargeResult{ID: charge.ID, Status: string(charge.Status)}, nil
}
