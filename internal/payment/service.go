package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"contenthub/internal/config"
)

var (
	ErrChargeFailed  = errors.New("charge failed")
	ErrMissingSource = errors.New("missing payment source token")
)

// Service charges the configured fixed amount against a client card token.
type Service struct {
	gateway Gateway
	cfg     config.PaymentConfig
	log     zerolog.Logger
}

func NewService(gateway Gateway, cfg config.PaymentConfig, log zerolog.Logger) *Service {
	return &Service{gateway: gateway, cfg: cfg, log: log}
}

func (s *Service) Charge(ctx context.Context, userID string, sourceToken string) (ChargeResult, error) {
	sourceToken = strings.TrimSpace(sourceToken)
	if sourceToken == "" {
		return ChargeResult{}, ErrMissingSource
	}

	result, err := s.gateway.Charge(ctx, ChargeRequest{
		Amount:      s.cfg.Amount,
		Currency:    s.cfg.Currency,
		Description: s.cfg.Description,
		SourceToken: sourceToken,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("charge failed")
		return ChargeResult{}, fmt.Errorf("%w: %v", ErrChargeFailed, err)
	}

	s.log.Info().Str("user_id", userID).Str("charge_id", result.ID).Msg("charge succeeded")
	return result, nil
}
