package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"storefront/internal/gateway"
	req "storefront/internal/models/request_models"
	resp "storefront/internal/models/response_models"
	"storefront/internal/repositories"
	"storefront/pkg/utils"
)

type SessionService interface {
	InitiateSession(ctx context.Context, in req.InitiateSessionRequest) (*resp.InitiateSessionResponse, error)
}

type sessionService struct {
	products repositories.ProductRepository
	gateway  gateway.Client
	shipping *ShippingCalculator
	ids      *snowflake.Node
	currency string
	log      *zap.Logger
}

func NewSessionService(
	products repositories.ProductRepository,
	gw gateway.Client,
	shipping *ShippingCalculator,
	ids *snowflake.Node,
	currency string,
	log *zap.Logger,
) SessionService {
	return &sessionService{
		products: products,
		gateway:  gw,
		shipping: shipping,
		ids:      ids,
		currency: currency,
		log:      log,
	}
}

// InitiateSession prices the cart from the catalog and opens a hosted
// payment session for the total. Nothing is persisted locally.
func (s *sessionService) InitiateSession(ctx context.Context, in req.InitiateSessionRequest) (*resp.InitiateSessionResponse, error) {
	cart, err := priceCart(ctx, s.products, s.shipping, in.Items, in.Address.State, in.ShippingCharge)
	if err != nil {
		return nil, err
	}

	reference := s.ids.Generate().String()
	session, err := s.gateway.CreateSession(ctx, gateway.SessionRequest{
		Amount:      cart.Total,
		Currency:    s.currency,
		Description: fmt.Sprintf("Order %s", reference),
		Reference:   reference,
		Customer: gateway.Customer{
			Name:  strings.TrimSpace(in.Address.Name),
			Email: strings.TrimSpace(in.Address.Email),
			Phone: strings.TrimSpace(in.Address.Phone),
		},
	})
	if err != nil {
		return nil, s.gatewayFailure(reference, err)
	}
	if session.ID == "" {
		s.log.Error("gateway returned session without id", zap.String("reference", reference))
		return nil, utils.ErrGatewayError
	}

	return &resp.InitiateSessionResponse{
		PaymentsSessionID: session.ID,
		Amount:            cart.Total,
		Subtotal:          cart.Subtotal,
		ShippingCharge:    cart.Shipping,
		Currency:          s.currency,
		ReferenceNumber:   reference,
	}, nil
}

func (s *sessionService) gatewayFailure(reference string, err error) error {
	s.log.Error("create payment session failed", zap.String("reference", reference), zap.Error(err))

	var authErr *utils.GatewayAuthRequiredError
	if errors.As(err, &authErr) {
		return authErr
	}
	return utils.ErrGatewayError
}
