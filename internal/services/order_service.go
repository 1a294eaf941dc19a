package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	dbm "storefront/internal/models/db_models"
	req "storefront/internal/models/request_models"
	resp "storefront/internal/models/response_models"
	"storefront/internal/repositories"
	"storefront/pkg/utils"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, caller Caller, in req.PlaceOrderRequest) (*resp.OrderResponse, error)
	GetOrder(ctx context.Context, caller Caller, id uint64) (*resp.OrderResponse, error)
}

type orderService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	shipping *ShippingCalculator
	log      *zap.Logger
}

func NewOrderService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	shipping *ShippingCalculator,
	log *zap.Logger,
) OrderService {
	return &orderService{orders: orders, products: products, shipping: shipping, log: log}
}

// PlaceOrder creates the single order for a checkout. Online orders start
// pending and wait for reconciliation; COD orders go straight to processing.
func (s *orderService) PlaceOrder(ctx context.Context, caller Caller, in req.PlaceOrderRequest) (*resp.OrderResponse, error) {
	email := strings.TrimSpace(caller.Email)
	if email == "" {
		return nil, utils.ErrUnauthorized
	}

	method := dbm.PaymentMethod(in.PaymentMethod)
	state := dbm.StateCOD
	switch method {
	case dbm.PaymentMethodOnline:
		if strings.TrimSpace(in.PaymentSessionID) == "" {
			return nil, fmt.Errorf("%w: payments_session_id required for online payment", utils.ErrInvalidRequest)
		}
		state = dbm.StatePending
	case dbm.PaymentMethodCOD:
		in.PaymentSessionID = ""
	default:
		return nil, fmt.Errorf("%w: payment_method %q", utils.ErrInvalidRequest, in.PaymentMethod)
	}

	cart, err := priceCart(ctx, s.products, s.shipping, in.Items, in.Address.State, in.ShippingCharge)
	if err != nil {
		return nil, err
	}

	address, err := json.Marshal(in.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: encode address: %v", utils.ErrInvalidRequest, err)
	}

	order := &dbm.Order{
		CustomerEmail:    email,
		CustomerName:     strings.TrimSpace(in.Address.Name),
		CustomerPhone:    strings.TrimSpace(in.Address.Phone),
		Items:            cart.Items,
		Subtotal:         cart.Subtotal,
		ShippingCharge:   cart.Shipping,
		TotalAmount:      cart.Total,
		PaymentMethod:    method,
		PaymentSessionID: strings.TrimSpace(in.PaymentSessionID),
		Status:           state.Status,
		PaymentStatus:    state.PaymentStatus,
		ShippingAddress:  datatypes.JSON(address),
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, utils.ErrOutOfStock) || errors.Is(err, utils.ErrDatabaseError) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	s.log.Info("order placed",
		zap.Uint64("order_id", order.ID),
		zap.String("payment_method", string(method)),
		zap.String("session_id", order.PaymentSessionID))
	return toOrderResponse(order), nil
}

func (s *orderService) GetOrder(ctx context.Context, caller Caller, id uint64) (*resp.OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: load order: %v", utils.ErrDatabaseError, err)
	}
	if order == nil {
		return nil, utils.ErrOrderNotFound
	}
	if !caller.IsAdmin() && !sameEmail(caller.Email, order.CustomerEmail) {
		return nil, utils.ErrUnauthorized
	}
	return toOrderResponse(order), nil
}

func toOrderResponse(o *dbm.Order) *resp.OrderResponse {
	items := make([]resp.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, resp.OrderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return &resp.OrderResponse{
		ID:               o.ID,
		CustomerEmail:    o.CustomerEmail,
		Items:            items,
		Subtotal:         o.Subtotal,
		ShippingCharge:   o.ShippingCharge,
		TotalAmount:      o.TotalAmount,
		PaymentMethod:    string(o.PaymentMethod),
		PaymentSessionID: o.PaymentSessionID,
		Status:           string(o.Status),
		PaymentStatus:    string(o.PaymentStatus),
		IsPaid:           o.IsPaid(),
		TrackingNumber:   o.TrackingNumber,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}
