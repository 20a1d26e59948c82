package services

import (
	"context"
	"strconv"
	"time"

	"github.com/shashiranjanraj/brewhouse/app/models"
	"github.com/shashiranjanraj/brewhouse/app/repositories"
	"github.com/shashiranjanraj/brewhouse/pkg/apperr"
	"github.com/shashiranjanraj/brewhouse/pkg/auth"
	"github.com/shashiranjanraj/brewhouse/pkg/logger"
	"github.com/shashiranjanraj/brewhouse/pkg/metrics"
)

const (
	DefaultOrderLimit = 5

	msgQuantity = "Quantity must be a positive integer"
)

type CreateOrderInput struct {
	RecipeID uint     `json:"recipe_id"`
	Quantity Quantity `json:"quantity"`
}

// ListOrdersInput carries the raw query values; empty means absent.
type ListOrdersInput struct {
	Limit  string
	Status string
}

type UpdateOrderInput struct {
	Quantity Quantity `json:"quantity"`
	Status   *string  `json:"status"`
}

type OrderPlaced struct {
	OrderID  uint `json:"order_id"`
	Quantity int  `json:"quantity"`
	RecipeID uint `json:"recipe_id"`
}

type OrderUpdated struct {
	OrderID  uint               `json:"order_id"`
	Quantity int                `json:"quantity"`
	Status   models.OrderStatus `json:"status"`
}

// OrderView is the read shape of an order. RecipeName is null only when the
// recipe row no longer exists at all.
type OrderView struct {
	ID         uint               `json:"id"`
	RecipeID   uint               `json:"recipe_id"`
	RecipeName *string            `json:"recipe_name"`
	Quantity   int                `json:"quantity"`
	UnitPrice  float64            `json:"unit_price"`
	Status     models.OrderStatus `json:"status"`
	OrderedAt  time.Time          `json:"ordered_at"`
	UserID     uint               `json:"user_id"`
}

type OrderService struct {
	orders            *repositories.OrderRepository
	users             *repositories.UserRepository
	maxLimit          int
	strictTransitions bool
	now               func() time.Time
}

func NewOrderService(orders *repositories.OrderRepository, users *repositories.UserRepository, maxLimit int, strictTransitions bool) *OrderService {
	if maxLimit < 1 {
		maxLimit = 100
	}
	return &OrderService{
		orders:            orders,
		users:             users,
		maxLimit:          maxLimit,
		strictTransitions: strictTransitions,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// Create places an order for the principal, snapshotting the recipe price.
func (s *OrderService) Create(ctx context.Context, p auth.Principal, in CreateOrderInput) (*OrderPlaced, error) {
	if in.RecipeID == 0 {
		return nil, apperr.ValidationFields("Recipe ID required", map[string]string{"recipe_id": "recipe_id is a required field"})
	}
	qty := 1
	if in.Quantity.Present {
		if !in.Quantity.positive() {
			return nil, quantityError()
		}
		qty = in.Quantity.Value
	}

	recipe, err := s.orders.FindRecipeForOrder(ctx, in.RecipeID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("Recipe not found")
		}
		return nil, err
	}

	order := &models.Order{
		UserID:    p.UserID,
		RecipeID:  recipe.ID,
		Quantity:  qty,
		UnitPrice: recipe.Price,
		Status:    models.StatusPending,
		OrderedAt: s.now(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	metrics.OrderEvents.WithLabelValues("created").Inc()
	logger.WithCtx(ctx).Info("order created", "order_id", order.ID, "user_id", p.UserID)
	return &OrderPlaced{OrderID: order.ID, Quantity: order.Quantity, RecipeID: order.RecipeID}, nil
}

// List returns the newest orders visible to the principal: all of them for
// an Admin, otherwise only the caller's own.
func (s *OrderService) List(ctx context.Context, p auth.Principal, in ListOrdersInput) ([]OrderView, error) {
	limit := DefaultOrderLimit
	if in.Limit != "" {
		n, err := strconv.Atoi(in.Limit)
		if err != nil || n < 1 {
			return nil, apperr.ValidationFields("Limit must be a positive integer", map[string]string{"limit": "limit must be a positive integer"})
		}
		limit = min(n, s.maxLimit)
	}

	filter := repositories.OrderFilter{Limit: limit}
	if in.Status != "" {
		st, ok := models.ParseOrderStatus(in.Status)
		if !ok {
			return nil, statusError()
		}
		filter.Status = &st
	}

	if _, err := s.users.FindByID(ctx, p.UserID); err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		uid := p.UserID
		filter.UserID = &uid
	}

	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, len(orders))
	for i := range orders {
		views[i] = orderView(&orders[i])
	}
	return views, nil
}

// Get returns one order to its owner or an Admin.
func (s *OrderService) Get(ctx context.Context, p auth.Principal, id uint) (*OrderView, error) {
	if _, err := s.users.FindByID(ctx, p.UserID); err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(p, order) {
		return nil, apperr.Forbidden("Unauthorized")
	}
	v := orderView(order)
	return &v, nil
}

// Update changes quantity (owner or Admin) and status (Admin only). Both
// fields are checked before the single write.
func (s *OrderService) Update(ctx context.Context, p auth.Principal, id uint, in UpdateOrderInput) (*OrderUpdated, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(p, order) {
		return nil, apperr.Forbidden("Unauthorized")
	}

	fields := map[string]any{}
	result := &OrderUpdated{OrderID: order.ID, Quantity: order.Quantity, Status: order.Status}

	if in.Quantity.Present {
		if !in.Quantity.positive() {
			return nil, quantityError()
		}
		fields["quantity"] = in.Quantity.Value
		result.Quantity = in.Quantity.Value
	}

	if in.Status != nil {
		if !p.IsAdmin() {
			return nil, apperr.Forbidden("Only admins can update status")
		}
		st, ok := models.ParseOrderStatus(*in.Status)
		if !ok {
			return nil, statusError()
		}
		if s.strictTransitions && !order.Status.CanTransitionTo(st) {
			return nil, apperr.ValidationFields("Invalid status transition",
				map[string]string{"status": "cannot move from " + string(order.Status) + " to " + string(st)})
		}
		fields["status"] = st
		result.Status = st
	}

	if len(fields) == 0 {
		return nil, apperr.Validation("No valid fields to update")
	}

	if err := s.orders.Update(ctx, order.ID, fields); err != nil {
		return nil, err
	}

	metrics.OrderEvents.WithLabelValues("updated").Inc()
	if in.Status != nil {
		metrics.OrderStatusChanges.WithLabelValues(string(result.Status)).Inc()
	}
	logger.WithCtx(ctx).Info("order updated", "order_id", order.ID, "by", p.UserID)
	return result, nil
}

// Delete removes an order. Owners may only delete Pending orders; Admins
// may delete any.
func (s *OrderService) Delete(ctx context.Context, p auth.Principal, id uint) error {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !canAccess(p, order) {
		return apperr.Forbidden("Unauthorized")
	}
	if !p.IsAdmin() && order.Status != models.StatusPending {
		return apperr.Forbidden("Only pending orders can be deleted")
	}
	if err := s.orders.Delete(ctx, order.ID); err != nil {
		return err
	}

	metrics.OrderEvents.WithLabelValues("deleted").Inc()
	logger.WithCtx(ctx).Info("order deleted", "order_id", order.ID, "by", p.UserID)
	return nil
}

func canAccess(p auth.Principal, o *models.Order) bool {
	return p.IsAdmin() || p.Owns(o.UserID)
}

func quantityError() error {
	return apperr.ValidationFields(msgQuantity, map[string]string{"quantity": msgQuantity})
}

func statusError() error {
	return apperr.ValidationFields("Invalid status value", map[string]string{"status": "status must be one of Pending Confirmed Shipped Delivered Cancelled"})
}

func orderView(o *models.Order) OrderView {
	v := OrderView{
		ID:        o.ID,
		RecipeID:  o.RecipeID,
		Quantity:  o.Quantity,
		UnitPrice: o.UnitPrice,
		Status:    o.Status,
		OrderedAt: o.OrderedAt,
		UserID:    o.UserID,
	}
	if o.Recipe != nil {
		name := o.Recipe.Name
		v.RecipeName = &name
	}
	return v
}
