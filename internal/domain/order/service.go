// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/musicstore/storefront/internal/config"
	"github.com/musicstore/storefront/internal/domain/cart"
	"github.com/musicstore/storefront/internal/domain/inventory"
	"github.com/musicstore/storefront/internal/domain/payment"
	"github.com/musicstore/storefront/internal/domain/status"
	"github.com/musicstore/storefront/internal/domain/user"
	"github.com/musicstore/storefront/internal/pkg/apperrors"
	"github.com/musicstore/storefront/internal/pkg/metrics"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service handles order business logic
type Service struct {
	db          *gorm.DB
	config      config.OrderConfig
	cartService *cart.Service
	ledger      *inventory.Ledger
	statuses    *status.Service
	addresses   *user.AddressService
	payments    *payment.Service
	metrics     *metrics.Metrics
	logger      logrus.FieldLogger
}

// Dependencies groups the collaborators of the order service
type Dependencies struct {
	Carts     *cart.Service
	Ledger    *inventory.Ledger
	Statuses  *status.Service
	Addresses *user.AddressService
	Payments  *payment.Service
	Metrics   *metrics.Metrics
	Logger    logrus.FieldLogger
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg config.OrderConfig, deps Dependencies) *Service {
	return &Service{
		db:          db,
		config:      cfg,
		cartService: deps.Carts,
		ledger:      deps.Ledger,
		statuses:    deps.Statuses,
		addresses:   deps.Addresses,
		payments:    deps.Payments,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}
}

// PlaceOrderRequest represents checkout data
type PlaceOrderRequest struct {
	Address          user.AddressInput `json:"address" binding:"required"`
	DeliveryMethodID uint              `json:"delivery_method_id" binding:"required"`
	PaymentMethodID  uint              `json:"payment_method_id" binding:"required"`
	Comment          string            `json:"comment"`
}

// ChangeStatusRequest represents an admin status change. A nil comment leaves it untouched.
type ChangeStatusRequest struct {
	StatusID uint    `json:"status_id" binding:"required"`
	Comment  *string `json:"comment"`
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	StatusID  uint   `form:"status_id"`
	UserID    uint   `form:"user_id"`
	Search    string `form:"search"`
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
}

// OrderResponse represents order list response with pagination
type OrderResponse struct {
	Orders     []Summary  `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Summary is an order with the figures the order pages display
type Summary struct {
	Order
	Category     status.Category `json:"category"`
	ItemsTotal   decimal.Decimal `json:"items_total"`
	DeliveryCost decimal.Decimal `json:"delivery_cost"`
	CanCancel    bool            `json:"can_cancel"`
	Number       string          `json:"number"`
	Customer     string          `json:"customer,omitempty"`
	AddressLine  string          `json:"address_line,omitempty"`
}

// TransitionResult describes a committed status change
type TransitionResult struct {
	Order    *Order                   `json:"order"`
	Previous status.OrderStatus       `json:"previous_status"`
	Current  status.OrderStatus       `json:"current_status"`
	Category status.Category          `json:"category"`
	Release  *inventory.ReleaseReport `json:"release,omitempty"`
}

// PartialFailure returns the release failures of a cancellation, or nil
func (r *TransitionResult) PartialFailure() *apperrors.PartialReleaseFailure {
	if r.Release == nil || !r.Release.HasFailures() {
		return nil
	}

	failed := r.Release.Failed()
	failures := make([]apperrors.ReleaseFailure, 0, len(failed))
	for _, f := range failed {
		failures = append(failures, apperrors.ReleaseFailure{
			ProductID:   f.ProductID,
			ProductName: f.ProductName,
			Quantity:    f.Quantity,
			Reason:      f.Error,
		})
	}

	return &apperrors.PartialReleaseFailure{
		OrderID:   r.Order.ID,
		Failures:  failures,
		Succeeded: len(r.Release.Succeeded()),
	}
}

// PlaceOrder converts the user's cart into an order in one transaction:
// address, order row, lines with price snapshots, stock reservation, history,
// pending payment and cart clearing either all commit or none do.
func (s *Service) PlaceOrder(ctx context.Context, userID uint, req *PlaceOrderRequest) (*Order, error) {
	// Start transaction
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	order, err := s.placeOrder(tx, userID, req)
	if err != nil {
		tx.Rollback()
		s.logger.WithFields(logrus.Fields{"user_id": userID}).WithError(err).Warn("Order placement rejected")
		return nil, err
	}

	// Commit transaction
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	s.metrics.OrderPlaced()
	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.Total.StringFixed(2),
		"lines":    len(order.Lines),
	}).Info("Order placed")

	// Load complete order with relationships
	return s.loadOrder(s.db.WithContext(ctx), order.ID)
}

func (s *Service) placeOrder(tx *gorm.DB, userID uint, req *PlaceOrderRequest) (*Order, error) {
	userCart, err := s.cartService.LockForCheckout(tx, userID)
	if err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			return nil, apperrors.NewValidation("", "cart is empty")
		}
		return nil, err
	}
	if len(userCart.Lines) == 0 {
		return nil, apperrors.NewValidation("", "cart is empty")
	}
	for _, line := range userCart.Lines {
		if line.Product == nil {
			return nil, apperrors.NewNotFound("product", line.ProductID)
		}
	}

	delivery, err := s.payments.GetDeliveryMethod(tx, req.DeliveryMethodID)
	if err != nil {
		return nil, err
	}
	paymentMethod, err := s.payments.GetPaymentMethod(tx, req.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	address, err := s.addresses.FindOrCreate(tx, userID, req.Address)
	if err != nil {
		return nil, err
	}

	initial, err := s.statuses.Initial(tx)
	if err != nil {
		return nil, err
	}

	total := cart.ComputeTotal(userCart.Lines).Add(delivery.Price())

	order := Order{
		UserID:           userID,
		StatusID:         initial.ID,
		Total:            total,
		AddressID:        &address.ID,
		DeliveryMethodID: &delivery.ID,
		PaymentMethodID:  &paymentMethod.ID,
		Comment:          strings.TrimSpace(req.Comment),
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	ref := inventory.OrderReference(order.ID, userID)
	for _, cartLine := range userCart.Lines {
		line := OrderLine{
			OrderID:     order.ID,
			ProductID:   cartLine.ProductID,
			ProductName: cartLine.Product.Name,
			Quantity:    cartLine.Quantity,
			UnitPrice:   cartLine.Product.Price,
		}
		if err := tx.Create(&line).Error; err != nil {
			return nil, fmt.Errorf("failed to create order line: %w", err)
		}

		if err := s.ledger.Reserve(tx, cartLine.ProductID, cartLine.Quantity, ref); err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, line)
	}

	if err := s.appendHistory(tx, order.ID, initial.ID, userID, ""); err != nil {
		return nil, err
	}

	if _, err := s.payments.CreatePending(tx, order.ID, total); err != nil {
		return nil, err
	}

	if err := s.cartService.Clear(tx, userCart.ID, len(userCart.Lines)); err != nil {
		return nil, err
	}

	return &order, nil
}

// ChangeStatus moves an order to another status on behalf of an admin.
// Cancelled orders are final. Moving into a cancelled status returns the
// stock of every line; release problems are reported, not rolled back.
func (s *Service) ChangeStatus(ctx context.Context, orderID uint, req *ChangeStatusRequest, actorID uint) (*TransitionResult, error) {
	return s.inTransaction(ctx, func(tx *gorm.DB) (*TransitionResult, error) {
		order, err := s.lockOrder(tx, orderID, 0)
		if err != nil {
			return nil, err
		}

		if s.statuses.Classify(order.StatusName()) == status.CategoryCancelled {
			return nil, &apperrors.TerminalStateError{OrderID: order.ID, Status: order.StatusName()}
		}

		target, err := s.statuses.Find(tx, req.StatusID)
		if err != nil {
			return nil, err
		}

		return s.applyTransition(tx, order, target, req.Comment, actorID)
	})
}

// CancelByUser cancels the user's own order unless it is already cancelled or delivered
func (s *Service) CancelByUser(ctx context.Context, userID, orderID uint) (*TransitionResult, error) {
	return s.inTransaction(ctx, func(tx *gorm.DB) (*TransitionResult, error) {
		order, err := s.lockOrder(tx, orderID, userID)
		if err != nil {
			return nil, err
		}

		if s.statuses.Classify(order.StatusName()).IsTerminalForUser() {
			return nil, &apperrors.TerminalStateError{OrderID: order.ID, Status: order.StatusName()}
		}

		target, err := s.statuses.Cancelled(tx)
		if err != nil {
			return nil, err
		}

		return s.applyTransition(tx, order, target, nil, userID)
	})
}

// ListUserOrders returns the user's orders, newest first
func (s *Service) ListUserOrders(ctx context.Context, userID uint, page, limit int) (*OrderResponse, error) {
	return s.listOrders(ctx, &OrderListRequest{
		Page:   page,
		Limit:  limit,
		UserID: userID,
	})
}

// GetUserOrder returns one of the user's orders. Other users' orders are reported as missing.
func (s *Service) GetUserOrder(ctx context.Context, userID, orderID uint) (*Summary, error) {
	order, err := s.loadOrder(s.db.WithContext(ctx).Where("user_id = ?", userID), orderID)
	if err != nil {
		return nil, err
	}
	return s.summarize(order), nil
}

// AdminGetOrder returns any order with its full details
func (s *Service) AdminGetOrder(ctx context.Context, orderID uint) (*Summary, error) {
	order, err := s.loadOrder(s.db.WithContext(ctx), orderID)
	if err != nil {
		return nil, err
	}
	return s.summarize(order), nil
}

// AdminListOrders retrieves orders of all users with filtering and pagination
func (s *Service) AdminListOrders(ctx context.Context, req *OrderListRequest) (*OrderResponse, error) {
	return s.listOrders(ctx, req)
}

// Private helper methods

func (s *Service) listOrders(ctx context.Context, req *OrderListRequest) (*OrderResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	var orders []Order
	var total int64

	// Build query
	query := s.db.WithContext(ctx).Model(&Order{})

	// Apply filters
	if req.StatusID > 0 {
		query = query.Where("status_id = ?", req.StatusID)
	}

	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}

	if search := strings.TrimSpace(req.Search); search != "" {
		if id, err := strconv.ParseUint(strings.TrimPrefix(search, "#"), 10, 32); err == nil {
			query = query.Where("id = ?", id)
		} else {
			emails := s.db.WithContext(ctx).Model(&user.User{}).Select("id").Where("LOWER(email) LIKE ?", "%"+strings.ToLower(search)+"%")
			query = query.Where("user_id IN (?)", emails)
		}
	}

	// Count total records
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	// Apply sorting
	query = query.Order(s.buildOrderClause(req.SortBy, req.SortOrder))

	// Apply pagination
	offset := (req.Page - 1) * req.Limit
	if err := query.
		Preload("Status").
		Preload("Lines").
		Preload("User").
		Preload("Address").
		Offset(offset).
		Limit(req.Limit).
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	summaries := make([]Summary, 0, len(orders))
	for i := range orders {
		summaries = append(summaries, *s.summarize(&orders[i]))
	}

	// Calculate pagination info
	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	pagination := Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}

	return &OrderResponse{
		Orders:     summaries,
		Pagination: pagination,
	}, nil
}

func (s *Service) inTransaction(ctx context.Context, fn func(tx *gorm.DB) (*TransitionResult, error)) (*TransitionResult, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	result, err := fn(tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}

	s.metrics.Transition(string(result.Category))
	entry := s.logger.WithFields(logrus.Fields{
		"order_id": result.Order.ID,
		"from":     result.Previous.Name,
		"to":       result.Current.Name,
	})
	if pf := result.PartialFailure(); pf != nil {
		entry.WithError(pf).Error("Order status changed with stock release failures")
	} else {
		entry.Info("Order status changed")
	}

	if reloaded, err := s.loadOrder(s.db.WithContext(ctx), result.Order.ID); err == nil {
		result.Order = reloaded
	}
	return result, nil
}

// applyTransition writes the new status with a compare-and-swap on the status
// the caller observed, so two concurrent transitions cannot both succeed.
func (s *Service) applyTransition(tx *gorm.DB, order *Order, target *status.OrderStatus, comment *string, actorID uint) (*TransitionResult, error) {
	previous := *order.Status
	category := s.statuses.Classify(target.Name)

	updates := map[string]interface{}{
		"status_id": target.ID,
	}
	if comment != nil {
		updates["comment"] = strings.TrimSpace(*comment)
	}

	result := tx.Model(&Order{}).
		Where("id = ? AND status_id = ?", order.ID, previous.ID).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, s.transitionConflict(tx, order.ID)
	}

	order.StatusID = target.ID
	order.Status = target
	if comment != nil {
		order.Comment = strings.TrimSpace(*comment)
	}

	changed := previous.ID != target.ID

	var report *inventory.ReleaseReport
	if changed && category == status.CategoryCancelled {
		lines := make([]inventory.Line, 0, len(order.Lines))
		for _, l := range order.Lines {
			lines = append(lines, inventory.Line{
				ProductID:   l.ProductID,
				ProductName: l.ProductName,
				Quantity:    l.Quantity,
			})
		}
		report = s.ledger.ReleaseAll(tx, lines, inventory.OrderReference(order.ID, actorID))
	}

	if changed && s.config.RecordTransitions {
		if err := s.appendHistory(tx, order.ID, target.ID, actorID, ""); err != nil {
			return nil, err
		}
	}

	return &TransitionResult{
		Order:    order,
		Previous: previous,
		Current:  *target,
		Category: category,
		Release:  report,
	}, nil
}

// transitionConflict explains a lost compare-and-swap
func (s *Service) transitionConflict(tx *gorm.DB, orderID uint) error {
	var current Order
	if err := tx.Preload("Status").First(&current, orderID).Error; err == nil && current.Status != nil {
		if s.statuses.Classify(current.Status.Name) == status.CategoryCancelled {
			return &apperrors.TerminalStateError{OrderID: orderID, Status: current.Status.Name}
		}
	}
	return &apperrors.ConflictError{
		Message: fmt.Sprintf("order %d was modified concurrently, retry the status change", orderID),
	}
}

// lockOrder loads the order with the data a transition needs. A non-zero
// ownerID restricts the lookup to that user's orders.
func (s *Service) lockOrder(tx *gorm.DB, orderID, ownerID uint) (*Order, error) {
	query := tx.Preload("Status").Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
	if ownerID > 0 {
		query = query.Where("user_id = ?", ownerID)
	}

	var order Order
	if err := query.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("order", orderID)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	if order.Status == nil {
		return nil, apperrors.NewNotFound("order status", order.StatusID)
	}
	return &order, nil
}

func (s *Service) loadOrder(db *gorm.DB, orderID uint) (*Order, error) {
	var order Order
	result := db.
		Preload("Status").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at ASC, id ASC")
		}).
		Preload("History.Status").
		Preload("Address").
		Preload("DeliveryMethod").
		Preload("PaymentMethod").
		Preload("Payments").
		Preload("User").
		First(&order, orderID)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("order", orderID)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}

	return &order, nil
}

func (s *Service) appendHistory(tx *gorm.DB, orderID, statusID, actorID uint, comment string) error {
	entry := HistoryEntry{
		OrderID:   orderID,
		StatusID:  statusID,
		ChangedAt: time.Now().UTC(),
		ChangedBy: actorID,
		Comment:   comment,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to create status history: %w", err)
	}
	return nil
}

func (s *Service) summarize(order *Order) *Summary {
	category := s.statuses.Classify(order.StatusName())
	summary := &Summary{
		Order:        *order,
		Category:     category,
		ItemsTotal:   order.ItemsTotal(),
		DeliveryCost: order.DeliveryCost(),
		CanCancel:    !category.IsTerminalForUser(),
		Number:       order.Number(),
	}
	if order.User != nil {
		summary.Customer = order.User.GetDisplayName()
	}
	if order.Address != nil {
		summary.AddressLine = order.Address.OneLine()
	}
	return summary
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"total":      true,
		"status_id":  true,
		"id":         true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s, id %s", sortBy, sortOrder, sortOrder)
}
