// internal/domain/status/service.go
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/musicstore/storefront/internal/pkg/apperrors"
	"github.com/musicstore/storefront/internal/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const cacheKey = "order_statuses:all"

// Service manages the order status directory
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	cacheTTL    time.Duration
	rules       Classifier
	metrics     *metrics.Metrics
	logger      logrus.FieldLogger
}

// NewService creates a new status service. A nil redis client disables caching.
func NewService(db *gorm.DB, redisClient *redis.Client, cacheTTL time.Duration, logger logrus.FieldLogger, m *metrics.Metrics) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
		rules:       DefaultRules,
		metrics:     m,
		logger:      logger,
	}
}

// WithRules replaces the classification rules
func (s *Service) WithRules(rules Classifier) *Service {
	s.rules = rules
	return s
}

// Classify returns the category of a label under the configured rules
func (s *Service) Classify(name string) Category {
	return s.rules.Classify(name)
}

// List returns all statuses ordered by id
func (s *Service) List(ctx context.Context) ([]OrderStatus, error) {
	if statuses, ok := s.readCache(ctx); ok {
		return statuses, nil
	}

	var statuses []OrderStatus
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&statuses).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve order statuses: %w", err)
	}

	s.writeCache(ctx, statuses)
	return statuses, nil
}

// Get retrieves a status by id
func (s *Service) Get(ctx context.Context, id uint) (*OrderStatus, error) {
	return s.Find(s.db.WithContext(ctx), id)
}

// Find retrieves a status by id on the given handle
func (s *Service) Find(tx *gorm.DB, id uint) (*OrderStatus, error) {
	var st OrderStatus
	if err := tx.First(&st, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("order status", id)
		}
		return nil, fmt.Errorf("failed to retrieve order status: %w", err)
	}
	return &st, nil
}

// Create adds a status label
func (s *Service) Create(ctx context.Context, name string) (*OrderStatus, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidation("name", "is required")
	}

	db := s.db.WithContext(ctx)
	if err := s.ensureUnique(db, name, 0); err != nil {
		return nil, err
	}

	st := OrderStatus{Name: name}
	if err := db.Create(&st).Error; err != nil {
		return nil, fmt.Errorf("failed to create order status: %w", err)
	}

	s.invalidate(ctx)
	s.logger.WithFields(logrus.Fields{"status_id": st.ID, "name": st.Name}).Info("Order status created")
	return &st, nil
}

// Rename changes the label of a status
func (s *Service) Rename(ctx context.Context, id uint, name string) (*OrderStatus, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidation("name", "is required")
	}

	db := s.db.WithContext(ctx)
	st, err := s.Find(db, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(db, name, id); err != nil {
		return nil, err
	}

	if err := db.Model(st).Update("name", name).Error; err != nil {
		return nil, fmt.Errorf("failed to rename order status: %w", err)
	}
	st.Name = name

	s.invalidate(ctx)
	return st, nil
}

// Delete removes a status that no order references
func (s *Service) Delete(ctx context.Context, id uint) error {
	db := s.db.WithContext(ctx)
	st, err := s.Find(db, id)
	if err != nil {
		return err
	}

	var inUse int64
	if err := db.Table("orders").Where("status_id = ?", id).Count(&inUse).Error; err != nil {
		return fmt.Errorf("failed to check status usage: %w", err)
	}
	if inUse > 0 {
		return &apperrors.ConflictError{
			Message: fmt.Sprintf("status '%s' is used by %d order(s) and cannot be deleted", st.Name, inUse),
		}
	}

	if err := db.Delete(&OrderStatus{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete order status: %w", err)
	}

	s.invalidate(ctx)
	return nil
}

// Initial picks the status new orders start in: the first label recognised as
// initial, otherwise the first status by id.
func (s *Service) Initial(tx *gorm.DB) (*OrderStatus, error) {
	var statuses []OrderStatus
	if err := tx.Order("id ASC").Find(&statuses).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve order statuses: %w", err)
	}
	if len(statuses) == 0 {
		return nil, apperrors.NewNotFound("initial order status", nil)
	}

	for i := range statuses {
		if s.rules.IsInitial(statuses[i].Name) {
			return &statuses[i], nil
		}
	}
	return &statuses[0], nil
}

// Cancelled returns the first status classified as cancelled
func (s *Service) Cancelled(tx *gorm.DB) (*OrderStatus, error) {
	var statuses []OrderStatus
	if err := tx.Order("id ASC").Find(&statuses).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve order statuses: %w", err)
	}

	for i := range statuses {
		if s.rules.Classify(statuses[i].Name) == CategoryCancelled {
			return &statuses[i], nil
		}
	}
	return nil, apperrors.NewNotFound("cancelled order status", nil)
}

func (s *Service) ensureUnique(db *gorm.DB, name string, exceptID uint) error {
	var count int64
	query := db.Model(&OrderStatus{}).Where("name = ?", name)
	if exceptID > 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check status name: %w", err)
	}
	if count > 0 {
		return &apperrors.ConflictError{Message: fmt.Sprintf("status '%s' already exists", name)}
	}
	return nil
}

func (s *Service) readCache(ctx context.Context) ([]OrderStatus, bool) {
	if s.redisClient == nil {
		return nil, false
	}

	data, err := s.redisClient.Get(ctx, cacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WithError(err).Warn("Order status cache read failed")
		}
		s.metrics.CacheResult("miss")
		return nil, false
	}

	var statuses []OrderStatus
	if err := json.Unmarshal([]byte(data), &statuses); err != nil {
		s.metrics.CacheResult("miss")
		return nil, false
	}

	s.metrics.CacheResult("hit")
	return statuses, true
}

func (s *Service) writeCache(ctx context.Context, statuses []OrderStatus) {
	if s.redisClient == nil {
		return
	}

	data, err := json.Marshal(statuses)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
		s.logger.WithError(err).Warn("Order status cache write failed")
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.WithError(err).Warn("Order status cache invalidation failed")
	}
}
