// internal/domain/user/address_service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/musicstore/storefront/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// AddressService handles address business logic
type AddressService struct {
	db             *gorm.DB
	defaultCountry string
}

// NewAddressService creates a new address service
func NewAddressService(db *gorm.DB, defaultCountry string) *AddressService {
	return &AddressService{
		db:             db,
		defaultCountry: defaultCountry,
	}
}

// AddressInput is the address captured at checkout
type AddressInput struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	ZipCode string `json:"zip_code" binding:"required"`
	Country string `json:"country"`
}

// Normalize trims the fields and applies the default country
func (in AddressInput) Normalize(defaultCountry string) AddressInput {
	out := AddressInput{
		Street:  strings.TrimSpace(in.Street),
		City:    strings.TrimSpace(in.City),
		ZipCode: strings.TrimSpace(in.ZipCode),
		Country: strings.TrimSpace(in.Country),
	}
	if out.Country == "" {
		out.Country = defaultCountry
	}
	return out
}

// Validate checks the required fields
func (in AddressInput) Validate() error {
	switch {
	case in.Street == "":
		return apperrors.NewValidation("street", "is required")
	case in.City == "":
		return apperrors.NewValidation("city", "is required")
	case in.ZipCode == "":
		return apperrors.NewValidation("zip_code", "is required")
	}
	return nil
}

// GetUserAddresses retrieves all addresses for a user, default first
func (s *AddressService) GetUserAddresses(ctx context.Context, userID uint) ([]Address, error) {
	var addresses []Address
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve addresses: %w", err)
	}
	return addresses, nil
}

// GetAddress retrieves a specific address for a user
func (s *AddressService) GetAddress(ctx context.Context, userID, addressID uint) (*Address, error) {
	var address Address
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).First(&address)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("address", addressID)
		}
		return nil, fmt.Errorf("failed to retrieve address: %w", result.Error)
	}

	return &address, nil
}

// FindOrCreate reuses an identical address of the user or creates one inside
// the caller's transaction. The first address of a user becomes the default.
func (s *AddressService) FindOrCreate(tx *gorm.DB, userID uint, in AddressInput) (*Address, error) {
	in = in.Normalize(s.defaultCountry)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var existing Address
	err := tx.Where("user_id = ? AND street = ? AND city = ? AND zip_code = ? AND country = ?",
		userID, in.Street, in.City, in.ZipCode, in.Country).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up address: %w", err)
	}

	var count int64
	if err := tx.Model(&Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count addresses: %w", err)
	}

	address := Address{
		UserID:    userID,
		Street:    in.Street,
		City:      in.City,
		ZipCode:   in.ZipCode,
		Country:   in.Country,
		IsDefault: count == 0,
	}
	if err := tx.Create(&address).Error; err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	return &address, nil
}
