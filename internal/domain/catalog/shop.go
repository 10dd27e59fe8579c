package catalog

import (
	"github.com/google/uuid"

	"github.com/sellerops/backend/internal/domain/shared"
)

// Shop represents a seller's storefront on a single platform.
// One owner may have at most one shop per platform; everything except the
// display name is immutable after registration.
type Shop struct {
	shared.BaseAggregateRoot
	OwnerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_shop_owner_platform,priority:1"`
	Platform string    `gorm:"type:varchar(30);not null;uniqueIndex:idx_shop_owner_platform,priority:2"`
	Name     string    `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (Shop) TableName() string {
	return "shops"
}

// NewShop creates a new shop for an owner on a platform
func NewShop(ownerID uuid.UUID, platform, name string) (*Shop, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	if platform == "" {
		return nil, shared.NewDomainError("INVALID_PLATFORM", "Platform cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_SHOP_NAME", "Shop name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_SHOP_NAME", "Shop name cannot exceed 200 characters")
	}

	return &Shop{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           ownerID,
		Platform:          platform,
		Name:              name,
	}, nil
}

// Rename changes the shop's display name
func (s *Shop) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_SHOP_NAME", "Shop name cannot be empty")
	}
	s.Name = name
	s.Touch()
	return nil
}
