package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByStripeCustomerID(ctx context.Context, customerID string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Save(ctx context.Context, user *User) error
	Count(ctx context.Context) (int64, error)

	// Like records that the user likes a product; liking twice is a no-op
	Like(ctx context.Context, userID, productID uuid.UUID) error
	// Unlike removes the like if present
	Unlike(ctx context.Context, userID, productID uuid.UUID) error
	IsLiked(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	FindLikedProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CountLikes(ctx context.Context, productID uuid.UUID) (int64, error)
}

// UserLike is the user_likes join row
type UserLike struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName returns the table name for GORM
func (UserLike) TableName() string {
	return "user_likes"
}
