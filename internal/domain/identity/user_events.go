package identity

import (
	"github.com/destocard/backend/internal/domain/shared"
)

// AggregateTypeUser is the aggregate type of User events
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserRegistered  = "UserRegistered"
	EventTypeUserRoleGranted = "UserRoleGranted"
)

// UserRegisteredEvent is published when an account is created
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Email    string `json:"email"`
	Username string `json:"username"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID),
		Email:           user.Email,
		Username:        user.Username,
	}
}

// UserRoleGrantedEvent is published when a role is added to an account
type UserRoleGrantedEvent struct {
	shared.BaseDomainEvent
	Role Role `json:"role"`
}

// NewUserRoleGrantedEvent creates a new UserRoleGrantedEvent
func NewUserRoleGrantedEvent(user *User, role Role) *UserRoleGrantedEvent {
	return &UserRoleGrantedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRoleGranted, AggregateTypeUser, user.ID),
		Role:            role,
	}
}
