package identity

import (
	"context"
	"errors"
	"time"

	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUserNotFound is returned for unknown accounts
var ErrUserNotFound = shared.NewDomainError(shared.ErrNotFound.Code, "Utilisateur introuvable")

// UserService edits the signed-in account
type UserService struct {
	userRepo  identity.UserRepository
	blacklist auth.TokenBlacklist
	revokeFor time.Duration
	logger    *zap.Logger
}

// NewUserService creates a user service. revokeFor is how long a password
// change keeps older tokens revoked, the refresh token lifetime.
func NewUserService(userRepo identity.UserRepository, blacklist auth.TokenBlacklist, revokeFor time.Duration, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{userRepo: userRepo, blacklist: blacklist, revokeFor: revokeFor, logger: logger}
}

// Me returns the account of userID
func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile edits the name and avatar
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(req.FirstName, req.LastName, req.AvatarURL); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword replaces the password and revokes every token issued so far
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}

	if s.blacklist != nil {
		if err := s.blacklist.AddUserTokensToBlacklist(ctx, userID.String(), s.revokeFor); err != nil {
			s.logger.Warn("Failed to revoke tokens after password change", zap.Error(err))
		}
	}
	s.logger.Info("User password changed", zap.String("user_id", userID.String()))
	return nil
}

// PromoteAdmin grants ROLE_ADMIN to the account registered with email
func (s *UserService) PromoteAdmin(ctx context.Context, email string) (*UserResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := user.GrantRole(identity.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User promoted to admin", zap.String("user_id", user.ID.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *UserService) find(ctx context.Context, userID uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
