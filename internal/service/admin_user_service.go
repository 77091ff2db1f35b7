package service

import (
	"context"

	"github.com/lshigami/psytest/internal/access"
	"github.com/lshigami/psytest/internal/apperror"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/repository"
	"github.com/rs/zerolog/log"
)

type AdminUserService interface {
	ListUsers(ctx context.Context, caller *access.Caller) (*dto.UserListResponse, error)
	ToggleUserActive(ctx context.Context, userID uint, caller *access.Caller) (*dto.ToggleUserResponse, error)
}

type adminUserService struct {
	userRepo repository.UserRepository
}

func NewAdminUserService(userRepo repository.UserRepository) AdminUserService {
	return &adminUserService{userRepo: userRepo}
}

func (s *adminUserService) ListUsers(ctx context.Context, caller *access.Caller) (*dto.UserListResponse, error) {
	if err := access.Require(caller, access.PermUsersManage); err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("ListUsers: Failed to load users")
		return nil, apperror.Internal(err, "failed to load users")
	}
	out := make([]dto.UserDTO, 0, len(users))
	for i := range users {
		out = append(out, toUserDTO(&users[i]))
	}
	return &dto.UserListResponse{Users: out}, nil
}

func (s *adminUserService) ToggleUserActive(ctx context.Context, userID uint, caller *access.Caller) (*dto.ToggleUserResponse, error) {
	if err := access.Require(caller, access.PermUsersManage); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "user", userID)
	}
	user.IsActive = !user.IsActive
	if err := s.userRepo.Update(ctx, user); err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("ToggleUserActive: Failed to update user")
		return nil, apperror.Internal(err, "failed to update user")
	}

	msg := "User deactivated"
	if user.IsActive {
		msg = "User activated"
	}
	log.Info().Uint("userID", userID).Bool("active", user.IsActive).Msg("ToggleUserActive: " + msg)
	return &dto.ToggleUserResponse{Message: msg, User: toUserDTO(user)}, nil
}
