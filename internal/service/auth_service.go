package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jinzhu/copier"
	"github.com/lshigami/psytest/config"
	"github.com/lshigami/psytest/internal/access"
	"github.com/lshigami/psytest/internal/apperror"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/model"
	"github.com/lshigami/psytest/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MinPasswordLength = 6

type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	// Authenticate resolves a bearer token to the current caller. The account
	// is reloaded so deactivation and role changes apply immediately.
	Authenticate(ctx context.Context, token string) (*access.Caller, error)
	Profile(ctx context.Context, caller *access.Caller) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, caller *access.Caller, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	// SeedStaff creates the admin and psychologist accounts if they are missing.
	SeedStaff(ctx context.Context, seed config.Seed) error
}

type authService struct {
	userRepo  repository.UserRepository
	secret    []byte
	expiresIn time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	expiresIn := cfg.JWT.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 24 * time.Hour
	}
	return &authService{
		userRepo:  userRepo,
		secret:    []byte(cfg.JWT.Secret),
		expiresIn: expiresIn,
	}
}

func toUserDTO(u *model.User) dto.UserDTO {
	var out dto.UserDTO
	if err := copier.Copy(&out, u); err != nil {
		log.Warn().Err(err).Uint("userID", u.ID).Msg("toUserDTO: copier failed")
	}
	out.Role = string(u.Role)
	return out
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if email == "" || username == "" || req.Password == "" {
		authAttempts.WithLabelValues("register", "invalid").Inc()
		return nil, apperror.Validation("email, username and password are required")
	}
	if len(req.Password) < MinPasswordLength {
		authAttempts.WithLabelValues("register", "invalid").Inc()
		return nil, apperror.Validation("password must be at least %d characters", MinPasswordLength)
	}

	exists, err := s.userRepo.ExistsByEmailOrUsername(ctx, email, username, 0)
	if err != nil {
		log.Error().Err(err).Msg("Register: Failed to check existing users")
		return nil, apperror.Internal(err, "failed to register")
	}
	if exists {
		authAttempts.WithLabelValues("register", "conflict").Inc()
		return nil, apperror.Conflict("user with this email or username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err, "failed to hash password")
	}

	user := model.User{
		Email:     email,
		Username:  username,
		Password:  string(hash),
		Role:      model.RoleUser,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			authAttempts.WithLabelValues("register", "conflict").Inc()
			return nil, apperror.Conflict("user with this email or username already exists")
		}
		log.Error().Err(err).Str("username", username).Msg("Register: Failed to create user")
		return nil, apperror.Internal(err, "failed to register")
	}

	token, err := s.issueToken(&user)
	if err != nil {
		return nil, err
	}
	authAttempts.WithLabelValues("register", "success").Inc()
	log.Info().Uint("userID", user.ID).Msg("Register: User registered")
	return &dto.AuthResponse{Message: "User registered", Token: token, User: toUserDTO(&user)}, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	login := strings.TrimSpace(req.Login)
	user, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			authAttempts.WithLabelValues("login", "failure").Inc()
			return nil, apperror.Unauthenticated("invalid login or password")
		}
		log.Error().Err(err).Msg("Login: Failed to load user")
		return nil, apperror.Internal(err, "failed to login")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		authAttempts.WithLabelValues("login", "failure").Inc()
		return nil, apperror.Unauthenticated("invalid login or password")
	}
	if !user.IsActive {
		authAttempts.WithLabelValues("login", "blocked").Inc()
		return nil, apperror.Forbidden("account is deactivated")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	authAttempts.WithLabelValues("login", "success").Inc()
	return &dto.AuthResponse{Message: "Logged in", Token: token, User: toUserDTO(user)}, nil
}

func (s *authService) issueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.Username,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperror.Internal(err, "failed to sign token")
	}
	return token, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*access.Caller, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, apperror.Unauthenticated("invalid or expired token")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthenticated("user not found or inactive")
		}
		return nil, apperror.Internal(err, "failed to load user")
	}
	if !user.IsActive {
		return nil, apperror.Unauthenticated("user not found or inactive")
	}
	return &access.Caller{UserID: user.ID, Role: user.Role}, nil
}

func (s *authService) Profile(ctx context.Context, caller *access.Caller) (*dto.ProfileResponse, error) {
	if caller == nil {
		return nil, apperror.Unauthenticated("authentication required")
	}
	user, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, lookupError(err, "user", caller.UserID)
	}
	return &dto.ProfileResponse{User: toUserDTO(user)}, nil
}

func (s *authService) UpdateProfile(ctx context.Context, caller *access.Caller, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	if caller == nil {
		return nil, apperror.Unauthenticated("authentication required")
	}
	user, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, lookupError(err, "user", caller.UserID)
	}
	// empty strings keep the current value
	if req.FirstName != nil && *req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != nil && *req.LastName != "" {
		user.LastName = req.LastName
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		log.Error().Err(err).Uint("userID", user.ID).Msg("UpdateProfile: Failed to update user")
		return nil, apperror.Internal(err, "failed to update profile")
	}
	return &dto.ProfileResponse{User: toUserDTO(user)}, nil
}

func (s *authService) SeedStaff(ctx context.Context, seed config.Seed) error {
	staff := []struct {
		email, username, password string
		role                      model.Role
	}{
		{seed.AdminEmail, seed.AdminUsername, seed.AdminPassword, model.RoleAdmin},
		{seed.PsychologistEmail, seed.PsychologistUsername, seed.PsychologistPassword, model.RolePsychologist},
	}

	for _, st := range staff {
		st.email = strings.ToLower(strings.TrimSpace(st.email))
		st.username = strings.TrimSpace(st.username)
		exists, err := s.userRepo.ExistsByEmailOrUsername(ctx, st.email, st.username, 0)
		if err != nil {
			return apperror.Internal(err, "failed to check %s account", st.role)
		}
		if exists {
			log.Warn().Str("role", string(st.role)).Str("email", st.email).Msg("SeedStaff: Account already exists")
			continue
		}
		if len(st.password) < MinPasswordLength {
			return apperror.Validation("password for %s account must be at least %d characters", st.role, MinPasswordLength)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(st.password), bcrypt.DefaultCost)
		if err != nil {
			return apperror.Internal(err, "failed to hash password")
		}
		user := model.User{
			Email:    st.email,
			Username: st.username,
			Password: string(hash),
			Role:     st.role,
			IsActive: true,
		}
		if err := s.userRepo.Create(ctx, &user); err != nil {
			return apperror.Internal(err, "failed to create %s account", st.role)
		}
		log.Info().Str("role", string(st.role)).Str("email", st.email).Msg("SeedStaff: Account created")
	}
	return nil
}
