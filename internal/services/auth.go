package services

import (
	"context"
	"errors"
	"time"

	"parkxcel/internal/logging"
	"parkxcel/internal/middleware"
	"parkxcel/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/crypto/bcrypt"
)

var (
	tracer              = otel.Tracer("parkxcel")
	meter               = otel.Meter("parkxcel")
	registrationCounter metric.Int64Counter
	loginCounter        metric.Int64Counter
)

// UserStore is the storage contract for accounts and roles.
type UserStore interface {
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByName(ctx context.Context, name string) (*models.User, error)
	FindUserByEmailOrName(ctx context.Context, identifier string) (*models.User, error)
	EnsureRole(ctx context.Context, name, description string) (*models.Role, error)
	CreateUser(ctx context.Context, user *models.User) error
}

type AuthService struct {
	store        UserStore
	jwtSecret    string
	jwtExpiresIn time.Duration
}

func NewAuthService(store UserStore, jwtSecret string, jwtExpiresIn time.Duration) *AuthService {
	var err error
	registrationCounter, err = meter.Int64Counter(
		"auth.registration.total",
		metric.WithDescription("Total number of user registrations"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create registration counter")
	}

	loginCounter, err = meter.Int64Counter(
		"auth.login.attempts",
		metric.WithDescription("Total number of login attempts"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create login counter")
	}

	return &AuthService{
		store:        store,
		jwtSecret:    jwtSecret,
		jwtExpiresIn: jwtExpiresIn,
	}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	// Username matches either the account name or the email address.
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  models.UserResponse `json:"user"`
	Token string              `json:"token"`
}

// Register creates an account with the regular user role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	ctx, span := tracer.Start(ctx, "auth.register")
	defer span.End()

	span.SetAttributes(attribute.String("user.email", input.Email))

	if _, err := s.store.FindUserByName(ctx, input.Username); err == nil {
		return nil, ErrNameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	if _, err := s.store.FindUserByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	userRole, err := s.store.EnsureRole(ctx, models.RoleUser, "Regular user role")
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Active:       true,
		Roles:        []models.Role{*userRole},
	}

	if err := s.store.CreateUser(ctx, &user); err != nil {
		return nil, err
	}

	if registrationCounter != nil {
		registrationCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.Bool("success", true),
		))
	}

	token, err := s.generateToken(&user)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("user.id", int64(user.ID)),
		attribute.Bool("registration.success", true),
	)

	logging.Info(ctx).
		Uint("user_id", user.ID).
		Str("email", user.Email).
		Msg("user registered successfully")

	return &AuthResponse{
		User:  user.ToResponse(),
		Token: token,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	ctx, span := tracer.Start(ctx, "auth.login")
	defer span.End()

	if loginCounter != nil {
		loginCounter.Add(ctx, 1)
	}

	user, err := s.store.FindUserByEmailOrName(ctx, input.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			span.SetAttributes(attribute.Bool("login.success", false))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		span.SetAttributes(attribute.Bool("login.success", false))
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("user.id", int64(user.ID)),
		attribute.Bool("login.success", true),
	)

	logging.Info(ctx).
		Uint("user_id", user.ID).
		Str("email", user.Email).
		Msg("user logged in successfully")

	return &AuthResponse{
		User:  user.ToResponse(),
		Token: token,
	}, nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := middleware.JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  user.RoleNames(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.jwtExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
