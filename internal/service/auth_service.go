package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/mail"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

const (
	// MinPasswordLength is the shortest accepted account password.
	MinPasswordLength = 8
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)

// Claims is the session carried in a signed token.
type Claims struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Name   string      `json:"name"`
	Role   entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// HasRole reports whether the session role is one of roles.
func (c *Claims) HasRole(roles ...entity.Role) bool {
	if c == nil {
		return false
	}
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// RegisterInput is a customer sign-up request.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Account is a signed-in user's own profile.
type Account struct {
	User   *entity.User   `json:"user"`
	Orders []entity.Order `json:"orders"`
}

// CustomerDetail is the back-office view of one customer.
type CustomerDetail struct {
	Customer     *entity.User              `json:"customer"`
	Transactions []entity.PointTransaction `json:"pointTransactions"`
	Orders       []entity.Order            `json:"orders"`
}

// AuthService handles accounts, sessions and the customer directory.
type AuthService struct {
	users     repository.UserRepository
	orders    repository.OrderRepository
	mailer    mail.Mailer
	log       *zap.Logger
	secret    []byte
	ttl       time.Duration
	publicURL string
	now       func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	orders repository.OrderRepository,
	mailer mail.Mailer,
	log *zap.Logger,
	secret string,
	ttl time.Duration,
	publicURL string,
) *AuthService {
	return &AuthService{
		users:     users,
		orders:    orders,
		mailer:    mailer,
		log:       log,
		secret:    []byte(secret),
		ttl:       ttl,
		publicURL: publicURL,
		now:       time.Now,
	}
}

func checkPasswordSize(password string) error {
	if len(password) > MaxPasswordBytes {
		return invalid("Password must be at most %d bytes", MaxPasswordBytes)
	}
	return nil
}

// HashPassword bcrypt-hashes a plain password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Register creates a CUSTOMER with a rewards account holding the signup bonus.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	if email == "" || in.Password == "" || name == "" {
		return nil, invalid("Missing required fields")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, invalid("Password must be at least %d characters", MinPasswordLength)
	}
	if err := checkPasswordSize(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, conflict("User with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		Email:    email,
		Name:     name,
		Password: hash,
		Role:     entity.RoleCustomer,
		Reward: &entity.CustomerReward{
			Points: entity.SignupBonusPoints,
			Transactions: []entity.PointTransaction{{
				Points:      entity.SignupBonusPoints,
				Type:        entity.PointsSignup,
				Description: "Welcome bonus for creating your account!",
			}},
		},
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, orConflict(err, "User with this email already exists")
	}

	s.log.Info("Customer registered", zap.String("user_id", u.ID))
	s.sendWelcome(ctx, u)
	return u, nil
}

func (s *AuthService) sendWelcome(ctx context.Context, u *entity.User) {
	msg, err := mail.WelcomeMessage(u.Email, mail.Welcome{
		Name:   u.Name,
		Points: entity.SignupBonusPoints,
	})
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		s.log.Error("Failed to send welcome email", zap.String("user_id", u.ID), zap.Error(err))
	}
}

// Login checks credentials and issues a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *Claims, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrUnauthorized
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, ErrUnauthorized
	}
	return s.IssueToken(u)
}

// IssueToken signs an HS256 token for u.
func (s *AuthService) IssueToken(u *entity.User) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// ParseToken verifies a session token.
func (s *AuthService) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthorized
	}
	if !claims.Role.Valid() {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// TokenTTL is how long issued tokens stay valid.
func (s *AuthService) TokenTTL() time.Duration { return s.ttl }

// Account returns the signed-in user's profile, rewards and orders.
func (s *AuthService) Account(ctx context.Context, userID string) (*Account, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, orNotFound(err, "Account not found")
	}
	orders, _, err := s.orders.List(ctx, repository.OrderFilter{UserID: userID, Page: repository.Page{Limit: 50}})
	if err != nil {
		return nil, err
	}
	return &Account{User: u, Orders: orders}, nil
}

// ListCustomers pages through CUSTOMER accounts.
func (s *AuthService) ListCustomers(ctx context.Context, query string, page repository.Page) ([]entity.User, int64, error) {
	return s.users.List(ctx, repository.UserFilter{
		Page:  page,
		Roles: []entity.Role{entity.RoleCustomer},
		Query: query,
	})
}

// Customer returns one customer with points history and orders.
func (s *AuthService) Customer(ctx context.Context, id string) (*CustomerDetail, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Customer not found")
	}
	if u.Role != entity.RoleCustomer {
		return nil, notFound("Customer not found")
	}
	txns, err := s.users.PointHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	orders, _, err := s.orders.List(ctx, repository.OrderFilter{UserID: id})
	if err != nil {
		return nil, err
	}
	return &CustomerDetail{Customer: u, Transactions: txns, Orders: orders}, nil
}
