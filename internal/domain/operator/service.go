package operator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// MinPasswordLength is the lower bound on operator passwords.
const MinPasswordLength = 6

// DefaultTokenTTL applies when TokenConfig leaves the TTL unset.
const DefaultTokenTTL = 12 * time.Hour

var (
	ErrExists             = errors.New("operator already exists")
	ErrWeakPassword       = errors.New("password too weak")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TokenConfig controls the signed tokens Authenticate issues.
type TokenConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Service manages operator accounts and login sessions.
type Service struct {
	operators Repository
	tokens    TokenConfig
}

func NewService(operators Repository, tokens TokenConfig) *Service {
	if tokens.TTL <= 0 {
		tokens.TTL = DefaultTokenTTL
	}
	return &Service{operators: operators, tokens: tokens}
}

// RegisterRequest is the account-creation payload.
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// Register creates an operator account with a bcrypt-hashed password. The
// first account on an otherwise empty desk becomes the admin; every later
// registration gets the operator role.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Operator, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(req.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrWeakPassword, MinPasswordLength)
	}

	_, err := s.operators.Get(ctx, username)
	switch {
	case err == nil:
		return nil, fmt.Errorf("operator %s: %w", username, ErrExists)
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	existing, err := s.operators.List(ctx)
	if err != nil {
		return nil, err
	}
	role := RoleOperator
	if len(existing) == 0 {
		role = RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	op := &Operator{
		ID:           uuid.New().String(),
		Username:     username,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.operators.Put(ctx, op); err != nil {
		return nil, err
	}

	out := *op
	out.PasswordHash = ""
	return &out, nil
}

// Session is a successful login: the signed token plus the account it
// belongs to.
type Session struct {
	Token     string    `json:"token"`
	Operator  *Operator `json:"operator"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Authenticate verifies the credentials and issues a signed HS256 token
// carrying the operator's identity and role. Unknown usernames and wrong
// passwords both come back as ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	op, err := s.operators.Get(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(s.tokens.TTL)
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   op.ID,
			Issuer:    s.tokens.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: op.Username,
		Roles:    []string{op.Role},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.tokens.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	out := *op
	out.PasswordHash = ""
	return &Session{Token: signed, Operator: &out, ExpiresAt: expiresAt}, nil
}

// List returns every account, hashes cleared.
func (s *Service) List(ctx context.Context) ([]Operator, error) {
	ops, err := s.operators.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range ops {
		ops[i].PasswordHash = ""
	}
	return ops, nil
}
