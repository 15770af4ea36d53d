package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"taskhub/internal/domain/user"
	"taskhub/internal/store/repositories"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// WelcomeJobType is the queue job enqueued after a successful registration.
const WelcomeJobType = "user.welcome"

// WelcomePayload is the welcome job's JSON payload.
type WelcomePayload struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// Service handles registration and login. Credential hashing and token
// signing are delegated to bcrypt and golang-jwt.
type Service struct {
	users      repositories.UserRepository
	jobs       repositories.JobRepository
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
}

func NewService(users repositories.UserRepository, jobs repositories.JobRepository, secret []byte, tokenTTL time.Duration, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{users: users, jobs: jobs, secret: secret, tokenTTL: tokenTTL, bcryptCost: bcryptCost}
}

// Register creates an account and enqueues the welcome job. The job enqueue
// is best effort; a queue hiccup must not lose the registration.
func (s *Service) Register(ctx context.Context, email, username, password string) (*user.User, error) {
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", user.ErrInvalid)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := user.New(email, username, string(hash), user.RoleMember)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, u); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	payload, _ := json.Marshal(WelcomePayload{UserID: u.ID, Email: u.Email})
	if err := s.jobs.Enqueue(ctx, WelcomeJobType, payload, time.Now()); err != nil {
		log.Warn().Err(err).Int64("user_id", u.ID).Msg("auth: welcome job enqueue failed")
	}

	return u, nil
}

// Login verifies the password and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := IssueToken(s.secret, s.tokenTTL, u)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, u, nil
}
