package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobtrack-ai/jobtrack-api/internal/model"
	"github.com/jobtrack-ai/jobtrack-api/internal/repository"
)

// UserStore is the credential store the auth service needs
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, username, email, passwordHash string, verificationToken *string) (*model.User, error)
	VerifyByToken(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type AuthOptions struct {
	// RequireEmailVerification makes new accounts unverified until the
	// emailed token is redeemed, and blocks login until then.
	RequireEmailVerification bool
	AppBaseURL               string
}

type AuthService struct {
	users  UserStore
	tokens *TokenManager
	mailer Mailer
	opts   AuthOptions
}

func NewAuthService(users UserStore, tokens *TokenManager, mailer Mailer, opts AuthOptions) *AuthService {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &AuthService{users: users, tokens: tokens, mailer: mailer, opts: opts}
}

// Registration is the outcome of Register. Token is only set when the
// account is usable immediately.
type Registration struct {
	User  *model.User
	Token string
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*Registration, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	existing, err = s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	var verificationToken *string
	if s.opts.RequireEmailVerification {
		token, err := newVerificationToken()
		if err != nil {
			return nil, err
		}
		verificationToken = &token
	}

	user, err := s.users.Create(ctx, username, email, string(hash), verificationToken)
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		return nil, ErrUsernameTaken
	case errors.Is(err, repository.ErrDuplicateEmail):
		return nil, ErrEmailTaken
	case err != nil:
		return nil, err
	}

	if verificationToken != nil {
		link := strings.TrimRight(s.opts.AppBaseURL, "/") + "/verify-email?token=" + url.QueryEscape(*verificationToken)
		if err := s.mailer.SendVerification(ctx, user.Email, link); err != nil {
			log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to send verification email")
		}
		return &Registration{User: user}, nil
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Registration{User: user, Token: token}, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidVerificationToken
	}
	ok, err := s.users.VerifyByToken(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidVerificationToken
	}
	return nil
}

// Login checks credentials and issues a bearer token. Unknown users and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if s.opts.RequireEmailVerification && !user.IsVerified {
		return "", nil, ErrEmailNotVerified
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	return nil
}

func newVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating verification token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
