package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ecosnap_server/logger"
	"ecosnap_server/models"
	"ecosnap_server/store"
)

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// AuthService handles signup and login.
type AuthService struct {
	Store  store.Table
	Tokens *TokenService
	Cost   int

	log   *logger.Logger
	now   func() time.Time
	newID func() string
}

func NewAuthService(table store.Table, tokens *TokenService, cost int, log *logger.Logger) *AuthService {
	return &AuthService{
		Store:  table,
		Tokens: tokens,
		Cost:   cost,
		log:    log.With("service", "auth"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Signup creates a user and returns its id. The user record and a username
// guard record are written in one transaction, both conditioned on not yet
// existing, so two concurrent signups for one name cannot both succeed.
func (s *AuthService) Signup(ctx context.Context, username, password string) (string, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return "", invalid("", "Username and password are required.")
	}

	taken, err := s.usernameExists(ctx, username)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", invalid("password", "Password must be at most 72 bytes.")
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	userID := s.newID()
	userItem, err := models.ToItem(models.NewUser(userID, username, string(hash), models.FormatTimestamp(s.now())))
	if err != nil {
		return "", err
	}
	guardItem, err := models.ToItem(models.NewUsernameGuard(username, userID))
	if err != nil {
		return "", err
	}

	err = s.Store.TransactWrite(ctx, []store.Op{
		{Put: &store.Put{Item: userItem, Condition: store.ConditionNotExists}},
		{Put: &store.Put{Item: guardItem, Condition: store.ConditionNotExists}},
	})
	var canceled *store.TransactionCanceledError
	if errors.As(err, &canceled) {
		if canceled.FailedAt(1) || !canceled.Known() {
			return "", ErrUsernameTaken
		}
		return "", fmt.Errorf("user id %s collided: %w", userID, err)
	}
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	s.log.Info("✅ User created", "userId", userID, "username", username)
	return userID, nil
}

// Login verifies the password and issues a session token. An unknown user
// and a wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return LoginResult{}, invalid("", "Username and password are required.")
	}

	items, err := s.queryUsername(ctx, username)
	if err != nil {
		return LoginResult{}, err
	}
	if len(items) == 0 {
		return LoginResult{}, ErrInvalidCredentials
	}

	var user models.User
	if err := models.FromItem(items[0], &user); err != nil {
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Debug("Login rejected", "username", username)
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(user.UserID, user.Username)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, UserID: user.UserID, Username: user.Username}, nil
}

func (s *AuthService) queryUsername(ctx context.Context, username string) ([]store.Item, error) {
	idx := models.UsernameIndexKey(username)
	items, err := s.Store.Query(ctx, store.QueryInput{
		PK:          idx.PK,
		SKPrefix:    idx.SK,
		Index:       store.IndexGSI1,
		ScanForward: true,
		Limit:       1,
	})
	if err != nil {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	return items, nil
}

// usernameExists checks the index and the guard record. Accounts created
// before guard records existed are only visible through the index.
func (s *AuthService) usernameExists(ctx context.Context, username string) (bool, error) {
	items, err := s.queryUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if len(items) > 0 {
		return true, nil
	}
	_, err = s.Store.GetItem(ctx, models.UsernameGuardKey(username))
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup username guard: %w", err)
	}
	return true, nil
}
