package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
	"github.com/dmitrijs2005/fieldkeeper/internal/common"
	"github.com/dmitrijs2005/fieldkeeper/internal/logging"
)

type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (models.Identity, error)
}

type TokenIssuer interface {
	Issue(id models.Identity) (string, error)
	Parse(token string) (models.Identity, error)
}

// AuthService keeps the login session of the current CLI user. The session
// is the issued token; every check re-validates it, so an expired session
// ends by itself.
type AuthService struct {
	dir    Authenticator
	tokens TokenIssuer
	log    logging.Logger

	mu    sync.Mutex
	token string
}

func NewAuthService(dir Authenticator, tokens TokenIssuer, log logging.Logger) *AuthService {
	return &AuthService{dir: dir, tokens: tokens, log: log}
}

func (a *AuthService) Login(ctx context.Context, username, password string) (models.Identity, error) {
	id, err := a.dir.Authenticate(ctx, username, password)
	if err != nil {
		a.log.Warn(ctx, "login failed", "username", username)
		return models.Identity{}, err
	}

	token, err := a.tokens.Issue(id)
	if err != nil {
		return models.Identity{}, fmt.Errorf("issue token: %w", err)
	}

	a.mu.Lock()
	a.token = token
	a.mu.Unlock()

	a.log.Info(ctx, "logged in", "user_id", id.ID, "role", id.Role)
	return id, nil
}

func (a *AuthService) Logout() {
	a.mu.Lock()
	a.token = ""
	a.mu.Unlock()
}

// Current returns the logged-in identity. An expired or invalid token ends
// the session.
func (a *AuthService) Current() (models.Identity, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token == "" {
		return models.Identity{}, false
	}
	id, err := a.tokens.Parse(a.token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			a.log.Info(context.Background(), "session expired", "error", err)
		}
		a.token = ""
		return models.Identity{}, false
	}
	return id, true
}

func (a *AuthService) Authenticated() bool {
	_, ok := a.Current()
	return ok
}

// Token returns the raw session token, "" when logged out.
func (a *AuthService) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}
