package identity

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aroundu/app/internal/storage"
)

// localAccount is a dev-mode identity record persisted to disk.
type localAccount struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Verified     bool   `json:"verified"`
}

// LocalProvider is an in-process identity provider for offline
// development: bcrypt-hashed credentials in a JSON store, JWT session
// tokens. It implements the same Provider surface as the Firebase client.
type LocalProvider struct {
	mu        sync.RWMutex
	accounts  map[string]*localAccount // email -> account
	store     *storage.JSONStore
	jwtSecret string
	jwtTTL    time.Duration
	session   *Session
}

func NewLocalProvider(dataDir, jwtSecret string, jwtTTL time.Duration) (*LocalProvider, error) {
	store, err := storage.NewJSONStore(dataDir, "identity.json")
	if err != nil {
		return nil, err
	}

	accounts := make(map[string]*localAccount)
	if err := store.Load(&accounts); err != nil {
		return nil, err
	}

	return &LocalProvider{
		accounts:  accounts,
		store:     store,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}, nil
}

// Register creates a dev account. Not part of the Provider interface;
// real deployments create accounts through the hosted provider.
func (p *LocalProvider) Register(email, password string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[email]; exists {
		return ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	p.accounts[email] = &localAccount{
		UID:          uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
	}
	return p.store.Save(p.accounts)
}

func (p *LocalProvider) SignInWithPassword(_ context.Context, email, password string) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, exists := p.accounts[email]
	if !exists {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := p.generateToken(acct.UID, acct.Email)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		UID:     acct.UID,
		Email:   acct.Email,
		IDToken: token,
	}
	p.session = sess

	cp := *sess
	return &cp, nil
}

func (p *LocalProvider) Reauthenticate(_ context.Context, email, password string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.session == nil {
		return ErrNotSignedIn
	}
	acct, exists := p.accounts[email]
	if !exists {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (p *LocalProvider) UpdateEmail(_ context.Context, newEmail, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return ErrNotSignedIn
	}
	if _, exists := p.accounts[newEmail]; exists {
		return ErrEmailExists
	}

	acct, exists := p.accounts[p.session.Email]
	if !exists {
		return ErrNotSignedIn
	}

	delete(p.accounts, acct.Email)
	acct.Email = newEmail
	acct.Verified = false
	p.accounts[newEmail] = acct
	p.session.Email = newEmail

	return p.store.Save(p.accounts)
}

func (p *LocalProvider) UpdatePassword(_ context.Context, newPassword string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return ErrNotSignedIn
	}
	acct, exists := p.accounts[p.session.Email]
	if !exists {
		return ErrNotSignedIn
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	acct.PasswordHash = string(hash)

	return p.store.Save(p.accounts)
}

// SendEmailVerification only logs in dev mode; there is no mail transport.
func (p *LocalProvider) SendEmailVerification(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return ErrNotSignedIn
	}
	if acct, exists := p.accounts[p.session.Email]; exists {
		acct.Verified = true
		_ = p.store.Save(p.accounts)
	}
	log.Printf("[identity] dev verification mail for %s (auto-verified)", p.session.Email)
	return nil
}

// SendPasswordReset only logs in dev mode. Unknown addresses report
// invalid credentials, matching the hosted provider's EMAIL_NOT_FOUND.
func (p *LocalProvider) SendPasswordReset(_ context.Context, email string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if _, exists := p.accounts[email]; !exists {
		return ErrInvalidCredentials
	}
	log.Printf("[identity] dev password reset mail for %s", email)
	return nil
}

func (p *LocalProvider) CurrentSession() *Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.session == nil {
		return nil
	}
	cp := *p.session
	return &cp
}

func (p *LocalProvider) SignOut() {
	p.mu.Lock()
	p.session = nil
	p.mu.Unlock()
}

func (p *LocalProvider) generateToken(uid, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": uid,
		"email":   email,
		"exp":     time.Now().Add(p.jwtTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(p.jwtSecret))
}
