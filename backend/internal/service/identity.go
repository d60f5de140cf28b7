package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deskfolio/deskfolio/backend/internal/utils"
	"github.com/deskfolio/deskfolio/shared/config"
	"github.com/deskfolio/deskfolio/shared/domain"
	internal_errors "github.com/deskfolio/deskfolio/shared/errors"
	"github.com/deskfolio/deskfolio/shared/logger"
	"golang.org/x/crypto/bcrypt"
)

// IssuedSession is a provider session: the signed token and what it encodes.
type IssuedSession struct {
	Token   string
	Session domain.Session
}

// IdentityProvider verifies credentials and owns the sessions it hands out.
type IdentityProvider interface {
	SignIn(ctx context.Context, creds domain.Credentials) (IssuedSession, error)
	SignOut(ctx context.Context, session domain.Session) error
	SendPasswordReset(ctx context.Context, email domain.Email) error
	ConfirmPasswordReset(ctx context.Context, email domain.Email, code, newPassword string) error
}

type IdentityStorage interface {
	SaveUser(ctx context.Context, user domain.User) (domain.UserId, error)
	User(ctx context.Context, email domain.Email) (domain.User, error)
	UpdatePassword(ctx context.Context, email domain.Email, passHash string) error
	SaveResetData(ctx context.Context, data domain.ResetData) error
	ResetData(ctx context.Context, email domain.Email) (domain.ResetData, error)
	DeleteResetData(ctx context.Context, email domain.Email) error
}

type Email interface {
	Send(recipientEmail, subject, body string) error
	IsCorrect(email domain.Email) error
}

type Jwt interface {
	NewToken(identity domain.Identity) (string, error)
	DecodeToken(jwtStr string) (domain.Session, error)
}

// LocalIdentityProvider keeps admin accounts in the users table and issues
// JWT sessions that are signed out through Revocations.
type LocalIdentityProvider struct {
	storage     IdentityStorage
	email       Email
	jwt         Jwt
	revocations Revocations
	cfg         *config.Public
	now         func() time.Time
}

func NewLocalIdentityProvider(storage IdentityStorage, email Email, jwt Jwt, revocations Revocations, cfg *config.Public) *LocalIdentityProvider {
	return &LocalIdentityProvider{
		storage:     storage,
		email:       email,
		jwt:         jwt,
		revocations: revocations,
		cfg:         cfg,
		now:         time.Now,
	}
}

// CreateUser registers an account with a bcrypt-hashed password.
func (p *LocalIdentityProvider) CreateUser(ctx context.Context, creds domain.Credentials) (domain.UserId, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if err := p.email.IsCorrect(email); err != nil {
		return -1, err
	}
	passHash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return -1, fmt.Errorf("failed to hash password: %w", err)
	}
	return p.storage.SaveUser(ctx, domain.User{Email: email, PassHash: string(passHash)})
}

// SignIn checks the password and issues a session. Unknown emails and wrong
// passwords yield the same InvalidCredentials error.
func (p *LocalIdentityProvider) SignIn(ctx context.Context, creds domain.Credentials) (IssuedSession, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if err := p.email.IsCorrect(email); err != nil {
		return IssuedSession{}, err
	}

	user, err := p.storage.User(ctx, email)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return IssuedSession{}, internal_errors.InvalidCredentials()
		}
		return IssuedSession{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(creds.Password)); err != nil {
		logger.Component("identity").Info("password verification failed", "user_id", user.Id)
		return IssuedSession{}, internal_errors.InvalidCredentials()
	}

	token, err := p.jwt.NewToken(domain.Identity{Id: user.Id, Email: user.Email})
	if err != nil {
		return IssuedSession{}, err
	}
	session, err := p.jwt.DecodeToken(token)
	if err != nil {
		return IssuedSession{}, fmt.Errorf("failed to read back issued token: %w", err)
	}
	return IssuedSession{Token: token, Session: session}, nil
}

// SignOut revokes the session until its token would expire.
func (p *LocalIdentityProvider) SignOut(ctx context.Context, session domain.Session) error {
	return p.revocations.Revoke(context.WithoutCancel(ctx), session.TokenId, session.ExpiresAt)
}

// SendPasswordReset mails a confirmation code to a registered address.
// The caller sees the same result whether or not the address is registered,
// even when mail delivery fails.
func (p *LocalIdentityProvider) SendPasswordReset(ctx context.Context, email domain.Email) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := p.email.IsCorrect(email); err != nil {
		return err
	}
	log := logger.Component("identity")

	if _, err := p.storage.User(ctx, email); err != nil {
		if internal_errors.IsNotFound(err) {
			log.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	pending, err := p.storage.ResetData(ctx, email)
	if err != nil && !internal_errors.IsNotFound(err) {
		return err
	}
	if err == nil && pending.Expires.After(p.now()) {
		log.Info("password reset already pending", "expires", pending.Expires)
		return nil
	}

	code := utils.GenerateConfirmationCode(p.cfg.ConfirmationCodeLen)
	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash confirmation code: %w", err)
	}
	ttl := p.cfg.PasswordResetTTL
	err = p.storage.SaveResetData(ctx, domain.ResetData{
		Email:    email,
		CodeHash: string(codeHash),
		Expires:  p.now().UTC().Add(ttl),
	})
	if err != nil {
		return err
	}

	body := fmt.Sprintf(`
		Hello,

		Use the code below to reset your admin password. It expires in %s.

		%s

		If you did not request this, please ignore this email.
	`, ttl, code)
	if err := p.email.Send(email, "Reset your admin password", body); err != nil {
		log.Error("failed to send password reset email", "error", err)
	}
	return nil
}

// ConfirmPasswordReset sets a new password if code matches the pending reset.
func (p *LocalIdentityProvider) ConfirmPasswordReset(ctx context.Context, email domain.Email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	invalid := internal_errors.Validation("Invalid or expired confirmation code")

	data, err := p.storage.ResetData(ctx, email)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return invalid
		}
		return err
	}
	if !data.Expires.After(p.now()) {
		if err := p.storage.DeleteResetData(ctx, email); err != nil && !internal_errors.IsNotFound(err) {
			return err
		}
		return invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(data.CodeHash), []byte(code)); err != nil {
		return invalid
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return p.storage.UpdatePassword(context.WithoutCancel(ctx), email, string(passHash))
}
