package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/deskfolio/deskfolio/shared/domain"
	internal_errors "github.com/deskfolio/deskfolio/shared/errors"
	"github.com/deskfolio/deskfolio/shared/logger"
)

const AccessDeniedMessage = "Access denied. You are not authorized to access the admin panel."

type AuthService interface {
	SignIn(ctx context.Context, creds domain.Credentials) (SignInResult, error)
	SignOut(ctx context.Context, session domain.Session) error
	Me(session domain.Session) (domain.SessionState, bool)
	ResetPassword(ctx context.Context, email domain.Email) error
	ConfirmPasswordReset(ctx context.Context, email domain.Email, code, newPassword string) error
	Subscribe(fn func(domain.SessionEvent)) (unsubscribe func())
}

type Authorizer interface {
	Authorize(identity domain.Identity) bool
}

// SignInResult is the final state of one sign-in attempt. Token is set only
// when State is Authorized.
type SignInResult struct {
	State   domain.SessionState
	Token   string
	Session domain.Session
}

// Auth drives the admin session state machine on top of an identity provider
// and the allow-list.
type Auth struct {
	provider IdentityProvider
	gate     Authorizer

	mu        sync.RWMutex
	nextSub   int
	listeners map[int]func(domain.SessionEvent)
}

func NewAuth(provider IdentityProvider, gate Authorizer) *Auth {
	return &Auth{
		provider:  provider,
		gate:      gate,
		listeners: make(map[int]func(domain.SessionEvent)),
	}
}

// Subscribe registers fn for every session transition.
func (a *Auth) Subscribe(fn func(domain.SessionEvent)) func() {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.listeners[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

func (a *Auth) transition(email domain.Email, from, to domain.SessionState) domain.SessionState {
	if !domain.CanTransition(from, to) {
		logger.Component("auth").Error("illegal session transition", "from", from, "to", to)
		return from
	}
	ev := domain.SessionEvent{Email: email, From: from, To: to}

	a.mu.RLock()
	fns := make([]func(domain.SessionEvent), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
	return to
}

// SignIn verifies credentials with the provider and then consults the
// allow-list. A verified identity that is not allowed has its provider
// session signed out before Unauthorized is returned, so no usable token
// ever leaves this method for it.
func (a *Auth) SignIn(ctx context.Context, creds domain.Credentials) (SignInResult, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	state := a.transition(email, domain.SignedOut, domain.Authenticating)

	issued, err := a.provider.SignIn(ctx, creds)
	if err != nil {
		state = a.transition(email, state, domain.SessionError)
		return SignInResult{State: state}, err
	}

	if !a.gate.Authorize(issued.Session.Identity) {
		state = a.transition(email, state, domain.Denied)
		if err := a.provider.SignOut(ctx, issued.Session); err != nil {
			logger.Component("auth").Error("failed to sign out denied session", "error", err)
		}
		state = a.transition(email, state, domain.SignedOut)
		return SignInResult{State: state}, internal_errors.Unauthorized(AccessDeniedMessage)
	}

	state = a.transition(email, state, domain.Authorized)
	return SignInResult{State: state, Token: issued.Token, Session: issued.Session}, nil
}

func (a *Auth) SignOut(ctx context.Context, session domain.Session) error {
	if err := a.provider.SignOut(ctx, session); err != nil {
		return err
	}
	a.transition(session.Email, domain.Authorized, domain.SignedOut)
	return nil
}

// Me reports the state of a valid session and whether it may use the admin surface.
func (a *Auth) Me(session domain.Session) (domain.SessionState, bool) {
	if a.gate.Authorize(session.Identity) {
		return domain.Authorized, true
	}
	return domain.Denied, false
}

func (a *Auth) ResetPassword(ctx context.Context, email domain.Email) error {
	err := a.provider.SendPasswordReset(ctx, email)
	if err != nil && !errors.Is(err, internal_errors.ErrValidation) {
		logger.Component("auth").Error("password reset failed", "error", err)
	}
	return err
}

func (a *Auth) ConfirmPasswordReset(ctx context.Context, email domain.Email, code, newPassword string) error {
	return a.provider.ConfirmPasswordReset(ctx, email, code, newPassword)
}
