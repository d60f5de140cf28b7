package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deskfolio/deskfolio/backend/internal/service"
	"github.com/deskfolio/deskfolio/shared/config"
	"github.com/deskfolio/deskfolio/shared/domain"
	"github.com/deskfolio/deskfolio/shared/middleware"
)

// --- Mocks ---

type MockSubmissionService struct {
	MockSubmit       func(ctx context.Context, name, message string) (domain.SubmitResult, error)
	MockListAll      func(ctx context.Context) ([]domain.Submission, error)
	MockListFallback func(ctx context.Context) ([]domain.Submission, error)
	MockDelete       func(ctx context.Context, id domain.SubmissionId) error
	MockExport       func(submissions []domain.Submission, w io.Writer) error
}

func (m *MockSubmissionService) Submit(ctx context.Context, name, message string) (domain.SubmitResult, error) {
	if m.MockSubmit != nil {
		return m.MockSubmit(ctx, name, message)
	}
	return domain.SubmitResult{Outcome: domain.RemoteSuccess, Id: "1"}, nil
}

func (m *MockSubmissionService) ListAll(ctx context.Context) ([]domain.Submission, error) {
	if m.MockListAll != nil {
		return m.MockListAll(ctx)
	}
	return []domain.Submission{}, nil
}

func (m *MockSubmissionService) ListFallback(ctx context.Context) ([]domain.Submission, error) {
	if m.MockListFallback != nil {
		return m.MockListFallback(ctx)
	}
	return []domain.Submission{}, nil
}

func (m *MockSubmissionService) Delete(ctx context.Context, id domain.SubmissionId) error {
	if m.MockDelete != nil {
		return m.MockDelete(ctx, id)
	}
	return nil
}

func (m *MockSubmissionService) Export(submissions []domain.Submission, w io.Writer) error {
	if m.MockExport != nil {
		return m.MockExport(submissions, w)
	}
	_, err := w.Write([]byte("xlsx"))
	return err
}

type MockAuthService struct {
	MockSignIn               func(ctx context.Context, creds domain.Credentials) (service.SignInResult, error)
	MockSignOut              func(ctx context.Context, session domain.Session) error
	MockMe                   func(session domain.Session) (domain.SessionState, bool)
	MockResetPassword        func(ctx context.Context, email domain.Email) error
	MockConfirmPasswordReset func(ctx context.Context, email domain.Email, code, newPassword string) error
}

func (m *MockAuthService) SignIn(ctx context.Context, creds domain.Credentials) (service.SignInResult, error) {
	if m.MockSignIn != nil {
		return m.MockSignIn(ctx, creds)
	}
	return service.SignInResult{State: domain.Authorized, Token: "token"}, nil
}

func (m *MockAuthService) SignOut(ctx context.Context, session domain.Session) error {
	if m.MockSignOut != nil {
		return m.MockSignOut(ctx, session)
	}
	return nil
}

func (m *MockAuthService) Me(session domain.Session) (domain.SessionState, bool) {
	if m.MockMe != nil {
		return m.MockMe(session)
	}
	return domain.Authorized, true
}

func (m *MockAuthService) ResetPassword(ctx context.Context, email domain.Email) error {
	if m.MockResetPassword != nil {
		return m.MockResetPassword(ctx, email)
	}
	return nil
}

func (m *MockAuthService) ConfirmPasswordReset(ctx context.Context, email domain.Email, code, newPassword string) error {
	if m.MockConfirmPasswordReset != nil {
		return m.MockConfirmPasswordReset(ctx, email, code, newPassword)
	}
	return nil
}

func (m *MockAuthService) Subscribe(fn func(domain.SessionEvent)) func() {
	return func() {}
}

// --- Helpers ---

func testConfig() *config.Config {
	return &config.Config{Public: config.Public{JwtTTL: time.Hour, SecureCookies: true}}
}

func createRequest(t *testing.T, method, url string, body []byte, cookies ...*http.Cookie) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewBuffer(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func withSession(r *http.Request, session domain.Session) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.SessionKey, &session)
	return r.WithContext(ctx)
}
