package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/deskfolio/deskfolio/shared/domain"
	internal_errors "github.com/deskfolio/deskfolio/shared/errors"
)

// --- Submission storage ---

type MockSubmissionStorage struct {
	CreateSubmissionFunc func(ctx context.Context, data domain.SubmissionData) (domain.SubmissionId, error)
	ListSubmissionsFunc  func(ctx context.Context) ([]domain.Submission, error)
	DeleteSubmissionFunc func(ctx context.Context, id domain.SubmissionId) error
}

func (m *MockSubmissionStorage) CreateSubmission(ctx context.Context, data domain.SubmissionData) (domain.SubmissionId, error) {
	if m.CreateSubmissionFunc != nil {
		return m.CreateSubmissionFunc(ctx, data)
	}
	return "remote-1", nil
}

func (m *MockSubmissionStorage) ListSubmissions(ctx context.Context) ([]domain.Submission, error) {
	if m.ListSubmissionsFunc != nil {
		return m.ListSubmissionsFunc(ctx)
	}
	return []domain.Submission{}, nil
}

func (m *MockSubmissionStorage) DeleteSubmission(ctx context.Context, id domain.SubmissionId) error {
	if m.DeleteSubmissionFunc != nil {
		return m.DeleteSubmissionFunc(ctx, id)
	}
	return nil
}

// memoryRemote is an in-memory remote store ordered like the real one.
type memoryRemote struct {
	mu      sync.Mutex
	next    int
	records []domain.Submission
	fail    error
}

func (m *memoryRemote) CreateSubmission(ctx context.Context, data domain.SubmissionData) (domain.SubmissionId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	m.next++
	id := domain.SubmissionId(strings.Repeat("r", m.next))
	ts := data.CreatedAt.Add(time.Millisecond)
	m.records = append(m.records, domain.Submission{Id: id, Name: data.Name, Message: data.Message, CreatedAt: data.CreatedAt, Timestamp: &ts})
	return id, nil
}

func (m *memoryRemote) ListSubmissions(ctx context.Context) ([]domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := make([]domain.Submission, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *memoryRemote) DeleteSubmission(ctx context.Context, id domain.SubmissionId) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	for i, r := range m.records {
		if r.Id == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return internal_errors.NotFound("Submission not found")
}

// memoryFallback is an in-memory local slot.
type memoryFallback struct {
	mu      sync.Mutex
	records []domain.Submission
	fail    error
}

func (m *memoryFallback) Append(ctx context.Context, data domain.SubmissionData) (domain.SubmissionId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	id := domain.SubmissionId(strings.Repeat("l", len(m.records)+1))
	ts := data.CreatedAt
	m.records = append(m.records, domain.Submission{Id: id, Name: data.Name, Message: data.Message, CreatedAt: data.CreatedAt, Timestamp: &ts})
	return id, nil
}

func (m *memoryFallback) List(ctx context.Context) ([]domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return append([]domain.Submission{}, m.records...), nil
}

func (m *memoryFallback) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// --- Identity ---

type MockIdentityStorage struct {
	SaveUserFunc        func(ctx context.Context, user domain.User) (domain.UserId, error)
	UserFunc            func(ctx context.Context, email domain.Email) (domain.User, error)
	UpdatePasswordFunc  func(ctx context.Context, email domain.Email, passHash string) error
	SaveResetDataFunc   func(ctx context.Context, data domain.ResetData) error
	ResetDataFunc       func(ctx context.Context, email domain.Email) (domain.ResetData, error)
	DeleteResetDataFunc func(ctx context.Context, email domain.Email) error
}

func (m *MockIdentityStorage) SaveUser(ctx context.Context, user domain.User) (domain.UserId, error) {
	if m.SaveUserFunc != nil {
		return m.SaveUserFunc(ctx, user)
	}
	return 1, nil
}

func (m *MockIdentityStorage) User(ctx context.Context, email domain.Email) (domain.User, error) {
	if m.UserFunc != nil {
		return m.UserFunc(ctx, email)
	}
	return domain.User{}, internal_errors.NotFound("User not found")
}

func (m *MockIdentityStorage) UpdatePassword(ctx context.Context, email domain.Email, passHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, email, passHash)
	}
	return nil
}

func (m *MockIdentityStorage) SaveResetData(ctx context.Context, data domain.ResetData) error {
	if m.SaveResetDataFunc != nil {
		return m.SaveResetDataFunc(ctx, data)
	}
	return nil
}

func (m *MockIdentityStorage) ResetData(ctx context.Context, email domain.Email) (domain.ResetData, error) {
	if m.ResetDataFunc != nil {
		return m.ResetDataFunc(ctx, email)
	}
	return domain.ResetData{}, internal_errors.NotFound("Password reset not found")
}

func (m *MockIdentityStorage) DeleteResetData(ctx context.Context, email domain.Email) error {
	if m.DeleteResetDataFunc != nil {
		return m.DeleteResetDataFunc(ctx, email)
	}
	return nil
}

type MockEmail struct {
	SendFunc      func(recipientEmail, subject, body string) error
	IsCorrectFunc func(email domain.Email) error
}

func (m *MockEmail) Send(recipientEmail, subject, body string) error {
	if m.SendFunc != nil {
		return m.SendFunc(recipientEmail, subject, body)
	}
	return nil
}

func (m *MockEmail) IsCorrect(email domain.Email) error {
	if m.IsCorrectFunc != nil {
		return m.IsCorrectFunc(email)
	}
	if !strings.Contains(email, "@") {
		return internal_errors.Validation("Invalid email address")
	}
	return nil
}

type MockIdentityProvider struct {
	SignInFunc               func(ctx context.Context, creds domain.Credentials) (IssuedSession, error)
	SignOutFunc              func(ctx context.Context, session domain.Session) error
	SendPasswordResetFunc    func(ctx context.Context, email domain.Email) error
	ConfirmPasswordResetFunc func(ctx context.Context, email domain.Email, code, newPassword string) error

	signedOut []domain.Session
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, creds domain.Credentials) (IssuedSession, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, creds)
	}
	email := strings.ToLower(creds.Email)
	return IssuedSession{
		Token: "token-for-" + email,
		Session: domain.Session{
			Identity:  domain.Identity{Id: 1, Email: email},
			TokenId:   "jti-" + email,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}, nil
}

func (m *MockIdentityProvider) SignOut(ctx context.Context, session domain.Session) error {
	m.signedOut = append(m.signedOut, session)
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, session)
	}
	return nil
}

func (m *MockIdentityProvider) SendPasswordReset(ctx context.Context, email domain.Email) error {
	if m.SendPasswordResetFunc != nil {
		return m.SendPasswordResetFunc(ctx, email)
	}
	return nil
}

func (m *MockIdentityProvider) ConfirmPasswordReset(ctx context.Context, email domain.Email, code, newPassword string) error {
	if m.ConfirmPasswordResetFunc != nil {
		return m.ConfirmPasswordResetFunc(ctx, email, code, newPassword)
	}
	return nil
}

var errStoreDown = errors.New("store down")
