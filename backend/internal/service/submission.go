package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/deskfolio/deskfolio/backend/internal/utils/spreadsheet"
	"github.com/deskfolio/deskfolio/shared/domain"
	internal_errors "github.com/deskfolio/deskfolio/shared/errors"
	"github.com/deskfolio/deskfolio/shared/logger"
	"github.com/deskfolio/deskfolio/shared/middleware/metrics"
)

type SubmissionService interface {
	Submit(ctx context.Context, name, message string) (domain.SubmitResult, error)
	ListAll(ctx context.Context) ([]domain.Submission, error)
	ListFallback(ctx context.Context) ([]domain.Submission, error)
	Delete(ctx context.Context, id domain.SubmissionId) error
	Export(submissions []domain.Submission, w io.Writer) error
}

// SubmissionStorage is the remote document store.
type SubmissionStorage interface {
	CreateSubmission(ctx context.Context, data domain.SubmissionData) (domain.SubmissionId, error)
	ListSubmissions(ctx context.Context) ([]domain.Submission, error)
	DeleteSubmission(ctx context.Context, id domain.SubmissionId) error
}

// FallbackStorage is the local slot used when the remote store rejects a write.
type FallbackStorage interface {
	Append(ctx context.Context, data domain.SubmissionData) (domain.SubmissionId, error)
	List(ctx context.Context) ([]domain.Submission, error)
}

type Submission struct {
	remote SubmissionStorage
	local  FallbackStorage
	loc    *time.Location
	now    func() time.Time
}

func NewSubmission(remote SubmissionStorage, local FallbackStorage, loc *time.Location) *Submission {
	if loc == nil {
		loc = time.Local
	}
	return &Submission{remote: remote, local: local, loc: loc, now: time.Now}
}

// Submit persists one contact-form entry. The remote store is tried once; on
// any remote error the entry goes to the local slot instead. Nothing is
// written when name or message is blank after trimming.
func (s *Submission) Submit(ctx context.Context, name, message string) (domain.SubmitResult, error) {
	name = strings.TrimSpace(name)
	message = strings.TrimSpace(message)
	if name == "" || message == "" {
		return domain.SubmitResult{Outcome: domain.TotalFailure}, internal_errors.Validation("Please fill in both your name and message.")
	}

	// a client hanging up must not abort a write that already started
	ctx = context.WithoutCancel(ctx)
	log := logger.Component("submission")
	data := domain.SubmissionData{Name: name, Message: message, CreatedAt: s.now()}

	id, remoteErr := s.remote.CreateSubmission(ctx, data)
	if remoteErr == nil {
		metrics.SubmissionsTotal.WithLabelValues(domain.RemoteSuccess.String()).Inc()
		log.Info("submission saved", "id", id, "store", "remote")
		return domain.SubmitResult{Outcome: domain.RemoteSuccess, Id: id}, nil
	}
	log.Warn("remote store rejected submission, using local fallback", "error", remoteErr)

	id, localErr := s.local.Append(ctx, data)
	if localErr != nil {
		metrics.SubmissionsTotal.WithLabelValues(domain.TotalFailure.String()).Inc()
		return domain.SubmitResult{Outcome: domain.TotalFailure},
			internal_errors.LocalStorage("Failed to save submission", errors.Join(remoteErr, localErr))
	}

	metrics.SubmissionsTotal.WithLabelValues(domain.FallbackSuccess.String()).Inc()
	log.Info("submission saved", "id", id, "store", "fallback")
	return domain.SubmitResult{Outcome: domain.FallbackSuccess, Id: id}, nil
}

// ListAll returns the remote records, newest first, with DisplayDate filled.
// On failure the slice is empty but never nil.
func (s *Submission) ListAll(ctx context.Context) ([]domain.Submission, error) {
	subs, err := s.remote.ListSubmissions(ctx)
	if err != nil {
		return []domain.Submission{}, internal_errors.RemoteUnavailable("Failed to load submissions", err)
	}
	out := make([]domain.Submission, 0, len(subs))
	for _, sub := range subs {
		out = append(out, sub.WithDisplayDate(s.loc))
	}
	return out, nil
}

// ListFallback returns the local slot in insertion order. These records are
// never part of ListAll.
func (s *Submission) ListFallback(ctx context.Context) ([]domain.Submission, error) {
	subs, err := s.local.List(ctx)
	if err != nil {
		return []domain.Submission{}, internal_errors.LocalStorage("Failed to read local submissions", err)
	}
	for i := range subs {
		if subs[i].DisplayDate == "" {
			subs[i] = subs[i].WithDisplayDate(s.loc)
		}
	}
	return subs, nil
}

// Delete removes a remote record. The local slot is never touched.
func (s *Submission) Delete(ctx context.Context, id domain.SubmissionId) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return internal_errors.Validation("Submission id is required")
	}

	ctx = context.WithoutCancel(ctx)
	err := s.remote.DeleteSubmission(ctx, id)
	if err == nil {
		logger.Component("submission").Info("submission deleted", "id", id)
		return nil
	}
	if internal_errors.IsNotFound(err) {
		return err
	}
	return internal_errors.RemoteUnavailable("Failed to delete submission", err)
}

// Export writes submissions as a workbook with one row per record. Nothing is
// written for an empty list.
func (s *Submission) Export(submissions []domain.Submission, w io.Writer) error {
	if len(submissions) == 0 {
		return internal_errors.EmptyExport()
	}
	rows := make([][]string, 0, len(submissions))
	for _, sub := range submissions {
		date := sub.DisplayDate
		if date == "" {
			date = domain.FormatDisplayDate(sub.CreatedAt, s.loc)
		}
		rows = append(rows, []string{date, sub.Name, sub.Message})
	}
	return spreadsheet.Write(w, rows)
}
