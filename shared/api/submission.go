package api

import (
	"time"

	"github.com/deskfolio/deskfolio/shared/domain"
)

// Request DTOs

type CreateSubmissionRequest struct {
	Name    string `json:"name" validate:"max=200"`
	Message string `json:"message" validate:"max=10000"`
}

// Response DTOs

// Submission status values returned to the contact form.
const (
	StatusSent         = "sent"
	StatusSavedLocally = "saved_locally"
)

type CreateSubmissionResponse struct {
	Status  string `json:"status"`
	Id      string `json:"id"`
	Message string `json:"message"`
}

type SubmissionResponse struct {
	Id          string     `json:"id"`
	Name        string     `json:"name"`
	Message     string     `json:"message"`
	CreatedAt   time.Time  `json:"createdAt"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	DisplayDate string     `json:"displayDate"`
}

// SubmissionListResponse always carries a (possibly empty) list; Error is set
// when the store could not be read.
type SubmissionListResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
	Error       string               `json:"error,omitempty"`
}

type DeleteSubmissionResponse struct {
	Message string `json:"message"`
}

func NewSubmissionResponse(s domain.Submission) SubmissionResponse {
	return SubmissionResponse{
		Id:          s.Id,
		Name:        s.Name,
		Message:     s.Message,
		CreatedAt:   s.CreatedAt,
		Timestamp:   s.Timestamp,
		DisplayDate: s.DisplayDate,
	}
}

func NewSubmissionListResponse(subs []domain.Submission) SubmissionListResponse {
	resp := SubmissionListResponse{Submissions: make([]SubmissionResponse, 0, len(subs))}
	for _, s := range subs {
		resp.Submissions = append(resp.Submissions, NewSubmissionResponse(s))
	}
	return resp
}
