package handler

import (
	"errors"
	"net/http"

	"github.com/deskfolio/deskfolio/shared/api"
	"github.com/deskfolio/deskfolio/shared/domain"
	internal_errors "github.com/deskfolio/deskfolio/shared/errors"
	"github.com/deskfolio/deskfolio/shared/utils"
	"github.com/go-chi/chi/v5"
)

const maxSubmissionBody = 64 << 10

func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmissionBody)
	var body api.CreateSubmissionRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	result, err := h.submissions.Submit(r.Context(), body.Name, body.Message)
	if err != nil {
		if errors.Is(err, internal_errors.ErrLocalStorage) {
			utils.WriteErrorAndStatusCode(w, &internal_errors.ErrorWithStatusCode{
				Message:    "An error occurred. Please try again.",
				StatusCode: http.StatusServiceUnavailable,
				Kind:       internal_errors.ErrLocalStorage,
				Err:        err,
			})
			return
		}
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := api.CreateSubmissionResponse{Id: result.Id}
	switch result.Outcome {
	case domain.RemoteSuccess:
		resp.Status, resp.Message = api.StatusSent, "Message sent successfully!"
	case domain.FallbackSuccess:
		resp.Status, resp.Message = api.StatusSavedLocally, "Message sent (saved locally)!"
	}
	utils.WriteJSON(w, http.StatusCreated, resp)
}

// ListSubmissions always answers with a list so the caller can render an
// empty state. A store failure is reported alongside it with a 503.
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissions.ListAll(r.Context())
	resp := api.NewSubmissionListResponse(subs)
	if err != nil {
		resp.Error = err.Error()
		utils.WriteJSON(w, internal_errors.StatusCode(err), resp)
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListFallback(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissions.ListFallback(r.Context())
	resp := api.NewSubmissionListResponse(subs)
	if err != nil {
		resp.Error = err.Error()
		utils.WriteJSON(w, internal_errors.StatusCode(err), resp)
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.submissions.Delete(r.Context(), id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.DeleteSubmissionResponse{Message: "Submission deleted successfully"})
}
