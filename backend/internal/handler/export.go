package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/deskfolio/deskfolio/backend/internal/utils"
	"github.com/deskfolio/deskfolio/backend/internal/utils/spreadsheet"
	"github.com/deskfolio/deskfolio/shared/domain"
	shared_utils "github.com/deskfolio/deskfolio/shared/utils"
)

const (
	defaultExportFilename         = "submissions-export.xlsx"
	defaultFallbackExportFilename = "user-submissions-export.xlsx"
)

func (h *Handler) ExportSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissions.ListAll(r.Context())
	if err != nil {
		shared_utils.WriteErrorAndStatusCode(w, err)
		return
	}
	h.writeExport(w, r, subs, defaultExportFilename)
}

func (h *Handler) ExportFallback(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissions.ListFallback(r.Context())
	if err != nil {
		shared_utils.WriteErrorAndStatusCode(w, err)
		return
	}
	h.writeExport(w, r, subs, defaultFallbackExportFilename)
}

// writeExport renders into a buffer first so a failed export never sends a
// partial workbook with a 200.
func (h *Handler) writeExport(w http.ResponseWriter, r *http.Request, subs []domain.Submission, fallbackName string) {
	var buf bytes.Buffer
	if err := h.submissions.Export(subs, &buf); err != nil {
		shared_utils.WriteErrorAndStatusCode(w, err)
		return
	}

	filename := utils.ExportFilename(r.URL.Query().Get("filename"), fallbackName)
	w.Header().Set("Content-Type", spreadsheet.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
