package rest

import (
	"net/http"

	"github.com/dmitrijs2005/drivenpass/internal/logging"
)

// ExportHandler serves POST /vault/export.
type ExportHandler struct {
	Exports ExportService
	Log     logging.Logger
}

func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msgs := validatePassword(req); len(msgs) > 0 {
		writeValidation(w, msgs)
		return
	}

	link, err := h.Exports.Export(r.Context(), mustIdentity(r), req.Password)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}
