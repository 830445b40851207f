package rest

import (
	"net/http"

	"github.com/dmitrijs2005/drivenpass/internal/logging"
	"github.com/dmitrijs2005/drivenpass/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// pathID reads the {id} URL parameter and answers 400 unless it is a
// positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeValidation(w, []string{"id must be a positive integer"})
	}
	return id, ok
}

// CredentialHandler serves /credentials.
type CredentialHandler struct {
	Credentials CredentialService
	Log         logging.Logger
}

func (h *CredentialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.CredentialInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msgs := validateCredential(in); len(msgs) > 0 {
		writeValidation(w, msgs)
		return
	}

	c, err := h.Credentials.Create(r.Context(), in, mustIdentity(r).ID)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CredentialHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Credentials.FindAll(r.Context(), mustIdentity(r).ID)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CredentialHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.Credentials.FindOne(r.Context(), id, mustIdentity(r).ID)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CredentialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Credentials.Remove(r.Context(), id, mustIdentity(r).ID); err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CardHandler serves /cards and the card type catalogue.
type CardHandler struct {
	Cards CardService
	Log   logging.Logger
}

func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.CardInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msgs := validateCard(in); len(msgs) > 0 {
		writeValidation(w, msgs)
		return
	}

	c, err := h.Cards.Create(r.Context(), in, mustIdentity(r).ID)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Cards.FindAll(r.Context(), mustIdentity(r).ID)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CardHandler) Types(w http.ResponseWriter, r *http.Request) {
	types, err := h.Cards.FindAllCardTypes(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.Cards.FindOne(r.Context(), id, mustIdentity(r).ID)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Cards.Remove(r.Context(), id, mustIdentity(r).ID); err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NoteHandler serves /notes.
type NoteHandler struct {
	Notes NoteService
	Log   logging.Logger
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.NoteInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msgs := validateNote(in); len(msgs) > 0 {
		writeValidation(w, msgs)
		return
	}

	n, err := h.Notes.Create(r.Context(), in, mustIdentity(r).ID)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Notes.FindAll(r.Context(), mustIdentity(r).ID)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	n, err := h.Notes.FindOne(r.Context(), id, mustIdentity(r).ID)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Notes.Remove(r.Context(), id, mustIdentity(r).ID); err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
