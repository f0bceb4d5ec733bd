package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/smarttech/leadflow/internal/usecase"
)

type ConversationHandler struct {
	ConversationUC *usecase.ConversationUseCase
}

func NewConversationHandler(uc *usecase.ConversationUseCase) *ConversationHandler {
	return &ConversationHandler{ConversationUC: uc}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Handle accepts a turn request and answers with the lead id immediately. The
// reply itself streams to the caller's broadcast channel, never through this
// response.
func (h *ConversationHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.ConversationInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}

	output, err := h.ConversationUC.Execute(r.Context(), input)
	if err != nil {
		log.Printf("[CONVERSATION] turn request failed: %v", err)
		writeJSON(w, statusForError(err), ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, output)
}

func statusForError(err error) int {
	var domainErr *usecase.DomainError
	if errors.As(err, &domainErr) {
		if domainErr.Code == usecase.CodeLeadNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
