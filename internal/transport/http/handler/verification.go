package handler

import (
	"net/http"

	"github.com/go-auth-nosql/internal/application/verification"
	"github.com/go-auth-nosql/internal/domain"
)

// VerificationHandler issues and checks email verification codes.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

func (h *VerificationHandler) IssueCode(w http.ResponseWriter, r *http.Request) {
	var req domain.IssueCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if _, err := h.svc.Issue(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "success")
}

// CheckCode answers 200 with the matching record, or null when the code does
// not match the latest one issued for the email.
func (h *VerificationHandler) CheckCode(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	v, err := h.svc.Check(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
