package http

import (
	"encoding/json"
	"net/http"

	"accounts/internal/domain"
	"accounts/internal/dto"
	"accounts/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	accounts service.AccountService
}

func (h handlers) createAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if !decode(w, r, &req) {
		return
	}
	res := h.accounts.CreateAccount(r.Context(), req)
	status := http.StatusCreated
	if !res.OK {
		status = statusFor(res.Kind)
	}
	writeJSON(w, status, res)
}

func (h handlers) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	res := h.accounts.Login(r.Context(), req)
	writeJSON(w, statusFor(res.Kind), res)
}

func (h handlers) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if !decode(w, r, &req) {
		return
	}
	res := h.accounts.VerifyEmail(r.Context(), req)
	writeJSON(w, statusFor(res.Kind), res)
}

func (h handlers) me(w http.ResponseWriter, r *http.Request) {
	id, _ := SubjectFrom(r.Context())
	res := h.accounts.FindByID(r.Context(), id)
	writeJSON(w, statusFor(res.Kind), res)
}

func (h handlers) userProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeResult(w, http.StatusNotFound, dto.Fail(domain.KindNotFound, "user not found"))
		return
	}
	res := h.accounts.FindByID(r.Context(), id)
	writeJSON(w, statusFor(res.Kind), res)
}

func (h handlers) editProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.EditProfileRequest
	if !decode(w, r, &req) {
		return
	}
	id, _ := SubjectFrom(r.Context())
	res := h.accounts.EditProfile(r.Context(), id, req)
	writeJSON(w, statusFor(res.Kind), res)
}

func (h handlers) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, _ := SubjectFrom(r.Context())
	res := h.accounts.DeleteAccount(r.Context(), id)
	writeJSON(w, statusFor(res.Kind), res)
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNone:
		return http.StatusOK
	case domain.KindDuplicateEmail:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidCredential:
		return http.StatusUnauthorized
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeResult(w, http.StatusBadRequest, dto.Fail(domain.KindInvalidInput, "invalid request body"))
		return false
	}
	return true
}

func writeResult(w http.ResponseWriter, status int, res dto.Result) {
	writeJSON(w, status, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
