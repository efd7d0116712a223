package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/frankly034/userdir/internal/common"
	"github.com/frankly034/userdir/internal/server/directory"
	"github.com/frankly034/userdir/internal/server/repositories/users"
)

const maxBodySize = 1 << 20 // 1MB

const (
	defaultLimit  = 20
	defaultOffset = 0
)

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /user", s.withActor(s.handleFind))
	mux.HandleFunc("GET /user/{id}", s.withActor(s.handleFindUnique))
	mux.HandleFunc("POST /user", s.handleCreate)
	mux.HandleFunc("PATCH /user", s.withActor(s.handleUpdate))
	mux.HandleFunc("DELETE /user", s.withActor(s.handleDelete))

	mux.HandleFunc("POST /user/validate", s.handleValidate)
	mux.HandleFunc("POST /user/authenticate", s.handleAuthenticate)
	mux.HandleFunc("POST /user/token", s.handleToken)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := users.Filter{
		Name:   query.Get("name"),
		Email:  query.Get("email"),
		IDs:    query["id"],
		Limit:  defaultLimit,
		Offset: defaultOffset,
	}

	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if v := query.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = n
	}
	if v := query.Get("updatedSince"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid updatedSince, expected RFC3339")
			return
		}
		filter.UpdatedSince = t
	}
	if v := query.Get("credentials"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid credentials flag")
			return
		}
		filter.IncludeCredentials = b
	}

	result, err := s.svc.Find(r.Context(), filter, actorFrom(r.Context()))
	if err != nil {
		s.respondServiceError(r.Context(), w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, toUserResponses(result))
}

func (s *Server) handleFindUnique(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.FindUnique(r.Context(), r.PathValue("id"), actorFrom(r.Context()))
	if err != nil {
		s.respondServiceError(r.Context(), w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !s.decode(w, r, &req) {
		return
	}

	dto := directory.CreateUser{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		EmailConfirmed: req.EmailConfirmed,
		IsAdmin:        req.IsAdmin,
	}
	if req.Credentials != nil {
		dto.Hash = req.Credentials.Hash
	}

	user, err := s.svc.Create(r.Context(), dto)
	if err != nil {
		s.respondServiceError(r.Context(), w, err)
		return
	}

	s.logger.Info(r.Context(), "user created", "id", user.ID)
	s.respondJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.ID == "" {
		s.respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	dto := directory.UpdateUser{
		ID:             req.ID,
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		EmailConfirmed: req.EmailConfirmed,
	}
	if req.Credentials != nil {
		dto.Hash = &req.Credentials.Hash
	}

	user, err := s.svc.Update(r.Context(), dto, actorFrom(r.Context()))
	if err != nil {
		s.respondServiceError(r.Context(), w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.ID == "" {
		s.respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	user, err := s.svc.Delete(r.Context(), directory.DeleteUser{ID: req.ID}, actorFrom(r.Context()))
	if err != nil {
		s.respondServiceError(r.Context(), w, err)
		return
	}

	s.logger.Info(r.Context(), "user deleted", "id", req.ID)
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.svc.ValidateToken(r.Header.Get("Authorization"))
	if !ok {
		s.respondJSON(w, http.StatusUnauthorized, validateResponse{Valid: false})
		return
	}

	s.respondJSON(w, http.StatusOK, validateResponse{
		Valid:    true,
		UserID:   claims.UserID,
		Username: claims.Username,
	})
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.svc.Authenticate(r.Context(), directory.AuthenticateUser{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.respondServiceError(r.Context(), w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, authenticateResponse{Valid: user != nil && !user.IsDeleted})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if !s.decode(w, r, &req) {
		return
	}

	token, err := s.svc.AuthenticateAndIssueToken(r.Context(), directory.AuthenticateUser{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.respondServiceError(r.Context(), w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			s.respondError(w, http.StatusBadRequest, "empty request body")
			return false
		}
		s.respondError(w, http.StatusBadRequest, "invalid request format")
		return false
	}
	return true
}

func (s *Server) respondServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		s.respondError(w, http.StatusBadRequest, "email and password are required")
	case errors.Is(err, common.ErrUserDeleted):
		s.respondError(w, http.StatusBadRequest, "user is deleted")
	case errors.Is(err, common.ErrUnauthorized):
		s.respondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrInvalidCredentials):
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, common.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "user not found")
	default:
		s.logger.Error(ctx, err.Error())
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
