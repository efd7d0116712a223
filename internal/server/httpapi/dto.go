package httpapi

import (
	"time"

	"github.com/frankly034/userdir/internal/server/models"
)

type credentialsPayload struct {
	Hash string `json:"hash"`
}

type createUserRequest struct {
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	Password       string              `json:"password"`
	EmailConfirmed bool                `json:"emailConfirmed"`
	IsAdmin        bool                `json:"isAdmin"`
	Credentials    *credentialsPayload `json:"credentials"`
}

// updateUserRequest is a partial update: absent fields stay nil and are left
// untouched downstream.
type updateUserRequest struct {
	ID             string              `json:"id"`
	Name           *string             `json:"name"`
	Email          *string             `json:"email"`
	Password       *string             `json:"password"`
	EmailConfirmed *bool               `json:"emailConfirmed"`
	Credentials    *credentialsPayload `json:"credentials"`
}

type deleteUserRequest struct {
	ID string `json:"id"`
}

type authenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authenticateResponse struct {
	Valid bool `json:"valid"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type validateResponse struct {
	Valid    bool   `json:"valid"`
	UserID   string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
}

type credentialsResponse struct {
	ID string `json:"id"`
}

// userResponse is the external projection of a user row. Password digests and
// credential hashes never leave the service.
type userResponse struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Email          string               `json:"email,omitempty"`
	EmailConfirmed bool                 `json:"emailConfirmed"`
	IsAdmin        bool                 `json:"isAdmin"`
	IsDeleted      bool                 `json:"isDeleted"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
	Credentials    *credentialsResponse `json:"credentials,omitempty"`
}

func toUserResponse(u *models.User) *userResponse {
	resp := &userResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmed,
		IsAdmin:        u.IsAdmin,
		IsDeleted:      u.IsDeleted,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
	if u.Credentials != nil {
		resp.Credentials = &credentialsResponse{ID: u.Credentials.ID}
	}
	return resp
}

func toUserResponses(users []*models.User) []*userResponse {
	result := make([]*userResponse, 0, len(users))
	for _, u := range users {
		result = append(result, toUserResponse(u))
	}
	return result
}
