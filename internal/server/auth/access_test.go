package auth

import (
	"errors"
	"testing"

	"github.com/frankly034/userdir/internal/common"
	"github.com/frankly034/userdir/internal/server/models"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	owner := &models.User{ID: "u1"}
	other := &models.User{ID: "u2"}
	admin := &models.User{ID: "u3", IsAdmin: true}

	tests := []struct {
		name    string
		actor   *models.User
		ownerID string
		allowed bool
	}{
		{name: "self access allowed", actor: owner, ownerID: "u1", allowed: true},
		{name: "other user denied", actor: other, ownerID: "u1", allowed: false},
		{name: "admin allowed on any resource", actor: admin, ownerID: "u1", allowed: true},
		{name: "admin allowed on own resource", actor: admin, ownerID: "u3", allowed: true},
		{name: "anonymous denied", actor: nil, ownerID: "u1", allowed: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actor, tt.ownerID)
			if tt.allowed && err != nil {
				t.Fatalf("expected access, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, common.ErrUnauthorized) {
				t.Fatalf("expected common.ErrUnauthorized, got %v", err)
			}
		})
	}
}
