package auth

import (
	"github.com/frankly034/userdir/internal/common"
	"github.com/frankly034/userdir/internal/server/models"
)

// Authorize applies the self-or-admin rule: the actor may touch the resource
// iff it is an admin or owns it. A nil actor (anonymous caller) is always
// denied. Pure function: no I/O, no mutation.
func Authorize(actor *models.User, resourceOwnerID string) error {
	if actor == nil {
		return common.ErrUnauthorized
	}
	if actor.IsAdmin || actor.ID == resourceOwnerID {
		return nil
	}
	return common.ErrUnauthorized
}
