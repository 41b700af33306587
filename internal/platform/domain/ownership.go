package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// RequireOwner is the single access policy for mutations: only the member
// holding standing over a resource may change it.
func RequireOwner(resource string, ownerID, actorID uuid.UUID) error {
	if ownerID == uuid.Nil || ownerID != actorID {
		return NewForbiddenError(fmt.Sprintf("not allowed to modify this %s", resource))
	}
	return nil
}
