package services

import (
	"github.com/SAP-F-2025/course-review-service/internal/models"
)

// AuthorizeOwner allows the resource owner and any admin. It performs no I/O.
func AuthorizeOwner(principal *models.User, ownerID string, denied *UnauthorizedError) error {
	if principal == nil {
		return ErrNotAuthenticated
	}
	if principal.IsAdmin() || (principal.ID != "" && principal.ID == ownerID) {
		return nil
	}
	if denied == nil {
		denied = ErrNotReviewOwner
	}
	return denied
}

// AuthorizeAdmin allows admins only; disciplines and courses have no owner rule
func AuthorizeAdmin(principal *models.User) error {
	if principal == nil {
		return ErrNotAuthenticated
	}
	if !principal.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}
