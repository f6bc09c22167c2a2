// internal/app/features/groups/routes.go
package groups

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the /groups subrouter. The identity middleware is
// applied by the caller, so every handler can assume an authenticated
// user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// CREATE / DELETE
	r.Post("/", h.HandleCreateGroup)
	r.Delete("/{id}", h.HandleDeleteGroup)

	// MEMBERS
	r.Get("/{id}/permissions", h.ServePermissions)
	r.Get("/{id}/members", h.ServeMembersList)
	r.Delete("/{id}/members/{userID}", h.HandleRemoveMember)
	r.Post("/{id}/leave", h.HandleLeaveGroup)

	// INVITES
	r.Post("/{id}/invites", h.HandleCreateInvite)

	// AUDIT TRAIL (admin only)
	r.Get("/{id}/audit", h.ServeAuditLog)

	// CONTENT
	r.Get("/{id}/contents", h.ServeContentsList)
	r.Post("/{id}/contents", h.HandleAddContent)
	r.Get("/{id}/contents/{contentID}", h.ServeContent)
	r.Delete("/{id}/contents/{contentID}", h.HandleDeleteContent)

	return r
}
