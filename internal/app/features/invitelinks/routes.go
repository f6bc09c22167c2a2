// internal/app/features/invitelinks/routes.go
package invitelinks

import "github.com/go-chi/chi/v5"

// Routes returns the /invites subrouter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/{token}", h.ServePreview)
	r.Post("/{token}/join", h.HandleJoin)
	r.Delete("/{token}", h.HandleRevoke)

	return r
}
