// internal/app/features/groups/handler.go
package groups

import (
	"context"
	"errors"
	"net/http"

	"github.com/studycove/studyhub/internal/app/features/apierr"
	contentstore "github.com/studycove/studyhub/internal/app/store/contents"
	membershipstore "github.com/studycove/studyhub/internal/app/store/memberships"
	"github.com/studycove/studyhub/internal/app/system/access"
	"github.com/studycove/studyhub/internal/app/system/auditlog"
	"github.com/studycove/studyhub/internal/app/system/confirm"
	"github.com/studycove/studyhub/internal/app/system/groupops"
	"github.com/studycove/studyhub/internal/app/system/identity"
	"github.com/studycove/studyhub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ConfirmTokenHeader carries the confirmation token on the second
// attempt of a gated action.
const ConfirmTokenHeader = "X-Confirm-Token"

// Handler is the shared dependency container for the groups feature.
// All group routes flow through the access service; handlers never talk
// to stores for anything that needs an authorization decision.
type Handler struct {
	Access   *access.Service
	Ops      *groupops.Ops
	Members  membershipstore.Store
	Contents contentstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs a groups Handler. It is typically called from
// the bootstrap BuildHandler function, where the services are already
// initialized.
func NewHandler(svc *access.Service, ops *groupops.Ops, members membershipstore.Store, contents contentstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Access:   svc,
		Ops:      ops,
		Members:  members,
		Contents: contents,
		Audit:    audit,
		Log:      logger,
	}
}

// caller returns the authenticated user, writing 401 when the identity
// middleware was bypassed.
func caller(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	userID, ok := identity.CurrentUserID(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return primitive.NilObjectID, false
	}
	return userID, true
}

// pathID parses the named URL parameter as an ObjectID. Malformed IDs
// read as not-found rather than bad-request: the resource they name
// cannot exist.
func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

// writeError records access-decision outcomes in the audit trail before
// rendering the error. Only decisions are audited here; not-found and
// validation errors are plain responses.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, userID, groupID primitive.ObjectID, err error) {
	var denied *access.DeniedError
	var limited *ratelimit.LimitExceededError
	var challenge *confirm.ConfirmationRequiredError
	switch {
	case errors.As(err, &denied):
		h.Audit.AccessDenied(ctx, userID, groupID, string(denied.Permission))
	case errors.As(err, &limited):
		h.Audit.RateLimited(ctx, userID, string(limited.Action))
	case errors.As(err, &challenge):
		h.Audit.ConfirmationIssued(ctx, userID, challenge.Action, challenge.TargetID)
	}
	apierr.Write(w, h.Log, err)
}
