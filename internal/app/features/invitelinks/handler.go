// internal/app/features/invitelinks/handler.go

// Package invitelinks serves the token-side of invites: previewing,
// joining, and revoking by token. Creation lives with the groups feature
// because it is a group operation; everything here starts from a token
// the caller already holds.
package invitelinks

import (
	"net/http"

	"github.com/studycove/studyhub/internal/app/system/access"
	"github.com/studycove/studyhub/internal/app/system/auditlog"
	"github.com/studycove/studyhub/internal/app/system/identity"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler is the dependency container for the invitelinks feature.
type Handler struct {
	Access *access.Service
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

// NewHandler constructs an invitelinks Handler.
func NewHandler(svc *access.Service, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Access: svc, Audit: audit, Log: logger}
}

func caller(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	userID, ok := identity.CurrentUserID(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return primitive.NilObjectID, false
	}
	return userID, true
}
