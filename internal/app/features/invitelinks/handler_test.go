// internal/app/features/invitelinks/handler_test.go
package invitelinks_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/studycove/studyhub/internal/app/features/invitelinks"
	"github.com/studycove/studyhub/internal/app/store/audit"
	confirmstore "github.com/studycove/studyhub/internal/app/store/confirmations"
	contentstore "github.com/studycove/studyhub/internal/app/store/contents"
	groupstore "github.com/studycove/studyhub/internal/app/store/groups"
	invitestore "github.com/studycove/studyhub/internal/app/store/invites"
	membershipstore "github.com/studycove/studyhub/internal/app/store/memberships"
	"github.com/studycove/studyhub/internal/app/system/access"
	"github.com/studycove/studyhub/internal/app/system/auditlog"
	"github.com/studycove/studyhub/internal/app/system/confirm"
	"github.com/studycove/studyhub/internal/app/system/groupops"
	"github.com/studycove/studyhub/internal/app/system/identity"
	"github.com/studycove/studyhub/internal/app/system/invites"
	"github.com/studycove/studyhub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type env struct {
	router  chi.Router
	svc     *access.Service
	audit   *audit.Memory
	groupID primitive.ObjectID
	adminID primitive.ObjectID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := zap.NewNop()

	members := membershipstore.NewMemory()
	groupsStore := groupstore.NewMemory()
	invStore := invitestore.NewMemory()
	cntStore := contentstore.NewMemory()
	auditStore := audit.NewMemory()

	limiter := ratelimit.New(ratelimit.DefaultPolicies())
	registry := invites.NewRegistry(invStore, members, groupsStore, logger)
	gate := confirm.NewGate(confirmstore.NewMemory(), logger)
	ops := groupops.New(groupsStore, members, invStore, cntStore, logger)
	svc := access.New(members, cntStore, limiter, registry, gate, ops, logger)
	auditLog := auditlog.New(auditStore, logger, auditlog.Config{Access: "db", Invite: "db", Admin: "db"})

	h := invitelinks.NewHandler(svc, auditLog, logger)

	r := chi.NewRouter()
	r.Route("/invites", func(r chi.Router) {
		r.Use(identity.RequireUser)
		r.Mount("/", invitelinks.Routes(h))
	})

	e := &env{router: r, svc: svc, audit: auditStore, adminID: primitive.NewObjectID()}
	g, err := ops.CreateGroup(context.Background(), "Statistics", "", e.adminID)
	if err != nil {
		t.Fatalf("seed group: %v", err)
	}
	e.groupID = g.ID
	return e
}

func (e *env) mint(t *testing.T, maxUses *int) string {
	t.Helper()
	inv, err := e.svc.CreateInvite(context.Background(), e.adminID, e.groupID, maxUses, nil)
	if err != nil {
		t.Fatalf("mint invite: %v", err)
	}
	return inv.Token
}

func (e *env) do(t *testing.T, method, path string, userID primitive.ObjectID) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(identity.UserHeader, userID.Hex())
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func intp(n int) *int { return &n }

type previewBody struct {
	Valid         bool   `json:"valid"`
	Reason        string `json:"reason"`
	GroupName     string `json:"group_name"`
	UsesRemaining *int   `json:"uses_remaining"`
}

func TestPreview(t *testing.T) {
	e := newEnv(t)
	tok := e.mint(t, intp(3))
	user := primitive.NewObjectID()

	rec := e.do(t, http.MethodGet, "/invites/"+tok, user)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	body := decode[previewBody](t, rec)
	if !body.Valid || body.GroupName != "Statistics" {
		t.Fatalf("preview = %+v", body)
	}
	if body.UsesRemaining == nil || *body.UsesRemaining != 3 {
		t.Fatalf("uses_remaining = %v, want 3", body.UsesRemaining)
	}

	rec = e.do(t, http.MethodGet, "/invites/nope", user)
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown token preview: status = %d, want 200", rec.Code)
	}
	body = decode[previewBody](t, rec)
	if body.Valid || body.Reason != "unknown_token" {
		t.Fatalf("unknown preview = %+v", body)
	}
}

func TestJoin(t *testing.T) {
	e := newEnv(t)
	tok := e.mint(t, nil)
	user := primitive.NewObjectID()

	rec := e.do(t, http.MethodPost, "/invites/"+tok+"/join", user)
	if rec.Code != http.StatusOK {
		t.Fatalf("join: status = %d body = %s", rec.Code, rec.Body.String())
	}
	body := decode[map[string]any](t, rec)
	if body["role"] != "member" || body["already_member"] != false {
		t.Fatalf("join body = %+v", body)
	}

	// Second join is an idempotent no-op.
	rec = e.do(t, http.MethodPost, "/invites/"+tok+"/join", user)
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat join: status = %d", rec.Code)
	}
	if body := decode[map[string]any](t, rec); body["already_member"] != true {
		t.Fatalf("repeat join body = %+v", body)
	}

	events, err := e.audit.Query(context.Background(), audit.QueryFilter{EventType: audit.EventInviteConsumed})
	if err != nil {
		t.Fatalf("query audit: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("invite_consumed events = %d, want 1 (no event for the no-op join)", len(events))
	}
}

func TestJoinDeadTokenIs404(t *testing.T) {
	e := newEnv(t)
	tok := e.mint(t, intp(1))
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()

	if rec := e.do(t, http.MethodPost, "/invites/"+tok+"/join", first); rec.Code != http.StatusOK {
		t.Fatalf("first join: status = %d", rec.Code)
	}

	rec := e.do(t, http.MethodPost, "/invites/"+tok+"/join", second)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("exhausted join: status = %d, want 404", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["error"] != "invalid_invite" || body["reason"] != "exhausted" {
		t.Fatalf("body = %+v", body)
	}
}

func TestRevoke(t *testing.T) {
	e := newEnv(t)
	tok := e.mint(t, nil)

	// A plain member cannot revoke.
	member := primitive.NewObjectID()
	if rec := e.do(t, http.MethodPost, "/invites/"+tok+"/join", member); rec.Code != http.StatusOK {
		t.Fatalf("member join: status = %d", rec.Code)
	}
	rec := e.do(t, http.MethodDelete, "/invites/"+tok, member)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member revoke: status = %d, want 403", rec.Code)
	}

	rec = e.do(t, http.MethodDelete, "/invites/"+tok, e.adminID)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin revoke: status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodGet, "/invites/"+tok, member)
	body := decode[previewBody](t, rec)
	if body.Valid || body.Reason != "revoked" {
		t.Fatalf("preview after revoke = %+v", body)
	}
}

func TestJoinRateLimited(t *testing.T) {
	e := newEnv(t)
	user := primitive.NewObjectID()

	// Burn the join budget on a nonexistent token; the limit applies
	// before token validation.
	limit := ratelimit.DefaultPolicies()[ratelimit.ActionJoinGroup].Limit
	for i := 0; i < limit; i++ {
		if rec := e.do(t, http.MethodPost, "/invites/bogus/join", user); rec.Code != http.StatusNotFound {
			t.Fatalf("attempt %d: status = %d, want 404", i, rec.Code)
		}
	}

	rec := e.do(t, http.MethodPost, "/invites/bogus/join", user)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
}
