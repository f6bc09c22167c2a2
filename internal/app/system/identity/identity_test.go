// internal/app/system/identity/identity_test.go
package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRequireUserPassesValidID(t *testing.T) {
	want := primitive.NewObjectID()
	var got primitive.ObjectID
	var ok bool

	h := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = CurrentUserID(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/groups", nil)
	req.Header.Set(UserHeader, want.Hex())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !ok || got != want {
		t.Fatalf("CurrentUserID = %v ok=%v, want %v", got, ok, want)
	}
}

func TestRequireUserRejectsBadIdentity(t *testing.T) {
	h := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler ran without a valid identity")
	}))

	cases := map[string]string{
		"missing header": "",
		"malformed hex":  "not-an-object-id",
		"short hex":      "abc123",
		"zero id":        primitive.NilObjectID.Hex(),
	}
	for name, val := range cases {
		req := httptest.NewRequest(http.MethodGet, "/groups", nil)
		if val != "" {
			req.Header.Set(UserHeader, val)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", name, rec.Code)
		}
	}
}

func TestCurrentUserIDWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/groups", nil)
	if _, ok := CurrentUserID(req); ok {
		t.Fatal("ok = true on a request that skipped the middleware")
	}
}
