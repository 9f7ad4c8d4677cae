package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/oauth"
)

func TestAdminRole(t *testing.T) {
	tests := []struct {
		claims map[string]string
		want   int
	}{
		{map[string]string{"roles": "admin"}, http.StatusNoContent},
		{map[string]string{"roles": "staff, admin"}, http.StatusNoContent},
		{map[string]string{"roles": "administrator"}, http.StatusForbidden},
		{map[string]string{}, http.StatusForbidden},
		{nil, http.StatusForbidden},
	}

	h := admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.claims != nil {
			r = r.WithContext(context.WithValue(r.Context(), oauth.ClaimsContext, tt.claims))
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != tt.want {
			t.Errorf("claims %v: status %d, want %d", tt.claims, w.Code, tt.want)
		}
	}
}

func TestAdminWithoutToken(t *testing.T) {
	h := Admin("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without a token")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status %d, want 401", w.Code)
	}
}
