package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sreeharimv/auction-platform/internal/clock"
	"github.com/sreeharimv/auction-platform/internal/config"
	"github.com/sreeharimv/auction-platform/internal/httpapi"
)

func testAdminConfig() config.AdminConfig {
	return config.AdminConfig{
		Password:   "opensesame",
		JWTSecret:  "test-secret",
		SessionTTL: time.Hour,
	}
}

func TestAuth_LoginAndVerify(t *testing.T) {
	clk := &clock.Mock{T: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
	auth := httpapi.NewAuth(testAdminConfig(), clk)

	if _, err := auth.Login("wrong"); err == nil {
		t.Error("Login(wrong password) should fail")
	}

	token, err := auth.Login("opensesame")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := auth.Verify(token); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestAuth_TokenExpires(t *testing.T) {
	clk := &clock.Mock{T: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
	auth := httpapi.NewAuth(testAdminConfig(), clk)

	token, err := auth.Login("opensesame")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	clk.Advance(2 * time.Hour)
	if err := auth.Verify(token); err == nil {
		t.Error("Verify() should fail after the session TTL")
	}
}

func TestAuth_NoPasswordConfigured(t *testing.T) {
	cfg := testAdminConfig()
	cfg.Password = ""
	auth := httpapi.NewAuth(cfg, &clock.Mock{T: time.Now()})

	if _, err := auth.Login(""); err == nil {
		t.Error("Login() should fail when no password is configured")
	}
}

func TestAuth_RequireAdmin(t *testing.T) {
	clk := &clock.Mock{T: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
	auth := httpapi.NewAuth(testAdminConfig(), clk)
	token, _ := auth.Login("opensesame")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := auth.RequireAdmin(next)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/lots/sold", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
