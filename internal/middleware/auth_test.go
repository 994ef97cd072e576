package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
)

func jobApp(secret string) *fiber.App {
	app := fiber.New()
	app.Get("/api/jobs/test", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"ran": true})
	}, NewJobAuth(secret))
	return app
}

func TestJobAuth(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		authHeader string
		wantStatus int
	}{
		{"valid credential", "s3cret", "Bearer s3cret", fiber.StatusOK},
		{"wrong credential", "s3cret", "Bearer nope", fiber.StatusUnauthorized},
		{"missing header", "s3cret", "", fiber.StatusUnauthorized},
		{"missing bearer prefix", "s3cret", "s3cret", fiber.StatusUnauthorized},
		{"wrong scheme", "s3cret", "Basic s3cret", fiber.StatusUnauthorized},
		{"empty configured secret rejects all", "", "Bearer ", fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := jobApp(tt.secret)

			req := httptest.NewRequest(fiber.MethodGet, "/api/jobs/test", nil)
			if tt.authHeader != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.authHeader)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/api/projects/123e4567/trending", "/api/projects/:projectId/trending"},
		{"/api/competitors/abc-def/refresh", "/api/competitors/:competitorId/refresh"},
		{"/api/jobs/competitors", "/api/jobs/competitors"},
		{"/health/live", "/health/live"},
	}
	for _, tt := range tests {
		if got := sanitizePath(tt.in); got != tt.want {
			t.Errorf("sanitizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
