package handler

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/CH4P4R/thumb-compare/internal/scoring"
)

func thumbnailApp() *fiber.App {
	app := fiber.New()
	app.Post("/api/thumbnails/score", NewThumbnailHandler().Score)
	return app
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestThumbnailScore_ValidImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.Gray{Y: 128})
		}
	}

	req := httptest.NewRequest(fiber.MethodPost, "/api/thumbnails/score",
		bytes.NewReader(encodePNG(t, img)))

	resp, err := thumbnailApp().Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result scoring.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Score <= 0 || result.Score > 100 {
		t.Errorf("score = %.2f, want within (0, 100]", result.Score)
	}
	if result.Contrast != 0 {
		t.Errorf("uniform image contrast = %.2f, want 0.00", result.Contrast)
	}
}

func TestThumbnailScore_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(fiber.MethodPost, "/api/thumbnails/score", nil)

	resp, err := thumbnailApp().Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestThumbnailScore_NotAnImage(t *testing.T) {
	req := httptest.NewRequest(fiber.MethodPost, "/api/thumbnails/score",
		bytes.NewReader([]byte("definitely not an image")))

	resp, err := thumbnailApp().Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}
