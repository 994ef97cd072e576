package handler

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gofiber/fiber/v3"

	"github.com/CH4P4R/thumb-compare/internal/scoring"
)

// maxThumbnailBytes bounds uploaded image size (maxres thumbnails are well
// under this).
const maxThumbnailBytes = 8 << 20

type ThumbnailHandler struct{}

func NewThumbnailHandler() *ThumbnailHandler {
	return &ThumbnailHandler{}
}

// Score handles POST /api/thumbnails/score. The body is a JPEG or PNG image;
// the response carries the raw metrics and the composite 0-100 score.
func (h *ThumbnailHandler) Score(c fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "MISSING_BODY",
				"message": "Request body must contain a JPEG or PNG image",
			},
		})
	}
	if len(body) > maxThumbnailBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "TOO_LARGE",
				"message": "Image exceeds the 8 MiB limit",
			},
		})
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INVALID_IMAGE",
				"message": "Body is not a decodable JPEG or PNG image",
			},
		})
	}

	return c.JSON(scoring.Analyze(img))
}
