package rag

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// IndexAdmin covers the index maintenance operations the HTTP surface exposes.
type IndexAdmin interface {
	Count(ctx context.Context) int
	Clear(ctx context.Context) error
}

type Handler struct {
	service *Service
	admin   IndexAdmin
}

func NewHandler(service *Service, admin IndexAdmin) *Handler {
	return &Handler{service: service, admin: admin}
}

type queryRequest struct {
	Question string `json:"question"`
}

// HandleQuery answers a natural-language question grounded in the index.
func (h *Handler) HandleQuery(c *fiber.Ctx) error {
	var req queryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}
	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "question is required"})
	}

	answer := h.service.Answer(c.Context(), req.Question)
	return c.JSON(fiber.Map{"success": true, "answer": answer})
}

// HandleIndexCount reports how many chunks the collection holds.
func (h *Handler) HandleIndexCount(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "count": h.admin.Count(c.Context())})
}

// HandleIndexReset drops and recreates the collection.
func (h *Handler) HandleIndexReset(c *fiber.Ctx) error {
	if err := h.admin.Clear(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
