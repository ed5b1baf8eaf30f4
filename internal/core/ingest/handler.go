package ingest

import (
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler { return &Handler{service: service} }

type createSiteRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// HandleCreateSite registers a site and starts its background ingestion job.
func (h *Handler) HandleCreateSite(c *fiber.Ctx) error {
	var req createSiteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}
	if req.Name == "" || req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "name and url are required"})
	}

	job, err := h.service.Start(c.Context(), req.Name, req.URL)
	if err != nil {
		errMsg := err.Error()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": errMsg})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"success": true, "job_id": job.JobID, "status": job.Status})
}

// HandleGetSite reports a job's current status and drains any new events.
func (h *Handler) HandleGetSite(c *fiber.Ctx) error {
	name := c.Params("name")
	job, err := h.service.GetJob(c.Context(), name)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	events, err := h.service.Poll(c.Context(), name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"success":                   true,
		"job_id":                    job.JobID,
		"url":                       job.URL,
		"status":                    job.Status,
		"successful_document_count": job.DocumentCount,
		"events":                    events,
	})
}
