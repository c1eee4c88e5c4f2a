package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"petalert/internal/pkg/jobqueue"
)

// HandleQueueStats reports the depth of the notification job queue and
// whether the workers are running.
func HandleQueueStats(c *fiber.Ctx) error {
	manager := jobqueue.GetManager()
	queue := manager.GetQueue()

	pending, err := queue.GetQueueSize(c.Context())
	if err != nil {
		fiberlog.Error(fmt.Sprintf("[Queue] failed to read pending size: %v", err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to read queue state")
	}
	processing, err := queue.GetProcessingSize(c.Context())
	if err != nil {
		fiberlog.Error(fmt.Sprintf("[Queue] failed to read processing size: %v", err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to read queue state")
	}

	return c.JSON(fiber.Map{
		"type":       "success",
		"running":    manager.IsRunning(),
		"pending":    pending,
		"processing": processing,
	})
}

// HandleGetJob returns a queued or processing job by its ID
func HandleGetJob(c *fiber.Ctx) error {
	jobID := c.Params("id")
	if jobID == "" {
		return errorJSON(c, fiber.StatusBadRequest, "invalid job id")
	}

	job, err := jobqueue.GetManager().GetQueue().GetJob(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errorJSON(c, fiber.StatusNotFound, "job not found")
		}
		fiberlog.Error(fmt.Sprintf("[Queue] failed to load job %s: %v", jobID, err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load job")
	}
	return c.JSON(fiber.Map{"type": "success", "job": job})
}
