// Package httpapi exposes guarded PATCH endpoints over Fiber. Incoming RFC
// 6902 documents are filtered against the target type's protected fields
// before anything is applied; refused operations are reported back to the
// caller instead of failing the request.
package httpapi

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/structkit/patchguard"
)

// PatchResult is the payload returned by a successful PATCH.
type PatchResult[T any] struct {
	Resource T                      `json:"resource"`
	Applied  []patchguard.Operation `json:"applied"`
	Dropped  []patchguard.Operation `json:"dropped,omitempty"`
}

// Register mounts GET and PATCH routes for T under prefix, e.g.
// Register(app, "/buildings", store, logger) serves PATCH /buildings/:id.
func Register[T any](app *fiber.App, prefix string, store Store[T], logger *slog.Logger) {
	app.Get(prefix+"/:id", GetHandler(store))
	app.Patch(prefix+"/:id", PatchHandler(store, logger))
}

// GetHandler returns a handler serving a single resource by id.
func GetHandler[T any](store Store[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid resource id", err.Error())
		}

		resource, ok := store.Get(id)
		if !ok {
			return ErrorResponseJSON(c, fiber.StatusNotFound, "Resource not found", "")
		}

		return SuccessResponseJSON(c, fiber.StatusOK, "OK", resource)
	}
}

// PatchHandler returns a handler that applies a guarded partial update to the
// stored resource. The update runs against a snapshot and is stored only when
// every surviving operation applies and the result validates, so a rejected
// request never leaves a half-patched resource behind.
func PatchHandler[T any](store Store[T], logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	validate := validator.New(validator.WithRequiredStructEnabled())

	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid resource id", err.Error())
		}

		ops, err := patchguard.ParsePatch[T](c.Body())
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid patch document", err.Error())
		}

		resource, ok := store.Get(id)
		if !ok {
			return ErrorResponseJSON(c, fiber.StatusNotFound, "Resource not found", "")
		}

		dropped := patchguard.Dropped[T](ops)

		updated := patchguard.Snapshot(*resource)
		applied, err := patchguard.SanitizeAndApply(&updated, ops)
		if err != nil {
			logger.Warn("patch rejected", "id", id, "error", err)
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Patch could not be applied", err.Error())
		}

		if err := validate.Struct(updated); err != nil {
			logger.Warn("patched resource failed validation", "id", id, "error", err)
			return ErrorResponseJSON(c, fiber.StatusUnprocessableEntity, "Validation failed", err.Error())
		}

		store.Put(id, &updated)
		logger.Info("resource patched",
			"id", id,
			"applied", len(applied),
			"dropped", len(dropped),
		)

		return SuccessResponseJSON(c, fiber.StatusOK, "Resource updated", PatchResult[T]{
			Resource: updated,
			Applied:  applied,
			Dropped:  dropped,
		})
	}
}
