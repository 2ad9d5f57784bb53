package server

import (
	"bytes"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/phanxgames/twin"
	"github.com/phanxgames/twin/store"
)

type handlers struct {
	store store.Store
}

// ============================================================
// Health
// ============================================================

func (h *handlers) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ============================================================
// Scenes
// ============================================================

func (h *handlers) list(c fiber.Ctx) error {
	list, err := h.store.List(c.Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(list)
}

func (h *handlers) get(c fiber.Ctx) error {
	m, err := h.store.Load(c.Context(), c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(m)
}

// create stores a new scene. A missing id is assigned; an id already in
// the store is a conflict.
func (h *handlers) create(c fiber.Ctx) error {
	m, err := twin.DecodeScene(bytes.NewReader(c.Body()))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	} else if _, err := h.store.Load(c.Context(), m.ID); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "scene already exists", "id": m.ID})
	} else if !errors.Is(err, store.ErrNotFound) {
		return storeError(c, err)
	}
	if err := h.store.Save(c.Context(), m); err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": m.ID})
}

// put replaces the scene at :id. The path id overrides the body.
func (h *handlers) put(c fiber.Ctx) error {
	m, err := twin.DecodeScene(bytes.NewReader(c.Body()))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	m.ID = c.Params("id")
	if err := h.store.Save(c.Context(), m); err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"id": m.ID})
}

func (h *handlers) delete(c fiber.Ctx) error {
	if err := h.store.Delete(c.Context(), c.Params("id")); err != nil {
		return storeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) summary(c fiber.Ctx) error {
	m, err := h.store.Load(c.Context(), c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(Summarize(m))
}

func storeError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "scene not found"})
	case errors.Is(err, store.ErrInvalidID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid scene id"})
	}
	slog.Error("store failure", "path", c.Path(), "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
