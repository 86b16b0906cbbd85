package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/vertexhq/vertex-api/internal/models"
	"github.com/vertexhq/vertex-api/internal/services/onboarding"
)

type OnboardingHandler struct {
	Service *onboarding.Service
}

func NewOnboardingHandler(service *onboarding.Service) *OnboardingHandler {
	return &OnboardingHandler{Service: service}
}

func getAuth(c *fiber.Ctx) (uuid.UUID, error) {
	rawID, ok := c.Locals("userId").(string)
	if !ok || rawID == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	uID, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "invalid user id")
	}
	return uID, nil
}

type saveProgressReq struct {
	CurrentStep int                   `json:"current_step"`
	Data        models.OnboardingData `json:"data"`
	IsCompleted bool                  `json:"is_completed"`
}

// SaveProgress persists the caller's draft. The user id comes from the
// JWT locals, never from the body.
func (h *OnboardingHandler) SaveProgress(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	var req saveProgressReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"kind":    "invalid_input",
			"message": "invalid body",
		})
	}

	snapshot, err := h.Service.SaveProgress(c.Context(), userID, req.CurrentStep, req.Data, req.IsCompleted)
	if err != nil {
		return serviceFail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Progress saved",
		"data":    snapshot,
	})
}

// Resume returns the stored draft so the client can continue the form.
func (h *OnboardingHandler) Resume(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	snapshot, err := h.Service.GetProgress(c.Context(), userID)
	if err != nil {
		return serviceFail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    snapshot,
	})
}

// Complete converts the draft into a professional profile.
func (h *OnboardingHandler) Complete(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	profile, err := h.Service.CompleteOnboarding(c.Context(), userID)
	if err != nil {
		return serviceFail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Onboarding completed",
		"data":    profile,
	})
}

// serviceFail maps the service error taxonomy to a stable status + kind
// so clients can tell retryable failures from terminal ones.
func serviceFail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, onboarding.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, onboarding.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, onboarding.ErrAlreadyCompleted),
		errors.Is(err, onboarding.ErrDuplicateProfile):
		status = fiber.StatusConflict
	case errors.Is(err, onboarding.ErrValidationFailed):
		status = fiber.StatusUnprocessableEntity
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"kind":    onboarding.Kind(err),
		"message": err.Error(),
	})
}
