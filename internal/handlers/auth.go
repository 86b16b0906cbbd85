package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/vertexhq/vertex-api/internal/models"
	"github.com/vertexhq/vertex-api/internal/utils"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret string
	Expires   int
}

type RegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": false,
		"message": "Validation error",
		"errors":  errs,
	})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	errs := FieldErrors{}
	if name == "" {
		errs.Add("name", "Name is required")
	}
	if email == "" {
		errs.Add("email", "Email is required")
	} else if !strings.Contains(email, "@") {
		errs.Add("email", "Invalid email format")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	} else if len(password) < 6 {
		errs.Add("password", "Password needs at least 6 characters")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	var existing models.User
	if err := h.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		e := FieldErrors{}
		e.Add("email", "Email is already registered")
		return validationFail(c, e)
	} else if err != gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Server error",
		})
	}

	pw, err := utils.HashPassword(password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to process password",
		})
	}

	u := models.User{
		Name:     name,
		Email:    email,
		Password: pw,
		IsActive: true,
	}
	if err := h.DB.Create(&u).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Failed to register",
		})
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), h.Expires)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create token",
		})
	}

	h.setAuthCookie(c, token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Registered",
		"data": fiber.Map{
			"user": fiber.Map{
				"id":    u.ID,
				"name":  u.Name,
				"email": u.Email,
			},
		},
	})
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": false,
			"message": "Invalid body",
		})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	errs := FieldErrors{}
	if email == "" {
		errs.Add("email", "Email is required")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	var u models.User
	if err := h.DB.Where("email = ?", email).First(&u).Error; err != nil {
		// unknown email still answers 200 so the FE shows one message
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": false,
			"message": "Wrong email or password",
		})
	}

	if !u.IsActive {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": false,
			"message": "Account is inactive",
		})
	}

	if !utils.CheckPassword(u.Password, password) {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": false,
			"message": "Wrong email or password",
		})
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), h.Expires)
	if err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create token",
		})
	}

	h.setAuthCookie(c, token)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Logged in",
		"data": fiber.Map{
			"user": fiber.Map{
				"id":    u.ID,
				"name":  u.Name,
				"email": u.Email,
			},
		},
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "vx_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out",
	})
}

func (h *AuthHandler) setAuthCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "vx_token",
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   false, // true behind HTTPS in production
		SameSite: "Lax",
		MaxAge:   h.Expires * 60,
	})
}
