package controllers

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"supplier-compliance-backend/middlewares"
	"supplier-compliance-backend/models"
)

type RegisterDTO struct {
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func Register(c *fiber.Ctx) error {
	var data RegisterDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(data.Email))

	db, err := dbFor(c)
	if err != nil {
		return err
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fiber.NewError(fiber.StatusConflict, "email already exists")
	}

	user := models.User{
		FirstName: strings.TrimSpace(data.FirstName),
		LastName:  strings.TrimSpace(data.LastName),
		Email:     email,
	}
	if err := user.SetPassword(data.Password); err != nil {
		return err
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func Login(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON")
	}

	if _, err := mail.ParseAddress(data["email"]); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid email format")
	}

	db, err := dbFor(c)
	if err != nil {
		return err
	}

	var user models.User
	err = db.Where("email = ?", strings.ToLower(strings.TrimSpace(data["email"]))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return err
	}
	if err := user.ComparePassword(data["password"]); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := middlewares.GenerateJWT(user.Id, user.Email)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.Id,
			"name":  user.FirstName + " " + user.LastName,
			"email": user.Email,
		},
	})
}

func Logout(c *fiber.Ctx) error {
	cookie := fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	}
	c.Cookie(&cookie)
	return c.JSON(fiber.Map{
		"message": "success",
	})
}
