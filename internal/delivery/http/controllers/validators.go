package controllers

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/IICPAS/IICPAS-sub003/internal/models"
)

// RegisterValidators adds the domain tags used by request bodies.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	if err := v.RegisterValidation("session_type", func(fl validator.FieldLevel) bool {
		return models.ValidSessionType(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("rating_value", func(fl validator.FieldLevel) bool {
		r := fl.Field().Int()
		return r >= 1 && r <= 5
	})
}
