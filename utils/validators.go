package utils

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	models "github.com/phillip/lifedrop-go/models"
)

// RegisterValidators adds the domain tags used in binding structs:
// bloodgroup, role, userstatus, requeststatus, blogstatus.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	rules := map[string]func(string) bool{
		"bloodgroup":    models.IsValidBloodGroup,
		"role":          models.IsValidRole,
		"userstatus":    models.IsValidUserStatus,
		"requeststatus": models.IsValidRequestStatus,
		"blogstatus":    models.IsValidBlogStatus,
	}
	for tag, fn := range rules {
		check := fn
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}
