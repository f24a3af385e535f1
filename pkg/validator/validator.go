package validator

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/medchain/medchain-api/internal/model"
)

// RegisterCustomValidators wires the domain enum validators into gin's
// binding engine. Call once at startup before serving requests.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}

	if err := v.RegisterValidation("role", validRole); err != nil {
		return fmt.Errorf("failed to register role validator: %w", err)
	}
	if err := v.RegisterValidation("recordtype", validRecordType); err != nil {
		return fmt.Errorf("failed to register recordtype validator: %w", err)
	}
	return nil
}

func validRole(fl validator.FieldLevel) bool {
	return model.Role(fl.Field().String()).Valid()
}

func validRecordType(fl validator.FieldLevel) bool {
	return model.RecordType(fl.Field().String()).Valid()
}
