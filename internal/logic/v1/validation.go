package v1

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// bcrypt ignores input past 72 bytes.
const maxPasswordBytes = 72

// messages maps "<Struct>.<json field>.<tag>" to the text returned to clients.
var messages = map[string]string{
	"RegisterRequest.username.required":       "Username is required",
	"RegisterRequest.username.min":            "Username must be at least 3 characters long",
	"RegisterRequest.email.required":          "Email is required",
	"RegisterRequest.email.email":             "Please provide a valid email address",
	"RegisterRequest.password.required":       "Password is required",
	"RegisterRequest.password.min":            "Password must be at least 8 characters long",
	"RegisterRequest.password.bcryptmax":      "Password must be at most 72 bytes long",
	"RegisterRequest.passwordConfirm.eqfield": "Passwords do not match",

	"LoginRequest.username.required": "Username is required",
	"LoginRequest.password.required": "Password is required",

	"UpdatePasswordRequest.currentPassword.required":   "Current password is required",
	"UpdatePasswordRequest.newPassword.required":       "New password is required",
	"UpdatePasswordRequest.newPassword.min":            "New password must be at least 8 characters long",
	"UpdatePasswordRequest.newPassword.bcryptmax":      "New password must be at most 72 bytes long",
	"UpdatePasswordRequest.newPassword.nefield":        "New password must be different from current password",
	"UpdatePasswordRequest.confirmNewPassword.eqfield": "Passwords do not match",

	"CategoryInput.name.required": "Category name is required",
	"CategoryInput.name.min":      "Category name must be at least 2 characters long",

	"ItemInput.name.required":        "Item name is required",
	"ItemInput.name.min":             "Item name must be at least 2 characters long",
	"ItemInput.price.required":       "Item price is required",
	"ItemInput.price.gte":            "Item price must be a non-negative number",
	"ItemInput.quantity.required":    "Item quantity is required",
	"ItemInput.quantity.gte":         "Item quantity must be a non-negative integer",
	"ItemInput.category_id.required": "Category ID is required",
	"ItemInput.category_id.gt":       "Category ID must be a positive integer",
}

// Validator checks request structs against their validate tags and turns
// failures into a *ValidationError with client-facing messages.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})

	return &Validator{v: v}
}

// Struct validates s. It returns nil, a *ValidationError, or an error for a
// value that cannot be validated at all.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %T: %w", s, err)
	}

	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, messageFor(fe))
	}
	return &ValidationError{Errors: out}
}

func messageFor(fe validator.FieldError) string {
	if msg, ok := messages[fe.Namespace()+"."+fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
