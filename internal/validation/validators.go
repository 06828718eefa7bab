// Package validation registers the Indian tax identifier tags used in
// request bindings.
package validation

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	gstinPattern   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	hsnPattern     = regexp.MustCompile(`^([0-9]{4}|[0-9]{6}|[0-9]{8})$`)
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
)

// Register adds the custom tags to gin's validator engine
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterOn(v)
}

// RegisterOn adds the custom tags to v
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("gstin", validateGSTIN); err != nil {
		return err
	}
	if err := v.RegisterValidation("hsn", validateHSN); err != nil {
		return err
	}
	return v.RegisterValidation("pincode", validatePincode)
}

// IsGSTIN reports whether s is a well formed GSTIN
func IsGSTIN(s string) bool {
	return gstinPattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

func validateGSTIN(fl validator.FieldLevel) bool {
	return IsGSTIN(fl.Field().String())
}

// IsHSN reports whether s is a 4, 6 or 8 digit HSN/SAC code
func IsHSN(s string) bool {
	return hsnPattern.MatchString(s)
}

func validateHSN(fl validator.FieldLevel) bool {
	return IsHSN(fl.Field().String())
}

func validatePincode(fl validator.FieldLevel) bool {
	return pincodePattern.MatchString(fl.Field().String())
}

// ProcessValidationErrors maps each failing field to the tag it failed.
// Non-validation errors yield nil.
func ProcessValidationErrors(err error) map[string]string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	errorResponse := make(map[string]string)
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}
	return errorResponse
}
