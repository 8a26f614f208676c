package utils

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

	registerOnce sync.Once
)

// IsValidPincode reports whether code is a 6-digit postal code
func IsValidPincode(code string) bool {
	return pincodePattern.MatchString(code)
}

// IsValidPhone reports whether phone looks like a dialable number
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// RegisterValidators adds the pincode and phone tags to gin's validator
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
			return IsValidPincode(fl.Field().String())
		})
		v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return IsValidPhone(fl.Field().String())
		})
	})
}
