// Package intpkg parses strictly positive base-10 integers from untrusted text.
package intpkg

import (
	"errors"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Tag is the validator tag checking that a string field holds a positive integer.
const Tag = "positiveint"

// ErrNotPositiveInt indicates that the text is not a positive base-10 integer.
var ErrNotPositiveInt = errors.New("not a positive integer")

// ParsePositive parses s as a base-10 integer greater than zero that fits into int64.
//
// Only ASCII digits are accepted: signs, whitespace, separators, fractions and
// exponents are all rejected.
func ParsePositive(s string) (int64, error) {
	if s == "" {
		return 0, ErrNotPositiveInt
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrNotPositiveInt
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrNotPositiveInt
	}

	return n, nil
}

// ValidPositive validates whether the string field holds a positive integer.
var ValidPositive validator.Func = func(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}

	_, err := ParsePositive(fl.Field().String())

	return err == nil
}

// RegisterValidation registers Tag on v.
func RegisterValidation(v *validator.Validate) error {
	return v.RegisterValidation(Tag, ValidPositive)
}
