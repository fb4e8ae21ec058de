package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/btcsuite/btclog"
	"github.com/go-playground/validator/v10"

	"github.com/idelchi/aesgo/pkg/blockcipher"
)

// registerValidators adds the custom tags used by Config and makes error
// messages refer to fields by their flag names.
func registerValidators(validate *validator.Validate) error {
	custom := map[string]validator.Func{
		"exclusive": validateExclusive,
		"keysize":   parses(blockcipher.ParseKeySize),
		"chaining":  parses(blockcipher.ParseChainingMode),
		"padding":   parses(blockcipher.ParsePaddingMode),
		"loglevel":  validateLogLevel,
	}

	for tag, fn := range custom {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("registering %s validation: %w", tag, err)
		}
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		const splitSize = 2

		name := strings.SplitN(fld.Tag.Get("label"), ",", splitSize)[0]
		if name == "-" || name == "" {
			return fld.Name
		}

		return name
	})

	return nil
}

// validateExclusive checks if two fields are mutually exclusive.
// Returns false if both fields have non-empty values.
func validateExclusive(fl validator.FieldLevel) bool {
	otherFieldName := fl.Param()
	field := fl.Field()
	otherField := fl.Parent().FieldByName(otherFieldName)

	if !field.IsValid() || !otherField.IsValid() {
		return true
	}

	if field.Kind() == reflect.String && otherField.Kind() == reflect.String {
		return field.String() == "" || otherField.String() == ""
	}

	return true
}

// parses adapts a string parser into a field validator.
func parses[T any](parse func(string) (T, error)) validator.Func {
	return func(fl validator.FieldLevel) bool {
		_, err := parse(fl.Field().String())

		return err == nil
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	_, ok := btclog.LevelFromString(fl.Field().String())

	return ok
}

// describe turns validator errors into one readable line per field.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))

	for _, fe := range verrs {
		switch fe.Tag() {
		case "exclusive":
			msgs = append(msgs, fe.Field()+" is mutually exclusive")
		case "keysize", "chaining", "padding", "loglevel":
			msgs = append(msgs, fmt.Sprintf("%s: unsupported value %q", fe.Field(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: failed %q (%s)", fe.Field(), fe.Tag(), fe.Param()))
		}
	}

	return errors.New(strings.Join(msgs, "; "))
}
