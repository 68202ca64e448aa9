package worker

import (
	"encoding/json"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var validate *validator.Validate
var translator ut.Translator

func init() {
	validate = validator.New()
	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	err := en_translations.RegisterDefaultTranslations(validate, translator)
	if err != nil {
		panic(err)
	}
}

// config is assembled from options and checked before a Pool is built.
type config struct {
	AmbientLimit int64 `validate:"gte=1"`
	RPS          int   `validate:"gte=0"`
	Burst        int   `validate:"gte=0"`
}

// validateConfig checks cfg against its declared tags.
func validateConfig(cfg config) error {
	if err := validate.Struct(cfg); err != nil {
		verrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		var fields FieldErrors
		for _, verror := range verrors {
			field := FieldError{
				Field: verror.Field(),
				Err:   verror.Translate(translator),
			}
			fields = append(fields, field)
		}
		return fields
	}

	return nil
}

// FieldError reports a single config field that failed validation.
type FieldError struct {
	Field string `json:"field"`
	Err   string `json:"error"`
}

// FieldErrors represents a collection of field errors.
type FieldErrors []FieldError

// Error implements the error interface.
func (fe FieldErrors) Error() string {
	d, err := json.Marshal(fe)
	if err != nil {
		return err.Error()
	}
	return string(d)
}
