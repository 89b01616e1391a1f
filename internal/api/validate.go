package api

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/goccy/go-json"
)

// errBadBody is a request body that is not valid JSON.
var errBadBody = errors.New("request body must be a JSON object")

type validation struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newValidation() *validation {
	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	// Report JSON names, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerTranslation(v, trans, "required", "{0} is required", true)
	registerTranslation(v, trans, "required_if", "{0} is required for this source", true)
	return &validation{validate: v, translator: trans}
}

func registerTranslation(v *validator.Validate, trans ut.Translator, tag, text string, override bool) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// bind decodes the JSON body into dst and validates it.
func (v *validation) bind(c *gin.Context, dst any) error {
	if err := json.NewDecoder(c.Request.Body).Decode(dst); err != nil {
		return errBadBody
	}
	return v.validate.Struct(dst)
}

// fields translates validation errors into a field -> message map.
func (v *validation) fields(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fe.Translate(v.translator)
	}
	return out
}
