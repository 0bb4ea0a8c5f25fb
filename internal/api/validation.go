package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks request bodies against their validate tags and turns
// the first failure into a message fit for the client.
type Validator struct {
	validate *validator.Validate
	messages map[string]string
}

// NewValidator creates a validator that reports JSON field names
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validate: v,
		// keyed by "<struct>.<json field>.<tag>"
		messages: map[string]string{
			"signupRequest.username.required":    "Username must be at least 3 characters",
			"signupRequest.username.min":         "Username must be at least 3 characters",
			"signupRequest.password.required":    "Password must be at least 6 characters",
			"signupRequest.password.min":         "Password must be at least 6 characters",
			"signupRequest.email.email":          "Email must be a valid email address",
			"knowledgeRequest.question.required": "Question and answer are required",
			"knowledgeRequest.answer.required":   "Question and answer are required",
			"importURLRequest.question.required": "Question and URL are required",
			"importURLRequest.url.required":      "Question and URL are required",
			"importURLRequest.url.http_url":      "URL must be a valid http or https address",
		},
	}
}

// Validate returns nil or an error whose text is the client message
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return errors.New(v.formatFieldError(verrs[0]))
}

func (v *Validator) formatFieldError(fe validator.FieldError) string {
	key := fe.Namespace() + "." + fe.Tag()
	if msg, ok := v.messages[key]; ok {
		return msg
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
