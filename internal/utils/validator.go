package utils

import (
	"html"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
	"github.com/truemail-rb/truemail-go"
)

// Validator bundles the struct validator, its English translations and the input sanitiser.
type Validator struct {
	Validate    *validator.Validate
	VerifyEmail func(email string) bool
	translator  ut.Translator
	policy      *bluemonday.Policy
	mxCheck     bool
}

var (
	instance *Validator
	once     sync.Once
)

// fieldLabels maps json field names to the label used in messages.
var fieldLabels = map[string]string{
	"name":                 "Name",
	"email":                "Email",
	"password":             "Password",
	"newPassword":          "Password",
	"token":                "Token",
	"passwordConfirmation": "Password confirmation",
}

var translations = map[string]string{
	"required":            "{0} is required.",
	"email":               "{0} format is invalid.",
	"min":                 "{0} must have at least {1} characters.",
	"password_validation": "{0} must contain at least 1 lowercase letter, 1 uppercase letter, 1 digit, 1 special character and have at least 8 characters.",
	"eqfield":             "Passwords do not match.",
	"email_mx":            "{0} address is not reachable.",
}

// GetValidator returns the process wide Validator.
func GetValidator() *Validator {
	once.Do(func() {
		english := en.New()
		translator, _ := ut.New(english, english).GetTranslator("en")

		instance = &Validator{
			Validate:    validator.New(validator.WithRequiredStructEnabled()),
			VerifyEmail: func(string) bool { return true },
			translator:  translator,
			policy:      bluemonday.StrictPolicy(),
		}

		instance.Validate.RegisterTagNameFunc(jsonFieldName)
		registerCustomValidators(instance)
		registerTranslations(instance)
	})

	return instance
}

// EnableMXCheck makes the email_mx tag look up the mail exchanger of the address.
func (v *Validator) EnableMXCheck(verifierEmail string) error {
	configuration, err := truemail.NewConfiguration(truemail.ConfigurationAttr{
		VerifierEmail:         verifierEmail,
		ValidationTypeDefault: "mx",
		SmtpFailFast:          true,
	})
	if err != nil {
		return errors.Wrap(err, "configure truemail")
	}

	v.VerifyEmail = func(email string) bool {
		return truemail.IsValid(email, configuration)
	}
	v.mxCheck = true
	return nil
}

// ValidateStruct validates obj and returns the translated message per json field.
// A nil map means obj is valid.
func (v *Validator) ValidateStruct(obj interface{}) (map[string]string, error) {
	err := v.Validate.Struct(obj)
	if err == nil {
		return nil, nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, err
	}

	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		if _, ok := details[fieldErr.Field()]; ok {
			continue
		}
		details[fieldErr.Field()] = fieldErr.Translate(v.translator)
	}

	return details, nil
}

// SanitizeData trims every string field of the struct obj points to.
// Fields tagged sanitize:"strict" are additionally stripped of any markup,
// fields tagged sanitize:"-" are left as sent.
func (v *Validator) SanitizeData(obj interface{}) error {
	value := reflect.ValueOf(obj)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return errors.New("sanitize expects a pointer to a struct")
	}

	value = value.Elem()
	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		if field.Kind() != reflect.String || !field.CanSet() {
			continue
		}

		tag := value.Type().Field(i).Tag.Get("sanitize")
		if tag == "-" {
			continue
		}

		sanitized := strings.TrimSpace(field.String())
		if tag == "strict" {
			// bluemonday escapes the text it keeps.
			sanitized = strings.TrimSpace(html.UnescapeString(v.policy.Sanitize(sanitized)))
		}
		field.SetString(sanitized)
	}

	return nil
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func registerCustomValidators(v *Validator) {
	err := v.Validate.RegisterValidation("password_validation", passwordValidation)
	if err != nil {
		return
	}

	err = v.Validate.RegisterValidation("email_mx", func(fl validator.FieldLevel) bool {
		if !v.mxCheck {
			return true
		}
		return v.VerifyEmail(fl.Field().String())
	})
	if err != nil {
		return
	}
}

func registerTranslations(v *Validator) {
	for tag, text := range translations {
		tag, text := tag, text
		_ = v.Validate.RegisterTranslation(tag, v.translator, func(trans ut.Translator) error {
			return trans.Add(tag, text, true)
		}, translateFieldError)
	}
}

func translateFieldError(trans ut.Translator, fe validator.FieldError) string {
	if fe.Tag() == "required" && fe.Field() == "passwordConfirmation" {
		return "Please confirm your password."
	}

	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	message, err := trans.T(fe.Tag(), label, fe.Param())
	if err != nil {
		return fe.Error()
	}
	return message
}

func passwordValidation(fl validator.FieldLevel) bool {
	var upperLetter, lowerLetter, number, specialChar bool

	value := fl.Field().String()
	if len(value) < 8 {
		return false
	}

	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			upperLetter = true
		case unicode.IsLower(r):
			lowerLetter = true
		case unicode.IsNumber(r):
			number = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r):
			specialChar = true
		}
	}

	return upperLetter && lowerLetter && number && specialChar
}
