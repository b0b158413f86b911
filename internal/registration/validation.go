package registration

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	MinAge = 18
	MaxAge = 120
)

var (
	validateOnce sync.Once
	validate     *validator.Validate

	// Letters from any script (diacritics included, precomposed or combining) and spaces.
	personNamePattern = regexp.MustCompile(`^[\p{L}\p{M} ]+$`)
)

// rule pairs a validator tag with the message shown when it fails.
// Rules for a field run in order and the first failure wins.
type rule struct {
	tag     string
	message string
}

var fieldRules = map[Field][]rule{
	FieldName: {
		{"required", MsgNameRequired},
		{"min=3", MsgNameTooShort},
		{"personname", MsgNameLetters},
	},
	FieldRole: {
		{"required", MsgRoleRequired},
		{"min=2", MsgRoleTooShort},
	},
	FieldPostalCode: {
		{"required", MsgCEPRequired},
		{"len=8", MsgCEPFormat},
		{"number", MsgCEPFormat},
	},
}

func fieldValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		if err := v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
			return personNamePattern.MatchString(fl.Field().String())
		}); err != nil {
			panic(err)
		}
		validate = v
	})
	return validate
}

// ValidateField returns the error message for value in field, or "" when the
// value is acceptable. It has no side effects.
//
// Name and role are checked trimmed, then again as they will be stored with
// markup stripped. Age and postal code are checked exactly as typed.
func ValidateField(field Field, value string) string {
	switch field {
	case FieldName, FieldRole:
		if msg := runRules(fieldRules[field], strings.TrimSpace(value)); msg != "" {
			return msg
		}
		return runRules(fieldRules[field], cleanText(value))
	case FieldPostalCode:
		return runRules(fieldRules[field], value)
	case FieldAge:
		return validateAge(value)
	}
	return ""
}

// ValidateAll validates every editable field and returns the failing ones.
func ValidateAll(values map[Field]string) map[Field]string {
	errs := make(map[Field]string)
	for _, f := range EditableFields {
		if msg := ValidateField(f, values[f]); msg != "" {
			errs[f] = msg
		}
	}
	return errs
}

func runRules(rules []rule, value string) string {
	v := fieldValidator()
	for _, r := range rules {
		if err := v.Var(value, r.tag); err != nil {
			return r.message
		}
	}
	return ""
}

func validateAge(value string) string {
	v := fieldValidator()
	if v.Var(value, "required") != nil {
		return MsgAgeRequired
	}
	if v.Var(value, "number") != nil {
		return MsgAgeNotInteger
	}
	age, err := strconv.Atoi(value)
	if err != nil {
		// Only digits reach here, so the parse can only fail on overflow.
		return MsgAgeMax
	}
	if v.Var(age, "gte="+strconv.Itoa(MinAge)) != nil {
		return MsgAgeMin
	}
	if v.Var(age, "lte="+strconv.Itoa(MaxAge)) != nil {
		return MsgAgeMax
	}
	return ""
}
