package form

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	defaultTextMaxLength     = 255
	defaultTextareaMaxLength = 1000
)

// DateLayouts are the accepted date formats.
var DateLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006", time.RFC3339}

// Result is the outcome of Validate.
type Result struct {
	Missing    []string          `json:"missing"`
	Violations []ValidationError `json:"violations"`
}

// Complete reports whether nothing is missing and nothing is violated.
func (r Result) Complete() bool {
	return len(r.Missing) == 0 && len(r.Violations) == 0
}

// Validate checks every relevant field against its declared type and rules.
// It never modifies fields, so repeated calls return equal results.
func Validate(fields []FormField, rules *RuleTable) Result {
	inactive := rules.Inactive(fields)
	res := Result{Missing: []string{}, Violations: []ValidationError{}}

	for _, f := range fields {
		if inactive[f.DataID] {
			continue
		}

		if f.Type.IsChoice() && len(f.Options) == 0 {
			res.Violations = append(res.Violations, ValidationError{
				FieldID: f.DataID,
				Message: "Choice field has no options to choose from",
				Type:    ErrTypeNoOptions,
			})
		}

		if f.IsEmpty() {
			if f.IsRequired() {
				res.Missing = append(res.Missing, f.DataID)
			}
			continue
		}

		if v, ok := ValidateField(f); !ok {
			res.Violations = append(res.Violations, v)
		}
	}
	return res
}

// ValidateField checks one non-empty field value. Choice fields without
// options are reported by Validate, not here.
func ValidateField(f FormField) (ValidationError, bool) {
	value := strings.TrimSpace(f.Value)
	fail := func(typ, format string, args ...any) (ValidationError, bool) {
		return ValidationError{FieldID: f.DataID, Message: fmt.Sprintf(format, args...), Type: typ}, false
	}
	rules := ValidationRules{}
	if f.Rules != nil {
		rules = *f.Rules
	}

	switch f.Type {
	case FieldText, FieldTextarea:
		n := utf8.RuneCountInString(value)
		if rules.MinLength != nil && n < *rules.MinLength {
			return fail(ErrTypeMinLength, "Must be at least %d characters", *rules.MinLength)
		}
		maxLen := defaultTextMaxLength
		if f.Type == FieldTextarea {
			maxLen = defaultTextareaMaxLength
		}
		if rules.MaxLength != nil {
			maxLen = *rules.MaxLength
		}
		if n > maxLen {
			return fail(ErrTypeMaxLength, "Must be at most %d characters", maxLen)
		}
		if rules.Pattern != "" {
			re, err := regexp.Compile(rules.Pattern)
			if err != nil {
				return fail(ErrTypeInvalidRule, "Invalid pattern rule %q", rules.Pattern)
			}
			if !re.MatchString(value) {
				return fail(ErrTypePattern, "Does not match the required format")
			}
		}

	case FieldEmail:
		if err := validate.Var(value, "email"); err != nil {
			return fail(ErrTypeInvalidEmail, "Must be a valid email address")
		}

	case FieldNumber:
		n, ok := parseDecimal(value)
		if !ok {
			return fail(ErrTypeInvalidNumber, "Must be a number")
		}
		if rules.Min != nil && n < *rules.Min {
			return fail(ErrTypeOutOfRange, "Must be at least %v", *rules.Min)
		}
		if rules.Max != nil && n > *rules.Max {
			return fail(ErrTypeOutOfRange, "Must be at most %v", *rules.Max)
		}

	case FieldDate:
		if !isDate(value) {
			return fail(ErrTypeInvalidDate, "Must be a valid date (YYYY-MM-DD)")
		}

	case FieldRadio, FieldSelectOne:
		if len(f.Options) == 0 {
			return ValidationError{}, true
		}
		if _, ok := f.MatchOption(value); !ok {
			return fail(ErrTypeInvalidOption, "Invalid option. Must be one of: %s", strings.Join(f.Options, ", "))
		}

	case FieldCheckbox:
		if len(f.Options) == 0 {
			return ValidationError{}, true
		}
		for _, item := range strings.Split(value, ",") {
			if strings.TrimSpace(item) == "" {
				continue
			}
			if _, ok := f.MatchOption(item); !ok {
				return fail(ErrTypeInvalidOption, "Invalid option %q. Must be among: %s", strings.TrimSpace(item), strings.Join(f.Options, ", "))
			}
		}

	default:
		return fail(ErrTypeUnsupported, "Unsupported field type %q", f.Type)
	}

	return ValidationError{}, true
}

func isDate(value string) bool {
	for _, layout := range DateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// parseDecimal accepts finite decimal numbers only. ParseFloat alone would
// also take NaN, Inf and hex floats.
func parseDecimal(s string) (float64, bool) {
	if strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
