package validate

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// vd evaluates tag-based rules (required, email, min/max, oneof).  Custom
// predicates below cover what tags cannot express: regexp patterns, numeric
// ranges on raw JSON values, and domain checks like date-not-in-future.
var vd = validator.New()

// required fails for absent fields, non-strings, and blank strings.
func required(msg string) Rule {
	return Rule{
		Apply: func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return v != nil
			}
			return strings.TrimSpace(s) != ""
		},
		Message: msg,
	}
}

// isString fails when the value is present but not a JSON string.
func isString(msg string) Rule {
	return Rule{
		Apply: func(v any) bool {
			_, ok := v.(string)
			return ok
		},
		Message: msg,
	}
}

// tag runs a go-playground/validator tag expression against a string value.
func tag(expr, msg string) Rule {
	return Rule{
		Apply: func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return false
			}
			return vd.Var(s, expr) == nil
		},
		Message: msg,
	}
}

// matches tests a string value against a compiled pattern.
func matches(re *regexp.Regexp, msg string) Rule {
	return Rule{
		Apply: func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return false
			}
			return re.MatchString(s)
		},
		Message: msg,
	}
}

// numberBetween accepts JSON numbers or numeric strings within [min,max],
// verified through validator range tags on the parsed value.
func numberBetween(min, max float64, msg string) Rule {
	expr := "gte=" + strconv.FormatFloat(min, 'f', -1, 64) + ",lte=" + strconv.FormatFloat(max, 'f', -1, 64)
	return Rule{
		Apply: func(v any) bool {
			f, ok := Number(v)
			if !ok {
				return false
			}
			return vd.Var(f, expr) == nil
		},
		Message: msg,
	}
}

// dateNotFuture accepts YYYY-MM-DD dates up to and including today.
func dateNotFuture(msg string) Rule {
	return Rule{
		Apply: func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return false
			}
			d, err := time.ParseInLocation("2006-01-02", s, time.Local)
			if err != nil {
				return false
			}
			return !d.After(time.Now())
		},
		Message: msg,
	}
}

// timeOfDay accepts HH:MM:SS wall-clock times.
func timeOfDay(msg string) Rule {
	return Rule{
		Apply: func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return false
			}
			_, err := time.Parse("15:04:05", s)
			return err == nil
		},
		Message: msg,
	}
}

// containsBoth fails unless the string matches every given pattern.
func containsBoth(msg string, res ...*regexp.Regexp) Rule {
	return Rule{
		Apply: func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return false
			}
			for _, re := range res {
				if !re.MatchString(s) {
					return false
				}
			}
			return true
		},
		Message: msg,
	}
}

// Number coerces a decoded JSON value to float64.  Decoders in this
// codebase use json.Decoder.UseNumber, so numbers arrive as json.Number;
// numeric strings are accepted for form-style clients.
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}
