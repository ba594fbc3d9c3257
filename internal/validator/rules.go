package validator

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/sysocial/sysocial-backend/internal/model"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// rule is one custom predicate of the shared rule table. Request structs opt
// in by naming the tag in their binding tags.
type rule struct {
	tag     string
	message string // {0} is the JSON field name, {1} the tag parameter
	check   func(s, param string) bool
}

var rules = []rule{
	{tag: "isodate", message: "{0} must be a date in YYYY-MM-DD format", check: noParam(IsISODate)},
	{tag: "timeofday", message: "{0} must be a time in HH:MM or HH:MM:SS format", check: noParam(IsTimeOfDay)},
	{tag: "weekday", message: "{0} must be a day of the week", check: noParam(func(s string) bool {
		_, ok := CanonicalWeekday(s)
		return ok
	})},
	{tag: "usertype", message: "{0} must be one of [A U P]", check: noParam(func(s string) bool {
		return model.UserType(s).Valid()
	})},
	{tag: "maxbytes", message: "{0} must be at most {1} bytes long", check: MaxBytes},
}

func noParam(f func(string) bool) func(string, string) bool {
	return func(s, _ string) bool { return f(s) }
}

func registerRule(v *govalidator.Validate, r rule) {
	_ = v.RegisterValidation(r.tag, func(fl govalidator.FieldLevel) bool {
		return r.check(fl.Field().String(), fl.Param())
	})
	_ = v.RegisterTranslation(r.tag, trans,
		func(t ut.Translator) error {
			return t.Add(r.tag, r.message, true)
		},
		func(t ut.Translator, fe govalidator.FieldError) string {
			msg, _ := t.T(r.tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// MaxBytes reports whether s fits in limit bytes of UTF-8. The built-in max
// counts runes, which lets multi-byte passwords past bcrypt's 72-byte cap.
func MaxBytes(s, limit string) bool {
	n, err := strconv.Atoi(limit)
	if err != nil {
		return false
	}
	return len(s) <= n
}

var (
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)
)

// IsISODate accepts only a real calendar date written as YYYY-MM-DD.
func IsISODate(s string) bool {
	if !isoDatePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(model.DateLayout, s)
	return err == nil
}

// IsTimeOfDay accepts HH:MM and HH:MM:SS on a 24-hour clock.
func IsTimeOfDay(s string) bool {
	return timeOfDayPattern.MatchString(s)
}

var weekdays = map[string]string{
	"segunda": "Segunda-feira",
	"terca":   "Terça-feira",
	"quarta":  "Quarta-feira",
	"quinta":  "Quinta-feira",
	"sexta":   "Sexta-feira",
	"sabado":  "Sábado",
	"domingo": "Domingo",

	"monday":    "Segunda-feira",
	"tuesday":   "Terça-feira",
	"wednesday": "Quarta-feira",
	"thursday":  "Quinta-feira",
	"friday":    "Sexta-feira",
	"saturday":  "Sábado",
	"sunday":    "Domingo",
}

// CanonicalWeekday maps the accepted spellings of a weekday ("Terça Feira",
// "terca-feira", "Tuesday", ...) to one stored form.
func CanonicalWeekday(s string) (string, bool) {
	canonical, ok := weekdays[foldWeekday(s)]
	return canonical, ok
}

func foldWeekday(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(strings.ReplaceAll(folded, "-", " "))
	folded = strings.Join(strings.Fields(folded), " ")
	return strings.TrimSuffix(folded, " feira")
}
