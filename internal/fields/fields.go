// Package fields holds the text field types every entity uses to validate
// untrusted input before it reaches the database.
package fields

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"gorm.io/datatypes"
)

// MaxLength is the column size of every bounded text field.
const MaxLength = 100

const (
	MsgMissing       = "missing required field"
	MsgInvalidChoice = "invalid choice"
	MsgTooLong       = "value is too long"
)

// Text describes a bounded-length text field.
type Text struct {
	Label     string
	HelpText  string
	Default   string
	Required  bool
	Choices   Choices
	MaxLength int
}

type Option func(*Text)

func WithChoices(choices Choices) Option {
	return func(t *Text) { t.Choices = choices }
}

func WithDefault(value string) Option {
	return func(t *Text) { t.Default = value }
}

func WithHelpText(text string) Option {
	return func(t *Text) { t.HelpText = text }
}

// RequiredText rejects empty and whitespace-only values. With choices, only
// the enumerated codes are accepted.
func RequiredText(label string, opts ...Option) Text {
	t := Text{Label: label, Required: true, MaxLength: MaxLength}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// OptionalText accepts blank values; they are stored as NULL.
func OptionalText(label string, opts ...Option) Text {
	t := Text{Label: label, MaxLength: MaxLength}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

var notBlank = validation.NewStringRule(func(s string) bool {
	return strings.TrimSpace(s) != ""
}, MsgMissing)

// Rules returns the ozzo-validation rules for use with validation.Field.
func (t Text) Rules() []validation.Rule {
	var rules []validation.Rule
	if t.Required {
		rules = append(rules, validation.Required.Error(MsgMissing), notBlank)
	}
	if t.MaxLength > 0 {
		rules = append(rules, validation.RuneLength(0, t.MaxLength).Error(MsgTooLong))
	}
	if len(t.Choices) > 0 {
		rules = append(rules, validation.In(t.Choices.values()...).Error(MsgInvalidChoice))
	}
	return rules
}

// Validate checks a single value against the field.
func (t Text) Validate(value string) error {
	return validation.Validate(value, t.Rules()...)
}

// Clean trims surrounding whitespace. A blank value stays blank.
func (t Text) Clean(value string) string {
	return strings.TrimSpace(value)
}

// Resolve returns the default when no value was submitted at all and the
// trimmed value otherwise.
func (t Text) Resolve(value *string) string {
	if value == nil {
		return t.Default
	}
	return t.Clean(*value)
}

// Describe returns the label, followed by the help text in parentheses.
func (t Text) Describe() string {
	if t.HelpText == "" {
		return t.Label
	}
	return fmt.Sprintf("%s (%s)", t.Label, t.HelpText)
}

// Form maps the JSON name of each text field of an entity to its field.
type Form map[string]Text

// Resolve applies the default of the named field, see Text.Resolve.
func (f Form) Resolve(name string, value *string) string {
	return f[name].Resolve(value)
}

// Labels returns the description of every field by JSON name.
func (f Form) Labels() map[string]string {
	labels := make(map[string]string, len(f))
	for name, t := range f {
		labels[name] = t.Describe()
	}
	return labels
}

// Optional returns nil for blank input so optional columns store NULL.
func Optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// Deref returns the empty string for a nil optional value.
func Deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// RequiredDate rejects the zero date.
var RequiredDate = validation.By(func(value interface{}) error {
	var t time.Time
	switch v := value.(type) {
	case datatypes.Date:
		t = time.Time(v)
	case *datatypes.Date:
		if v != nil {
			t = time.Time(*v)
		}
	case time.Time:
		t = v
	}
	if t.IsZero() {
		return errors.New(MsgMissing)
	}
	return nil
})

// Date truncates t to its calendar day at UTC midnight, which is how every
// date column is stored.
func Date(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (datatypes.Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return datatypes.Date{}, err
	}
	return Date(t), nil
}
