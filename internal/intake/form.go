// Package intake collects and validates the candidate's profile before an
// interview session may start.
package intake

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/talent-scout/scout/internal/interview"
)

// phonePattern accepts international numbers with common separators.
var phonePattern = regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,15}$`)

// Form is the raw intake form as the candidate fills it in. TechStack is a
// free-text comma-separated list; ParseSkills turns it into the topic list.
type Form struct {
	FullName   string `mapstructure:"full_name" validate:"required,min=2"`
	Email      string `mapstructure:"email" validate:"required,email"`
	Phone      string `mapstructure:"phone_number" validate:"required,phone"`
	Experience int    `mapstructure:"experience_years" validate:"gte=0,lte=50"`
	Position   string `mapstructure:"desired_position" validate:"required"`
	Location   string `mapstructure:"current_location" validate:"required"`
	TechStack  string `mapstructure:"tech_stack" validate:"required"`
}

// Validator checks intake forms. It wraps a configured validator instance so
// the custom phone rule is registered exactly once.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	if err != nil {
		return nil, fmt.Errorf("registering phone validation: %w", err)
	}

	return &Validator{validate: v}, nil
}

// Decode builds a form from raw string answers keyed by field name. Numeric
// fields are converted leniently so "5" and 5 both work.
func Decode(answers map[string]string) (*Form, error) {
	var form Form

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &form,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("building form decoder: %w", err)
	}

	if err := dec.Decode(trimValues(answers)); err != nil {
		return nil, fmt.Errorf("decoding intake form: %w", err)
	}

	return &form, nil
}

// Check validates the form and returns one error per failing field, in a
// message a candidate can act on.
func (v *Validator) Check(form *Form) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("invalid intake form: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "FullName":
		return "full name must be at least 2 characters"
	case "Email":
		return "email address is not valid"
	case "Phone":
		return "phone number must be 10-15 digits, optionally with +, spaces, dashes or parentheses"
	case "Experience":
		return "years of experience must be between 0 and 50"
	case "Position":
		return "desired position is required"
	case "Location":
		return "current location is required"
	case "TechStack":
		return "tech stack must list at least one skill"
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// Profile converts a validated form into the immutable candidate profile the
// interview engine consumes. Resume text is attached separately because it is
// optional and never part of the form.
func (f *Form) Profile(resume string) (interview.CandidateProfile, error) {
	skills := ParseSkills(f.TechStack)
	if len(skills) == 0 {
		return interview.CandidateProfile{}, interview.ErrInvalidProfile
	}

	return interview.CandidateProfile{
		FullName:   strings.TrimSpace(f.FullName),
		Email:      strings.TrimSpace(f.Email),
		Phone:      strings.TrimSpace(f.Phone),
		Experience: f.Experience,
		Position:   strings.TrimSpace(f.Position),
		Location:   strings.TrimSpace(f.Location),
		Skills:     skills,
		Resume:     resume,
	}, nil
}

// ParseSkills splits a comma-separated tech stack into distinct skills,
// preserving declaration order and the first-seen casing.
func ParseSkills(raw string) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, part := range strings.Split(raw, ",") {
		skill := strings.TrimSpace(part)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}

	return out
}

func trimValues(answers map[string]string) map[string]string {
	out := make(map[string]string, len(answers))
	for k, v := range answers {
		out[k] = strings.TrimSpace(v)
	}
	return out
}
