package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/openlearn/provisioning/internal/core/domain"
	"github.com/openlearn/provisioning/internal/core/ports"
)

const notEditable = "This field is not editable via this API"

var (
	errInvalidInteger = errors.New("A valid integer is required.")
	errInvalidString  = errors.New("Not a valid string.")
)

// settingField describes one editable account setting: how to validate the
// incoming value and how to apply it.
type settingField struct {
	rule  string
	apply func(u *domain.User, v any)
}

var settingFields = map[string]settingField{
	"name":               {rule: "required,max=255", apply: func(u *domain.User, v any) { u.Profile.Name = v.(string) }},
	"email":              {rule: "required,email,max=254", apply: func(u *domain.User, v any) { u.Email = v.(string) }},
	"gender":             {rule: "omitempty,oneof=m f o", apply: func(u *domain.User, v any) { u.Profile.Gender = v.(string) }},
	"bio":                {rule: "max=3000", apply: func(u *domain.User, v any) { u.Profile.Bio = v.(string) }},
	"country":            {rule: "omitempty,iso3166_1_alpha2", apply: func(u *domain.User, v any) { u.Profile.Country = v.(string) }},
	"level_of_education": {rule: "omitempty,oneof=p m b a hs jhs el none other", apply: func(u *domain.User, v any) { u.Profile.LevelOfEducation = v.(string) }},
	"goals":              {rule: "max=3000", apply: func(u *domain.User, v any) { u.Profile.Goals = v.(string) }},
	"year_of_birth":      {rule: "gte=1900", apply: func(u *domain.User, v any) { u.Profile.YearOfBirth = v.(int) }},
}

// AccountSettings is the settings subsystem behind AccountService.Update. It
// validates every field first and writes the user and profile in one
// transaction, so an update is applied fully or not at all.
type AccountSettings struct {
	store    ports.IdentityStore
	tx       ports.Transactor
	validate *validator.Validate
}

func NewAccountSettings(store ports.IdentityStore, tx ports.Transactor) *AccountSettings {
	return &AccountSettings{store: store, tx: tx, validate: validator.New()}
}

func (a *AccountSettings) UpdateAccountSettings(ctx context.Context, user *domain.User, update map[string]any) (*domain.User, error) {
	fieldErrors := make(map[string]string)
	values := make(map[string]any, len(update))

	for name, raw := range update {
		field, ok := settingFields[name]
		if !ok {
			fieldErrors[name] = notEditable
			continue
		}
		v, err := normalize(name, raw)
		if err != nil {
			fieldErrors[name] = err.Error()
			continue
		}
		if err := a.validate.Var(v, field.rule); err != nil {
			fieldErrors[name] = settingMessage(name, err)
			continue
		}
		values[name] = v
	}

	if email, ok := values["email"].(string); ok && !strings.EqualFold(email, user.Email) {
		conflicts, err := a.store.CheckConflicts(ctx, email, "")
		if err != nil {
			return nil, fmt.Errorf("check email conflict: %w", err)
		}
		if len(conflicts) > 0 {
			fieldErrors["email"] = fmt.Sprintf("The email address you've provided is already in use: %s", email)
		}
	}

	if len(fieldErrors) > 0 {
		return nil, &domain.AccountValidationError{FieldErrors: fieldErrors}
	}

	next := *user
	for name, v := range values {
		settingFields[name].apply(&next, v)
	}
	next.UpdatedAt = time.Now().UTC()

	var updated *domain.User
	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = a.store.UpdateUser(ctx, &next)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// normalize converts JSON decoded values into the Go type a field expects.
func normalize(name string, raw any) (any, error) {
	if name == "year_of_birth" {
		switch n := raw.(type) {
		case int:
			return n, nil
		case float64:
			if n != float64(int(n)) {
				return nil, errInvalidInteger
			}
			return int(n), nil
		default:
			return nil, errInvalidInteger
		}
	}
	s, ok := raw.(string)
	if !ok {
		return nil, errInvalidString
	}
	return strings.TrimSpace(s), nil
}

func settingMessage(name string, err error) string {
	ve, ok := err.(validator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return err.Error()
	}
	switch ve[0].Tag() {
	case "required":
		return "This field may not be blank."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", ve[0].Param())
	case "oneof", "iso3166_1_alpha2":
		return fmt.Sprintf("%q is not a valid choice for %s.", fmt.Sprint(ve[0].Value()), name)
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", ve[0].Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", name, ve[0].Tag())
	}
}
