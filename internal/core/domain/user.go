package domain

import (
	"strings"
	"time"
)

const (
	RoleStaff   = "staff"
	RoleLearner = "learner"
)

// Attribute names stored as UserAttribute records.
const (
	AttrCreatedOnSite = "created_on_site"
)

// LanguagePreferenceKey is the preference key holding a learner's UI language.
const LanguagePreferenceKey = "pref-lang"

// Profile holds the learner facing profile fields edited through account settings.
type Profile struct {
	Name             string `json:"name" bson:"name"`
	Gender           string `json:"gender,omitempty" bson:"gender,omitempty"`
	Bio              string `json:"bio,omitempty" bson:"bio,omitempty"`
	Country          string `json:"country,omitempty" bson:"country,omitempty"`
	YearOfBirth      int    `json:"year_of_birth,omitempty" bson:"year_of_birth,omitempty"`
	LevelOfEducation string `json:"level_of_education,omitempty" bson:"level_of_education,omitempty"`
	Goals            string `json:"goals,omitempty" bson:"goals,omitempty"`
}

// User models a learner account shared by every site.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"date_joined"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role maps the account flags onto the API role carried in tokens.
func (u *User) Role() string {
	if u.IsStaff || u.IsSuperuser {
		return RoleStaff
	}
	return RoleLearner
}

// Registration is created together with the account and carries the key used
// by the external activation flow.
type Registration struct {
	UserID        string `json:"user_id"`
	ActivationKey string `json:"activation_key"`
}

// UserAttribute is a single key/value attached to a user. Latest write wins.
type UserAttribute struct {
	UserID string
	Name   string
	Value  string
}

// SignupSource records that a user signed up through a site.
type SignupSource struct {
	UserID string
	Site   string
}

// UserQuery selects a user by username and/or email. When both are set they
// must match the same record.
type UserQuery struct {
	Username string
	Email    string
}

// IsEmpty reports whether no identifier was supplied.
func (q UserQuery) IsEmpty() bool { return q.Username == "" && q.Email == "" }

// String renders the query the way lookup errors report it.
func (q UserQuery) String() string {
	parts := make([]string, 0, 2)
	if q.Email != "" {
		parts = append(parts, "'email': '"+q.Email+"'")
	}
	if q.Username != "" {
		parts = append(parts, "'username': '"+q.Username+"'")
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// RetiredEmail rewrites email so it can no longer be used to log in or look
// the account up, while keeping the original local part and domain embedded:
// "jane@example.com" becomes "jane+example.com@<retirementDomain>".
func RetiredEmail(email, retirementDomain string) string {
	return strings.ReplaceAll(email, "@", "+") + "@" + retirementDomain
}
