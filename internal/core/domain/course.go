package domain

import (
	"regexp"
	"strings"
	"time"
)

const courseKeyPrefix = "course-v1:"

var keyPart = regexp.MustCompile(`^[\w\-~.:%]+$`)

// CourseKey identifies a course run. The organization component scopes the
// course to a tenant.
type CourseKey struct {
	Org        string
	Course     string
	Run        string
	Deprecated bool // legacy ORG/COURSE/RUN form
}

// ParseCourseKey parses "course-v1:ORG+COURSE+RUN" or the legacy "ORG/COURSE/RUN".
func ParseCourseKey(s string) (CourseKey, error) {
	invalid := &InvalidIdentifierError{Kind: "course_id", Value: s}

	var parts []string
	deprecated := false
	switch {
	case strings.HasPrefix(s, courseKeyPrefix):
		parts = strings.Split(strings.TrimPrefix(s, courseKeyPrefix), "+")
	case strings.Count(s, "/") == 2:
		parts = strings.Split(s, "/")
		deprecated = true
	default:
		return CourseKey{}, invalid
	}
	if len(parts) != 3 {
		return CourseKey{}, invalid
	}
	for _, p := range parts {
		if !keyPart.MatchString(p) {
			return CourseKey{}, invalid
		}
	}
	return CourseKey{Org: parts[0], Course: parts[1], Run: parts[2], Deprecated: deprecated}, nil
}

func (k CourseKey) String() string {
	if k.Deprecated {
		return k.Org + "/" + k.Course + "/" + k.Run
	}
	return courseKeyPrefix + k.Org + "+" + k.Course + "+" + k.Run
}

// Known enrollment modes.
const (
	ModeAudit            = "audit"
	ModeCredit           = "credit"
	ModeHonor            = "honor"
	ModeNoIDProfessional = "no-id-professional"
	ModeProfessional     = "professional"
	ModeVerified         = "verified"
	ModeMasters          = "masters"
)

// AllModes is every mode the platform knows about, regardless of course.
var AllModes = []string{
	ModeAudit, ModeCredit, ModeHonor, ModeNoIDProfessional,
	ModeProfessional, ModeVerified, ModeMasters,
}

// IsKnownMode reports whether mode is one of AllModes.
func IsKnownMode(mode string) bool {
	for _, m := range AllModes {
		if m == mode {
			return true
		}
	}
	return false
}

// CourseMode is a mode offered by a specific course.
type CourseMode struct {
	Slug               string     `json:"slug" bson:"slug"`
	Name               string     `json:"name" bson:"name"`
	ExpirationDatetime *time.Time `json:"expiration_datetime,omitempty" bson:"expiration_datetime,omitempty"`
}

// Expired reports whether the mode can no longer be purchased at now.
func (m CourseMode) Expired(now time.Time) bool {
	return m.ExpirationDatetime != nil && now.After(*m.ExpirationDatetime)
}
