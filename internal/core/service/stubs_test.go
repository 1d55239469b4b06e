package service

import (
	"context"
	"strings"
	"time"

	"github.com/openlearn/provisioning/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory identity store
// ---------------------------------------------------------------------------

type memStore struct {
	users   map[string]*domain.User // by ID
	regs    map[string]domain.Registration
	attrs   map[string]map[string]string
	signups map[string][]string

	checkErr      error
	findErr       error
	regErr        error // CreateAccount fails after the user row is written
	updateErr     error
	profileErr    error // UpdateUser fails after the user row is written
	deactivateErr error
	setAttrErr    error
	getAttrErr    error
	signupErr     error

	checkCalls  int
	createCalls int
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[string]*domain.User),
		regs:    make(map[string]domain.Registration),
		attrs:   make(map[string]map[string]string),
		signups: make(map[string][]string),
	}
}

func (s *memStore) seed(u *domain.User) *domain.User {
	if u.ID == "" {
		u.ID = "id-" + u.Username
	}
	clone := *u
	s.users[u.ID] = &clone
	return u
}

func (s *memStore) FindUser(_ context.Context, q domain.UserQuery) (*domain.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	var found []*domain.User
	for _, u := range s.users {
		if q.Username != "" && u.Username != q.Username {
			continue
		}
		if q.Email != "" && !strings.EqualFold(u.Email, q.Email) {
			continue
		}
		found = append(found, u)
	}
	switch len(found) {
	case 0:
		return nil, domain.ErrUserNotFound
	case 1:
		clone := *found[0]
		return &clone, nil
	default:
		return nil, domain.ErrAmbiguousUser
	}
}

func (s *memStore) CreateAccount(_ context.Context, user *domain.User, reg *domain.Registration) (*domain.User, error) {
	s.createCalls++
	for _, u := range s.users {
		if u.Username == user.Username {
			return nil, domain.NewConflictError("username")
		}
	}
	clone := *user
	s.users[user.ID] = &clone
	if s.regErr != nil {
		return nil, s.regErr
	}
	s.regs[user.ID] = *reg
	out := clone
	return &out, nil
}

func (s *memStore) UpdateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	if _, ok := s.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	if s.profileErr != nil {
		row := *user
		row.Profile = s.users[user.ID].Profile
		s.users[user.ID] = &row
		return nil, s.profileErr
	}
	clone := *user
	s.users[user.ID] = &clone
	out := clone
	return &out, nil
}

func (s *memStore) DeactivateUser(_ context.Context, userID, retiredEmail string) error {
	if s.deactivateErr != nil {
		return s.deactivateErr
	}
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsActive = false
	u.Email = retiredEmail
	return nil
}

func (s *memStore) CheckConflicts(_ context.Context, email, username string) ([]string, error) {
	s.checkCalls++
	if s.checkErr != nil {
		return nil, s.checkErr
	}
	var fields []string
	for _, u := range s.users {
		if email != "" && strings.EqualFold(u.Email, email) {
			fields = append(fields, "email")
		}
		if username != "" && u.Username == username {
			fields = append(fields, "username")
		}
	}
	return fields, nil
}

func (s *memStore) SetUserAttribute(_ context.Context, userID, name, value string) error {
	if s.setAttrErr != nil {
		return s.setAttrErr
	}
	if s.attrs[userID] == nil {
		s.attrs[userID] = make(map[string]string)
	}
	s.attrs[userID][name] = value
	return nil
}

func (s *memStore) GetUserAttribute(_ context.Context, userID, name string) (string, error) {
	if s.getAttrErr != nil {
		return "", s.getAttrErr
	}
	return s.attrs[userID][name], nil
}

func (s *memStore) AddSignupSource(_ context.Context, userID, site string) error {
	if s.signupErr != nil {
		return s.signupErr
	}
	s.signups[userID] = append(s.signups[userID], site)
	return nil
}

func (s *memStore) HasSignupSource(_ context.Context, userID, site string) (bool, error) {
	for _, v := range s.signups[userID] {
		if v == site {
			return true, nil
		}
	}
	return false, nil
}

// memTx snapshots the user and registration tables and restores them when the
// callback fails, mirroring a rolled back transaction.
type memTx struct {
	store *memStore
}

func (t memTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	users := make(map[string]*domain.User, len(t.store.users))
	for k, v := range t.store.users {
		users[k] = v
	}
	regs := make(map[string]domain.Registration, len(t.store.regs))
	for k, v := range t.store.regs {
		regs[k] = v
	}
	if err := fn(ctx); err != nil {
		t.store.users = users
		t.store.regs = regs
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------------

type stubComments struct {
	err        error
	registered []string
}

func (c *stubComments) RegisterUser(_ context.Context, u *domain.User) error {
	if c.err != nil {
		return c.err
	}
	c.registered = append(c.registered, u.Username)
	return nil
}

type stubPrefs struct {
	err   error
	prefs map[string]string
}

func (p *stubPrefs) SetPreference(_ context.Context, username, key, value string) error {
	if p.err != nil {
		return p.err
	}
	if p.prefs == nil {
		p.prefs = make(map[string]string)
	}
	p.prefs[username+":"+key] = value
	return nil
}

func (p *stubPrefs) GetPreference(_ context.Context, username, key string) (string, error) {
	return p.prefs[username+":"+key], nil
}

// plainHasher keeps tests fast; bcrypt is covered by TestBcryptHasher.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func (plainHasher) Compare(hash, p string) error {
	if hash != "hashed:"+p {
		return domain.ErrInvalidCredentials
	}
	return nil
}

type stubOrgs struct {
	all []string
	err error
}

func (o stubOrgs) AllOrganizations(context.Context) ([]string, error) { return o.all, o.err }

type stubCatalog struct {
	modes map[string][]domain.CourseMode
	err   error
}

func (c stubCatalog) CourseModes(_ context.Context, courseID string, includeExpired bool) ([]domain.CourseMode, error) {
	if c.err != nil {
		return nil, c.err
	}
	modes, ok := c.modes[courseID]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	now := time.Now()
	var out []domain.CourseMode
	for _, m := range modes {
		if !includeExpired && m.Expired(now) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

type stubPrograms struct {
	courses map[string][]string
}

func (p stubPrograms) ProgramCourses(_ context.Context, id string) ([]string, error) {
	c, ok := p.courses[id]
	if !ok {
		return nil, domain.ErrProgramNotFound
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// In-memory enrollment store
// ---------------------------------------------------------------------------

type memEnrollments struct {
	records map[string]*domain.Enrollment
	attrs   map[string][]domain.EnrollmentAttribute

	createErr error // returned instead of the regular create outcome
	updateErr error
	enrollErr error
	forceErr  error
	attrErr   error

	calls []string
}

func newMemEnrollments() *memEnrollments {
	return &memEnrollments{
		records: make(map[string]*domain.Enrollment),
		attrs:   make(map[string][]domain.EnrollmentAttribute),
	}
}

func enrollmentKey(username, courseID string) string { return username + "|" + courseID }

func (m *memEnrollments) CreateEnrollment(_ context.Context, username, courseID, mode string, active bool) (*domain.Enrollment, error) {
	m.calls = append(m.calls, "create")
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, ok := m.records[enrollmentKey(username, courseID)]; ok {
		return nil, domain.ErrEnrollmentExists
	}
	e := &domain.Enrollment{Username: username, CourseID: courseID, Mode: mode, IsActive: active, CreatedAt: time.Now()}
	m.records[enrollmentKey(username, courseID)] = e
	clone := *e
	return &clone, nil
}

func (m *memEnrollments) UpdateEnrollment(_ context.Context, username, courseID, mode string, active bool) (*domain.Enrollment, error) {
	m.calls = append(m.calls, "update")
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	e, ok := m.records[enrollmentKey(username, courseID)]
	if !ok {
		return nil, domain.ErrEnrollmentNotFound
	}
	e.Mode, e.IsActive = mode, active
	clone := *e
	return &clone, nil
}

func (m *memEnrollments) Enroll(_ context.Context, user *domain.User, key domain.CourseKey) (*domain.Enrollment, error) {
	m.calls = append(m.calls, "enroll")
	if m.enrollErr != nil {
		return nil, m.enrollErr
	}
	k := enrollmentKey(user.Username, key.String())
	e, ok := m.records[k]
	if !ok {
		e = &domain.Enrollment{Username: user.Username, CourseID: key.String(), Mode: domain.ModeAudit, CreatedAt: time.Now()}
		m.records[k] = e
	}
	e.IsActive = true
	clone := *e
	return &clone, nil
}

func (m *memEnrollments) ForceUpdate(_ context.Context, e *domain.Enrollment, mode string, active bool) (*domain.Enrollment, error) {
	m.calls = append(m.calls, "force_update")
	if m.forceErr != nil {
		return nil, m.forceErr
	}
	rec := m.records[enrollmentKey(e.Username, e.CourseID)]
	rec.Mode, rec.IsActive = mode, active
	clone := *rec
	return &clone, nil
}

func (m *memEnrollments) SetEnrollmentAttributes(_ context.Context, username, courseID string, attrs []domain.EnrollmentAttribute) error {
	if m.attrErr != nil {
		return m.attrErr
	}
	m.attrs[enrollmentKey(username, courseID)] = attrs
	return nil
}
