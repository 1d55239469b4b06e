package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/openlearn/provisioning/internal/core/domain"
)

const (
	collectionCourses  = "courses"
	collectionPrograms = "programs"
)

type mongoCourseMode struct {
	Slug               string     `bson:"slug"`
	Name               string     `bson:"name"`
	ExpirationDatetime *time.Time `bson:"expiration_datetime,omitempty"`
}

// mongoCourse is a course run keyed by its course id string.
type mongoCourse struct {
	ID              string            `bson:"_id"`
	Org             string            `bson:"org"`
	Modes           []mongoCourseMode `bson:"modes"`
	EnrollmentStart *time.Time        `bson:"enrollment_start,omitempty"`
	EnrollmentEnd   *time.Time        `bson:"enrollment_end,omitempty"`
}

func (c mongoCourse) enrollmentOpen(now time.Time) bool {
	if c.EnrollmentStart != nil && now.Before(*c.EnrollmentStart) {
		return false
	}
	if c.EnrollmentEnd != nil && now.After(*c.EnrollmentEnd) {
		return false
	}
	return true
}

type mongoProgram struct {
	ID        string   `bson:"_id"`
	CourseIDs []string `bson:"course_ids"`
}

// CatalogRepository implements ports.CourseCatalog and ports.ProgramCatalog.
type CatalogRepository struct {
	courses  *mongo.Collection
	programs *mongo.Collection
}

func NewCatalogRepository(db *mongo.Database) *CatalogRepository {
	return &CatalogRepository{
		courses:  db.Collection(collectionCourses),
		programs: db.Collection(collectionPrograms),
	}
}

// CourseModes lists the modes of courseID, skipping expired ones unless
// includeExpired is set.
func (r *CatalogRepository) CourseModes(ctx context.Context, courseID string, includeExpired bool) ([]domain.CourseMode, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c mongoCourse
	if err := r.courses.FindOne(ctx, bson.M{"_id": courseID}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}

	now := time.Now()
	modes := make([]domain.CourseMode, 0, len(c.Modes))
	for _, m := range c.Modes {
		mode := domain.CourseMode{Slug: m.Slug, Name: m.Name, ExpirationDatetime: m.ExpirationDatetime}
		if !includeExpired && mode.Expired(now) {
			continue
		}
		modes = append(modes, mode)
	}
	return modes, nil
}

// ProgramCourses returns the course runs of a program in catalog order.
func (r *CatalogRepository) ProgramCourses(ctx context.Context, programID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p mongoProgram
	if err := r.programs.FindOne(ctx, bson.M{"_id": programID}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProgramNotFound
		}
		return nil, fmt.Errorf("find program: %w", err)
	}
	return p.CourseIDs, nil
}

// EnsureIndexes indexes courses by organization.
func (r *CatalogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.courses.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "org", Value: 1}}})
	return err
}
