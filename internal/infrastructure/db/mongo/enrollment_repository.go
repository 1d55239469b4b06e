package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openlearn/provisioning/internal/core/domain"
)

const (
	collectionEnrollments          = "enrollments"
	collectionEnrollmentAttributes = "enrollment_attributes"
)

// EnrollmentRepository implements ports.EnrollmentStore. CreateEnrollment and
// UpdateEnrollment enforce the regular access rules (known learner, known
// course, open enrollment window); Enroll and ForceUpdate do not.
type EnrollmentRepository struct {
	enrollments *mongo.Collection
	attrs       *mongo.Collection
	users       *mongo.Collection
	courses     *mongo.Collection
	now         func() time.Time
}

func NewEnrollmentRepository(db *mongo.Database) *EnrollmentRepository {
	return &EnrollmentRepository{
		enrollments: db.Collection(collectionEnrollments),
		attrs:       db.Collection(collectionEnrollmentAttributes),
		users:       db.Collection(collectionUsers),
		courses:     db.Collection(collectionCourses),
		now:         time.Now,
	}
}

type mongoEnrollment struct {
	Username  string    `bson:"username"`
	CourseID  string    `bson:"course_id"`
	Mode      string    `bson:"mode"`
	IsActive  bool      `bson:"is_active"`
	CreatedAt time.Time `bson:"created_at"`
}

func (me mongoEnrollment) toDomain() *domain.Enrollment {
	return &domain.Enrollment{
		Username:  me.Username,
		CourseID:  me.CourseID,
		Mode:      me.Mode,
		IsActive:  me.IsActive,
		CreatedAt: me.CreatedAt.UTC(),
	}
}

func (r *EnrollmentRepository) CreateEnrollment(ctx context.Context, username, courseID, mode string, active bool) (*domain.Enrollment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := r.checkAccess(ctx, username, courseID); err != nil {
		return nil, err
	}

	doc := mongoEnrollment{
		Username:  username,
		CourseID:  courseID,
		Mode:      mode,
		IsActive:  active,
		CreatedAt: r.now().UTC(),
	}
	if _, err := r.enrollments.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEnrollmentExists
		}
		return nil, fmt.Errorf("insert enrollment: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EnrollmentRepository) UpdateEnrollment(ctx context.Context, username, courseID, mode string, active bool) (*domain.Enrollment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := r.checkAccess(ctx, username, courseID); err != nil {
		return nil, err
	}
	return r.setModeAndActive(ctx, username, courseID, mode, active)
}

// Enroll creates or reactivates the enrollment without access checks. New
// records start in audit mode.
func (r *EnrollmentRepository) Enroll(ctx context.Context, user *domain.User, key domain.CourseKey) (*domain.Enrollment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"username": user.Username, "course_id": key.String()}
	update := bson.M{
		"$set": bson.M{"is_active": true},
		"$setOnInsert": bson.M{
			"mode":       domain.ModeAudit,
			"created_at": r.now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc mongoEnrollment
	if err := r.enrollments.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("enroll: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EnrollmentRepository) ForceUpdate(ctx context.Context, e *domain.Enrollment, mode string, active bool) (*domain.Enrollment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.setModeAndActive(ctx, e.Username, e.CourseID, mode, active)
}

// SetEnrollmentAttributes upserts each attribute by (namespace, name).
func (r *EnrollmentRepository) SetEnrollmentAttributes(ctx context.Context, username, courseID string, attrs []domain.EnrollmentAttribute) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for _, a := range attrs {
		filter := bson.M{
			"username":  username,
			"course_id": courseID,
			"namespace": a.Namespace,
			"name":      a.Name,
		}
		_, err := r.attrs.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"value": a.Value}}, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("set enrollment attribute %s.%s: %w", a.Namespace, a.Name, err)
		}
	}
	return nil
}

// EnsureIndexes creates the one-record-per-(user, course) constraint.
func (r *EnrollmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.enrollments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}, {Key: "course_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "course_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("enrollments indexes: %w", err)
	}

	_, err = r.attrs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "username", Value: 1},
			{Key: "course_id", Value: 1},
			{Key: "namespace", Value: 1},
			{Key: "name", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("enrollment_attributes indexes: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) setModeAndActive(ctx context.Context, username, courseID, mode string, active bool) (*domain.Enrollment, error) {
	filter := bson.M{"username": username, "course_id": courseID}
	update := bson.M{"$set": bson.M{"mode": mode, "is_active": active}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoEnrollment
	if err := r.enrollments.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("update enrollment: %w", err)
	}
	return doc.toDomain(), nil
}

// checkAccess applies the regular enrollment rules: the learner must exist and
// the course must exist with an open enrollment window.
func (r *EnrollmentRepository) checkAccess(ctx context.Context, username, courseID string) error {
	if err := r.users.FindOne(ctx, bson.M{"username": username}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	var course mongoCourse
	if err := r.courses.FindOne(ctx, bson.M{"_id": courseID}).Decode(&course); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrCourseNotFound
		}
		return fmt.Errorf("find course: %w", err)
	}
	if !course.enrollmentOpen(r.now()) {
		return domain.ErrEnrollmentClosed
	}
	return nil
}
