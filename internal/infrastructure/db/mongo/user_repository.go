package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openlearn/provisioning/internal/core/domain"
)

const (
	collectionUsers          = "users"
	collectionProfiles       = "profiles"
	collectionRegistrations  = "registrations"
	collectionUserAttributes = "user_attributes"
	collectionSignupSources  = "signup_sources"
)

// UserRepository implements ports.IdentityStore on MongoDB. Users, profiles
// and registrations live in separate collections; CreateAccount must run in a
// Transactor for the three inserts to be atomic.
type UserRepository struct {
	users    *mongo.Collection
	profiles *mongo.Collection
	regs     *mongo.Collection
	attrs    *mongo.Collection
	signups  *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		users:    db.Collection(collectionUsers),
		profiles: db.Collection(collectionProfiles),
		regs:     db.Collection(collectionRegistrations),
		attrs:    db.Collection(collectionUserAttributes),
		signups:  db.Collection(collectionSignupSources),
	}
}

type mongoUser struct {
	ID           string `bson:"_id"`
	Username     string `bson:"username"`
	Email        string `bson:"email"`
	PasswordHash string `bson:"password_hash"`
	IsActive     bool   `bson:"is_active"`
	IsStaff      bool   `bson:"is_staff"`
	IsSuperuser  bool   `bson:"is_superuser"`
	CreatedAt    int64  `bson:"created_at"`
	UpdatedAt    int64  `bson:"updated_at"`
}

type mongoProfile struct {
	UserID         string `bson:"_id"`
	domain.Profile `bson:",inline"`
}

type mongoRegistration struct {
	UserID        string `bson:"_id"`
	ActivationKey string `bson:"activation_key"`
	CreatedAt     int64  `bson:"created_at"`
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		IsStaff:      u.IsStaff,
		IsSuperuser:  u.IsSuperuser,
		CreatedAt:    u.CreatedAt.Unix(),
		UpdatedAt:    u.UpdatedAt.Unix(),
	}
}

func (mu mongoUser) toDomain(p domain.Profile) *domain.User {
	return &domain.User{
		ID:           mu.ID,
		Username:     mu.Username,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		IsActive:     mu.IsActive,
		IsStaff:      mu.IsStaff,
		IsSuperuser:  mu.IsSuperuser,
		Profile:      p,
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}
}

// FindUser returns the user matching every identifier set in q. Emails are
// compared case-insensitively.
func (r *UserRepository) FindUser(ctx context.Context, q domain.UserQuery) (*domain.User, error) {
	if q.IsEmpty() {
		return nil, domain.ErrUserNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if q.Username != "" {
		filter["username"] = q.Username
	}
	if q.Email != "" {
		filter["email"] = q.Email
	}

	opts := options.Find().SetCollation(caseInsensitive).SetLimit(2)
	cur, err := r.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	var found []mongoUser
	if err := cur.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, domain.ErrUserNotFound
	case 1:
	default:
		return nil, domain.ErrAmbiguousUser
	}

	var mp mongoProfile
	if err := r.profiles.FindOne(ctx, bson.M{"_id": found[0].ID}).Decode(&mp); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return found[0].toDomain(mp.Profile), nil
}

// CreateAccount inserts the user, its profile and its registration.
func (r *UserRepository) CreateAccount(ctx context.Context, user *domain.User, reg *domain.Registration) (*domain.User, error) {
	if _, err := r.users.InsertOne(ctx, toMongoUser(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.NewConflictError(duplicateField(err))
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if _, err := r.profiles.InsertOne(ctx, mongoProfile{UserID: user.ID, Profile: user.Profile}); err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	doc := mongoRegistration{UserID: reg.UserID, ActivationKey: reg.ActivationKey, CreatedAt: user.CreatedAt.Unix()}
	if _, err := r.regs.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	created := *user
	return &created, nil
}

// UpdateUser rewrites the account flags, email and profile of an existing user.
func (r *UserRepository) UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	updated := *user
	updated.UpdatedAt = time.Now().UTC()

	res, err := r.users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"email":        updated.Email,
		"is_active":    updated.IsActive,
		"is_staff":     updated.IsStaff,
		"is_superuser": updated.IsSuperuser,
		"updated_at":   updated.UpdatedAt.Unix(),
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.NewConflictError("email")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}

	_, err = r.profiles.ReplaceOne(ctx, bson.M{"_id": user.ID},
		mongoProfile{UserID: user.ID, Profile: updated.Profile},
		options.Replace().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &updated, nil
}

// DeactivateUser flags the account inactive and moves it to retiredEmail.
func (r *UserRepository) DeactivateUser(ctx context.Context, userID, retiredEmail string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{
		"is_active":  false,
		"email":      retiredEmail,
		"updated_at": time.Now().Unix(),
	}})
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// CheckConflicts reports which of email and username are already taken.
// Empty arguments are not checked.
func (r *UserRepository) CheckConflicts(ctx context.Context, email, username string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var fields []string
	if email != "" {
		n, err := r.users.CountDocuments(ctx, bson.M{"email": email},
			options.Count().SetCollation(caseInsensitive).SetLimit(1))
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if n > 0 {
			fields = append(fields, "email")
		}
	}
	if username != "" {
		n, err := r.users.CountDocuments(ctx, bson.M{"username": username}, options.Count().SetLimit(1))
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if n > 0 {
			fields = append(fields, "username")
		}
	}
	return fields, nil
}

// SetUserAttribute upserts a single attribute; the latest write wins.
func (r *UserRepository) SetUserAttribute(ctx context.Context, userID, name, value string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.attrs.UpdateOne(ctx,
		bson.M{"user_id": userID, "name": name},
		bson.M{"$set": bson.M{"value": value}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set user attribute %s: %w", name, err)
	}
	return nil
}

func (r *UserRepository) GetUserAttribute(ctx context.Context, userID, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc struct {
		Value string `bson:"value"`
	}
	err := r.attrs.FindOne(ctx, bson.M{"user_id": userID, "name": name}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", fmt.Errorf("get user attribute %s: %w", name, err)
	}
	return doc.Value, nil
}

func (r *UserRepository) AddSignupSource(ctx context.Context, userID, site string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.signups.UpdateOne(ctx,
		bson.M{"user_id": userID, "site": site},
		bson.M{"$setOnInsert": bson.M{"created_at": time.Now().Unix()}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("add signup source: %w", err)
	}
	return nil
}

func (r *UserRepository) HasSignupSource(ctx context.Context, userID, site string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.signups.CountDocuments(ctx, bson.M{"user_id": userID, "site": site}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("find signup source: %w", err)
	}
	return n > 0, nil
}

// EnsureIndexes creates the uniqueness constraints the account flow relies on.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(caseInsensitive)},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	_, err = r.attrs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("user_attributes indexes: %w", err)
	}

	_, err = r.signups.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "site", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("signup_sources indexes: %w", err)
	}
	return nil
}

// duplicateField guesses the offending field from a duplicate key error.
func duplicateField(err error) string {
	if strings.Contains(err.Error(), "username") {
		return "username"
	}
	return "email"
}
