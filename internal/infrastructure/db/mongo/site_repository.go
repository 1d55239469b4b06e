package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openlearn/provisioning/internal/core/domain"
)

const collectionSites = "sites"

// SiteRepository implements ports.SiteStore.
type SiteRepository struct {
	col *mongo.Collection
}

func NewSiteRepository(db *mongo.Database) *SiteRepository {
	return &SiteRepository{col: db.Collection(collectionSites)}
}

// FindByDomain returns the site served at siteDomain (a host name without port).
func (r *SiteRepository) FindByDomain(ctx context.Context, siteDomain string) (*domain.Site, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.Site
	if err := r.col.FindOne(ctx, bson.M{"domain": strings.ToLower(siteDomain)}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSiteNotFound
		}
		return nil, fmt.Errorf("find site: %w", err)
	}
	return &s, nil
}

// AllOrganizations returns the union of every site's organizations, sorted.
func (r *SiteRepository) AllOrganizations(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	values, err := r.col.Distinct(ctx, "organizations", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	orgs := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			orgs = append(orgs, s)
		}
	}
	sort.Strings(orgs)
	return orgs, nil
}

// EnsureIndexes makes the site domain unique.
func (r *SiteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "domain", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
