package domain

// Site is a tenant. Organizations lists the course organizations the site owns;
// an empty list means the site is not scoped to any organization.
type Site struct {
	ID            string   `json:"id" bson:"_id,omitempty"`
	Domain        string   `json:"domain" bson:"domain"`
	Name          string   `json:"name" bson:"name"`
	Organizations []string `json:"organizations" bson:"organizations"`
}

// DomainOf returns the site's domain, or "" for a nil site.
func DomainOf(s *Site) string {
	if s == nil {
		return ""
	}
	return s.Domain
}
