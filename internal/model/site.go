package model

import "time"

// Site is a website registered by a publisher.  Ad slots always belong
// to exactly one site, and a site's URL is globally unique so that the
// embeddable widget can be associated with a single account.
//
// Fields:
//  ID        – primary key identifier.
//  OwnerID   – publisher who registered the site.
//  Name      – display name shown in dashboards.
//  URL       – canonical site URL, unique.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Site struct {
	ID        uint64    // sites.id
	OwnerID   uint64    // sites.owner_id
	Name      string    // sites.name
	URL       string    // sites.url
	CreatedAt time.Time // sites.created_at
	UpdatedAt time.Time // sites.updated_at
}
