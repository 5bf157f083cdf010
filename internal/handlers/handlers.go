package handlers

import (
	"time"

	"searchable-gallery/internal/catalog"
	"searchable-gallery/internal/media"
)

// Handlers holds the dependencies shared by all HTTP handlers.
type Handlers struct {
	catalog   *catalog.Service
	resolver  *media.Resolver
	startTime time.Time
}

// New returns handlers serving svc and reading image bytes through resolver.
func New(svc *catalog.Service, resolver *media.Resolver) *Handlers {
	return &Handlers{
		catalog:   svc,
		resolver:  resolver,
		startTime: time.Now(),
	}
}
