package catalog

import (
	"context"
	"errors"

	"searchable-gallery/internal/database"
	"searchable-gallery/internal/logging"
	"searchable-gallery/internal/metrics"
)

// ListItemsRequest is the wire form of a tag filter.
type ListItemsRequest struct {
	TagNames []string `json:"tagNames"`
	JoinType string   `json:"joinType"`
}

// Service is the entry point used by the HTTP layer and the CLI.
type Service struct {
	db     *database.Database
	engine *Engine
	tags   *TagCatalog
}

// NewService wires an engine and tag catalog over db.
func NewService(db *database.Database) *Service {
	return &Service{
		db:     db,
		engine: NewEngine(db),
		tags:   NewTagCatalog(db),
	}
}

// ListItems parses req and returns the matching items. A nil request lists
// everything.
func (s *Service) ListItems(ctx context.Context, req *ListItemsRequest) ([]database.ItemWithTags, error) {
	var filter *Filter
	if req != nil {
		join, err := ParseJoinType(req.JoinType)
		if err != nil {
			metrics.CatalogListItemsTotal.WithLabelValues("none", "error").Inc()
			return nil, err
		}
		filter = &Filter{TagNames: req.TagNames, JoinType: join}
	}

	filter, err := filter.Normalize()
	if err != nil {
		metrics.CatalogListItemsTotal.WithLabelValues("none", "error").Inc()
		return nil, err
	}
	label := filter.label()
	if filter != nil {
		metrics.CatalogFilterTags.Observe(float64(len(filter.TagNames)))
	}

	items, err := s.engine.ListItems(ctx, filter)
	if err != nil {
		metrics.CatalogListItemsTotal.WithLabelValues(label, "error").Inc()
		logging.Error("ListItems (%s) failed: %v", label, err)
		return nil, err
	}

	metrics.CatalogListItemsTotal.WithLabelValues(label, "success").Inc()
	metrics.CatalogResultSize.WithLabelValues(label).Observe(float64(len(items)))
	if filter != nil {
		logging.Debug("ListItems %s %v -> %d item(s)", label, filter.TagNames, len(items))
	} else {
		logging.Debug("ListItems (all) -> %d item(s)", len(items))
	}
	return items, nil
}

// ListTags returns every tag sorted by name.
func (s *Service) ListTags(ctx context.Context) ([]database.Tag, error) {
	tags, err := s.tags.ListTags(ctx)
	if err != nil {
		logging.Error("ListTags failed: %v", err)
		return nil, err
	}
	return tags, nil
}

// GetItem returns one item with its tags, or an error wrapping ErrNotFound.
func (s *Service) GetItem(ctx context.Context, id database.ItemID) (database.ItemWithTags, error) {
	item, err := s.engine.GetItem(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		logging.Error("GetItem %s failed: %v", id, err)
	}
	return item, err
}

// Stats returns catalog counts.
func (s *Service) Stats(ctx context.Context) (database.Stats, error) {
	return s.db.Stats(ctx)
}

// Ping reports whether the catalog store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// StatsProvider adapts the service to metrics.StatsProvider.
func (s *Service) StatsProvider() metrics.StatsProvider {
	return statsAdapter{s}
}

type statsAdapter struct {
	svc *Service
}

func (a statsAdapter) Stats(ctx context.Context) (metrics.Stats, error) {
	a.svc.db.UpdateDBMetrics()
	st, err := a.svc.Stats(ctx)
	if err != nil {
		return metrics.Stats{}, err
	}
	return metrics.Stats{
		TotalItems:        st.TotalItems,
		TotalTags:         st.TotalTags,
		TotalAssociations: st.TotalAssociations,
		UntaggedItems:     st.UntaggedItems,
	}, nil
}
