package catalog

import (
	"context"

	"searchable-gallery/internal/database"
)

// TagCatalog lists the tags known to the catalog.
type TagCatalog struct {
	db *database.Database
}

// NewTagCatalog returns a tag catalog reading from db.
func NewTagCatalog(db *database.Database) *TagCatalog {
	return &TagCatalog{db: db}
}

// ListTags returns every tag sorted by name. Any row failure aborts the
// whole call.
func (c *TagCatalog) ListTags(ctx context.Context) ([]database.Tag, error) {
	const op = "list_tags"

	rows, err := c.db.Query(ctx, op, `SELECT `+database.TagColumns+` FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []database.Tag{}
	for rows.Next() {
		tag, err := database.ScanTag(rows)
		if err != nil {
			return nil, &database.QueryError{Op: op, Err: err}
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, &database.QueryError{Op: op, Err: err}
	}
	return tags, nil
}
