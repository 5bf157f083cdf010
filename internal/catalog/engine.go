package catalog

import (
	"context"
	"fmt"
	"slices"

	"searchable-gallery/internal/database"
)

// Engine evaluates tag filters against the catalog. It holds no state of
// its own and is safe for concurrent use.
type Engine struct {
	db *database.Database
}

// NewEngine returns an engine reading from db.
func NewEngine(db *database.Database) *Engine {
	return &Engine{db: db}
}

// ListItems returns the items matching f with their complete tag lists,
// ordered by creation time descending and then by id ascending. A nil
// filter, or one whose tag names are all blank, matches every item.
func (e *Engine) ListItems(ctx context.Context, f *Filter) ([]database.ItemWithTags, error) {
	f, err := f.Normalize()
	if err != nil {
		return nil, err
	}
	candidates, args := candidateQuery(f)
	return e.materialize(ctx, "list_items", candidates, args)
}

// GetItem returns a single item with its tags.
func (e *Engine) GetItem(ctx context.Context, id database.ItemID) (database.ItemWithTags, error) {
	items, err := e.materialize(ctx, "get_item", `SELECT id FROM items WHERE id = ?`, []any{id})
	if err != nil {
		return database.ItemWithTags{}, err
	}
	if len(items) == 0 {
		return database.ItemWithTags{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return items[0], nil
}

// materialize loads the items whose ids the candidates sub-select yields,
// then every tag attached to them, inside one read transaction.
func (e *Engine) materialize(ctx context.Context, op, candidates string, args []any) ([]database.ItemWithTags, error) {
	var result []database.ItemWithTags

	err := e.db.View(ctx, op, func(q database.Querier) error {
		items, byID, err := loadItems(ctx, q, op, candidates, args)
		if err != nil {
			return err
		}
		if len(items) > 0 {
			if err := attachTags(ctx, q, op, candidates, args, items, byID); err != nil {
				return err
			}
		}
		result = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range result {
		slices.Sort(result[i].Tags)
		result[i].Tags = slices.Compact(result[i].Tags)
	}
	return result, nil
}

func loadItems(ctx context.Context, q database.Querier, op, candidates string, args []any) ([]database.ItemWithTags, map[string]int, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+database.ItemColumns+`
		FROM items i
		WHERE i.id IN (`+candidates+`)
		ORDER BY i.created_at DESC, i.id ASC
	`, args...)
	if err != nil {
		return nil, nil, &database.QueryError{Op: op + "_items", Err: err}
	}
	defer rows.Close()

	items := []database.ItemWithTags{}
	byID := make(map[string]int)
	for rows.Next() {
		it, err := database.ScanItem(rows)
		if err != nil {
			return nil, nil, &database.QueryError{Op: op + "_items", Err: err}
		}
		byID[it.ID.String()] = len(items)
		items = append(items, database.ItemWithTags{Item: it, Tags: []string{}})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, &database.QueryError{Op: op + "_items", Err: err}
	}
	return items, byID, nil
}

// attachTags appends each candidate's tag names to its entry in items.
// byID maps an item's hex id to its index in items.
func attachTags(ctx context.Context, q database.Querier, op, candidates string, args []any, items []database.ItemWithTags, byID map[string]int) error {
	rows, err := q.QueryContext(ctx, `
		SELECT it.item_id, t.name
		FROM item_tags it
		JOIN tags t ON t.id = it.tag_id
		WHERE it.item_id IN (`+candidates+`)
	`, args...)
	if err != nil {
		return &database.QueryError{Op: op + "_tags", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var id database.ItemID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return &database.QueryError{Op: op + "_tags", Err: err}
		}
		if idx, ok := byID[id.String()]; ok {
			items[idx].Tags = append(items[idx].Tags, name)
		}
	}
	if err := rows.Err(); err != nil {
		return &database.QueryError{Op: op + "_tags", Err: err}
	}
	return nil
}
