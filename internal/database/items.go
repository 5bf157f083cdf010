package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"searchable-gallery/internal/logging"
)

// NewItem describes an item to insert. Zero ID gets a random one and zero
// CreatedAt gets the current time.
type NewItem struct {
	ID           ItemID
	FullPath     string
	Description  *string
	ShortTitle   *string
	TextContents *string
	ThumbnailRef *string
	CreatedAt    time.Time
	Tags         []string
}

// InsertItem stores a new item and attaches its tags, creating tags that do
// not exist yet. Blank tag names are ignored.
func (d *Database) InsertItem(ctx context.Context, item NewItem) (Item, error) {
	if item.FullPath == "" {
		return Item{}, errors.New("item full path is required")
	}
	if item.ID == (ItemID{}) {
		item.ID = NewItemID()
	}
	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}

	stored := Item{
		ID:           item.ID,
		FullPath:     item.FullPath,
		Description:  item.Description,
		ShortTitle:   item.ShortTitle,
		TextContents: item.TextContents,
		ThumbnailRef: item.ThumbnailRef,
		CreatedAt:    fromMillis(toMillis(item.CreatedAt)),
		UpdatedAt:    fromMillis(toMillis(now)),
	}

	err := d.update(ctx, "insert_item", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO items (id, full_path, description, short_title, text_contents, thumbnail_ref, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			stored.ID, stored.FullPath, stored.Description, stored.ShortTitle,
			stored.TextContents, stored.ThumbnailRef,
			toMillis(stored.CreatedAt), toMillis(stored.UpdatedAt),
		)
		if err != nil {
			return err
		}
		return tagItemTx(ctx, tx, stored.ID, item.Tags, now)
	})
	if err != nil {
		return Item{}, err
	}

	logging.Debug("Inserted item %s (%s) with %d tag(s)", stored.ID, stored.FullPath, len(item.Tags))
	return stored, nil
}

// TagItem attaches the named tags to an existing item. Re-attaching a tag
// the item already has is a no-op.
func (d *Database) TagItem(ctx context.Context, id ItemID, names ...string) error {
	return d.update(ctx, "tag_item", func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) > 0 FROM items WHERE id = ?`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		return tagItemTx(ctx, tx, id, names, time.Now())
	})
}

// UntagItem detaches the named tag from an item. Unknown names are ignored.
func (d *Database) UntagItem(ctx context.Context, id ItemID, name string) error {
	return d.update(ctx, "untag_item", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM item_tags
			WHERE item_id = ? AND tag_id = (SELECT id FROM tags WHERE name = ?)
		`, id, strings.TrimSpace(name))
		return err
	})
}

// DeleteItem removes an item. Its associations cascade.
func (d *Database) DeleteItem(ctx context.Context, id ItemID) error {
	return d.update(ctx, "delete_item", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// UpsertTag returns the tag with the given name, creating it if needed.
func (d *Database) UpsertTag(ctx context.Context, name string) (Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tag{}, errors.New("tag name is required")
	}

	var tag Tag
	err := d.update(ctx, "upsert_tag", func(tx *sql.Tx) error {
		id, err := upsertTagTx(ctx, tx, name, time.Now())
		if err != nil {
			return err
		}
		tag, err = ScanTag(tx.QueryRowContext(ctx, `SELECT `+TagColumns+` FROM tags WHERE id = ?`, id))
		return err
	})
	return tag, err
}

// DeleteTag removes a tag by name. Its associations cascade.
func (d *Database) DeleteTag(ctx context.Context, name string) error {
	return d.update(ctx, "delete_tag", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE name = ?`, strings.TrimSpace(name))
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("tag %q: %w", name, ErrNotFound)
		}
		return nil
	})
}

func upsertTagTx(ctx context.Context, tx *sql.Tx, name string, now time.Time) (int64, error) {
	ms := toMillis(now)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tags (name, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, ms, ms); err != nil {
		return 0, err
	}
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	return id, err
}

func tagItemTx(ctx context.Context, tx *sql.Tx, id ItemID, names []string, now time.Time) error {
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		tagID, err := upsertTagTx(ctx, tx, name, now)
		if err != nil {
			return fmt.Errorf("tag %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO item_tags (item_id, tag_id, created_at) VALUES (?, ?, ?)
			ON CONFLICT(item_id, tag_id) DO NOTHING
		`, id, tagID, toMillis(now)); err != nil {
			return fmt.Errorf("attach tag %q: %w", name, err)
		}
	}
	return nil
}

// ItemExistsByPath reports whether an item with the given full path exists.
// The importer uses it to skip files it has already catalogued.
func (d *Database) ItemExistsByPath(ctx context.Context, fullPath string) (bool, error) {
	rows, err := d.Query(ctx, "item_exists_by_path", `SELECT 1 FROM items WHERE full_path = ? LIMIT 1`, fullPath)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, &QueryError{Op: "item_exists_by_path", Err: err}
	}
	return found, nil
}

// Stats counts items, tags and associations.
func (d *Database) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := d.View(ctx, "stats", func(q Querier) error {
		return q.QueryRowContext(ctx, `
			SELECT
				(SELECT COUNT(*) FROM items),
				(SELECT COUNT(*) FROM tags),
				(SELECT COUNT(*) FROM item_tags),
				(SELECT COUNT(*) FROM items i WHERE NOT EXISTS (
					SELECT 1 FROM item_tags it WHERE it.item_id = i.id))
		`).Scan(&s.TotalItems, &s.TotalTags, &s.TotalAssociations, &s.UntaggedItems)
	})
	return s, err
}
