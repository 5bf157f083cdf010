package database

import (
	"bytes"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ItemID is the 16-byte opaque identifier of a catalog item. It is stored
// as a BLOB and rendered as 32 lowercase hex characters.
type ItemID [16]byte

// NewItemID returns a fresh random identifier.
func NewItemID() ItemID {
	return ItemID(uuid.New())
}

// ParseItemID accepts the 32-character hex form or the dashed UUID form.
func ParseItemID(s string) (ItemID, error) {
	var id ItemID
	s = strings.TrimSpace(s)
	if len(s) == hex.EncodedLen(len(id)) {
		if _, err := hex.Decode(id[:], []byte(s)); err != nil {
			return ItemID{}, fmt.Errorf("invalid item id %q: %w", s, err)
		}
		return id, nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return ItemID{}, fmt.Errorf("invalid item id %q: %w", s, err)
	}
	return ItemID(u), nil
}

// String returns the lowercase hex encoding.
func (id ItemID) String() string {
	return hex.EncodeToString(id[:])
}

// Compare orders ids bytewise.
func (id ItemID) Compare(other ItemID) int {
	return bytes.Compare(id[:], other[:])
}

func (id ItemID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ItemID) UnmarshalText(b []byte) error {
	parsed, err := ParseItemID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value binds the id as a BLOB.
func (id ItemID) Value() (driver.Value, error) {
	return id[:], nil
}

// Scan reads a 16-byte BLOB.
func (id *ItemID) Scan(src any) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("item id: unsupported scan type %T", src)
	}
	if len(b) != len(id) {
		return fmt.Errorf("item id: expected %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return nil
}

// Item is one catalog entry.
type Item struct {
	ID           ItemID    `json:"id"`
	FullPath     string    `json:"fullPath"`
	Description  *string   `json:"description"`
	ShortTitle   *string   `json:"shortTitle"`
	TextContents *string   `json:"textContents"`
	ThumbnailRef *string   `json:"thumbnailRef"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ItemWithTags is an item plus the sorted, duplicate-free names of every
// tag attached to it. Tags is never nil.
type ItemWithTags struct {
	Item
	Tags []string `json:"tags"`
}

// Tag is a named label.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats summarizes catalog contents.
type Stats struct {
	TotalItems        int `json:"totalItems"`
	TotalTags         int `json:"totalTags"`
	TotalAssociations int `json:"totalAssociations"`
	UntaggedItems     int `json:"untaggedItems"`
}

// ItemColumns is the column list matching ScanItem, qualified by alias i.
const ItemColumns = `i.id, i.full_path, i.description, i.short_title, i.text_contents, i.thumbnail_ref, i.created_at, i.updated_at`

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanItem reads one row selected with ItemColumns.
func ScanItem(row RowScanner) (Item, error) {
	var it Item
	var created, updated int64
	if err := row.Scan(
		&it.ID, &it.FullPath, &it.Description, &it.ShortTitle,
		&it.TextContents, &it.ThumbnailRef, &created, &updated,
	); err != nil {
		return Item{}, err
	}
	it.CreatedAt = fromMillis(created)
	it.UpdatedAt = fromMillis(updated)
	return it, nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// TagColumns is the column list matching ScanTag.
const TagColumns = `id, name, created_at, updated_at`

// ScanTag reads one row selected with TagColumns.
func ScanTag(row RowScanner) (Tag, error) {
	var tag Tag
	var created, updated int64
	if err := row.Scan(&tag.ID, &tag.Name, &created, &updated); err != nil {
		return Tag{}, err
	}
	tag.CreatedAt = fromMillis(created)
	tag.UpdatedAt = fromMillis(updated)
	return tag, nil
}
