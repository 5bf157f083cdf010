package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// JoinType selects how multiple tag names combine.
type JoinType string

const (
	// JoinAnd matches items that carry every requested tag.
	JoinAnd JoinType = "and"
	// JoinOr matches items that carry at least one requested tag.
	JoinOr JoinType = "or"
)

// ParseJoinType accepts "and" or "or" in any case, ignoring surrounding
// whitespace. The empty string means OR.
func ParseJoinType(s string) (JoinType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(JoinOr):
		return JoinOr, nil
	case string(JoinAnd):
		return JoinAnd, nil
	default:
		return "", fmt.Errorf("join type %q must be \"and\" or \"or\": %w", s, ErrInvalidArgument)
	}
}

// Filter restricts ListItems to items carrying some or all of TagNames.
// A nil *Filter means no constraint.
type Filter struct {
	TagNames []string
	JoinType JoinType
}

// Normalize trims and deduplicates the tag names, dropping blank ones, and
// defaults an empty join type to OR. It returns nil when no tag names
// remain. The receiver is not modified.
func (f *Filter) Normalize() (*Filter, error) {
	if f == nil {
		return nil, nil
	}

	join := f.JoinType
	switch join {
	case "":
		join = JoinOr
	case JoinAnd, JoinOr:
	default:
		return nil, fmt.Errorf("unknown join type %q: %w", f.JoinType, ErrInvalidArgument)
	}

	names := make([]string, 0, len(f.TagNames))
	for _, n := range f.TagNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	slices.Sort(names)
	names = slices.Compact(names)

	return &Filter{TagNames: names, JoinType: join}, nil
}

// label names the filter for metrics and logs.
func (f *Filter) label() string {
	if f == nil {
		return "none"
	}
	return string(f.JoinType)
}

// candidateQuery returns a sub-select yielding the ids of items that satisfy
// the normalized filter f, along with its bound arguments. It is the only
// place that branches on the join type.
func candidateQuery(f *Filter) (string, []any) {
	if f == nil {
		return `SELECT id FROM items`, nil
	}

	args := make([]any, 0, len(f.TagNames)+1)
	for _, n := range f.TagNames {
		args = append(args, n)
	}
	in := placeholders(len(f.TagNames))

	switch f.JoinType {
	case JoinAnd:
		// The (item_id, tag_id) key keeps edges unique and names are unique,
		// so the distinct name count equals the number of requested tags
		// only when all of them are attached.
		args = append(args, len(f.TagNames))
		return `SELECT it.item_id
			FROM item_tags it
			JOIN tags t ON t.id = it.tag_id
			WHERE t.name IN (` + in + `)
			GROUP BY it.item_id
			HAVING COUNT(DISTINCT t.name) = ?`, args
	default:
		return `SELECT DISTINCT it.item_id
			FROM item_tags it
			JOIN tags t ON t.id = it.tag_id
			WHERE t.name IN (` + in + `)`, args
	}
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
