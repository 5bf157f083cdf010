package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJoinType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    JoinType
		wantErr bool
	}{
		{in: "and", want: JoinAnd},
		{in: "AND", want: JoinAnd},
		{in: " And ", want: JoinAnd},
		{in: "or", want: JoinOr},
		{in: "Or", want: JoinOr},
		{in: "", want: JoinOr},
		{in: "xor", wantErr: true},
		{in: "and or", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseJoinType(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      *Filter
		want    *Filter
		wantErr bool
	}{
		{name: "nil", in: nil, want: nil},
		{name: "no tags", in: &Filter{JoinType: JoinAnd}, want: nil},
		{name: "blank tags", in: &Filter{TagNames: []string{"", "  ", "\t"}, JoinType: JoinOr}, want: nil},
		{
			name: "trim and dedupe",
			in:   &Filter{TagNames: []string{" nature", "nature ", "landscape"}, JoinType: JoinAnd},
			want: &Filter{TagNames: []string{"landscape", "nature"}, JoinType: JoinAnd},
		},
		{
			name: "default join is or",
			in:   &Filter{TagNames: []string{"x"}},
			want: &Filter{TagNames: []string{"x"}, JoinType: JoinOr},
		},
		{
			name: "case preserved",
			in:   &Filter{TagNames: []string{"Cat", "cat"}, JoinType: JoinOr},
			want: &Filter{TagNames: []string{"Cat", "cat"}, JoinType: JoinOr},
		},
		{name: "unknown join", in: &Filter{TagNames: []string{"x"}, JoinType: "xor"}, wantErr: true},
		{name: "unknown join without tags", in: &Filter{JoinType: "nand"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.in.Normalize()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDoesNotModifyReceiver(t *testing.T) {
	t.Parallel()

	f := &Filter{TagNames: []string{" b", "a", "a"}}
	_, err := f.Normalize()
	require.NoError(t, err)
	assert.Equal(t, []string{" b", "a", "a"}, f.TagNames)
	assert.Equal(t, JoinType(""), f.JoinType)
}

func TestCandidateQuery(t *testing.T) {
	t.Parallel()

	q, args := candidateQuery(nil)
	assert.Equal(t, "SELECT id FROM items", q)
	assert.Empty(t, args)

	q, args = candidateQuery(&Filter{TagNames: []string{"a", "b"}, JoinType: JoinOr})
	assert.Contains(t, q, "SELECT DISTINCT")
	assert.Contains(t, q, "IN (?, ?)")
	assert.NotContains(t, q, "HAVING")
	assert.Equal(t, []any{"a", "b"}, args)

	q, args = candidateQuery(&Filter{TagNames: []string{"a", "b", "c"}, JoinType: JoinAnd})
	assert.Contains(t, q, "IN (?, ?, ?)")
	assert.Contains(t, q, "HAVING COUNT(DISTINCT t.name) = ?")
	assert.Equal(t, []any{"a", "b", "c", 3}, args)
	assert.Equal(t, strings.Count(q, "?"), len(args))
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
