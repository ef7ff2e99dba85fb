package radix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFrom(t *testing.T) {
	dst := New[int]()
	mustInsert(t, dst, "/a", 1)

	src := New[int]()
	mustInsert(t, src, "/b", 2)
	mustInsert(t, src, "/c/{id}", 3)
	mustInsert(t, src, "/d/{*rest}", 4)

	require.NoError(t, dst.MergeFrom(src))

	expectMatch(t, dst, "/a", 1)
	expectMatch(t, dst, "/b", 2)
	expectMatch(t, dst, "/c/9", 3, "id", "9")
	expectMatch(t, dst, "/d/x/y", 4, "rest", "x/y")
	assert.Equal(t, 4, dst.Len())

	// The source is drained whether or not errors occurred.
	assert.Equal(t, 0, src.Len())
	expectNoMatch(t, src, "/b")

	checkTree(t, dst)
	checkTree(t, src)
}

func TestMergeFromCollectsConflicts(t *testing.T) {
	dst := New[int]()
	mustInsert(t, dst, "/a", 1)
	mustInsert(t, dst, "/p/{x}", 2)

	src := New[int]()
	mustInsert(t, src, "/a", 10)      // conflicts
	mustInsert(t, src, "/p/{y}", 11)  // conflicts at the param slot
	mustInsert(t, src, "/fresh", 12)  // fine

	err := dst.MergeFrom(src)
	var merr *MergeError
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errs, 2)

	var conflict *ConflictError
	require.ErrorAs(t, merr.Errs[0], &conflict)
	assert.Equal(t, "/a", conflict.Existing)
	require.ErrorAs(t, merr.Errs[1], &conflict)
	assert.Equal(t, "/p/{x}", conflict.Existing)

	// Non-conflicting routes were still moved; existing values survive.
	expectMatch(t, dst, "/a", 1)
	expectMatch(t, dst, "/p/v", 2, "x", "v")
	expectMatch(t, dst, "/fresh", 12)
	assert.Equal(t, 0, src.Len())
	checkTree(t, dst)
}

func TestMergeFromPreservesEscapes(t *testing.T) {
	dst := New[int]()
	src := New[int]()
	mustInsert(t, src, "/lit/{{a}}", 5)

	require.NoError(t, dst.MergeFrom(src))
	expectMatch(t, dst, "/lit/{a}", 5)
	expectNoMatch(t, dst, "/lit/a")

	// The re-escaped pattern keeps working for structural removal.
	v, ok := dst.Remove([]byte("/lit/{{a}}"))
	require.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestMergeFromEmpty(t *testing.T) {
	dst := New[int]()
	mustInsert(t, dst, "/a", 1)

	require.NoError(t, dst.MergeFrom(New[int]()))
	expectMatch(t, dst, "/a", 1)
	assert.Equal(t, 1, dst.Len())
}
