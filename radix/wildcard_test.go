package radix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindWildcard(t *testing.T) {
	tests := []struct {
		route    string
		start    int
		end      int
		catchAll bool
	}{
		{"/users/{id}", 7, 11, false},
		{"{name}", 0, 6, false},
		{"/static/{*path}", 8, 15, true},
		{"/files/{name}.txt", 7, 13, false},
		// Offsets are relative to the unescaped bytes `/a/{x}/{y}`.
		{"/a/{{x}}/{y}", 7, 10, false},
	}
	for _, tt := range tests {
		r := newUnescapedRoute([]byte(tt.route))
		wc, found, err := findWildcard(r.view())
		require.NoError(t, err, "route %q", tt.route)
		require.True(t, found, "route %q", tt.route)
		assert.Equal(t, tt.start, wc.start, "route %q", tt.route)
		assert.Equal(t, tt.end, wc.end, "route %q", tt.route)
		assert.Equal(t, tt.catchAll, wc.catchAll, "route %q", tt.route)
	}
}

func TestFindWildcardNone(t *testing.T) {
	for _, route := range []string{"", "/plain", "/a/{{x}}", "{{}}"} {
		r := newUnescapedRoute([]byte(route))
		_, found, err := findWildcard(r.view())
		require.NoError(t, err, "route %q", route)
		assert.False(t, found, "route %q", route)
	}
}

func TestFindWildcardErrors(t *testing.T) {
	tests := []struct {
		route string
		err   error
	}{
		{"/a/}", ErrInvalidParam},         // closing brace without opener
		{"/a/{}", ErrInvalidParam},        // empty name
		{"/a/{x", ErrInvalidParam},        // unterminated
		{"/a/{*}", ErrInvalidParam},       // empty catch-all name
		{"/a/{x/y}", ErrInvalidParamSegment},
		{"/a/{x*}", ErrInvalidParamSegment},
		{"/a/{x{y}}", ErrInvalidParamSegment},
		{"/a/{x{{y}", ErrInvalidParamSegment}, // literal brace inside a name
	}
	for _, tt := range tests {
		r := newUnescapedRoute([]byte(tt.route))
		_, _, err := findWildcard(r.view())
		assert.ErrorIs(t, err, tt.err, "route %q", tt.route)
	}
}

// FuzzFindWildcard checks the parser never panics and that any reported
// wildcard is brace-delimited with both delimiters unescaped.
func FuzzFindWildcard(f *testing.F) {
	for _, seed := range []string{"/users/{id}", "/a/{{x}}", "/s/{*rest}", "{", "}", "{}", "x{y}z{", "{{}}"} {
		f.Add([]byte(seed))
	}
	f.Fuzz(func(t *testing.T, raw []byte) {
		r := newUnescapedRoute(raw)
		v := r.view()
		wc, found, err := findWildcard(v)
		if err != nil || !found {
			return
		}
		if v.bytes[wc.start] != '{' || v.isEscaped(wc.start) {
			t.Fatalf("wildcard start %d is not an unescaped brace in %q", wc.start, raw)
		}
		if v.bytes[wc.end-1] != '}' || v.isEscaped(wc.end-1) {
			t.Fatalf("wildcard end %d is not an unescaped brace in %q", wc.end, raw)
		}
	})
}
