package radix

// wildcard is the half-open range of the next `{name}` or `{*name}` token in
// a view. Offsets are view-relative: bytes[start] is the opening brace and
// bytes[end-1] the closing one, both unescaped.
type wildcard struct {
	start    int
	end      int
	catchAll bool
}

// findWildcard scans v for the next wildcard token. Escaped braces are
// skipped as literals. It reports found=false when no wildcard remains and
// never allocates.
func findWildcard(v routeView) (wc wildcard, found bool, err error) {
	for i := 0; i < v.len(); i++ {
		b := v.bytes[i]
		if v.isEscaped(i) {
			continue
		}
		if b == '}' {
			// Closing brace with no opening one.
			return wildcard{}, false, ErrInvalidParam
		}
		if b != '{' {
			continue
		}

		wc.start = i
		j := i + 1
		if j < v.len() && v.bytes[j] == '*' && !v.isEscaped(j) {
			wc.catchAll = true
			j++
		}
		nameStart := j
		for ; j < v.len(); j++ {
			c := v.bytes[j]
			if c == '}' && !v.isEscaped(j) {
				if j == nameStart {
					return wildcard{}, false, ErrInvalidParam
				}
				wc.end = j + 1
				return wc, true, nil
			}
			// Anything a name may not contain: '/', '*', and literal
			// braces (escaped or nested).
			if c == '/' || c == '*' || c == '{' || c == '}' {
				return wildcard{}, false, ErrInvalidParamSegment
			}
		}
		// Ran off the end of the view before the closing brace.
		return wildcard{}, false, ErrInvalidParam
	}
	return wildcard{}, false, nil
}

// paramUnitEnd returns the view-relative end of a parameter unit: the
// `{name}` token at wc plus its literal suffix, which extends to the next
// '/' or the end of the view. The '/' itself is not part of the unit.
func paramUnitEnd(v routeView, wc wildcard) int {
	i := wc.end
	for i < v.len() && v.bytes[i] != '/' {
		i++
	}
	return i
}
