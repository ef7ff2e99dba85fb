package radix

import "bytes"

// search matches path against the subtree rooted at n, recording parameter
// bindings into ps. path is the portion of the request path not yet consumed
// by n's ancestors; n's own prefix is consumed here.
//
// Children are tried most-specific first: static edges, then the param
// branch, then the catch-all. Backtracking out of a failed branch truncates
// ps back to its length at the decision point, so bindings from abandoned
// branches never leak into the result.
func (n *node[T]) search(path []byte, ps *Params) *T {
	switch n.kind {
	case kindStatic:
		if !bytes.HasPrefix(path, n.prefix.bytes) {
			return nil
		}
		path = path[len(n.prefix.bytes):]

	case kindParam:
		boundary := bytes.IndexByte(path, '/')
		if boundary < 0 {
			boundary = len(path)
		}
		seg := path[:boundary]
		suffix := n.suffix()
		// The binding must be non-empty and the segment must end with the
		// literal suffix, if any.
		if len(seg) <= len(suffix) || !bytes.HasSuffix(seg, suffix) {
			return nil
		}
		ps.push(n.paramName(), seg[:len(seg)-len(suffix)])
		path = path[boundary:]

	case kindCatchAll:
		// The caller only descends here with a non-empty remainder, and
		// insertion guarantees the byte before it was '/'. A catch-all is
		// always a leaf holding a value.
		ps.push(n.paramName(), path)
		return &n.value
	}

	if len(path) == 0 {
		if n.hasValue {
			return &n.value
		}
		// A catch-all never binds the empty remainder.
		return nil
	}

	mark := ps.Len()
	if c := n.staticChild(path[0]); c != nil {
		if v := c.search(path, ps); v != nil {
			return v
		}
		ps.truncate(mark)
	}
	if n.param != nil {
		if v := n.param.search(path, ps); v != nil {
			return v
		}
		ps.truncate(mark)
	}
	if n.catch != nil {
		return n.catch.search(path, ps)
	}
	return nil
}
