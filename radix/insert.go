package radix

import "bytes"

// validateRoute walks every wildcard of the pattern up front so the mutation
// walk below never sees a malformed token. It enforces the segment rules: at
// most one wildcard per segment, catch-alls only as the whole final segment
// and only right after a '/'.
func validateRoute(route *unescapedRoute) error {
	v := route.view()
	nparams := 0
	for {
		wc, found, err := findWildcard(v)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
		nparams++
		if nparams > maxRouteParams {
			return ErrTooManyParams
		}
		if wc.catchAll {
			absStart := v.offset + wc.start
			if v.offset+wc.end != route.len() || absStart == 0 || route.bytes[absStart-1] != '/' {
				return ErrInvalidCatchAll
			}
			return nil
		}
		rest := v.sliceOff(wc.end)
		next, nfound, err := findWildcard(rest)
		if err != nil {
			return err
		}
		if nfound && bytes.IndexByte(rest.bytes[:next.start], '/') < 0 {
			return ErrInvalidParamSegment
		}
		v = rest
	}
}

// Insert adds pattern with its value to the router. The tree is mutated in
// place: nodes split on prefix divergence, parameter and catch-all branches
// attach at segment boundaries, and the priorities along the walked path are
// bumped so the busiest static siblings are tried first.
//
// A failed insert leaves the router matching exactly what it matched before
// the call; the only structural change that can precede a conflict is a
// single split, which is rolled back.
func (r *Router[T]) Insert(pattern []byte, value T) error {
	if len(pattern) == 0 {
		return ErrInvalidParam
	}
	route := newUnescapedRoute(pattern)
	if err := validateRoute(&route); err != nil {
		return err
	}

	cur := r.root
	stack := append(make([]*node[T], 0, 8), cur)
	remaining := route.view()
	var splitNode *node[T]

	conflict := func(ancestors []*node[T], at *node[T]) error {
		err := &ConflictError{Existing: firstRoutePattern(ancestors, at)}
		if splitNode != nil {
			splitNode.mergeSingleChild()
		}
		return err
	}

	for {
		// cur's prefix is fully consumed here; remaining is what is left
		// of the pattern.
		if remaining.len() == 0 {
			if cur.hasValue {
				return conflict(stack[:len(stack)-1], cur)
			}
			cur.value = value
			cur.hasValue = true
			break
		}

		wc, found, _ := findWildcard(remaining)
		if found && wc.start == 0 {
			if wc.catchAll {
				if cur.hasChildren() {
					var at *node[T]
					switch {
					case len(cur.statics) > 0:
						at = cur.statics[0]
					case cur.param != nil:
						at = cur.param
					default:
						at = cur.catch
					}
					return conflict(stack, at)
				}
				child := &node[T]{
					prefix:   remaining.owned(),
					kind:     kindCatchAll,
					nameEnd:  remaining.len(),
					value:    value,
					hasValue: true,
				}
				cur.catch = child
				stack = append(stack, child)
				break
			}

			if cur.catch != nil {
				return conflict(stack, cur.catch)
			}
			unitEnd := paramUnitEnd(remaining, wc)
			unit := remaining.sliceUntil(unitEnd)
			if cur.param != nil {
				// One param slot per node: a sibling param must agree on
				// both name and suffix.
				if !unit.equalRoute(cur.param.prefix) {
					return conflict(stack, cur.param)
				}
				cur = cur.param
			} else {
				child := &node[T]{prefix: unit.owned(), kind: kindParam, nameEnd: wc.end}
				cur.param = child
				cur = child
			}
			stack = append(stack, cur)
			remaining = remaining.sliceOff(unitEnd)
			continue
		}

		if cur.catch != nil {
			return conflict(stack, cur.catch)
		}

		runEnd := remaining.len()
		if found {
			runEnd = wc.start
		}
		child := cur.staticChild(remaining.bytes[0])
		if child == nil {
			child = &node[T]{prefix: remaining.sliceUntil(runEnd).owned(), kind: kindStatic}
			cur.statics = append(cur.statics, child)
			cur = child
			stack = append(stack, cur)
			remaining = remaining.sliceOff(runEnd)
			continue
		}

		// Longest common prefix against the existing edge. Braces inside
		// static prefixes are always escaped on both sides, so plain byte
		// equality implies escape equality.
		p := 0
		for p < runEnd && p < child.prefix.len() && remaining.bytes[p] == child.prefix.bytes[p] {
			p++
		}
		if p < child.prefix.len() {
			child.split(p)
			splitNode = child
		}
		cur = child
		stack = append(stack, cur)
		remaining = remaining.sliceOff(p)
	}

	for _, n := range stack {
		n.priority++
	}
	for i := 0; i+1 < len(stack); i++ {
		stack[i].promote(stack[i+1])
	}
	r.size++
	return nil
}
