package radix

// inlineParams is the number of bindings a match can record without touching
// the heap. Routes with more parameters spill to an ordinary slice.
const inlineParams = 16

// maxRouteParams bounds how many parameters a single route may declare.
// Insert rejects patterns beyond it with ErrTooManyParams.
const maxRouteParams = 255

// Param is a single name/value binding. Key aliases storage owned by the
// tree; Value aliases the matched request path.
type Param struct {
	Key   []byte
	Value []byte
}

// Params is the ordered list of bindings produced by a match. The first
// inlineParams entries live inline so the match hot path does not allocate.
type Params struct {
	inline [inlineParams]Param
	n      int
	spill  []Param
}

func (p *Params) push(key, value []byte) {
	if p.n < inlineParams {
		p.inline[p.n] = Param{Key: key, Value: value}
		p.n++
		return
	}
	p.spill = append(p.spill, Param{Key: key, Value: value})
}

// truncate discards bindings beyond the first n. Used by the match engine
// when it backtracks out of a parameterised branch.
func (p *Params) truncate(n int) {
	if n >= inlineParams {
		p.spill = p.spill[:n-inlineParams]
		return
	}
	p.n = n
	p.spill = p.spill[:0]
}

// Len returns the number of recorded bindings.
func (p *Params) Len() int { return p.n + len(p.spill) }

// At returns the i-th binding in match order.
func (p *Params) At(i int) Param {
	if i < p.n {
		return p.inline[i]
	}
	return p.spill[i-p.n]
}

// Get returns the value of the first binding with the given name. A route
// may bind the same name twice; later bindings stay reachable through At.
func (p *Params) Get(name string) ([]byte, bool) {
	for i := 0; i < p.Len(); i++ {
		if pr := p.At(i); string(pr.Key) == name {
			return pr.Value, true
		}
	}
	return nil, false
}
