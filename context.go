package vesta

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/valyala/fasthttp"
	"gopkg.in/yaml.v3"

	"github.com/Abhishek2010dev/vesta/radix"
)

// Context carries a single request through the handler chain. Instances are
// pooled by the application and reset between requests.
type Context struct {
	RequestCtx *fasthttp.RequestCtx

	vesta    *Vesta
	params   radix.Params
	index    int
	handlers []Handler
}

// init resets the context for a fresh request before it enters the chain.
func (c *Context) init(ctx *fasthttp.RequestCtx) {
	c.RequestCtx = ctx
	c.params = radix.Params{}
	c.index = -1
	c.handlers = nil
}

// Vesta returns the application the context belongs to.
func (c *Context) Vesta() *Vesta {
	return c.vesta
}

// Next runs the remaining handlers in the chain, stopping at the first error.
func (c *Context) Next() error {
	c.index++
	for n := len(c.handlers); c.index < n; c.index++ {
		if err := c.handlers[c.index](c); err != nil {
			return err
		}
	}
	return nil
}

// Abort prevents the remaining handlers in the chain from running.
func (c *Context) Abort() {
	c.index = len(c.handlers)
}

// URL generates a URL for a named route with the given parameter pairs.
func (c *Context) URL(route string, pairs ...interface{}) string {
	if r := c.vesta.routes[route]; r != nil {
		return r.URL(pairs...)
	}
	return ""
}

// Param returns the value bound to a route parameter. If the parameter was
// not bound, the optional default is returned instead.
//
// Example:
//
//	v.Get("/users/{id}", func(c *Context) error {
//	    id := c.Param("id")
//	    ...
//	})
func (c *Context) Param(name string, defaultValue ...string) string {
	if v, ok := c.params.Get(name); ok {
		return string(v)
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// ParamAs converts a route parameter to a primitive type T, returning the
// zero value when the parameter is absent or does not parse.
func ParamAs[T any](c *Context, name string) T {
	return toType[T](c.Param(name))
}

// Query returns the first query string value for name, or the optional
// default when absent.
func (c *Context) Query(name string, defaultValue ...string) string {
	if v := c.RequestCtx.QueryArgs().Peek(name); len(v) > 0 {
		return string(v)
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// QueryArray returns every query string value registered for name, in order.
func (c *Context) QueryArray(name string) []string {
	vs := c.RequestCtx.QueryArgs().PeekMulti(name)
	if len(vs) == 0 {
		return nil
	}
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}

// Status sets the response status code and returns the context for chaining.
func (c *Context) Status(code int) *Context {
	c.RequestCtx.Response.SetStatusCode(code)
	return c
}

// SendString writes a plain text response body.
func (c *Context) SendString(s string) error {
	c.RequestCtx.Response.Header.SetContentType(MIMETextPlain)
	c.RequestCtx.Response.SetBodyString(s)
	return nil
}

// SendStatusCode sets the status code and writes its standard description as
// the body.
func (c *Context) SendStatusCode(code int) error {
	c.RequestCtx.Response.SetStatusCode(code)
	return c.SendString(StatusMessage(code))
}

// SendJSON encodes v with the application's JSON encoder. When
// SecureJSONPrefix is set, it is prepended to the payload.
func (c *Context) SendJSON(v any) error {
	data, err := c.vesta.JsonEncoder(v)
	if err != nil {
		return err
	}
	c.RequestCtx.Response.Header.SetContentType(MIMEApplicationJSON)
	if p := c.vesta.SecureJSONPrefix; p != "" {
		c.RequestCtx.Response.SetBodyString(p)
		c.RequestCtx.Response.AppendBody(data)
		return nil
	}
	c.RequestCtx.Response.SetBody(data)
	return nil
}

// SendXML encodes v with the application's XML encoder.
func (c *Context) SendXML(v any) error {
	data, err := c.vesta.XmlEncoder(v)
	if err != nil {
		return err
	}
	c.RequestCtx.Response.Header.SetContentType(MIMEApplicationXML)
	c.RequestCtx.Response.SetBody(data)
	return nil
}

// SendYAML encodes v as YAML.
func (c *Context) SendYAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	c.RequestCtx.Response.Header.SetContentType(MIMEApplicationYAML)
	c.RequestCtx.Response.SetBody(data)
	return nil
}

// SendCBOR encodes v as CBOR.
func (c *Context) SendCBOR(v any) error {
	data, err := cbor.Marshal(v)
	if err != nil {
		return err
	}
	c.RequestCtx.Response.Header.SetContentType(MIMEApplicationCBOR)
	c.RequestCtx.Response.SetBody(data)
	return nil
}

// SendTOML encodes v as TOML.
func (c *Context) SendTOML(v any) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return err
	}
	c.RequestCtx.Response.Header.SetContentType(MIMEApplicationTOML)
	c.RequestCtx.Response.SetBody(data)
	return nil
}

// BindJSON decodes the request body as JSON into v.
func (c *Context) BindJSON(v any) error {
	return c.vesta.JsonDecoder(c.RequestCtx.Request.Body(), v)
}

// BindXML decodes the request body as XML into v.
func (c *Context) BindXML(v any) error {
	return c.vesta.XmlDecoder(c.RequestCtx.Request.Body(), v)
}

// BindYAML decodes the request body as YAML into v.
func (c *Context) BindYAML(v any) error {
	return yaml.Unmarshal(c.RequestCtx.Request.Body(), v)
}

// BindCBOR decodes the request body as CBOR into v.
func (c *Context) BindCBOR(v any) error {
	return cbor.Unmarshal(c.RequestCtx.Request.Body(), v)
}

// BindTOML decodes the request body as TOML into v.
func (c *Context) BindTOML(v any) error {
	return toml.Unmarshal(c.RequestCtx.Request.Body(), v)
}

// Bind decodes the request body into v based on the Content-Type header.
func (c *Context) Bind(v any) error {
	ct := string(c.RequestCtx.Request.Header.ContentType())
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case MIMEApplicationJSON:
		return c.BindJSON(v)
	case MIMEApplicationXML, MIMETextXML:
		return c.BindXML(v)
	case MIMEApplicationYAML, MIMEApplicationXYAML, MIMETextYAML:
		return c.BindYAML(v)
	case MIMEApplicationCBOR:
		return c.BindCBOR(v)
	case MIMEApplicationTOML:
		return c.BindTOML(v)
	}
	return DefaultUnsupportedMediaType
}

// Accepts returns the offer the client prefers according to the Accept
// header. Wildcards such as text/* and */* are honored; the empty string is
// returned when nothing is acceptable.
func (c *Context) Accepts(offers ...string) string {
	if len(offers) == 0 {
		return ""
	}
	accept := string(c.RequestCtx.Request.Header.Peek(HeaderAccept))
	if accept == "" {
		return offers[0]
	}

	best, bestQ := "", -1.0
	for _, offer := range offers {
		q := acceptQuality(accept, offer)
		if q > bestQ {
			best, bestQ = offer, q
		}
	}
	if bestQ <= 0 {
		return ""
	}
	return best
}

// acceptQuality returns the q-value the Accept header assigns to offer, or 0
// when no entry covers it.
func acceptQuality(accept, offer string) float64 {
	q := 0.0
	for _, entry := range strings.Split(accept, ",") {
		entry = strings.TrimSpace(entry)
		mediaType := entry
		entryQ := 1.0
		if i := strings.IndexByte(entry, ';'); i >= 0 {
			mediaType = strings.TrimSpace(entry[:i])
			for _, p := range strings.Split(entry[i+1:], ";") {
				p = strings.TrimSpace(p)
				if qs, ok := strings.CutPrefix(p, "q="); ok {
					if f, err := strconv.ParseFloat(qs, 64); err == nil {
						entryQ = f
					}
				}
			}
		}
		if !mediaTypeMatches(mediaType, offer) {
			continue
		}
		if entryQ > q {
			q = entryQ
		}
	}
	return q
}

func mediaTypeMatches(pattern, offer string) bool {
	if pattern == "*/*" || pattern == offer {
		return true
	}
	if t, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(offer, t+"/")
	}
	return false
}

// RealIP returns the client address, preferring the X-Forwarded-For and
// X-Real-IP headers over the socket peer.
func (c *Context) RealIP() string {
	if fwd := string(c.RequestCtx.Request.Header.Peek(HeaderForwardedFor)); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	if ip := string(c.RequestCtx.Request.Header.Peek(HeaderXRealIP)); ip != "" {
		return ip
	}
	return c.RequestCtx.RemoteIP().String()
}

// Range is a single byte range requested by the client, inclusive on both
// ends.
type Range struct {
	Start int64
	End   int64
}

// RangeSet is the parsed form of a Range header.
type RangeSet struct {
	Type   string
	Ranges []Range
}

// Ranges parses the request's Range header against a resource of the given
// size. It returns nil when the header is absent and an error when the
// header is malformed or no range is satisfiable.
func (c *Context) Ranges(size int64) (*RangeSet, error) {
	header := string(c.RequestCtx.Request.Header.Peek(HeaderRange))
	if header == "" {
		return nil, nil
	}
	unit, spec, ok := strings.Cut(header, "=")
	if !ok {
		return nil, ErrRangeNotSatisfiable("malformed Range header")
	}

	result := &RangeSet{Type: strings.TrimSpace(unit)}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		startStr, endStr, ok := strings.Cut(part, "-")
		if !ok {
			return nil, ErrRangeNotSatisfiable("malformed Range header")
		}

		var start, end int64
		switch {
		case startStr == "" && endStr == "":
			return nil, ErrRangeNotSatisfiable("malformed Range header")
		case startStr == "":
			// Suffix range: the final endStr bytes.
			n, err := strconv.ParseInt(endStr, 10, 64)
			if err != nil || n <= 0 {
				return nil, ErrRangeNotSatisfiable("malformed Range header")
			}
			if n > size {
				n = size
			}
			start, end = size-n, size-1
		default:
			var err error
			start, err = strconv.ParseInt(startStr, 10, 64)
			if err != nil {
				return nil, ErrRangeNotSatisfiable("malformed Range header")
			}
			if endStr == "" {
				end = size - 1
			} else {
				end, err = strconv.ParseInt(endStr, 10, 64)
				if err != nil {
					return nil, ErrRangeNotSatisfiable("malformed Range header")
				}
			}
			if end >= size {
				end = size - 1
			}
		}
		if start < 0 || start > end {
			continue
		}
		result.Ranges = append(result.Ranges, Range{Start: start, End: end})
	}
	if len(result.Ranges) == 0 {
		return nil, ErrRangeNotSatisfiable(fmt.Sprintf("no satisfiable range for size %d", size))
	}
	return result, nil
}
