// Package vesta provides a high-performance HTTP framework built on a
// generic radix-tree route recognizer with `{name}` parameters, `{*name}`
// catch-alls, and `{{`/`}}` brace escapes.
package vesta

import (
	"encoding/xml"
	"sort"
	"strings"
	"sync"
	"unsafe"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/reuseport"

	"github.com/Abhishek2010dev/vesta/radix"
)

type Handler func(*Context) error

// Vesta is the main application struct for the framework.
// It stores per-method recognizer trees, middleware, error handling logic,
// and manages request context pooling and execution.
type Vesta struct {
	Group // Root group for registering routes directly

	// Recognizer trees for each HTTP method
	getTree     *radix.Router[[]Handler]
	headTree    *radix.Router[[]Handler]
	postTree    *radix.Router[[]Handler]
	putTree     *radix.Router[[]Handler]
	patchTree   *radix.Router[[]Handler]
	deleteTree  *radix.Router[[]Handler]
	connectTree *radix.Router[[]Handler]
	optionsTree *radix.Router[[]Handler]
	traceTree   *radix.Router[[]Handler]

	// Request context pooling for performance
	pool sync.Pool

	// Handlers executed when no route matches
	notFound         []Handler
	notFoundHandlers []Handler

	// Named route registry
	routes map[string]*Route

	// Unsafe byte slice to string conversion
	toString func(v []byte) string

	// Custom error handler
	ErrorHandler func(*Context, error) error

	// Use SO_REUSEPORT for multiple listeners on same port
	useReusePort bool

	// JsonDecoder is the default function used to decode a JSON payload
	// from the request body. It should unmarshal the byte slice into
	// the target Go value. A typical implementation uses json.Unmarshal
	// or a high-performance alternative such as sonic or jsoniter.
	JsonDecoder DecoderFunc

	// JsonEncoder is the default function used to encode a Go value into
	// JSON format. It should return the marshaled byte slice that can be
	// directly written to the response. Set the "Content-Type" to
	// "application/json" before sending the bytes.
	JsonEncoder EncoderFunc

	// JsonIndent is an optional function used to pretty-print JSON output.
	// It takes a Go value, prefix, and indent string to format the output
	// for better readability. Typically wraps json.MarshalIndent or similar.
	JsonIndent IndentFunc

	// SecureJSONPrefix is a string prepended to all JSON responses
	// to prevent JSON Hijacking attacks. Common value: "while(1);"
	// If set, all JSON responses will begin with this prefix.
	SecureJSONPrefix string

	// XmlDecoder is the default function used to decode an XML payload
	// from the request body. It should unmarshal the byte slice into
	// the target Go value. Typically wraps encoding/xml.Unmarshal or
	// a faster XML decoder.
	XmlDecoder DecoderFunc

	// XmlEncoder is the default function used to encode a Go value into
	// XML format. It should return the marshaled byte slice that can be
	// written directly to the response. You should set the
	// "Content-Type" to "application/xml" or "text/xml" before writing.
	XmlEncoder EncoderFunc

	// XmlIndent is an optional function used to pretty-print XML output.
	// It takes a Go value, prefix, and indent string to format the output.
	// Usually wraps xml.MarshalIndent or any compatible alternative.
	XmlIndent IndentFunc
}

// New creates and returns a new Vesta instance with default settings,
// initializes not found handlers and context pooling. Recognizer trees are
// created lazily, on the first route registered for a method.
func New() *Vesta {
	v := &Vesta{
		routes:           make(map[string]*Route),
		JsonDecoder:      sonic.Unmarshal,
		JsonEncoder:      sonic.Marshal,
		JsonIndent:       sonic.MarshalIndent,
		XmlEncoder:       xml.Marshal,
		XmlDecoder:       xml.Unmarshal,
		XmlIndent:        xml.MarshalIndent,
		SecureJSONPrefix: "while(1);",
	}
	v.Group = *NewGroup("", v, nil)
	v.pool.New = func() interface{} {
		return &Context{
			vesta: v,
		}
	}
	v.toString = func(b []byte) string {
		return *(*string)(unsafe.Pointer(&b))
	}
	v.NotFound(MethodNotAllowedHandler, NotFoundHandler)
	v.ErrorHandler = func(c *Context, err error) error {
		if httpErr, ok := err.(HTTPError); ok {
			return c.Status(httpErr.StatusCode()).SendString(httpErr.Error())
		}
		return c.Status(StatusInternalServerError).SendString("Internal Server Error")
	}
	return v
}

// Use appends the specified handlers to the router and shares them with every
// route registered afterwards and with the not-found chain.
func (v *Vesta) Use(handlers ...Handler) {
	v.Group.Use(handlers...)
	v.notFoundHandlers = combineHandlers(v.handlers, v.notFound)
}

// GetRoute returns a named route by name.
func (v *Vesta) GetRoute(name string) *Route {
	return v.routes[name]
}

// ReusePort toggles SO_REUSEPORT so several processes can share the listen
// address.
func (v *Vesta) ReusePort(enable bool) {
	v.useReusePort = enable
}

// NotFound sets the handler(s) to be used when no route is matched.
// The final notFound handler chain includes global middleware.
func (v *Vesta) NotFound(handlers ...Handler) {
	v.notFound = handlers
	v.notFoundHandlers = combineHandlers(v.handlers, v.notFound)
}

// find attempts to locate a handler chain for the given method and path.
// If no match is found, the notFound handler is returned.
func (v *Vesta) find(method string, path []byte) ([]Handler, radix.Params) {
	if t := v.treeForMethod(method); t != nil {
		if m, ok := t.Match(path); ok {
			return *m.Value, m.Params
		}
	}
	return v.notFoundHandlers, radix.Params{}
}

// findAllowedMethods returns a set of allowed HTTP methods for a given path.
// Useful for generating Allow headers when responding with 405 errors.
func (v *Vesta) findAllowedMethods(path []byte) map[string]bool {
	methods := make(map[string]bool)

	check := func(method string, t *radix.Router[[]Handler]) {
		if t != nil {
			if _, ok := t.Match(path); ok {
				methods[method] = true
			}
		}
	}

	check(MethodGet, v.getTree)
	check(MethodHead, v.headTree)
	check(MethodPost, v.postTree)
	check(MethodPut, v.putTree)
	check(MethodPatch, v.patchTree)
	check(MethodDelete, v.deleteTree)
	check(MethodConnect, v.connectTree)
	check(MethodOptions, v.optionsTree)
	check(MethodTrace, v.traceTree)

	return methods
}

// HandleRequest is the main request entry point for fasthttp.
// It acquires a context from the pool, performs route matching,
// executes the handler chain, and handles any returned errors.
func (v *Vesta) HandleRequest(ctx *fasthttp.RequestCtx) {
	c := v.pool.Get().(*Context)
	defer v.pool.Put(c)

	c.init(ctx)
	c.handlers, c.params = v.find(v.toString(ctx.Method()), ctx.Path())

	if err := c.Next(); err != nil {
		// Call error handler if set
		if v.ErrorHandler != nil {
			if handleErr := v.ErrorHandler(c, err); handleErr != nil {
				c.SendStatusCode(StatusInternalServerError)
			}
		} else {
			// Fallback to default error response if no error handler is defined
			c.SendStatusCode(StatusInternalServerError)
		}
	}
}

// add registers a route in the recognizer tree for the given HTTP method.
// Registration happens at startup with a programmer-controlled pattern, so a
// rejected pattern (conflict, malformed wildcard) panics with the recognizer
// error instead of returning it.
func (v *Vesta) add(method, path string, handlers []Handler) {
	tree := v.treeForMethod(method)
	if tree == nil {
		tree = radix.New[[]Handler]()
		v.setTreeForMethod(method, tree)
	}
	if err := tree.Insert([]byte(path), handlers); err != nil {
		panic(err)
	}
}

// treeForMethod returns the recognizer tree corresponding to an HTTP method.
func (v *Vesta) treeForMethod(method string) *radix.Router[[]Handler] {
	switch method {
	case MethodGet:
		return v.getTree
	case MethodHead:
		return v.headTree
	case MethodPost:
		return v.postTree
	case MethodPut:
		return v.putTree
	case MethodPatch:
		return v.patchTree
	case MethodDelete:
		return v.deleteTree
	case MethodConnect:
		return v.connectTree
	case MethodOptions:
		return v.optionsTree
	case MethodTrace:
		return v.traceTree
	default:
		return nil
	}
}

// setTreeForMethod sets the recognizer tree for the given HTTP method.
func (v *Vesta) setTreeForMethod(method string, t *radix.Router[[]Handler]) {
	switch method {
	case MethodGet:
		v.getTree = t
	case MethodHead:
		v.headTree = t
	case MethodPost:
		v.postTree = t
	case MethodPut:
		v.putTree = t
	case MethodPatch:
		v.patchTree = t
	case MethodDelete:
		v.deleteTree = t
	case MethodConnect:
		v.connectTree = t
	case MethodOptions:
		v.optionsTree = t
	case MethodTrace:
		v.traceTree = t
	}
}

// NotFoundHandler is the default fallback handler that returns 404.
func NotFoundHandler(*Context) error {
	return ErrNotFound()
}

// MethodNotAllowedHandler builds and sets the "Allow" header when
// a route exists for the path but not for the method. If the request
// method is not OPTIONS, it returns 405 Method Not Allowed.
func MethodNotAllowedHandler(c *Context) error {
	methods := c.Vesta().findAllowedMethods(c.RequestCtx.Path())
	if len(methods) == 0 {
		return nil
	}
	methods[MethodOptions] = true
	ms := make([]string, 0, len(methods))
	for m := range methods {
		ms = append(ms, m)
	}
	sort.Strings(ms)
	c.RequestCtx.Response.Header.Set(HeaderAllow, strings.Join(ms, ", "))
	if string(c.RequestCtx.Method()) != MethodOptions {
		c.RequestCtx.Response.SetStatusCode(StatusMethodNotAllowed)
	}
	c.Abort()
	return nil
}

// Run starts the HTTP server on the given address using fasthttp.
// If reuse port is enabled, it uses SO_REUSEPORT for load balancing across processes.
func (v *Vesta) Run(addr string) error {
	if v.useReusePort {
		ln, err := reuseport.Listen("tcp4", addr)
		if err != nil {
			return err
		}
		return fasthttp.Serve(ln, v.HandleRequest)
	}
	return fasthttp.ListenAndServe(addr, v.HandleRequest)
}
