// Package ctx provides a request context for handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context with helpers for params, decoding and the
// response envelopes:
//
//	func (c *OrderController) Show(cx *ctx.Context) {
//	    id, ok := cx.ParamID("id")
//	    if !ok {
//	        return
//	    }
//	    view, err := c.orders.GetOrder(cx.Context(), cx.MustPrincipal(), id)
//	    if err != nil {
//	        cx.Fail(err)
//	        return
//	    }
//	    cx.OK("Order retrieved", response.Payload{"order": view})
//	}
//
//	router.Get("/orders/{id}", "orders.show", ctx.Wrap(c.Show))
package ctx

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/brewhouse/pkg/apperr"
	"github.com/shashiranjanraj/brewhouse/pkg/auth"
	"github.com/shashiranjanraj/brewhouse/pkg/bind"
	"github.com/shashiranjanraj/brewhouse/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	mu     sync.RWMutex
	store  map[string]any
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{store: make(map[string]any)} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	for k := range c.store {
		delete(c.store, k)
	}
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// Param returns a URL path parameter.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamID parses a positive integer path parameter. On failure it writes a
// 404 and returns false, matching how unknown resources are reported.
func (c *Context) ParamID(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		c.Error(http.StatusNotFound, "Not found")
		return 0, false
	}
	return uint(n), true
}

// Query returns a query-string value, "" if absent.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// DefaultQuery returns a query-string value, or def if it is empty.
func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

func (c *Context) Header(key string) string { return c.R.Header.Get(key) }

// ClientIP returns the client IP, honouring X-Forwarded-For and X-Real-Ip.
func (c *Context) ClientIP() string {
	return ClientIP(c.R)
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Principal returns the authenticated caller, if any.
func (c *Context) Principal() (auth.Principal, bool) {
	return auth.PrincipalFrom(c.R.Context())
}

// MustPrincipal returns the caller on routes guarded by the auth
// middleware. It panics when the middleware is missing.
func (c *Context) MustPrincipal() auth.Principal {
	p, ok := c.Principal()
	if !ok {
		panic("ctx: no principal on request; is the auth middleware mounted?")
	}
	return p
}

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	c.store[key] = val
	c.mu.Unlock()
}

func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.store[key]
	c.mu.RUnlock()
	return v, ok
}

// DecodeJSON decodes the body into dest. An empty body leaves dest
// untouched so the service reports which fields are missing. On any other
// failure it sends a 400 and returns false.
func (c *Context) DecodeJSON(dest any) bool {
	err := bind.Decode(c.R, dest)
	switch {
	case err == nil, errors.Is(err, bind.ErrEmptyBody):
		return true
	case errors.Is(err, bind.ErrTooLarge):
		c.Error(http.StatusRequestEntityTooLarge, err.Error())
	default:
		c.Error(http.StatusBadRequest, "Invalid JSON payload")
	}
	return false
}

// BindJSON decodes and validates the body into dest. On failure it sends
// the 400 response and returns false.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		c.Fail(apperr.ValidationFields("Validation failed", errs))
		return false
	}
	return true
}

// JSON writes v with the given status code.
func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

// OK sends a 200 success envelope.
func (c *Context) OK(message string, payload response.Payload) {
	c.status = http.StatusOK
	response.OK(c.W, message, payload)
}

// Created sends a 201 success envelope.
func (c *Context) Created(message string, payload response.Payload) {
	c.status = http.StatusCreated
	response.Created(c.W, message, payload)
}

// Error sends an error envelope with the given status and message.
func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

// Fail maps err through the apperr taxonomy and writes the envelope.
func (c *Context) Fail(err error) {
	c.status = apperr.KindOf(err).Status()
	response.FromError(c.W, c.R, err)
}

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }

// ClientIP extracts the caller address from r.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
