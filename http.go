package autoschema

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"go.appointy.com/autoschema/graphql"
	"go.appointy.com/autoschema/introspection"
	"go.appointy.com/autoschema/jerrors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MiddlewareFunc wraps the handler of every route.
type MiddlewareFunc func(http.Handler) http.Handler

type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	Middlewares  []MiddlewareFunc
	CheckOrigin  func(r *http.Request) bool
	WriteTimeout time.Duration
}

// WithMiddlewares wraps every route in mws. The first middleware is the
// outermost.
func WithMiddlewares(mws ...MiddlewareFunc) HandlerOption {
	return func(o *handlerOptions) {
		o.Middlewares = append(o.Middlewares, mws...)
	}
}

// WithCheckOrigin sets the origin check of the watch websocket. By default
// only same-origin requests are accepted.
func WithCheckOrigin(f func(r *http.Request) bool) HandlerOption {
	return func(o *handlerOptions) {
		o.CheckOrigin = f
	}
}

// HTTPHandler serves the engine's schema:
//
//	GET /schema.graphql  the schema as SDL
//	GET /schema.json     the introspection result
//	GET /watch           a websocket streaming a BuildEvent per published build
func HTTPHandler(e *Engine, opts ...HandlerOption) http.Handler {
	o := handlerOptions{WriteTimeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	h := &httpHandler{
		engine:       e,
		upgrader:     websocket.Upgrader{CheckOrigin: o.CheckOrigin},
		writeTimeout: o.WriteTimeout,
	}

	mux := http.NewServeMux()
	mux.Handle("/schema.graphql", wrap(http.HandlerFunc(h.serveSDL), o.Middlewares))
	mux.Handle("/schema.json", wrap(http.HandlerFunc(h.serveIntrospection), o.Middlewares))
	mux.Handle("/watch", wrap(http.HandlerFunc(h.serveWatch), o.Middlewares))
	return mux
}

func wrap(h http.Handler, mws []MiddlewareFunc) http.Handler {
	for i := range mws {
		h = mws[len(mws)-1-i](h)
	}
	return h
}

type httpHandler struct {
	engine       *Engine
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
}

type httpResponse struct {
	Errors []*jerrors.Error `json:"errors"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	body, merr := json.Marshal(httpResponse{Errors: []*jerrors.Error{jerrors.ConvertError(err)}})
	if merr != nil {
		http.Error(w, merr.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// schema loads the schema for a GET request, writing the error response
// itself when it returns nil.
func (h *httpHandler) schema(w http.ResponseWriter, r *http.Request) *graphql.Schema {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, &jerrors.Error{
			Message:    "request must be a GET",
			Extensions: jerrors.Extensions{Code: "InvalidArgument"},
			Paths:      []string{},
		})
		return nil
	}

	schema, err := h.engine.Load(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if jerrors.IsDataError(err) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, h.engine.HandleError(err))
		return nil
	}
	return schema
}

func (h *httpHandler) serveSDL(w http.ResponseWriter, r *http.Request) {
	schema := h.schema(w, r)
	if schema == nil {
		return
	}
	w.Header().Set("Content-Type", "application/graphql; charset=utf-8")
	_, _ = w.Write([]byte(graphql.PrintSchema(schema)))
}

func (h *httpHandler) serveIntrospection(w http.ResponseWriter, r *http.Request) {
	schema := h.schema(w, r)
	if schema == nil {
		return
	}
	body, err := introspection.ComputeSchemaJSON(schema)
	if err != nil {
		writeError(w, http.StatusInternalServerError, h.engine.HandleError(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// serveWatch sends the current build, then every published build, until the
// client goes away.
func (h *httpHandler) serveWatch(w http.ResponseWriter, r *http.Request) {
	if h.schema(w, r) == nil {
		return
	}

	events, cancel := h.engine.Subscribe()
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.engine.log.V(1).Info("watch upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(ev BuildEvent) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		return conn.WriteJSON(ev) == nil
	}

	if cur := h.engine.Current(); cur != nil && !send(cur.event()) {
		return
	}
	for {
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok || !send(ev) {
				return
			}
		}
	}
}
