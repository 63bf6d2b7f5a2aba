package autoschema_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.appointy.com/autoschema"
	"go.appointy.com/autoschema/datamodel"
	"go.appointy.com/autoschema/jerrors"
	"google.golang.org/grpc/codes"
)

func testHTTPRequest(t *testing.T, e *autoschema.Engine, req *http.Request, opts ...autoschema.HandlerOption) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	autoschema.HTTPHandler(e, opts...).ServeHTTP(rr, req)
	return rr
}

func TestHTTPSchemaSDL(t *testing.T) {
	e := newEngine(t, datamodel.NewStaticSnapshot(postClass(map[string]datamodel.FieldType{
		"title": {Type: datamodel.TypeString},
	})))

	rr := testHTTPRequest(t, e, httptest.NewRequest(http.MethodGet, "/schema.graphql", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/graphql; charset=utf-8", rr.Header().Get("Content-Type"))

	body := rr.Body.String()
	assert.Contains(t, body, "type Post implements Node")
	assert.Contains(t, body, "posts(")
	assert.Equal(t, 1, strings.Count(body, "type Query {"))
}

func TestHTTPSchemaJSON(t *testing.T) {
	e := newEngine(t, datamodel.NewStaticSnapshot(postClass(nil)))

	rr := testHTTPRequest(t, e, httptest.NewRequest(http.MethodGet, "/schema.json", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var out struct {
		Schema struct {
			QueryType struct {
				Name string `json:"name"`
			} `json:"queryType"`
			Types []struct {
				Name string `json:"name"`
			} `json:"types"`
		} `json:"__schema"`
	}
	require.NoError(t, jsoniter.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "Query", out.Schema.QueryType.Name)

	var names []string
	for _, typ := range out.Schema.Types {
		names = append(names, typ.Name)
	}
	assert.Contains(t, names, "Post")
	assert.Contains(t, names, "PostConnection")
}

func TestHTTPMustBeGet(t *testing.T) {
	e := newEngine(t, datamodel.NewStaticSnapshot())

	rr := testHTTPRequest(t, e, httptest.NewRequest(http.MethodPost, "/schema.graphql", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	if diff := pretty.Compare(rr.Body.String(), `{"errors":[{"message":"request must be a GET","extensions":{"code":"InvalidArgument"},"paths":[]}]}`); diff != "" {
		t.Errorf("expected response to match, but received %s", diff)
	}
}

func TestHTTPDataLayerError(t *testing.T) {
	e := newEngine(t, datamodel.SnapshotFunc(func(context.Context) (*datamodel.Snapshot, error) {
		return nil, jerrors.NewDataError(codes.Unavailable, "database down")
	}))

	rr := testHTTPRequest(t, e, httptest.NewRequest(http.MethodGet, "/schema.json", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	if diff := pretty.Compare(rr.Body.String(), `{"errors":[{"message":"database down","extensions":{"code":"Unavailable"},"paths":[]}]}`); diff != "" {
		t.Errorf("expected response to match, but received %s", diff)
	}
}

func TestHTTPMiddlewareOrder(t *testing.T) {
	e := newEngine(t, datamodel.NewStaticSnapshot())

	var order []string
	mw := func(name string) autoschema.MiddlewareFunc {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	rr := testHTTPRequest(t, e, httptest.NewRequest(http.MethodGet, "/schema.graphql", nil),
		autoschema.WithMiddlewares(mw("outer"), mw("inner")))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestHTTPWatch(t *testing.T) {
	snapshots := datamodel.NewStaticSnapshot(postClass(nil))
	e := newEngine(t, snapshots)
	server := httptest.NewServer(autoschema.HTTPHandler(e))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/watch", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first autoschema.BuildEvent
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, e.Current().ID.String(), first.ID)

	snapshots.Set(postClass(map[string]datamodel.FieldType{"title": {Type: datamodel.TypeString}}))
	b, err := e.LoadBuild(context.Background())
	require.NoError(t, err)

	var next autoschema.BuildEvent
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, b.ID.String(), next.ID)
	assert.NotEqual(t, first.ID, next.ID)
}
