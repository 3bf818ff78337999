package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"problem_tracker/internal/api/middleware"
	"problem_tracker/internal/app/service"
	"problem_tracker/internal/domain/repository/memstore"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type testServer struct {
	t      *testing.T
	store  *memstore.Store
	router http.Handler
}

func newTestServer(t *testing.T, pingErr error) *testServer {
	t.Helper()
	store := memstore.New()
	svc := service.NewServices(service.Repositories{
		Users:     store.Users(),
		Problems:  store.Problems(),
		Solutions: store.Solutions(),
		Resources: store.Resources(),
		Tags:      store.Tags(),
		Links:     store.Links(),
		Usage:     store.Usage(),
	}, store, zap.NewNop())

	router := NewRouter(svc, fakePinger{err: pingErr}, zap.NewNop(), Options{Metrics: middleware.NewMetrics()})
	return &testServer{t: t, store: store, router: router}
}

// do sends body (marshalled unless it is a string) and decodes the JSON reply into out.
func (s *testServer) do(method, path string, body any, out any) int {
	s.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if out != nil {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

type idReply struct {
	UserID     int64  `json:"user_id"`
	ProblemID  int64  `json:"problem_id"`
	SolutionID int64  `json:"solution_id"`
	ResourceID int64  `json:"resource_id"`
	TagID      int64  `json:"tag_id"`
	Error      string `json:"error"`
}

func TestHealth(t *testing.T) {
	var body map[string]string

	s := newTestServer(t, nil)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/", nil, &body))
	assert.Equal(t, "Hello", body["message"])
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", nil, &body))
	assert.Equal(t, "ok", body["status"])

	down := newTestServer(t, errors.New("connection refused"))
	assert.Equal(t, http.StatusServiceUnavailable, down.do(http.MethodGet, "/health", nil, &body))
	assert.Equal(t, "unavailable", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(http.MethodGet, "/tags", nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/tags"`)
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	var user idReply
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/users",
		map[string]any{"username": "ada", "email": "ada@example.com"}, &user))

	var dup idReply
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/users",
		map[string]any{"username": "ada2", "email": "ada@example.com"}, &dup))
	assert.Equal(t, "email already exists", dup.Error)

	var bad idReply
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/users", "{not json", &bad))
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/users/abc", nil, &bad))

	var missing idReply
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/users/999", nil, &missing))
	assert.Equal(t, "user 999 not found", missing.Error)

	var patched map[string]any
	require.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/users/1",
		map[string]any{"first_name": "Ada"}, &patched))
	assert.Equal(t, "Ada", patched["first_name"])
	assert.Equal(t, "ada", patched["username"])

	var list []map[string]any
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/users/1/problems", nil, &list))
	assert.Empty(t, list)

	var deleted map[string]bool
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/users/1", nil, &deleted))
	assert.True(t, deleted["deleted"])
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/users/1", nil, nil))
}

func TestProblemLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	var user, tag, problem idReply
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/users",
		map[string]any{"username": "ada", "email": "ada@example.com"}, &user))
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/tags",
		map[string]any{"tag_name": "bar"}, &tag))
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/problems",
		map[string]any{"user_id": user.UserID, "title": "Foo crashes", "tags": []int64{tag.TagID, tag.TagID}}, &problem))

	var withAuthor struct {
		Title  string `json:"title"`
		Author struct {
			UserID   int64  `json:"user_id"`
			Username string `json:"username"`
		} `json:"author"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/problems/1", nil, &withAuthor))
	assert.Equal(t, "ada", withAuthor.Author.Username)
	assert.Equal(t, user.UserID, withAuthor.Author.UserID)

	var found []idReply
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/problems?keyword=foo&tag=BAR", nil, &found))
	assert.Len(t, found, 1)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/problems?keyword=nothing", nil, &found))
	assert.Empty(t, found)

	var resolved map[string]any
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/problems/1/resolve", nil, &resolved))
	assert.Equal(t, true, resolved["resolved"])

	var errReply idReply
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, "/problems/1",
		map[string]any{"title": nil}, &errReply))
	assert.Equal(t, "title cannot be null", errReply.Error)

	var sol idReply
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/problems/1/solutions",
		map[string]any{"problem_id": 2, "code_snippet": "x"}, &errReply))
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/problems/1/solutions",
		map[string]any{"code_snippet": "x"}, &sol))

	var detail map[string]any
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/solutions/1", nil, &detail))
	assert.EqualValues(t, 0, detail["children_count"])
	assert.Nil(t, detail["parent_solution"])

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, "/solutions/1",
		map[string]any{"parent_solution_id": sol.SolutionID}, &errReply))

	var full struct {
		Solutions    []json.RawMessage `json:"solutions"`
		Tags         []json.RawMessage `json:"tags"`
		RelationsOut []json.RawMessage `json:"relations_out"`
		RelationsIn  []json.RawMessage `json:"relations_in"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/problems/1/full", nil, &full))
	assert.Len(t, full.Solutions, 1)
	assert.Len(t, full.Tags, 1)
	assert.NotNil(t, full.RelationsOut)
	assert.Empty(t, full.RelationsIn)

	var deleted map[string]bool
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/problems/1", nil, &deleted))
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/solutions/1", nil, nil))
}

func TestLinkEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	var user, p1, p2, res, tag idReply
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/users",
		map[string]any{"username": "ada", "email": "ada@example.com"}, &user))
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/problems",
		map[string]any{"user_id": user.UserID, "title": "one"}, &p1))
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/problems",
		map[string]any{"user_id": user.UserID, "title": "two"}, &p2))
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/resources",
		map[string]any{"user_id": user.UserID, "url": "https://go.dev", "usefulness_score": 5.0}, &res))
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/tags",
		map[string]any{"tag_name": "docs"}, &tag))

	var errReply idReply
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/resources",
		map[string]any{"user_id": user.UserID, "url": "https://x", "usefulness_score": 5.1}, &errReply))

	var full struct {
		LinkedResources []struct {
			RelevanceScore *float64 `json:"relevance_score"`
		} `json:"linked_resources"`
	}
	attach := map[string]any{"resource_id": res.ResourceID, "relevance_score": 0.5}
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/problems/1/resources", attach, &full))
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/problems/1/resources", attach, &full))
	require.Len(t, full.LinkedResources, 1)
	assert.Equal(t, 0.5, *full.LinkedResources[0].RelevanceScore)
	assert.Len(t, s.store.ProblemResourceRows(), 1)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/problems/2/resources/1", nil, &errReply))
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/problems/1/resources",
		map[string]any{"resource_id": 99}, &errReply))
	assert.Equal(t, "resource 99 not found", errReply.Error)

	var detail struct {
		Tags []idReply `json:"tags"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/resources/1/tags",
		map[string]any{"tag_id": tag.TagID, "confidence": 0.9}, &detail))
	assert.Len(t, detail.Tags, 1)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/problems/1/relations",
		map[string]any{"to_problem_id": 1}, &errReply))
	var rel map[string]any
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/problems/1/relations",
		map[string]any{"to_problem_id": 2, "relation_type": "similar", "strength": 0.4}, &rel))
	assert.EqualValues(t, 2, rel["to_problem_id"])
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/problems/1/relations",
		map[string]any{"to_problem_id": 2}, &errReply))

	var rels []map[string]any
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/problems/2/relations/in", nil, &rels))
	assert.Len(t, rels, 1)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/problems/2/relations/out", nil, &rels))
	assert.Empty(t, rels)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/problems/1/relations/2", nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/problems/1/relations/2", nil, nil))

	var dash struct {
		TopTags      []map[string]any `json:"top_tags"`
		TopResources []map[string]any `json:"top_resources"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/dashboard/1", nil, &dash))
	require.Len(t, dash.TopResources, 1)
	assert.EqualValues(t, 1, dash.TopResources[0]["usage_count"])
	require.Len(t, dash.TopTags, 1)
	assert.EqualValues(t, 0, dash.TopTags[0]["usage_count"])
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/dashboard/9", nil, nil))
}

func TestStorageFailureIsOpaque(t *testing.T) {
	s := newTestServer(t, nil)
	s.store.FailNext(errors.New("pq: connection reset by peer"))

	var errReply idReply
	assert.Equal(t, http.StatusInternalServerError, s.do(http.MethodGet, "/tags", nil, &errReply))
	assert.Equal(t, "Internal Server Error", errReply.Error)
}

func TestClientErrorMessages(t *testing.T) {
	s := newTestServer(t, nil)

	var user, problem idReply
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/users",
		map[string]any{"username": "ada", "email": "ada@example.com"}, &user))
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/problems",
		map[string]any{"user_id": user.UserID, "title": "Two Sum"}, &problem))

	var reply idReply
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/problems/abc", nil, &reply))
	assert.Equal(t, `invalid problem_id "abc"`, reply.Error)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/problems/1/relations/x", nil, &reply))
	assert.Equal(t, `invalid to_problem_id "x"`, reply.Error)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/users", nil, &reply))
	assert.Equal(t, "request body is required", reply.Error)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/problems/1/resources",
		map[string]any{"resource_id": 1, "relevance_score": 1.5}, &reply))
	assert.Equal(t, "relevance_score must be <= 1", reply.Error)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/problems/1/tags", map[string]any{}, &reply))
	assert.Equal(t, "tag_id is required", reply.Error)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/problems/1/relations", map[string]any{}, &reply))
	assert.Equal(t, "to_problem_id is required", reply.Error)
}

func TestPatchWithEmptyBodyReturnsRowUnchanged(t *testing.T) {
	s := newTestServer(t, nil)

	var user, problem idReply
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/users",
		map[string]any{"username": "ada", "email": "ada@example.com"}, &user))
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/problems",
		map[string]any{"user_id": user.UserID, "title": "Two Sum"}, &problem))

	var got map[string]any
	require.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/problems/1", nil, &got))
	assert.Equal(t, "Two Sum", got["title"])
	assert.Equal(t, false, got["resolved"])

	require.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/users/1", nil, &got))
	assert.Equal(t, "ada", got["username"])
}
