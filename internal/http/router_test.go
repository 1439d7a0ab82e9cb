package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	intconfig "blogapi/internal/config"
	h "blogapi/internal/http/handlers"
	"blogapi/internal/mapping"
	"blogapi/internal/resources"
	"blogapi/internal/services"
	"blogapi/internal/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

const (
	testBase     = "http://blog.test"
	selectPosts  = `SELECT id, title, body, author, last_modified FROM posts`
	postColsList = "id,title,body,author,last_modified"
)

var postCols = strings.Split(postColsList, ",")

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router http.Handler
	mock   sqlmock.Sqlmock
}

func newTestServer(t *testing.T, mappings ...mapping.PropertyMapping) testServer {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	if mappings == nil {
		mappings = []mapping.PropertyMapping{resources.PostMapping()}
	}
	reg, err := mapping.NewRegistry(mappings...)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	env := intconfig.Env{
		PublicBaseURL: testBase,
		Pagination:    intconfig.PaginationConfig{DefaultPageSize: 10, MaxPageSize: 100},
	}
	r := NewRouter(Deps{
		Env:      env,
		DB:       db,
		Mappings: reg,
		Auth: services.AuthService{
			Secret:            []byte("test-secret"),
			TTL:               time.Minute,
			AdminUsername:     "admin",
			AdminPasswordHash: string(hash),
		},
	})
	return testServer{router: r, mock: mock}
}

func (s testServer) do(method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	s.router.ServeHTTP(w, req)
	return w
}

func (s testServer) token(t *testing.T) string {
	t.Helper()
	w := s.do(http.MethodPost, "/api/auth/token", strings.NewReader(`{"username":"admin","password":"s3cret"}`), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Bearer", resp.TokenType)
	return resp.Token
}

func postRows(ids ...int) *sqlmock.Rows {
	rows := sqlmock.NewRows(postCols)
	mod := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range ids {
		rows.AddRow(int64(id), fmt.Sprintf("Post %02d", id), "body", "admin", mod)
	}
	return rows
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp h.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Code
}

func TestListPostsPlainShapedSortedPaged(t *testing.T) {
	s := newTestServer(t)
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM posts`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	s.mock.ExpectQuery(regexp.QuoteMeta(selectPosts + ` ORDER BY title DESC, id ASC LIMIT ? OFFSET ?`)).
		WithArgs(10, 0).
		WillReturnRows(postRows(25, 24, 23, 22, 21, 20, 19, 18, 17, 16))

	w := s.do(http.MethodGet, "/api/posts?pageIndex=0&pageSize=10&orderBy=title%20desc&fields=title", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, s.mock.ExpectationsWereMet())

	assert.True(t, strings.HasPrefix(w.Body.String(), `[{"id":25,"title":"Post 25"},`), w.Body.String())

	var items []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 10)
	for _, item := range items {
		assert.Len(t, item, 2)
		assert.Contains(t, item, "id")
		assert.Contains(t, item, "title")
	}
	assert.Equal(t, "Post 16", items[9]["title"])

	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(w.Header().Get("X-Pagination")), &meta))
	assert.EqualValues(t, 0, meta["pageIndex"])
	assert.EqualValues(t, 10, meta["pageSize"])
	assert.EqualValues(t, 25, meta["totalItemsCount"])
	assert.EqualValues(t, 3, meta["pageCount"])
	assert.Nil(t, meta["previousPageLink"])
	assert.Contains(t, meta, "previousPageLink")
	assert.Equal(t, testBase+"/api/posts?fields=title&orderBy=title+desc&pageIndex=1&pageSize=10", meta["nextPageLink"])
}

func TestListPostsHateoasEnvelope(t *testing.T) {
	s := newTestServer(t)
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM posts`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	s.mock.ExpectQuery(regexp.QuoteMeta(selectPosts + ` ORDER BY id ASC LIMIT ? OFFSET ?`)).
		WithArgs(10, 10).
		WillReturnRows(postRows(11, 12, 13, 14, 15, 16, 17, 18, 19, 20))

	w := s.do(http.MethodGet, "/api/posts?pageIndex=1", nil, map[string]string{"Accept": h.MediaTypeHateoas})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, s.mock.ExpectationsWereMet())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), h.MediaTypeHateoas))

	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(w.Header().Get("X-Pagination")), &meta))
	assert.EqualValues(t, 1, meta["pageIndex"])
	assert.EqualValues(t, 3, meta["pageCount"])
	assert.NotContains(t, meta, "nextPageLink")

	var env struct {
		Value []struct {
			ID    int64 `json:"id"`
			Links []struct {
				Href   string `json:"href"`
				Rel    string `json:"rel"`
				Method string `json:"method"`
			} `json:"links"`
		} `json:"value"`
		Links []struct {
			Href   string `json:"href"`
			Rel    string `json:"rel"`
			Method string `json:"method"`
		} `json:"links"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	require.Len(t, env.Value, 10)
	first := env.Value[0]
	assert.EqualValues(t, 11, first.ID)
	require.Len(t, first.Links, 2)
	assert.Equal(t, testBase+"/api/posts/11", first.Links[0].Href)
	assert.Equal(t, "self", first.Links[0].Rel)
	assert.Equal(t, "delete_post", first.Links[1].Rel)
	assert.Equal(t, http.MethodDelete, first.Links[1].Method)

	require.Len(t, env.Links, 3)
	rels := []string{env.Links[0].Rel, env.Links[1].Rel, env.Links[2].Rel}
	assert.Equal(t, []string{"self", "previous_page", "next_page"}, rels)
	assert.Contains(t, env.Links[0].Href, "pageIndex=1")
	assert.Contains(t, env.Links[1].Href, "pageIndex=0")
	assert.Contains(t, env.Links[2].Href, "pageIndex=2")
	for _, l := range env.Links {
		assert.Contains(t, l.Href, "orderBy=id")
		assert.Contains(t, l.Href, "pageSize=10")
	}
}

func TestListPostsTitleFilterAndClamp(t *testing.T) {
	s := newTestServer(t)
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM posts WHERE LOWER(title) = ?`)).
		WithArgs("post 03").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectQuery(regexp.QuoteMeta(selectPosts + ` WHERE LOWER(title) = ? ORDER BY id ASC LIMIT ? OFFSET ?`)).
		WithArgs("post 03", 100, 0).
		WillReturnRows(postRows(3))

	w := s.do(http.MethodGet, "/api/posts?title=Post%2003&pageSize=5000&pageIndex=-4", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, s.mock.ExpectationsWereMet())
}

func TestListPostsRejectsBadInputBeforeStorage(t *testing.T) {
	cases := []struct {
		name   string
		target string
		code   string
	}{
		{"unknown sort field", "/api/posts?orderBy=rating", "unknown_sort_field"},
		{"one bad clause", "/api/posts?orderBy=title,rating%20desc", "unknown_sort_field"},
		{"unknown shape field", "/api/posts?fields=title,rating", "unknown_shape_field"},
		{"non numeric page index", "/api/posts?pageIndex=abc", "invalid_parameter"},
		{"non numeric page size", "/api/posts?pageSize=ten", "invalid_parameter"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			w := s.do(http.MethodGet, tc.target, nil, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.code, errorCode(t, w))
			assert.NoError(t, s.mock.ExpectationsWereMet())
		})
	}
}

func TestListPostsUnregisteredMappingIs500(t *testing.T) {
	other := mapping.For[struct {
		ID int64 `json:"id"`
	}, struct{ ID int64 }]()
	s := newTestServer(t, other)

	w := s.do(http.MethodGet, "/api/posts", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "configuration_error", errorCode(t, w))
}

func TestListPostsStorageFaultIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	utils.SetLogger(zap.New(core))
	t.Cleanup(func() { utils.SetLogger(nil) })

	s := newTestServer(t)
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM posts`)).
		WillReturnError(errors.New("connection reset"))

	w := s.do(http.MethodGet, "/api/posts", nil, map[string]string{"X-Request-ID": "req-42"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal_error", errorCode(t, w))
	assert.NotContains(t, w.Body.String(), "connection reset")

	entries := logs.FilterMessage("unhandled error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
}

func TestGetPost(t *testing.T) {
	s := newTestServer(t)
	s.mock.ExpectQuery(regexp.QuoteMeta(selectPosts + ` WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnRows(postRows(3))

	w := s.do(http.MethodGet, "/api/posts/3?fields=Author", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rec map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.EqualValues(t, 3, rec["id"])
	assert.Equal(t, "admin", rec["author"])
	assert.NotContains(t, rec, "title")

	recLinks := rec["links"].([]any)
	require.Len(t, recLinks, 2)
	self := recLinks[0].(map[string]any)
	assert.Equal(t, testBase+"/api/posts/3?fields=Author", self["href"])
}

func TestGetPostErrors(t *testing.T) {
	s := newTestServer(t)
	s.mock.ExpectQuery(regexp.QuoteMeta(selectPosts + ` WHERE id = ?`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(postCols))

	w := s.do(http.MethodGet, "/api/posts/99", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errorCode(t, w))

	w = s.do(http.MethodGet, "/api/posts/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_parameter", errorCode(t, w))

	w = s.do(http.MethodGet, "/api/posts/3?fields=nope", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unknown_shape_field", errorCode(t, w))
}

func TestCreatePostRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/posts", strings.NewReader(`{"title":"Hello","author":"ann"}`), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", errorCode(t, w))

	w = s.do(http.MethodPost, "/api/auth/token", strings.NewReader(`{"username":"admin","password":"nope"}`), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePost(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t)
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO posts (title, body, author, last_modified) VALUES (?, ?, ?, ?)`)).
		WithArgs("Hello world", "b", "ann", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(26, 1))

	auth := map[string]string{"Authorization": "Bearer " + token}
	w := s.do(http.MethodPost, "/api/posts", strings.NewReader(`{"title":" Hello  world ","body":"b","author":"ann"}`), auth)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(t, s.mock.ExpectationsWereMet())
	assert.Equal(t, testBase+"/api/posts/26", w.Header().Get("Location"))
	assert.True(t, strings.HasPrefix(w.Body.String(), `{"id":26,"title":"Hello world","body":"b","author":"ann","updateTime":`), w.Body.String())

	w = s.do(http.MethodPost, "/api/posts", strings.NewReader(`{"body":"missing title"}`), auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_parameter", errorCode(t, w))
}

func TestDeletePost(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t)
	auth := map[string]string{"Authorization": "Bearer " + token}

	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM posts WHERE id = ?`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM posts WHERE id = ?`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := s.do(http.MethodDelete, "/api/posts/5", nil, auth)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.do(http.MethodDelete, "/api/posts/5", nil, auth)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/posts/5", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NoError(t, s.mock.ExpectationsWereMet())
}

func TestSystemRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM posts`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	w = s.do(http.MethodGet, "/api/db-check", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"posts_in_db":7`)

	w = s.do(http.MethodGet, "/api/routes", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/posts/:id")

	w = s.do(http.MethodGet, "/api/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")
}

func TestNamedRoutesResolve(t *testing.T) {
	urls := NamedRoutes().WithBase(testBase)

	href, err := urls.Link(h.RouteGetPost, map[string]string{"id": "4", "fields": "title"})
	require.NoError(t, err)
	assert.Equal(t, testBase+"/api/posts/4?fields=title", href)

	_, err = urls.Link("Nope", nil)
	assert.Error(t, err)
}
