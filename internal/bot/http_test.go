package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"catalog/internal/library"
	"catalog/internal/models"
	"catalog/internal/storage/stubs"
)

func newTestAPI(t *testing.T) (*httptest.Server, *stubs.MockDB) {
	t.Helper()
	db := stubs.NewMockDB()
	lib, err := library.Open(context.Background(), db, zap.NewNop())
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewHTTPServer(lib, zap.NewNop()).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, db
}

func do(t *testing.T, method, url, body string, out interface{}) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHTTP_BookLifecycle(t *testing.T) {
	srv, _ := newTestAPI(t)

	var book models.Book
	status := do(t, http.MethodPost, srv.URL+"/api/books", `{"title":"Dune","author":"Herbert","isbn":"123"}`, &book)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, int64(1), book.ID)
	assert.Equal(t, models.StatusAvailable, book.Status)

	status = do(t, http.MethodPost, srv.URL+"/api/books/1/borrow", `{"borrowerName":"Alice"}`, &book)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Alice", book.BorrowedBy)

	var errResp errorResponse
	status = do(t, http.MethodPost, srv.URL+"/api/books/1/borrow", `{"borrowerName":"Bob"}`, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", errResp.Error.Code)

	status = do(t, http.MethodPost, srv.URL+"/api/books/1/return", "", &book)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.StatusAvailable, book.Status)

	var history []models.HistoryEntry
	status = do(t, http.MethodGet, srv.URL+"/api/history", "", &history)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, history, 2)
	assert.Equal(t, models.ActionReturned, history[0].Action)

	var books []models.Book
	do(t, http.MethodGet, srv.URL+"/api/books?q=dune", "", &books)
	assert.Len(t, books, 1)
	do(t, http.MethodGet, srv.URL+"/api/books?q=xyz", "", &books)
	assert.Empty(t, books)

	status = do(t, http.MethodPut, srv.URL+"/api/books/1", `{"title":"Dune Messiah","author":"Herbert","isbn":"124"}`, &book)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Dune Messiah", book.Title)

	var stats models.Stats
	do(t, http.MethodGet, srv.URL+"/api/stats", "", &stats)
	assert.Equal(t, 1, stats.TotalBooks)
	assert.Equal(t, 2, stats.RecentActivity)

	status = do(t, http.MethodDelete, srv.URL+"/api/books/1", "", nil)
	assert.Equal(t, http.StatusNoContent, status)

	status = do(t, http.MethodGet, srv.URL+"/api/books/1", "", &errResp)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errResp.Error.Code)
}

func TestHTTP_ValidationErrors(t *testing.T) {
	srv, _ := newTestAPI(t)

	var errResp errorResponse
	status := do(t, http.MethodPost, srv.URL+"/api/books", `{"title":" ","author":"A","isbn":"1"}`, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errResp.Error.Code)

	status = do(t, http.MethodPost, srv.URL+"/api/books", `{not json`, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)

	status = do(t, http.MethodGet, srv.URL+"/api/books/abc", "", &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHTTP_StorageFailureIsInternalError(t *testing.T) {
	srv, db := newTestAPI(t)
	db.FailWrites(assert.AnError)

	var errResp errorResponse
	status := do(t, http.MethodPost, srv.URL+"/api/books", `{"title":"Dune","author":"Herbert","isbn":"123"}`, &errResp)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "STORAGE_ERROR", errResp.Error.Code)

	var books []models.Book
	do(t, http.MethodGet, srv.URL+"/api/books", "", &books)
	assert.Empty(t, books)
}
