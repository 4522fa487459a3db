package bot

import (
	"errors"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"catalog/internal/library"
	"catalog/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HTTPServer exposes the catalog as a JSON API
type HTTPServer struct {
	lib    *library.Library
	logger *zap.Logger
}

// NewHTTPServer creates the JSON API handlers
func NewHTTPServer(lib *library.Library, logger *zap.Logger) *HTTPServer {
	return &HTTPServer{lib: lib, logger: logger}
}

// RegisterRoutes registers API routes on the provided mux
func (hs *HTTPServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/books", hs.handleListBooks)
	mux.HandleFunc("POST /api/books", hs.handleAddBook)
	mux.HandleFunc("GET /api/books/{id}", hs.handleGetBook)
	mux.HandleFunc("PUT /api/books/{id}", hs.handleEditBook)
	mux.HandleFunc("DELETE /api/books/{id}", hs.handleDeleteBook)
	mux.HandleFunc("POST /api/books/{id}/borrow", hs.handleBorrowBook)
	mux.HandleFunc("POST /api/books/{id}/return", hs.handleReturnBook)
	mux.HandleFunc("GET /api/history", hs.handleHistory)
	mux.HandleFunc("GET /api/stats", hs.handleStats)
}

// BorrowRequest represents the request body for borrowing a book
type BorrowRequest struct {
	BorrowerName string `json:"borrowerName"`
}

type errorDetails struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetails `json:"error"`
}

// handleListBooks returns all books, or those matching ?q=
func (hs *HTTPServer) handleListBooks(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("q"); q != "" {
		hs.writeJSON(w, http.StatusOK, hs.lib.Search(q))
		return
	}
	hs.writeJSON(w, http.StatusOK, hs.lib.ListBooks())
}

func (hs *HTTPServer) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := hs.pathID(w, r)
	if !ok {
		return
	}
	book, err := hs.lib.GetBook(id)
	if err != nil {
		hs.writeError(w, err)
		return
	}
	hs.writeJSON(w, http.StatusOK, book)
}

func (hs *HTTPServer) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var fields models.BookFields
	if !hs.decode(w, r, &fields) {
		return
	}
	book, err := hs.lib.AddBook(r.Context(), fields)
	if err != nil {
		hs.writeError(w, err)
		return
	}
	hs.writeJSON(w, http.StatusCreated, book)
}

func (hs *HTTPServer) handleEditBook(w http.ResponseWriter, r *http.Request) {
	id, ok := hs.pathID(w, r)
	if !ok {
		return
	}
	var fields models.BookFields
	if !hs.decode(w, r, &fields) {
		return
	}
	book, err := hs.lib.EditBook(r.Context(), id, fields)
	if err != nil {
		hs.writeError(w, err)
		return
	}
	hs.writeJSON(w, http.StatusOK, book)
}

func (hs *HTTPServer) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := hs.pathID(w, r)
	if !ok {
		return
	}
	if err := hs.lib.RemoveBook(r.Context(), id); err != nil {
		hs.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (hs *HTTPServer) handleBorrowBook(w http.ResponseWriter, r *http.Request) {
	id, ok := hs.pathID(w, r)
	if !ok {
		return
	}
	var req BorrowRequest
	if !hs.decode(w, r, &req) {
		return
	}
	book, err := hs.lib.BorrowBook(r.Context(), id, req.BorrowerName)
	if err != nil {
		hs.writeError(w, err)
		return
	}
	hs.writeJSON(w, http.StatusOK, book)
}

func (hs *HTTPServer) handleReturnBook(w http.ResponseWriter, r *http.Request) {
	id, ok := hs.pathID(w, r)
	if !ok {
		return
	}
	book, err := hs.lib.ReturnBook(r.Context(), id)
	if err != nil {
		hs.writeError(w, err)
		return
	}
	hs.writeJSON(w, http.StatusOK, book)
}

func (hs *HTTPServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	hs.writeJSON(w, http.StatusOK, hs.lib.ListHistory())
}

func (hs *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	hs.writeJSON(w, http.StatusOK, hs.lib.Stats())
}

func (hs *HTTPServer) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		hs.writeJSON(w, http.StatusBadRequest, errorResponse{errorDetails{
			Code:    models.ErrorCode(models.ErrValidation),
			Message: "invalid book id",
		}})
		return 0, false
	}
	return id, true
}

func (hs *HTTPServer) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		hs.logger.Warn("Failed to decode request body", zap.Error(err), zap.String("path", r.URL.Path))
		hs.writeJSON(w, http.StatusBadRequest, errorResponse{errorDetails{
			Code:    models.ErrorCode(models.ErrValidation),
			Message: "invalid request body",
		}})
		return false
	}
	return true
}

func (hs *HTTPServer) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition):
		status = http.StatusConflict
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		hs.logger.Error("Catalog operation failed", zap.Error(err))
		message = "failed to save changes"
	}
	hs.writeJSON(w, status, errorResponse{errorDetails{Code: models.ErrorCode(err), Message: message}})
}

func (hs *HTTPServer) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hs.logger.Warn("Failed to write response", zap.Error(err))
	}
}
