package book

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookshelf/internal/logging"
	"bookshelf/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func newTestHandler(t *testing.T) (*HTTPHandler, *MockRepository) {
	svc, repo := newTestService(t)
	return NewHTTPHandler(svc, logging.NewNop()), repo
}

func TestHTTPHandler_List(t *testing.T) {
	handler, mockRepo := newTestHandler(t)
	testBook := Book{ID: "1", Title: "Test", Status: StatusTBR}

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().
			List(gomock.Any(), Query{Status: StatusReading, Limit: 10, Offset: 10}).
			Return([]Book{testBook}, 11, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books?status=reading&page=2&page_size=10", nil)

		handler.List(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusOK, resp.Code)
		meta := resp.Body["meta"].(map[string]any)
		assert.Equal(t, float64(2), meta["total_pages"])
	})

	t.Run("bad status", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/books?status=finished", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("error", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, 0, context.DeadlineExceeded)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/books", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		handler, mockRepo := newTestHandler(t)
		mockRepo.EXPECT().FindByISBN(gomock.Any(), "9780441172719").Return(Book{}, ErrNotFound)
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/books", map[string]any{
			"title": "Dune", "author": "Frank Herbert", "isbn": "9780441172719",
		})
		handler.Create(w, r)

		resp := testutil.RecordHTTPResponse(w)
		testutil.AssertResponseCode(t, resp.Code, http.StatusCreated)
		data := resp.Body["data"].(map[string]any)
		assert.Equal(t, "tbr", data["status"])
	})

	t.Run("duplicate", func(t *testing.T) {
		handler, mockRepo := newTestHandler(t)
		mockRepo.EXPECT().FindByISBN(gomock.Any(), "9780441172719").Return(Book{ID: "x"}, nil)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/books", map[string]any{"title": "Dune", "isbn": "9780441172719"})
		handler.Create(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("validation", func(t *testing.T) {
		handler, _ := newTestHandler(t)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/books", map[string]any{"isbn": "12", "rating": 9})
		handler.Create(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		errBody := resp.Body["error"].(map[string]any)
		assert.Equal(t, "VALIDATION_ERROR", errBody["code"])
		assert.Len(t, errBody["details"], 3)
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().Get(gomock.Any(), "1").Return(Book{ID: "1", Title: "Test"}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/1", nil)
		r.SetPathValue("id", "1")
		handler.Get(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().Get(gomock.Any(), "2").Return(Book{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/2", nil)
		r.SetPathValue("id", "2")
		handler.Get(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_UpdateAndDelete(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	mockRepo.EXPECT().Get(gomock.Any(), "1").Return(Book{ID: "1", Status: StatusTBR}, nil)
	mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	w := httptest.NewRecorder()
	r := testutil.NewRequest(http.MethodPatch, "/books/1", map[string]any{"status": "read", "rating": 4})
	r.SetPathValue("id", "1")
	handler.Update(w, r)

	resp := testutil.RecordHTTPResponse(w)
	assert.Equal(t, http.StatusOK, resp.Code)
	data := resp.Body["data"].(map[string]any)
	assert.Equal(t, "read", data["status"])
	assert.NotEmpty(t, data["date_read"])

	mockRepo.EXPECT().Delete(gomock.Any(), "1").Return(nil)
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodDelete, "/books/1", nil)
	r.SetPathValue("id", "1")
	handler.Delete(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHTTPHandler_Shuffle_Empty(t *testing.T) {
	handler, mockRepo := newTestHandler(t)
	mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]Book{}, 0, nil).Times(2)

	w := httptest.NewRecorder()
	handler.Shuffle(w, httptest.NewRequest(http.MethodGet, "/books/shuffle", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
