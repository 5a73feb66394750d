package goal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/logging"
	"bookshelf/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newTestService(t *testing.T) (*Service, *MockRepository, *MockBookLister) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	books := NewMockBookLister(ctrl)
	return NewService(repo, books), repo, books
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("default when unset", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.EXPECT().Get(ctx, 2024).Return(Goal{}, ErrNotFound)

		g, err := svc.Get(ctx, 2024)
		require.NoError(t, err)
		assert.Equal(t, Goal{Year: 2024, Amount: DefaultAmount, IsDefault: true}, g)
	})

	t.Run("stored", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.EXPECT().Get(ctx, 2024).Return(Goal{Year: 2024, Amount: 30}, nil)

		g, err := svc.Get(ctx, 2024)
		require.NoError(t, err)
		assert.Equal(t, 30, g.Amount)
	})

	t.Run("year out of range", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.Get(ctx, 1899)
		assert.ErrorIs(t, err, ErrInvalidYear)
	})

	t.Run("repository error", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.EXPECT().Get(ctx, 2024).Return(Goal{}, errors.New("timeout"))
		_, err := svc.Get(ctx, 2024)
		assert.ErrorContains(t, err, "get goal 2024")
	})
}

func TestService_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, g *Goal) error {
			assert.Equal(t, 2025, g.Year)
			assert.Equal(t, 40, g.Amount)
			assert.NotNil(t, g.UpdatedAt)
			return nil
		})

		g, err := svc.Set(ctx, 2025, 40)
		require.NoError(t, err)
		assert.False(t, g.IsDefault)
	})

	t.Run("amount bounds", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.Set(ctx, 2025, 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = svc.Set(ctx, 2025, 1001)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = svc.Set(ctx, 3001, 10)
		assert.ErrorIs(t, err, ErrInvalidYear)
	})
}

func TestService_Progress(t *testing.T) {
	ctx := context.Background()
	svc, repo, books := newTestService(t)

	repo.EXPECT().Get(ctx, 2024).Return(Goal{Year: 2024, Amount: 4}, nil)
	books.EXPECT().ListAll(ctx, book.Query{Status: book.StatusRead}).Return([]book.Book{
		{Status: book.StatusRead, DateRead: date(2024, 1, 5)},
		{Status: book.StatusRead, DateRead: date(2024, 12, 31)},
		{Status: book.StatusRead, DateRead: date(2023, 6, 1)},
		{Status: book.StatusRead},
	}, nil)

	p, err := svc.Progress(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Read)
	assert.Equal(t, 2, p.Remaining)
	assert.Equal(t, 50, p.Percent)
}

func TestHTTPHandler(t *testing.T) {
	svc, repo, books := newTestService(t)
	h := NewHTTPHandler(svc, logging.NewNop())

	t.Run("get", func(t *testing.T) {
		repo.EXPECT().Get(gomock.Any(), 2024).Return(Goal{}, ErrNotFound)
		books.EXPECT().ListAll(gomock.Any(), gomock.Any()).Return([]book.Book{}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/goals/2024", nil)
		r.SetPathValue("year", "2024")
		h.Get(w, r)

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, float64(12), resp.Data()["amount"])
		assert.Equal(t, true, resp.Data()["is_default"])
	})

	t.Run("set validation", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPut, "/goals/2024", map[string]any{"amount": 5000})
		r.SetPathValue("year", "2024")
		h.Set(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION_ERROR", resp.ErrorCode())
	})

	t.Run("set", func(t *testing.T) {
		repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPut, "/goals/2024", map[string]any{"amount": 24})
		r.SetPathValue("year", "2024")
		h.Set(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, float64(24), resp.Data()["amount"])
	})

	t.Run("bad year", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/goals/abc", nil)
		r.SetPathValue("year", "abc")
		h.Get(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
