package book

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *MockRepository) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	svc := NewService(repo)
	svc.now = func() time.Time { return fixedNow }
	svc.pick = func(n int) int { return n - 1 }
	return svc, repo
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults and stamps", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().FindByISBN(ctx, "9780441172719").Return(Book{}, ErrNotFound)
		repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		b := Book{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441172719"}
		require.NoError(t, svc.Create(ctx, &b, false))

		assert.NotEmpty(t, b.ID)
		assert.Equal(t, StatusTBR, b.Status)
		assert.Equal(t, fixedNow, b.DateAdded)
		assert.Nil(t, b.DateRead)
	})

	t.Run("created as read gets date_read", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		b := Book{Title: "Dune", Status: StatusRead}
		require.NoError(t, svc.Create(ctx, &b, false))
		require.NotNil(t, b.DateRead)
		assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), *b.DateRead)
	})

	t.Run("duplicate isbn", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().FindByISBN(ctx, "9780441172719").Return(Book{ID: "existing"}, nil)

		b := Book{Title: "Dune", ISBN: "9780441172719"}
		err := svc.Create(ctx, &b, false)
		assert.ErrorIs(t, err, ErrDuplicateISBN)
	})

	t.Run("force skips duplicate check", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		b := Book{Title: "Dune", ISBN: "9780441172719"}
		assert.NoError(t, svc.Create(ctx, &b, true))
	})

	t.Run("manual isbn never collides", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		b := Book{Title: "Zine", ISBN: "MANUAL-1710000000"}
		assert.NoError(t, svc.Create(ctx, &b, false))
	})

	t.Run("invalid status", func(t *testing.T) {
		svc, _ := newTestService(t)
		b := Book{Title: "Dune", Status: "finished"}
		assert.ErrorIs(t, svc.Create(ctx, &b, false), ErrInvalidStatus)
	})

	t.Run("repository failure is wrapped", func(t *testing.T) {
		svc, repo := newTestService(t)
		boom := errors.New("connection reset")
		repo.EXPECT().Create(ctx, gomock.Any()).Return(boom)

		b := Book{Title: "Dune"}
		err := svc.Create(ctx, &b, false)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "create book")
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	read := StatusRead
	reading := StatusReading

	t.Run("moving to read stamps date_read", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Get(ctx, "b1").Return(Book{ID: "b1", Status: StatusReading}, nil)
		repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)

		b, err := svc.Update(ctx, "b1", Patch{Status: &read})
		require.NoError(t, err)
		assert.Equal(t, StatusRead, b.Status)
		require.NotNil(t, b.DateRead)
		assert.Equal(t, 2024, b.DateRead.Year())
		assert.Equal(t, fixedNow, b.UpdatedAt)
	})

	t.Run("existing date_read is kept", func(t *testing.T) {
		svc, repo := newTestService(t)
		earlier := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
		repo.EXPECT().Get(ctx, "b1").Return(Book{ID: "b1", DateRead: &earlier}, nil)
		repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)

		b, err := svc.Update(ctx, "b1", Patch{Status: &read})
		require.NoError(t, err)
		assert.Equal(t, earlier, *b.DateRead)
	})

	t.Run("moving to reading stamps date_started", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Get(ctx, "b1").Return(Book{ID: "b1", Status: StatusTBR}, nil)
		repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)

		b, err := svc.Update(ctx, "b1", Patch{Status: &reading})
		require.NoError(t, err)
		require.NotNil(t, b.DateStarted)
		assert.Nil(t, b.DateRead)
	})

	t.Run("notes only leaves dates alone", func(t *testing.T) {
		svc, repo := newTestService(t)
		notes := "loved the worldbuilding"
		repo.EXPECT().Get(ctx, "b1").Return(Book{ID: "b1", Status: StatusRead}, nil)
		repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)

		b, err := svc.Update(ctx, "b1", Patch{Notes: &notes})
		require.NoError(t, err)
		assert.Equal(t, notes, b.Notes)
		assert.Nil(t, b.DateRead)
	})

	t.Run("not found", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Get(ctx, "missing").Return(Book{}, ErrNotFound)

		_, err := svc.Update(ctx, "missing", Patch{Status: &read})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("excludes wishlist", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().
			List(ctx, Query{Q: "dune", ExcludeStatus: StatusWishlist}).
			Return([]Book{{ID: "1", Title: "Dune"}}, 1, nil)

		books, err := svc.Search(ctx, "  dune ")
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})

	t.Run("blank query", func(t *testing.T) {
		svc, _ := newTestService(t)
		books, err := svc.Search(ctx, "   ")
		require.NoError(t, err)
		assert.Empty(t, books)
	})
}

func TestService_Shuffle(t *testing.T) {
	ctx := context.Background()

	t.Run("picks from tbr", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().List(ctx, Query{Status: StatusTBR}).
			Return([]Book{{ID: "a"}, {ID: "b"}}, 2, nil)

		b, err := svc.Shuffle(ctx)
		require.NoError(t, err)
		assert.Equal(t, "b", b.ID)
	})

	t.Run("falls back to any book", func(t *testing.T) {
		svc, repo := newTestService(t)
		gomock.InOrder(
			repo.EXPECT().List(ctx, Query{Status: StatusTBR}).Return([]Book{}, 0, nil),
			repo.EXPECT().List(ctx, Query{}).Return([]Book{{ID: "read-one", Status: StatusRead}}, 1, nil),
		)

		b, err := svc.Shuffle(ctx)
		require.NoError(t, err)
		assert.Equal(t, "read-one", b.ID)
	})

	t.Run("empty collection", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().List(ctx, gomock.Any()).Return([]Book{}, 0, nil).Times(2)

		_, err := svc.Shuffle(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Reading ")
	require.NoError(t, err)
	assert.Equal(t, StatusReading, s)

	_, err = ParseStatus("finished")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
