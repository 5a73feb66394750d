package enrich

import (
	"context"
	"errors"
	"testing"

	"bookshelf/internal/logging"
	"bookshelf/internal/lookup"
	"bookshelf/internal/platform/googlebooks"
	"bookshelf/internal/platform/openlibrary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBookSource struct {
	mock.Mock
}

func (m *mockBookSource) GetBookByISBN(ctx context.Context, isbn string) (openlibrary.BookDetails, bool, error) {
	args := m.Called(ctx, isbn)
	return args.Get(0).(openlibrary.BookDetails), args.Bool(1), args.Error(2)
}

type mockVolumes struct {
	mock.Mock
}

func (m *mockVolumes) Search(ctx context.Context, query string, maxResults int) (*googlebooks.VolumesResponse, error) {
	args := m.Called(ctx, query, maxResults)
	resp, _ := args.Get(0).(*googlebooks.VolumesResponse)
	return resp, args.Error(1)
}

func subjects(names ...string) []openlibrary.Subject {
	out := make([]openlibrary.Subject, len(names))
	for i, n := range names {
		out[i] = openlibrary.Subject{Name: n}
	}
	return out
}

func newTestService() (*Service, *mockBookSource, *mockVolumes) {
	books := &mockBookSource{}
	volumes := &mockVolumes{}
	return NewService(books, volumes, nil, logging.NewNop()), books, volumes
}

func TestEnrich(t *testing.T) {
	ctx := context.Background()

	t.Run("series and genre from subjects", func(t *testing.T) {
		svc, books, _ := newTestService()
		books.On("GetBookByISBN", mock.Anything, "9781619630345").Return(openlibrary.BookDetails{
			Subjects: subjects(
				"series:Throne_of_Glass",
				"Fantasy fiction",
				"Accessible book",
				"Protected DAISY",
				"nyt:young-adult-hardcover=2016-09-11",
				"Juvenile fiction",
				"Romance",
			),
		}, true, nil)

		md := svc.Enrich(ctx, "978-1-61963-034-5", nil)
		assert.Equal(t, "Throne of Glass", md.Series)
		assert.Equal(t, "Fantasy Romance", md.Genre)
	})

	t.Run("hints are classified with subjects", func(t *testing.T) {
		svc, books, _ := newTestService()
		books.On("GetBookByISBN", mock.Anything, "9780000000001").
			Return(openlibrary.BookDetails{Subjects: subjects("Cooking")}, true, nil)

		md := svc.Enrich(ctx, "9780000000001", []string{"History / General"})
		assert.Equal(t, "History, Cookbooks", md.Genre)
		assert.Empty(t, md.Series)
	})

	t.Run("unknown isbn", func(t *testing.T) {
		svc, books, _ := newTestService()
		books.On("GetBookByISBN", mock.Anything, "9780000000002").
			Return(openlibrary.BookDetails{}, false, nil)

		res := svc.EnrichResult(ctx, "9780000000002", []string{"Fantasy"})
		assert.Equal(t, lookup.StatusEmpty, res.Status)
		assert.True(t, res.Value.IsZero())
	})

	t.Run("source failure", func(t *testing.T) {
		svc, books, _ := newTestService()
		books.On("GetBookByISBN", mock.Anything, "9780000000003").
			Return(openlibrary.BookDetails{}, false, errors.New("connection refused"))

		res := svc.EnrichResult(ctx, "9780000000003", nil)
		assert.Equal(t, lookup.StatusFailed, res.Status)
		assert.Equal(t, Metadata{}, svc.Enrich(ctx, "9780000000003", nil))
	})

	t.Run("blank isbn skips the lookup", func(t *testing.T) {
		svc, books, _ := newTestService()
		assert.Equal(t, Metadata{}, svc.Enrich(ctx, "  ", nil))
		books.AssertNotCalled(t, "GetBookByISBN", mock.Anything, mock.Anything)
	})
}

func TestCleanCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Fiction / General", "Fiction"},
		{"General", ""},
		{"", ""},
		{"Fiction / Fantasy / Epic", "Fiction, Fantasy, Epic"},
		{"Juvenile Fiction, general ,Animals", "Juvenile Fiction, Animals"},
		{" / , ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanCategory(tt.in))
		})
	}
}

func TestIsNoise(t *testing.T) {
	noisy := []string{
		"Accessible book",
		"In library",
		"Large type books",
		"OverDrive",
		"Fiction",
		"GENERAL",
		"nyt:combined-print-and-e-book-fiction",
		"2008-10-14",
		"lexile=HL860L",
	}
	for _, s := range noisy {
		assert.True(t, isNoise(s), s)
	}

	for _, s := range []string{"Fantasy fiction", "Science fiction", "Dragons"} {
		assert.False(t, isNoise(s), s)
	}
}

func TestIdentify(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to google categories", func(t *testing.T) {
		svc, books, volumes := newTestService()
		volumes.On("Search", mock.Anything, "isbn:9780307718211", 1).
			Return(&googlebooks.VolumesResponse{Items: []googlebooks.Volume{{VolumeInfo: googlebooks.VolumeInfo{
				Title:         "Salt, Fat, Acid, Heat",
				Authors:       []string{"Samin Nosrat"},
				PublishedDate: "2017-04-25",
				PageCount:     480,
				Categories:    []string{"Cooking / General"},
				ImageLinks:    &googlebooks.ImageLinks{Thumbnail: "http://books.example/sfah.jpg"},
				IndustryIdentifiers: []googlebooks.IndustryIdentifier{
					{Type: "ISBN_10", Identifier: "0307718212"},
					{Type: "ISBN_13", Identifier: "9780307718211"},
				},
			}}}}, nil)
		books.On("GetBookByISBN", mock.Anything, "9780307718211").
			Return(openlibrary.BookDetails{}, false, nil)

		c, err := svc.Identify(ctx, "978-0307718211")
		require.NoError(t, err)
		assert.Equal(t, "9780307718211", c.ISBN)
		assert.Equal(t, "Samin Nosrat", c.Author)
		assert.Equal(t, "https://books.example/sfah.jpg", c.CoverURL)
		assert.Equal(t, "2017", c.Year)
		assert.Equal(t, 480, c.PageCount)
		assert.Equal(t, "Cookbooks", c.Genre)
	})

	t.Run("enrichment supplies series", func(t *testing.T) {
		svc, books, volumes := newTestService()
		volumes.On("Search", mock.Anything, "isbn:9780765326355", 1).
			Return(&googlebooks.VolumesResponse{Items: []googlebooks.Volume{{VolumeInfo: googlebooks.VolumeInfo{
				Title:      "The Way of Kings",
				Authors:    []string{"Brandon Sanderson"},
				Categories: []string{"Fiction"},
			}}}}, nil)
		books.On("GetBookByISBN", mock.Anything, "9780765326355").
			Return(openlibrary.BookDetails{Subjects: subjects("series:Stormlight_Archive", "Epic fantasy", "Magic")}, true, nil)

		c, err := svc.Identify(ctx, "9780765326355")
		require.NoError(t, err)
		assert.Equal(t, "9780765326355", c.ISBN)
		assert.Equal(t, "Stormlight Archive", c.Series)
		assert.Equal(t, "Fantasy", c.Genre)
	})

	t.Run("not identified", func(t *testing.T) {
		svc, _, volumes := newTestService()
		volumes.On("Search", mock.Anything, "isbn:0000000000", 1).Return(&googlebooks.VolumesResponse{}, nil)

		_, err := svc.Identify(ctx, "0000000000")
		assert.ErrorIs(t, err, ErrNotIdentified)
	})

	t.Run("search failure", func(t *testing.T) {
		svc, _, volumes := newTestService()
		volumes.On("Search", mock.Anything, mock.Anything, 1).Return(nil, errors.New("403 quota"))

		_, err := svc.Identify(ctx, "9780765326355")
		assert.ErrorContains(t, err, "403 quota")
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	svc, _, volumes := newTestService()
	volumes.On("Search", mock.Anything, "dune", 20).
		Return(&googlebooks.VolumesResponse{Items: []googlebooks.Volume{
			{VolumeInfo: googlebooks.VolumeInfo{
				Title:         "Dune",
				Authors:       []string{"Frank Herbert"},
				PublishedDate: "1965",
				ImageLinks:    &googlebooks.ImageLinks{Thumbnail: "http://books.example/dune.jpg"},
			}},
			{VolumeInfo: googlebooks.VolumeInfo{Title: "Dune Notes"}},
			{VolumeInfo: googlebooks.VolumeInfo{
				Title:      "Dune Companion",
				ImageLinks: &googlebooks.ImageLinks{Thumbnail: "https://books.example/dc.jpg"},
			}},
		}}, nil)

	got, err := svc.Search(ctx, " dune ")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://books.example/dune.jpg", got[0].CoverURL)
	assert.Equal(t, "1965", got[0].Year)
	assert.Equal(t, "Unknown", got[1].Author)

	empty, err := svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
