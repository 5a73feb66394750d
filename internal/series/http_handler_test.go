package series

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bookshelf/internal/kvcache"
	"bookshelf/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHTTPHandler_Get(t *testing.T) {
	catalog := &mockCatalog{}
	catalog.On("SearchSeries", mock.Anything, "The Stormlight Archive", "Brandon Sanderson", mock.Anything).
		Return(stormlightDocs(), nil)
	handler := NewHTTPHandler(newTestFetcher(catalog, nil, kvcache.NewMemoryStore()), nil)

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest(http.MethodGet, "/lookup/series?series=The+Stormlight+Archive&author=Brandon+Sanderson", nil))
	resp := testutil.RecordHTTPResponse(w)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, resp.Body["data"])
	assert.Equal(t, "openlibrary", resp.Body["meta"].(map[string]any)["source"])

	w = httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest(http.MethodGet, "/lookup/series?series=Dune", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
