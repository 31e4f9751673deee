// internal/feed/loader_test.go
package feed

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
shop: Connect Shop
categories:
  - id: 224
    name: Smartphones
  - id: 15
    name: Accessories
goods:
  - id: 4216292
    category: 224
    model: a10/6gb
    name: Smartphone A10
    price: 110000
    price_rrc: 116990
    quantity: 14
    parameters:
      "Screen Size (inches)": 6.5
      "Color": black
  - id: 4216226
    category: 15
    model: silicone
    name: Silicone Case
    price: 1100
    price_rrc: 1490
    quantity: 30
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	f, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Connect Shop", f.Shop)
	require.Len(t, f.Categories, 2)
	assert.Equal(t, 224, f.Categories[0].ID)
	assert.Equal(t, "Smartphones", f.Categories[0].Name)

	require.Len(t, f.Goods, 2)
	good := f.Goods[0]
	assert.Equal(t, 4216292, good.ID)
	assert.Equal(t, "Smartphone A10", good.Name)
	assert.Equal(t, 224, good.Category)
	assert.Equal(t, float64(110000), good.Price)
	assert.Equal(t, float64(116990), good.PriceRRC)
	assert.Equal(t, 14, good.Quantity)
	assert.Equal(t, "black", good.Parameters["Color"])
}

func TestLoadFileMissing(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "nope.yaml"))
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleYAML))
	}))
	defer srv.Close()

	f, err := NewLoader().Load(srv.URL + "/feed.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Connect Shop", f.Shop)
	assert.Len(t, f.Goods, 2)
}

func TestLoadURLHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewLoader().Load(srv.URL + "/feed.yaml")
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.Status)
}

func TestLoadURLBadSource(t *testing.T) {
	_, err := NewLoader().LoadURL("ftp://example.com/feed.yaml")
	var sourceErr *SourceError
	require.ErrorAs(t, err, &sourceErr)

	_, err = NewLoader().LoadURL("http://")
	require.ErrorAs(t, err, &sourceErr)
}

func TestLoadParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("goods: [unclosed"))
	}))
	defer srv.Close()

	_, err := NewLoader().Load(srv.URL)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
