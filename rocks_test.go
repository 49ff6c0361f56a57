package rocks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardize_Passthrough(t *testing.T) {
	assert.Equal(t, FromString("Ceres"), Standardize("Ceres"))
	assert.Equal(t, FromNumber(4), Standardize(4))
	assert.True(t, Standardize(nil).IsEmpty())
}

func TestCoerceAll_PreservesOrder(t *testing.T) {
	ids := CoerceAll([]any{"Ceres", 2, "2004 ES"})
	require.Len(t, ids, 3)
	assert.Equal(t, "Ceres", ids[0].String())
	assert.Equal(t, "2", ids[1].String())
	assert.Equal(t, "2004 ES", ids[2].String())
}

func TestNew_NilCollaborators(t *testing.T) {
	r := New(nil, nil)

	res, err := r.IdentifyOne(context.Background(), FromString("Ceres"), Options{})
	require.NoError(t, err)
	assert.False(t, res.Resolved())
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, Version)
}

// TestDefaultWiring exercises newDefaultResolver end to end: configuration
// from the environment, a fresh index database under the cache directory,
// and the quaero fallback.
func TestDefaultWiring(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"total": 1,
			"data": []map[string]any{
				{"id": "Ceres", "name": "Ceres", "type": "Dwarf Planet", "aliases": []string{"1"}},
			},
		})
	}))
	defer server.Close()

	t.Setenv("ROCKS_CONFIG", "")
	t.Setenv("ROCKS_CACHE_DIR", t.TempDir())
	t.Setenv("ROCKS_QUAERO_URL", server.URL)

	r, err := newDefaultResolver()
	require.NoError(t, err)

	res, err := r.IdentifyOne(context.Background(), FromString("Ceres"), Options{IncludeID: true})
	require.NoError(t, err)
	assert.Equal(t, Resolution{Name: "Ceres", Number: 1, ID: "Ceres"}, res)

	// The empty sentinel never reaches either collaborator; it resolves
	// to the zero Resolution without an HTTP call.
	miss, err := r.IdentifyOne(context.Background(), FromString(""), Options{})
	require.NoError(t, err)
	assert.False(t, miss.Resolved())
}
