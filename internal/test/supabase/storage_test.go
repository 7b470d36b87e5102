package supabase_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/postgrest-go"

	"site-admin-backend/internal/apperr"
	"site-admin-backend/internal/supabase"
)

func TestOrFilter(t *testing.T) {
	assert.Equal(t, "name.ilike.*foo*,url.ilike.*foo*", supabase.OrFilter("foo", "name", "url"))
	assert.Equal(t, "name.ilike.*a b*", supabase.OrFilter("  a b  ", "name"))
}

func TestOrFilter_StripsReservedCharacters(t *testing.T) {
	assert.Equal(t, "name.ilike.*foobar*", supabase.OrFilter(`foo,(bar)*`, "name"))
	assert.Equal(t, "name.ilike.*ab*", supabase.OrFilter(`a"%\:b`, "name"))
}

func TestOrFilter_Empty(t *testing.T) {
	assert.Empty(t, supabase.OrFilter("", "name"))
	assert.Empty(t, supabase.OrFilter("  ,() ", "name"))
	assert.Empty(t, supabase.OrFilter("foo"))
}

func TestPublicObjectURL(t *testing.T) {
	assert.Equal(t,
		"https://proj.supabase.co/storage/v1/object/public/site-images/images/1_abc.png",
		supabase.PublicObjectURL("https://proj.supabase.co/", "site-images", "/images/1_abc.png"))
}

func TestNewStorageClient_RequiresBucket(t *testing.T) {
	_, err := supabase.NewStorageClient("https://proj.supabase.co", "key", "")
	assert.Error(t, err)
}

func TestStorageClient_PublicURL(t *testing.T) {
	client, err := supabase.NewStorageClient("https://proj.supabase.co", "key", "site-images")
	require.NoError(t, err)
	assert.Equal(t,
		"https://proj.supabase.co/storage/v1/object/public/site-images/images/a.png",
		client.PublicURL("images/a.png"))
}

func TestStorageClient_UploadHonorsContext(t *testing.T) {
	client, err := supabase.NewStorageClient("https://proj.supabase.co", "key", "site-images")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, client.Upload(ctx, "images/a.png", "image/png", []byte("x")), context.Canceled)
}

func restServer(t *testing.T, body string, hits *int32, lastQuery *string) *supabase.DatabaseClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if lastQuery != nil {
			*lastQuery = r.URL.RawQuery
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return supabase.NewDatabaseClient(postgrest.NewClient(srv.URL, "public", nil))
}

func TestDatabaseClient_GetSiteNotFound(t *testing.T) {
	var hits int32
	db := restServer(t, "[]", &hits, nil)

	_, err := db.GetSite(context.Background(), "00000000-0000-0000-0000-000000000001")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.EqualValues(t, 1, hits)
}

func TestDatabaseClient_GetSite(t *testing.T) {
	var (
		hits  int32
		query string
	)
	db := restServer(t, `[{"id":"s1","name":"Foo","url":"https://foo.com","category":"casino","status":"active"}]`, &hits, &query)

	site, err := db.GetSite(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Foo", site.Name)
	assert.Contains(t, query, "id=eq.s1")
}

func TestDatabaseClient_GetStoredFilesByIDsSkipsEmpty(t *testing.T) {
	var hits int32
	db := restServer(t, "[]", &hits, nil)

	files, err := db.GetStoredFilesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.NotNil(t, files)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestDatabaseClient_CanceledContext(t *testing.T) {
	var hits int32
	db := restServer(t, "[]", &hits, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := db.GetSite(ctx, "s1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, atomic.LoadInt32(&hits))
}
