package storage_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/cyprine-heroes/internal/storage"
)

func TestAllowedContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{" IMAGE/GIF ", true},
		{"image/webp", true},
		{"text/plain", false},
		{"application/octet-stream", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, storage.AllowedContentType(tt.contentType))
		})
	}
}

func TestImageStore_Save(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := storage.NewImageStore(fs, "/uploads")
	require.NoError(t, err)

	tests := []struct {
		name     string
		filename string
		ctype    string
		wantPath string
		wantErr  error
	}{
		{name: "keeps lowercase extension", filename: "Me.PNG", ctype: "image/png", wantPath: "/uploads/h1.png"},
		{name: "extension from content type", filename: "portrait", ctype: "image/jpeg", wantPath: "/uploads/h1.jpg"},
		{name: "odd extension replaced", filename: "x.p/ng", ctype: "image/gif", wantPath: "/uploads/h1.gif"},
		{name: "rejects non image", filename: "notes.txt", ctype: "text/plain", wantErr: storage.ErrInvalidImageType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := store.Save("h1", tt.filename, tt.ctype, strings.NewReader("data"))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, path)

			content, err := afero.ReadFile(fs, tt.wantPath)
			require.NoError(t, err)
			assert.Equal(t, "data", string(content))
		})
	}
}

func TestImageStore_SaveReplaces(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := storage.NewImageStore(fs, "/uploads")
	require.NoError(t, err)

	_, err = store.Save("h1", "a.png", "image/png", strings.NewReader("first upload"))
	require.NoError(t, err)
	_, err = store.Save("h1", "b.png", "image/png", strings.NewReader("second"))
	require.NoError(t, err)

	content, err := afero.ReadFile(fs, "/uploads/h1.png")
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	path, err := store.Save("h1", "c.jpg", "image/jpeg", strings.NewReader("third"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/h1.jpg", path)

	files, err := afero.Glob(fs, "/uploads/h1.*")
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/h1.jpg"}, files)
}

func TestImageStore_Remove(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := storage.NewImageStore(fs, "/uploads")
	require.NoError(t, err)

	_, err = store.Save("h1", "a.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = store.Save("h1", "a.jpg", "image/jpeg", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = store.Save("h2", "a.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Remove("h1"))
	require.NoError(t, store.Remove("missing"))

	for path, want := range map[string]bool{
		"/uploads/h1.png": false,
		"/uploads/h1.jpg": false,
		"/uploads/h2.png": true,
	} {
		exists, err := afero.Exists(fs, path)
		require.NoError(t, err)
		assert.Equal(t, want, exists, path)
	}
}

func TestImageStore_HTTPFileSystem(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := storage.NewImageStore(fs, "/uploads")
	require.NoError(t, err)

	_, err = store.Save("h1", "a.png", "image/png", strings.NewReader("pixels"))
	require.NoError(t, err)

	handler := http.StripPrefix(storage.PublicPrefix, http.FileServer(store.HTTPFileSystem()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/h1.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "pixels", string(body))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/nope.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
