package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/ritual/internal/model"
	"github.com/templui/ritual/internal/storage"
	"github.com/templui/ritual/internal/validation"
)

type memoryStorage struct {
	objects map[string][]byte
	types   map[string]string
	saveErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStorage) Save(_ context.Context, key string, body io.Reader, contentType string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) URL(_ context.Context, key string) string {
	return "https://media.test/" + key
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// uploadedFile builds a multipart file header the way net/http parses one.
func uploadedFile(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="` + filename + `"`},
		"Content-Type":        {contentType},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func upload(t *testing.T, svc *MediaService, goalID string, header *multipart.FileHeader) (*model.MediaUploadLog, error) {
	t.Helper()
	file, err := header.Open()
	require.NoError(t, err)
	defer file.Close()
	return svc.Upload(context.Background(), "u1", goalID, "front", file, header)
}

func TestMediaUpload(t *testing.T) {
	env := newTestEnv(t)
	store := newMemoryStorage()
	svc := NewMediaService(env.logs, store)

	header := uploadedFile(t, "Front.PNG", "image/png", pngHeader)
	log, err := upload(t, svc, "g1", header)
	require.NoError(t, err)

	key := log.Meta["storageKey"].(string)
	assert.True(t, strings.HasPrefix(key, "media/u1/g1/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, pngHeader, store.objects[key])
	assert.Equal(t, "image", log.Media.Type)
	assert.Equal(t, "https://media.test/"+key, log.Media.URL)
	assert.Equal(t, "front", log.Media.AltText)

	logs, err := env.logs.GoalLogs(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.LogTypeMediaUpload, logs[0].Type())
}

func TestMediaUploadRejects(t *testing.T) {
	env := newTestEnv(t)
	store := newMemoryStorage()
	svc := NewMediaService(env.logs, store)

	_, err := upload(t, svc, "g1", uploadedFile(t, "notes.png", "image/png", []byte("plain text, not an image")))
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = upload(t, svc, "g1", uploadedFile(t, "front.gif", "image/png", pngHeader))
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = upload(t, svc, "", uploadedFile(t, "front.png", "image/png", pngHeader))
	assert.ErrorIs(t, err, validation.ErrInvalid)

	assert.Empty(t, store.objects)
}

func TestMediaUploadDisabled(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMediaService(env.logs, nil)

	assert.False(t, svc.Enabled())
	_, err := upload(t, svc, "g1", uploadedFile(t, "front.png", "image/png", pngHeader))
	assert.ErrorIs(t, err, storage.ErrDisabled)
}

func TestMediaUploadStorageFailure(t *testing.T) {
	env := newTestEnv(t)
	store := newMemoryStorage()
	store.saveErr = errors.New("bucket unavailable")
	svc := NewMediaService(env.logs, store)

	_, err := upload(t, svc, "g1", uploadedFile(t, "front.png", "image/png", pngHeader))
	assert.ErrorContains(t, err, "bucket unavailable")
	assert.Empty(t, env.logService.GoalLogs(context.Background(), "g1"))
}
