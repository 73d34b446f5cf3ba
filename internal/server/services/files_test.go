package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/content"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBase64(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func TestFileService_Create_FolderHasNoContent(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "a@example.com")

	f, err := e.files.Create(context.Background(), u, CreateFileInput{
		Name: "docs", Type: models.FileTypeFolder, Data: b64("ignored"),
	})
	require.NoError(t, err)
	assert.Empty(t, f.ContentKey)
	assert.Equal(t, common.RootParentID, f.ParentID)
	assert.Empty(t, e.content.Keys())
}

func TestFileService_Create_File(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@example.com")

	f, err := e.files.Create(ctx, u, CreateFileInput{Name: "a.txt", Type: models.FileTypeFile, Data: b64("hello"), ParentID: "0"})
	require.NoError(t, err)
	require.NotEmpty(t, f.ContentKey)
	assert.Equal(t, u.ID, f.UserID)
	assert.False(t, f.IsPublic)

	data, err := e.content.Read(ctx, f.ContentKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	assert.Equal(t, 0, e.queue.Pending(queue.FilesQueue), "plain files get no derivative job")
}

func TestFileService_Create_Validation(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "a@example.com")

	tests := []struct {
		name string
		in   CreateFileInput
	}{
		{name: "missing name", in: CreateFileInput{Type: models.FileTypeFolder}},
		{name: "missing type", in: CreateFileInput{Name: "x"}},
		{name: "bad type", in: CreateFileInput{Name: "x", Type: "link"}},
		{name: "file without data", in: CreateFileInput{Name: "x", Type: models.FileTypeFile}},
		{name: "data not base64", in: CreateFileInput{Name: "x", Type: models.FileTypeFile, Data: "%%%"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.files.Create(context.Background(), u, tt.in)
			assert.ErrorIs(t, err, common.ErrInvalidArgument)
		})
	}
}

func TestFileService_Create_ParentChecks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@example.com")
	other := e.register(t, "b@example.com")

	file, err := e.files.Create(ctx, u, CreateFileInput{Name: "a.txt", Type: models.FileTypeFile, Data: b64("x")})
	require.NoError(t, err)
	otherFolder, err := e.files.Create(ctx, other, CreateFileInput{Name: "theirs", Type: models.FileTypeFolder})
	require.NoError(t, err)

	_, err = e.files.Create(ctx, u, CreateFileInput{Name: "child", Type: models.FileTypeFolder, ParentID: file.ID})
	assert.ErrorIs(t, err, common.ErrParentNotFolder)

	_, err = e.files.Create(ctx, u, CreateFileInput{Name: "child", Type: models.FileTypeFolder, ParentID: "missing"})
	assert.ErrorIs(t, err, common.ErrParentNotFound)

	_, err = e.files.Create(ctx, u, CreateFileInput{Name: "child", Type: models.FileTypeFolder, ParentID: otherFolder.ID})
	assert.ErrorIs(t, err, common.ErrParentNotFound, "foreign folders are invisible")

	_, n, err := e.repos.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "rejected nodes are never persisted")
}

func TestFileService_Create_StorageFailureLeavesNoRecord(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@example.com")

	svc := NewFileService(e.repos, failingStore{Store: e.content}, e.queue, 0, logging.Nop{})
	_, err := svc.Create(ctx, u, CreateFileInput{Name: "a.png", Type: models.FileTypeImage, Data: pngBase64(t)})
	require.ErrorIs(t, err, common.ErrStorage)

	_, n, err := e.repos.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, e.queue.Pending(queue.FilesQueue))
}

func TestFileService_Create_MetadataFailure(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "a@example.com")

	svc := NewFileService(failingFilesManager{RepositoryManager: e.repos}, e.content, e.queue, 0, logging.Nop{})
	_, err := svc.Create(context.Background(), u, CreateFileInput{Name: "a.png", Type: models.FileTypeImage, Data: pngBase64(t)})
	require.ErrorIs(t, err, common.ErrorInternal)

	assert.Len(t, e.content.Keys(), 1, "orphan content stays in the store")
	assert.Zero(t, e.queue.Pending(queue.FilesQueue))
}

func TestFileService_PhotosScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@example.com")

	photos, err := e.files.Create(ctx, u, CreateFileInput{Name: "Photos", Type: models.FileTypeFolder})
	require.NoError(t, err)

	cat, err := e.files.Create(ctx, u, CreateFileInput{
		Name: "cat.png", Type: models.FileTypeImage, ParentID: photos.ID, Data: pngBase64(t),
	})
	require.NoError(t, err)
	assert.Equal(t, photos.ID, cat.ParentID)
	assert.Equal(t, 1, e.queue.Pending(queue.FilesQueue))

	list, err := e.files.List(ctx, u, ListFilesInput{ParentID: photos.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, cat.ID, list[0].ID)

	fc, err := e.files.Serve(ctx, u, cat.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "image/png", fc.MimeType)

	_, err = e.files.Serve(ctx, u, cat.ID, "100")
	assert.ErrorIs(t, err, common.ErrorNotFound, "no thumbnail before the worker ran")

	require.NoError(t, e.content.Write(ctx, content.DerivativeKey(cat.ContentKey, "100"), []byte("thumb")))
	fc, err = e.files.Serve(ctx, u, cat.ID, "100")
	require.NoError(t, err)
	assert.Equal(t, []byte("thumb"), fc.Data)
}

func TestFileService_ListPaging(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@example.com")
	other := e.register(t, "b@example.com")

	var ids []string
	for i := 0; i < 25; i++ {
		f, err := e.files.Create(ctx, u, CreateFileInput{Name: fmt.Sprintf("f%d", i), Type: models.FileTypeFolder})
		require.NoError(t, err)
		ids = append(ids, f.ID)
	}
	_, err := e.files.Create(ctx, other, CreateFileInput{Name: "x", Type: models.FileTypeFolder})
	require.NoError(t, err)

	first, err := e.files.List(ctx, u, ListFilesInput{Page: 0})
	require.NoError(t, err)
	require.Len(t, first, DefaultPageSize)
	assert.Equal(t, ids[24], first[0].ID, "newest first")
	for i := 1; i < len(first); i++ {
		assert.Greater(t, first[i-1].ID, first[i].ID)
	}

	second, err := e.files.List(ctx, u, ListFilesInput{Page: 1})
	require.NoError(t, err)
	require.Len(t, second, 5)
	assert.Equal(t, ids[0], second[4].ID)

	again, err := e.files.List(ctx, u, ListFilesInput{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, first, again, "order is stable")

	empty, err := e.files.List(ctx, u, ListFilesInput{ParentID: "unknown"})
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = e.files.List(ctx, u, ListFilesInput{Page: -1})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestFileService_ListHugePage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@example.com")

	_, err := e.files.Create(ctx, u, CreateFileInput{Name: "f", Type: models.FileTypeFolder})
	require.NoError(t, err)

	for _, page := range []int{math.MaxInt/DefaultPageSize + 1, math.MaxInt} {
		list, err := e.files.List(ctx, u, ListFilesInput{Page: page})
		require.NoError(t, err)
		assert.Empty(t, list)
	}

	// the largest page whose offset still fits
	list, err := e.files.List(ctx, u, ListFilesInput{Page: math.MaxInt / DefaultPageSize})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFileService_GetByID_ScopedByOwner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@example.com")
	other := e.register(t, "b@example.com")

	f, err := e.files.Create(ctx, u, CreateFileInput{Name: "d", Type: models.FileTypeFolder})
	require.NoError(t, err)

	got, err := e.files.GetByID(ctx, u, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)

	_, err = e.files.GetByID(ctx, other, f.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFileService_SetPublic_Idempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@example.com")
	other := e.register(t, "b@example.com")

	f, err := e.files.Create(ctx, u, CreateFileInput{Name: "a.txt", Type: models.FileTypeFile, Data: b64("x")})
	require.NoError(t, err)

	first, err := e.files.SetPublic(ctx, u, f.ID, true)
	require.NoError(t, err)
	second, err := e.files.SetPublic(ctx, u, f.ID, true)
	require.NoError(t, err)
	assert.True(t, first.IsPublic)
	assert.Equal(t, first, second)

	_, err = e.files.SetPublic(ctx, other, f.ID, false)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	off, err := e.files.SetPublic(ctx, u, f.ID, false)
	require.NoError(t, err)
	assert.False(t, off.IsPublic)
}

func TestFileService_Serve_ForbiddenThenPublic(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.register(t, "a@example.com")
	stranger := e.register(t, "b@example.com")

	f, err := e.files.Create(ctx, owner, CreateFileInput{Name: "notes.json", Type: models.FileTypeFile, Data: b64("hi")})
	require.NoError(t, err)

	_, err = e.files.Serve(ctx, stranger, f.ID, "")
	assert.ErrorIs(t, err, common.ErrForbidden)
	_, err = e.files.Serve(ctx, nil, f.ID, "")
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = e.files.SetPublic(ctx, owner, f.ID, true)
	require.NoError(t, err)

	fc, err := e.files.Serve(ctx, nil, f.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), fc.Data)
	assert.Equal(t, "application/json", fc.MimeType)
}

func TestFileService_Serve_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "a@example.com")

	folder, err := e.files.Create(ctx, u, CreateFileInput{Name: "d", Type: models.FileTypeFolder})
	require.NoError(t, err)
	blob, err := e.files.Create(ctx, u, CreateFileInput{Name: "blob", Type: models.FileTypeFile, Data: b64("x")})
	require.NoError(t, err)

	_, err = e.files.Serve(ctx, u, "missing", "")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = e.files.Serve(ctx, u, folder.ID, "")
	assert.ErrorIs(t, err, common.ErrInvalidOperation)

	_, err = e.files.Serve(ctx, u, blob.ID, "../../etc/passwd")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	fc, err := e.files.Serve(ctx, u, blob.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", fc.MimeType)
}
