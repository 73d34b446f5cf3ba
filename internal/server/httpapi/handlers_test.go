package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/auth"
	"github.com/dmitrijs2005/filesmanager/internal/server/content"
	"github.com/dmitrijs2005/filesmanager/internal/server/queue"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/memory"
	"github.com/dmitrijs2005/filesmanager/internal/server/services"
	"github.com/dmitrijs2005/filesmanager/internal/server/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	h     *Handler
	srv   *httptest.Server
	repos *memory.RepositoryManager
	queue *queue.MemoryQueue
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	repos := memory.NewRepositoryManager()
	store := content.NewMemoryStore()
	q := queue.NewMemoryQueue(64, queue.DefaultMaxDeliver, logging.Nop{})
	sessions := session.NewMemoryStore(100, session.DefaultTTL)

	us := services.NewUserService(repos, sessions, q, session.DefaultTTL, logging.Nop{})
	fs := services.NewFileService(repos, store, q, 2, logging.Nop{})
	ss := services.NewSystemService(repos, map[string]services.Pinger{
		"metadata": repos, "sessions": sessions, "content": store, "queue": q,
	}, logging.Nop{})
	guard := auth.NewGuard(sessions, repos.Users())

	h := NewHandler(us, fs, ss, guard, 1<<20, logging.Nop{})
	srv := httptest.NewServer(NewRouter(h, logging.Nop{}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { _ = q.Close() })

	return &testAPI{h: h, srv: srv, repos: repos, queue: q}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rdr)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set(common.TokenHeaderName, token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (a *testAPI) login(t *testing.T, email, password string) string {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.srv.URL+"/login", nil)
	require.NoError(t, err)
	req.SetBasicAuth(email, password)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[tokenResponse](t, resp).Token
}

func (a *testAPI) signup(t *testing.T, email string) string {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/register", "", map[string]string{"email": email, "password": "pw"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return a.login(t, email, "pw")
}

func TestAuthFlow(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, http.MethodPost, "/register", "", map[string]string{"email": "bob@example.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[userResponse](t, resp)
	assert.Equal(t, "bob@example.com", created.Email)

	resp = a.do(t, http.MethodPost, "/register", "", map[string]string{"email": "bob@example.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/register", "", map[string]string{"password": "pw"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[errorResponse](t, resp).Error, "missing email")

	resp = a.do(t, http.MethodPost, "/login", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	t1 := a.login(t, "bob@example.com", "pw")
	t2 := a.login(t, "bob@example.com", "pw")
	require.NotEqual(t, t1, t2)

	resp = a.do(t, http.MethodGet, "/profile", t1, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created, decode[userResponse](t, resp))

	resp = a.do(t, http.MethodPost, "/logout", t1, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/profile", t1, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", decode[errorResponse](t, resp).Error)

	resp = a.do(t, http.MethodGet, "/profile", t2, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFilesFlow(t *testing.T) {
	a := newTestAPI(t)
	owner := a.signup(t, "owner@example.com")
	stranger := a.signup(t, "stranger@example.com")

	resp := a.do(t, http.MethodPost, "/files", owner, map[string]any{"name": "Photos", "type": "folder"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	folder := decode[map[string]any](t, resp)
	assert.NotContains(t, folder, "contentKey")
	folderID := folder["id"].(string)

	resp = a.do(t, http.MethodPost, "/files", owner, map[string]any{
		"name": "cat.txt", "type": "file", "parentId": folderID,
		"data": base64.StdEncoding.EncodeToString([]byte("meow")),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	file := decode[fileResponse](t, resp)
	assert.Equal(t, folderID, file.ParentID)

	resp = a.do(t, http.MethodPost, "/files", owner, map[string]any{
		"name": "x", "type": "folder", "parentId": file.ID,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, common.ErrParentNotFolder.Error(), decode[errorResponse](t, resp).Error)

	resp = a.do(t, http.MethodGet, "/files/"+file.ID, owner, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = a.do(t, http.MethodGet, "/files/"+file.ID, stranger, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/files?parentId="+folderID, owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]fileResponse](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, file.ID, list[0].ID)

	resp = a.do(t, http.MethodGet, "/files?page=abc", owner, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = a.do(t, http.MethodGet, "/files?page=-1", owner, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = a.do(t, http.MethodGet, "/files?page=5", owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]fileResponse](t, resp))

	resp = a.do(t, http.MethodGet, "/files/"+file.ID+"/data", stranger, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = a.do(t, http.MethodPut, "/files/"+file.ID+"/publish", stranger, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = a.do(t, http.MethodPut, "/files/"+file.ID+"/publish", owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[fileResponse](t, resp).IsPublic)

	resp = a.do(t, http.MethodGet, "/files/"+file.ID+"/data", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "meow", string(body))

	resp = a.do(t, http.MethodGet, "/files/"+file.ID+"/data?size=100", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/files/"+folderID+"/data", owner, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = a.do(t, http.MethodPut, "/files/"+file.ID+"/unpublish", owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = a.do(t, http.MethodGet, "/files/"+file.ID+"/data", "bogus-token", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCreateFile_Rejections(t *testing.T) {
	a := newTestAPI(t)
	token := a.signup(t, "a@example.com")

	resp := a.do(t, http.MethodPost, "/files", "", map[string]any{"name": "d", "type": "folder"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, a.srv.URL+"/files", strings.NewReader("{not json"))
	require.NoError(t, err)
	req.Header.Set(common.TokenHeaderName, token)
	r, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)

	u, err := a.repos.Users().GetByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	big := `{"name":"big","type":"file","data":"` + strings.Repeat("A", 2<<20) + `"}`
	bigReq := httptest.NewRequest(http.MethodPost, "/files", strings.NewReader(big))
	bigReq = bigReq.WithContext(auth.ContextWithUser(bigReq.Context(), u))
	rec := httptest.NewRecorder()
	a.h.CreateFile(rec, bigReq)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "too large")

	resp = a.do(t, http.MethodPost, "/files", token, map[string]any{"name": "f", "type": "file"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndStats(t *testing.T) {
	a := newTestAPI(t)
	a.signup(t, "a@example.com")

	resp := a.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	h := decode[healthResponse](t, resp)
	assert.Equal(t, "OK", h.Status)
	assert.True(t, h.Services["metadata"])

	resp = a.do(t, http.MethodGet, "/system-stats", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[statsResponse](t, resp)
	assert.Equal(t, int64(1), st.Users)
	assert.Equal(t, int64(0), st.Files)

	a.repos.SetPingErr(assert.AnError)
	resp = a.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	h = decode[healthResponse](t, resp)
	assert.Equal(t, "Error", h.Status)
	assert.False(t, h.Services["metadata"])

	resp = a.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "fm_http_requests_total")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrorUnauthorized, http.StatusUnauthorized},
		{common.ErrForbidden, http.StatusForbidden},
		{common.ErrorNotFound, http.StatusNotFound},
		{common.ErrInvalidArgument, http.StatusBadRequest},
		{common.ErrParentNotFound, http.StatusBadRequest},
		{common.ErrAlreadyExists, http.StatusBadRequest},
		{common.ErrInvalidOperation, http.StatusBadRequest},
		{common.ErrStorage, http.StatusInternalServerError},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
