package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/twin"
	"github.com/phanxgames/twin/store"
)

const plantJSON = `{
  "id": "plant",
  "version": "1.0",
  "sceneMode": "2d",
  "nodes": [
    {"id": "r1", "type": "rect", "transform": {"position": {"x": 10, "y": 0, "z": 20}}},
    {"id": "g1", "type": "group", "transform": {"position": {"x": 100, "y": 0, "z": 100}}, "children": [
      {"id": "c1", "type": "circle", "transform": {"position": {"x": 5, "y": 0, "z": -150}}}
    ]}
  ]
}`

func newTestApp(t *testing.T) (*fiber.App, store.Store) {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return New(st, Config{AppName: "test"}), st
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)
	code, body := do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestSceneCRUD(t *testing.T) {
	app, st := newTestApp(t)

	code, body := do(t, app, http.MethodGet, "/scenes", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(body))

	code, _ = do(t, app, http.MethodGet, "/scenes/plant", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = do(t, app, http.MethodPost, "/scenes", plantJSON)
	require.Equal(t, http.StatusCreated, code, string(body))
	assert.JSONEq(t, `{"id":"plant"}`, string(body))

	code, _ = do(t, app, http.MethodPost, "/scenes", plantJSON)
	assert.Equal(t, http.StatusConflict, code)

	code, body = do(t, app, http.MethodGet, "/scenes/plant", "")
	require.Equal(t, http.StatusOK, code)
	m, err := twin.DecodeScene(strings.NewReader(string(body)))
	require.NoError(t, err)
	assert.Equal(t, twin.SceneMode2D, m.SceneMode)
	require.NotNil(t, m.FindNode("c1"))

	// PUT replaces and the path id wins
	code, _ = do(t, app, http.MethodPut, "/scenes/plant", `{"id":"other","sceneMode":"3d","nodes":[]}`)
	require.Equal(t, http.StatusOK, code)
	got, err := st.Load(context.Background(), "plant")
	require.NoError(t, err)
	assert.Equal(t, twin.SceneMode3D, got.SceneMode)
	assert.Empty(t, got.Nodes)
	_, err = st.Load(context.Background(), "other")
	assert.ErrorIs(t, err, store.ErrNotFound)

	code, body = do(t, app, http.MethodGet, "/scenes", "")
	require.Equal(t, http.StatusOK, code)
	var list []store.Info
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "plant", list[0].ID)

	code, _ = do(t, app, http.MethodDelete, "/scenes/plant", "")
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = do(t, app, http.MethodDelete, "/scenes/plant", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCreateAssignsID(t *testing.T) {
	app, st := newTestApp(t)
	code, body := do(t, app, http.MethodPost, "/scenes", `{"sceneMode":"3d","nodes":[]}`)
	require.Equal(t, http.StatusCreated, code)

	var resp struct{ ID string }
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.ID)
	_, err := st.Load(context.Background(), resp.ID)
	assert.NoError(t, err)
}

func TestBadRequests(t *testing.T) {
	app, _ := newTestApp(t)

	code, _ := do(t, app, http.MethodPost, "/scenes", `{not json`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, app, http.MethodPut, "/scenes/plant", `[1,2`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, app, http.MethodPost, "/scenes", `{"id":"a:b","nodes":[]}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSummaryRoute(t *testing.T) {
	app, _ := newTestApp(t)
	code, _ := do(t, app, http.MethodPost, "/scenes", plantJSON)
	require.Equal(t, http.StatusCreated, code)

	code, body := do(t, app, http.MethodGet, "/scenes/plant/summary", "")
	require.Equal(t, http.StatusOK, code)
	var s Summary
	require.NoError(t, json.Unmarshal(body, &s))
	assert.Equal(t, "plant", s.ID)
	assert.Equal(t, 3, s.Nodes)
	assert.Equal(t, map[string]int{"rect": 1, "group": 1, "circle": 1}, s.Types)
	require.NotNil(t, s.Bounds)
	assert.Equal(t, Bounds{MinX: 10, MinZ: -50, MaxX: 105, MaxZ: 20}, *s.Bounds)

	code, _ = do(t, app, http.MethodGet, "/scenes/nope/summary", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(twin.NewSceneModel(twin.SceneMode3D))
	assert.Zero(t, s.Nodes)
	assert.Nil(t, s.Bounds)
	assert.Empty(t, s.Types)
}

func TestSQLiteBackedApp(t *testing.T) {
	st, err := store.OpenSQLite(context.Background(), t.TempDir()+"/scenes.db")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	app := New(st, Config{})

	code, _ := do(t, app, http.MethodPost, "/scenes", plantJSON)
	require.Equal(t, http.StatusCreated, code)
	code, body := do(t, app, http.MethodGet, "/scenes/plant/summary", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"nodes":3`)
}
