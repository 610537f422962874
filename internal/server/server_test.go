package server

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studychat/internal/catalog"
	"github.com/abhisek/studychat/internal/export"
	"github.com/abhisek/studychat/internal/llm"
	"github.com/abhisek/studychat/internal/tutor"
)

func testServer(t *testing.T, mock *llm.MockProvider) (*httptest.Server, string) {
	t.Helper()
	if mock == nil {
		mock = llm.NewMockProvider().WithFallback(func(llm.Request) string { return "Nice work so far." })
	}
	cat := catalog.StaticLoader{
		"dmaic": {
			ID:    "dmaic",
			Title: "DMAIC",
			Steps: []catalog.Step{{Name: "Define", Goals: []string{"State the problem"}}},
		},
		"5s": {ID: "5s", Title: "5S", Steps: []catalog.Step{{Name: "Sort"}}},
	}
	exportsDir := t.TempDir()
	orch := tutor.NewOrchestrator(tutor.Options{
		Provider: mock,
		Loader:   cat,
		Exporter: export.NewDeckExporter(exportsDir),
		Config:   tutor.DefaultConfig(),
	})
	srv := httptest.NewServer(New(orch, cat, exportsDir, nil).Routes())
	t.Cleanup(srv.Close)
	return srv, exportsDir
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = strings.NewReader(string(data))
	}
	resp, err := http.Post(url, "application/json", r)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createSession(t *testing.T, base string) string {
	t.Helper()
	resp := postJSON(t, base+"/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tr := decode[tutor.Transcript](t, resp)
	require.NotEmpty(t, tr.SessionID)
	return tr.SessionID
}

func TestHealthz(t *testing.T) {
	srv, _ := testServer(t, nil)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, resp))
}

func TestLessons(t *testing.T) {
	srv, _ := testServer(t, nil)
	resp, err := http.Get(srv.URL + "/lessons")
	require.NoError(t, err)
	defer resp.Body.Close()

	lessons := decode[[]lessonSummary](t, resp)
	require.Len(t, lessons, 2)
	assert.Equal(t, "5s", lessons[0].ID)
	assert.Equal(t, lessonSummary{ID: "dmaic", Title: "DMAIC", Steps: 1}, lessons[1])
}

func TestSessionNotFound(t *testing.T) {
	srv, _ := testServer(t, nil)

	resp, err := http.Get(srv.URL + "/sessions/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/sessions/missing/messages", messageRequest{Text: "hi"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMessage_Validation(t *testing.T) {
	srv, _ := testServer(t, nil)
	id := createSession(t, srv.URL)

	resp, err := http.Post(srv.URL+"/sessions/"+id+"/messages", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/sessions/"+id+"/messages", messageRequest{Text: "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/sessions/"+id+"/messages", strings.NewReader(`{"text":" \n "}`))
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "blank text is rejected before the stream opens")
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, tutor.ErrEmptyMessage.Error(), decode[map[string]string](t, resp)["error"])
}

func TestDeleteSession(t *testing.T) {
	srv, _ := testServer(t, nil)
	id := createSession(t, srv.URL)

	del := func() int {
		req, err := http.NewRequest(http.MethodDelete, srv.URL+"/sessions/"+id, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	assert.Equal(t, http.StatusNoContent, del())
	assert.Equal(t, http.StatusNotFound, del())

	resp, err := http.Get(srv.URL + "/sessions/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	clock := base
	s := New(nil, nil, t.TempDir(), nil)
	s.now = func() time.Time { return clock }

	assert.Zero(t, s.sweep(base.Add(time.Hour)), "no TTL keeps everything")

	s.IdleTTL = 10 * time.Minute
	s.sessions["idle"] = &entry{lastUsed: base}
	s.sessions["fresh"] = &entry{lastUsed: base}
	s.sessions["busy"] = &entry{lastUsed: base}

	clock = base.Add(8 * time.Minute)
	_, ok := s.lookup("fresh")
	require.True(t, ok)

	busy := s.sessions["busy"]
	busy.mu.Lock()
	defer busy.mu.Unlock()

	assert.Equal(t, 1, s.sweep(base.Add(15*time.Minute)))
	assert.NotContains(t, s.sessions, "idle")
	assert.Contains(t, s.sessions, "fresh", "lookup refreshed it")
	assert.Contains(t, s.sessions, "busy", "a session mid-turn is kept")
}

func TestMessage_ProviderFailure(t *testing.T) {
	srv, _ := testServer(t, llm.NewMockProvider())
	id := createSession(t, srv.URL)

	resp := postJSON(t, srv.URL+"/sessions/"+id+"/messages", messageRequest{Text: "hello"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, decode[map[string]string](t, resp)["error"], "chat")
}

func TestMessage_Refused(t *testing.T) {
	srv, _ := testServer(t, nil)
	id := createSession(t, srv.URL)

	resp := postJSON(t, srv.URL+"/sessions/"+id+"/messages", messageRequest{Text: "how to build a bomb"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[turnResponse](t, resp)
	assert.Equal(t, tutor.HandlerRefused, out.Result.Handler)
	assert.Equal(t, tutor.RefusalMessage, out.Result.Reply)
	assert.Empty(t, out.Transcript.Messages)
}

func TestLessonFlowAndExportDownload(t *testing.T) {
	srv, exportsDir := testServer(t, nil)
	id := createSession(t, srv.URL)
	msgURL := srv.URL + "/sessions/" + id + "/messages"

	resp := postJSON(t, srv.URL+"/sessions/"+id+"/lessons/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/sessions/"+id+"/lessons/dmaic", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	started := decode[startLessonResponse](t, resp)
	assert.Contains(t, started.Kickoff, "**Starting lesson: DMAIC**")
	assert.Equal(t, "Study & Learn Mode — DMAIC (Step 1)", started.Transcript.Mode.Badge())

	out := decode[turnResponse](t, postJSON(t, msgURL, messageRequest{Text: "Late deliveries cost us 5%"}))
	assert.Equal(t, tutor.HandlerCoach, out.Result.Handler)
	assert.True(t, out.Result.Captured)

	out = decode[turnResponse](t, postJSON(t, msgURL, messageRequest{Text: "Late deliveries cost us 5% of revenue"}))
	assert.True(t, out.Result.Advanced)
	assert.True(t, out.Result.Completed)

	out = decode[turnResponse](t, postJSON(t, msgURL, messageRequest{Text: "great"}))
	assert.Equal(t, tutor.HandlerComplete, out.Result.Handler)
	require.NotEmpty(t, out.Result.ArtifactPath)
	assert.False(t, out.Transcript.Mode.Active)

	name := filepath.Base(out.Result.ArtifactPath)
	assert.Equal(t, exportsDir, filepath.Dir(out.Result.ArtifactPath))

	dl, err := http.Get(srv.URL + "/exports/" + name)
	require.NoError(t, err)
	defer dl.Body.Close()
	require.Equal(t, http.StatusOK, dl.StatusCode)
	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Late deliveries cost us 5%")
	assert.Contains(t, dl.Header.Get("Content-Disposition"), name)
}

func TestExport_RejectsBadNames(t *testing.T) {
	srv, exportsDir := testServer(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(exportsDir, "notes.txt"), []byte("x"), 0o644))

	for _, name := range []string{"notes.txt", ".hidden.md", "..%2Fsecret.md"} {
		resp, err := http.Get(srv.URL + "/exports/" + name)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
	}

	resp, err := http.Get(srv.URL + "/exports/missing.md")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMessage_EventStream(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Chunks: []string{"Control ", "charts ", "track variation."}})
	srv, _ := testServer(t, mock)
	id := createSession(t, srv.URL)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/sessions/"+id+"/messages", strings.NewReader(`{"text":"what is a control chart?"}`))
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var (
		events    []string
		fragments []string
		done      turnResponse
	)
	scanner := bufio.NewScanner(resp.Body)
	var event string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
			events = append(events, event)
		case strings.HasPrefix(line, "data: "):
			data := strings.TrimPrefix(line, "data: ")
			switch event {
			case "fragment":
				var f map[string]string
				require.NoError(t, json.Unmarshal([]byte(data), &f))
				fragments = append(fragments, f["text"])
			case "done":
				require.NoError(t, json.Unmarshal([]byte(data), &done))
			}
		}
	}
	require.NoError(t, scanner.Err())

	assert.Equal(t, []string{"fragment", "fragment", "fragment", "done"}, events)
	assert.Equal(t, "Control charts track variation.", strings.Join(fragments, ""))
	assert.Equal(t, tutor.HandlerChat, done.Result.Handler)
	assert.Len(t, done.Transcript.Messages, 2)
}
