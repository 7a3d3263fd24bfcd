package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"umahelper/pkg/capture"
	"umahelper/pkg/config"
	"umahelper/pkg/events"
	"umahelper/pkg/lookup"
	"umahelper/pkg/ocr"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
)

type stubCapturer struct {
	err error
}

func (s stubCapturer) Capture(a capture.Area) (image.Image, error) {
	if s.err != nil {
		return nil, s.err
	}
	return image.NewNRGBA(image.Rect(0, 0, a.Width, a.Height)), nil
}

type stubRecognizer struct {
	text string
}

func (s stubRecognizer) Recognize(ctx context.Context, img image.Image, opts ocr.Options) (ocr.Recognition, error) {
	return ocr.Recognition{Text: s.text, Confidence: 91}, nil
}

func newTestRouter(t *testing.T, capErr error) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg = config.Config{CORSOrigins: []string{"*"}}
	jwtSecret = []byte("test-secret")
	db = nil
	catalogRef.Store(events.NewCatalog([]events.Event{
		{Name: "Speed Training", Choices: []events.Choice{{Number: "1", Text: "Run laps", Outcome: "+10 Speed"}}},
		{Name: "Hot Spring Trip", CharacterName: "Special Week"},
		{Name: "Dance Lesson"},
	}))
	scanner = &lookup.Service{
		Capturer:   stubCapturer{err: capErr},
		Recognizer: stubRecognizer{text: "Speed Training"},
		Options:    ocr.DefaultOptions(),
	}
	return newRouter()
}

func performRequest(r http.Handler, method, path string, body *bytes.Buffer, token string, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewBuffer(b)
}

type scanResponse struct {
	Text          string         `json:"text"`
	Confidence    float64        `json:"confidence"`
	MatchedEvents []events.Match `json:"matched_events"`
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, nil)
	resp := performRequest(r, http.MethodGet, "/health", nil, "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("health status=%d", resp.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &body)
	if body["events"].(float64) != 3 || body["db"].(bool) {
		t.Fatalf("unexpected health %v", body)
	}
}

func TestMatchEndpoint(t *testing.T) {
	r := newTestRouter(t, nil)
	resp := performRequest(r, http.MethodPost, "/match", jsonBody(t, map[string]string{"text": "Speed Training!!"}), "", "application/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("match status=%d body=%s", resp.Code, resp.Body.String())
	}
	var body scanResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.MatchedEvents) == 0 {
		t.Fatalf("expected matches")
	}
	top := body.MatchedEvents[0]
	if top.Event.Name != "Speed Training" || top.Kind != events.ExactName || top.Confidence != 1 {
		t.Fatalf("unexpected top match %+v", top)
	}

	resp = performRequest(r, http.MethodPost, "/match", jsonBody(t, map[string]string{"text": "   "}), "", "application/json")
	if resp.Code != http.StatusOK || !bytes.Contains(resp.Body.Bytes(), []byte(`"matched_events":[]`)) {
		t.Fatalf("blank text should give an empty list, got %s", resp.Body.String())
	}

	resp = performRequest(r, http.MethodPost, "/match", bytes.NewBufferString("{"), "", "application/json")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json got %d", resp.Code)
	}
}

func TestCaptureEndpoint(t *testing.T) {
	r := newTestRouter(t, nil)
	area := capture.Area{X: 0, Y: 0, Width: 40, Height: 10}
	resp := performRequest(r, http.MethodPost, "/capture", jsonBody(t, area), "", "application/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("capture status=%d body=%s", resp.Code, resp.Body.String())
	}
	var body scanResponse
	_ = json.Unmarshal(resp.Body.Bytes(), &body)
	if body.Text != "Speed Training" || body.Confidence != 91 || len(body.MatchedEvents) == 0 {
		t.Fatalf("unexpected capture result %+v", body)
	}

	r = newTestRouter(t, capture.ErrInvalidArea)
	resp = performRequest(r, http.MethodPost, "/capture", jsonBody(t, capture.Area{}), "", "application/json")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid area got %d", resp.Code)
	}

	r = newTestRouter(t, capture.ErrNoDisplay)
	resp = performRequest(r, http.MethodPost, "/capture", jsonBody(t, area), "", "application/json")
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without display got %d", resp.Code)
	}
}

func multipartImage(t *testing.T, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	fw, err := w.CreateFormFile("file", "event.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(data)
	_ = w.Close()
	return buf, w.FormDataContentType()
}

func TestRecognizeEndpoint(t *testing.T) {
	r := newTestRouter(t, nil)
	var png bytes.Buffer
	img := imaging.New(30, 12, color.NRGBA{240, 240, 240, 255})
	if err := imaging.Encode(&png, img, imaging.PNG); err != nil {
		t.Fatal(err)
	}
	body, ct := multipartImage(t, png.Bytes())
	resp := performRequest(r, http.MethodPost, "/recognize", body, "", ct)
	if resp.Code != http.StatusOK {
		t.Fatalf("recognize status=%d body=%s", resp.Code, resp.Body.String())
	}

	body, ct = multipartImage(t, []byte("not an image"))
	resp = performRequest(r, http.MethodPost, "/recognize", body, "", ct)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for garbage upload got %d", resp.Code)
	}

	resp = performRequest(r, http.MethodPost, "/recognize", nil, "", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without file got %d", resp.Code)
	}
}

func TestListEventsWithoutDB(t *testing.T) {
	r := newTestRouter(t, nil)
	resp := performRequest(r, http.MethodGet, "/events", nil, "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("events status=%d", resp.Code)
	}
	var evs []events.Event
	if err := json.Unmarshal(resp.Body.Bytes(), &evs); err != nil {
		t.Fatal(err)
	}
	want := []string{"Dance Lesson", "Hot Spring Trip", "Speed Training"}
	if len(evs) != len(want) {
		t.Fatalf("expected %d events got %d", len(want), len(evs))
	}
	for i, w := range want {
		if evs[i].Name != w {
			t.Fatalf("position %d: got %s want %s", i, evs[i].Name, w)
		}
	}
}

func TestLookupEventWithoutDB(t *testing.T) {
	r := newTestRouter(t, nil)
	resp := performRequest(r, http.MethodGet, "/events/lookup?text=HOT%20spring", nil, "", "")
	var ev events.Event
	_ = json.Unmarshal(resp.Body.Bytes(), &ev)
	if resp.Code != http.StatusOK || ev.Name != "Hot Spring Trip" || ev.CharacterName != "Special Week" {
		t.Fatalf("lookup status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/events/lookup?text=missing", nil, "", "")
	if resp.Code != http.StatusOK || resp.Body.String() != "null" {
		t.Fatalf("expected null got %d %s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/events/lookup", nil, "", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without text got %d", resp.Code)
	}
}

func TestCreateEventAuthorization(t *testing.T) {
	r := newTestRouter(t, nil)
	payload := map[string]any{"name": "New Event", "choices": []map[string]string{{"text": "Ok"}}}

	resp := performRequest(r, http.MethodPost, "/events", jsonBody(t, payload), "", "application/json")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
	userToken, _ := issueToken("alice", "user", time.Hour)
	resp = performRequest(r, http.MethodPost, "/events", jsonBody(t, payload), userToken, "application/json")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for plain user got %d", resp.Code)
	}
	editorToken, _ := issueToken("bob", "editor", time.Hour)
	resp = performRequest(r, http.MethodPost, "/events", jsonBody(t, payload), editorToken, "application/json")
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without database got %d", resp.Code)
	}
	expired, _ := issueToken("bob", "editor", -time.Minute)
	resp = performRequest(r, http.MethodPost, "/events", jsonBody(t, payload), expired, "application/json")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token got %d", resp.Code)
	}
}

func TestMeAndLoginWithoutDB(t *testing.T) {
	r := newTestRouter(t, nil)
	tok, _ := issueToken("carol", "administrator", time.Hour)
	resp := performRequest(r, http.MethodGet, "/me", nil, tok, "")
	if resp.Code != http.StatusOK || !bytes.Contains(resp.Body.Bytes(), []byte(`"username":"carol"`)) {
		t.Fatalf("me status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/login", jsonBody(t, map[string]string{"username": "a", "password": "b"}), "", "application/json")
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for login without db got %d", resp.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t, nil)
	req, _ := http.NewRequest(http.MethodOptions, "/match", nil)
	req.Header.Set("Origin", "http://localhost:1420")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header: %v", rec.Header())
	}
}

func TestCatalogSwap(t *testing.T) {
	_ = newTestRouter(t, nil)
	before := currentCatalog()
	cfg = config.Config{}
	if err := reloadCatalog(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	after := currentCatalog()
	if before == after || after.Len() != 1 {
		t.Fatalf("expected sample catalog snapshot, got %d events", after.Len())
	}
	if before.Len() != 3 {
		t.Fatalf("old snapshot must stay intact")
	}
	if m := after.Match("train harder"); len(m) == 0 || m[0].Kind != events.ExactChoice {
		t.Fatalf("sample event not matchable: %+v", m)
	}
}
