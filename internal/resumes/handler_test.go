package resumes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/server/middleware"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1", middleware.Identity())
	NewHandler(svc).RegisterRoutes(api)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-User-Id", "user-1")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestGenerateHandlerCreatesVersion(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f.svc)

	resp := doRequest(router, http.MethodPost, "/api/v1/applications/app-1/resumes/generate", "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var body VersionResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Version != 1 || body.Source != SourceAI {
		t.Fatalf("unexpected response %+v", body)
	}
	var content map[string]any
	if err := json.Unmarshal(body.Content, &content); err != nil {
		t.Fatalf("content should be inline JSON: %v", err)
	}
	if content["name"] != "Ada Lovelace" {
		t.Fatalf("unexpected content %v", content)
	}

	resp = doRequest(router, http.MethodPost, "/api/v1/applications/app-1/resumes/generate", `{"customPrompt":"Be brief"}`)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", resp.Header().Get("Retry-After"))
	}
}

func TestGenerateHandlerMapsGenerationError(t *testing.T) {
	f := newFixture(t)
	f.gen.reply = "no json here"
	router := newTestRouter(f.svc)

	resp := doRequest(router, http.MethodPost, "/api/v1/applications/app-1/resumes/generate", `{"jobDescription":"Build reliable Go services at scale"}`)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"fallback":"manual"`) {
		t.Fatalf("expected manual fallback detail, got %s", resp.Body.String())
	}
}

func TestImportHandlerAcceptsObjectOrString(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f.svc)

	resp := doRequest(router, http.MethodPost, "/api/v1/applications/app-1/resumes/import", `{"content":{"summary":"Backend engineer"}}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(router, http.MethodPost, "/api/v1/applications/app-1/resumes/import", `{"content":"{\"projects\":[{\"title\":\"Tracker\"}]}"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var body VersionResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Version != 2 || body.Source != SourceImport {
		t.Fatalf("unexpected response %+v", body)
	}

	resp = doRequest(router, http.MethodPost, "/api/v1/applications/app-1/resumes/import", `{"content":{"name":"Ada"}}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestPDFHandlerNamesAttachmentByVersion(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f.svc)

	v, err := f.svc.Import(t.Context(), "user-1", "app-1", validDocument(t))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	resp := doRequest(router, http.MethodGet, "/api/v1/resumes/"+v.ID+"/pdf", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, `resume-v1.pdf`) {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if !strings.HasPrefix(resp.Body.String(), "%PDF") {
		t.Fatalf("expected PDF body")
	}
}

func TestResumeRoutesNotFound(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f.svc)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/resumes/missing"},
		{http.MethodDelete, "/api/v1/resumes/missing"},
		{http.MethodGet, "/api/v1/resumes/missing/pdf"},
		{http.MethodGet, "/api/v1/applications/app-other/resumes"},
	} {
		resp := doRequest(router, tc.method, tc.path, "")
		if resp.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404, got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestCooldownHandler(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f.svc)

	resp := doRequest(router, http.MethodGet, "/api/v1/resumes/cooldown", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var status CooldownStatus
	if err := json.Unmarshal(resp.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Generate != 0 || status.Analyze != 0 {
		t.Fatalf("expected no cooldown, got %+v", status)
	}
}

func TestDeleteHandler(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f.svc)
	v, err := f.svc.Import(t.Context(), "user-1", "app-1", `{"summary":"x"}`)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	resp := doRequest(router, http.MethodDelete, "/api/v1/resumes/"+v.ID, "")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	resp = doRequest(router, http.MethodGet, "/api/v1/resumes/"+v.ID, "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
}
