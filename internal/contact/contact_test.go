package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"profileplus/internal/identity"
	"profileplus/internal/llm"
	"profileplus/internal/profiles"
	"profileplus/internal/queue"
	"profileplus/internal/session"
	"profileplus/internal/shared/auth"
	"profileplus/internal/shared/storage/kv"
)

type recordingClient struct {
	sent []queue.Message
	err  error
}

func (r *recordingClient) Send(ctx context.Context, msg queue.Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func newRouter(t *testing.T, notifier queue.Client) (*gin.Engine, *session.State) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	catalog := profiles.NewCatalog(ctx, profiles.NewStore(kv.NewMemoryStore()), profiles.SeedProfile())
	checker, err := identity.NewChecker()
	if err != nil {
		t.Fatalf("checker: %v", err)
	}
	signer, err := auth.NewSigner("test-secret", time.Hour, false)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	reg := session.NewRegistry(signer, session.Deps{Catalog: catalog, Checker: checker, Analyzer: llm.MockAnalyzer{}}, time.Hour)
	st, _, err := reg.Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		session.Attach(c, st)
		c.Next()
	})
	NewHandler(NewService(notifier)).RegisterRoutes(r.Group("/api/v1"))
	return r, st
}

func post(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func validRequest() Request {
	return Request{RecruiterName: "Sam Recruiter", Company: "Acme", Email: "sam@acme.test", Message: "Hello"}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		want   error
	}{
		{name: "valid", mutate: func(r *Request) {}, want: nil},
		{name: "missing name", mutate: func(r *Request) { r.RecruiterName = "" }, want: ErrMissingFields},
		{name: "missing company", mutate: func(r *Request) { r.Company = "" }, want: ErrMissingFields},
		{name: "missing email", mutate: func(r *Request) { r.Email = "" }, want: ErrMissingFields},
		{name: "missing message", mutate: func(r *Request) { r.Message = "" }, want: ErrMissingFields},
		{name: "bad email", mutate: func(r *Request) { r.Email = "not-an-email" }, want: ErrInvalidEmail},
		{name: "display name form", mutate: func(r *Request) { r.Email = "Sam <sam@acme.test>" }, want: ErrInvalidEmail},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			if err := req.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestSubmitRevealsAndNotifies(t *testing.T) {
	notifier := &recordingClient{}
	r, st := newRouter(t, notifier)

	resp := post(r, "/api/v1/public/profiles/dev-1234/contact", validRequest())
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body submitResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Name != "Jane Developer" || !body.Revealed {
		t.Fatalf("unexpected response %+v", body)
	}
	if !st.Revealed("dev-1234") {
		t.Fatal("expected candidate revealed for this session")
	}
	if len(notifier.sent) != 1 || notifier.sent[0].CandidateID != "dev-1234" || notifier.sent[0].Body != "Hello" {
		t.Fatalf("unexpected notifications %+v", notifier.sent)
	}
}

func TestSubmitMissingFieldsDoesNotReveal(t *testing.T) {
	notifier := &recordingClient{}
	r, st := newRouter(t, notifier)

	req := validRequest()
	req.Company = ""
	resp := post(r, "/api/v1/public/profiles/dev-1234/contact", req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &payload)
	if payload.Error.Message != "All fields are required." {
		t.Fatalf("unexpected message %q", payload.Error.Message)
	}
	if st.Revealed("dev-1234") || len(notifier.sent) != 0 {
		t.Fatal("invalid request must not reveal or notify")
	}
}

func TestSubmitUnknownCandidate(t *testing.T) {
	r, _ := newRouter(t, &recordingClient{})
	resp := post(r, "/api/v1/public/profiles/nobody/contact", validRequest())
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestSubmitNotifierFailureStillReveals(t *testing.T) {
	r, st := newRouter(t, &recordingClient{err: errors.New("broker down")})
	resp := post(r, "/api/v1/public/profiles/dev-1234/contact", validRequest())
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !st.Revealed("dev-1234") {
		t.Fatal("expected reveal despite notifier failure")
	}
}
