package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docqa/internal/domain"
)

type stubPipeline struct {
	answer domain.Answer
	asked  []string
}

func (s *stubPipeline) AnswerQuestion(_ context.Context, question string) domain.Answer {
	s.asked = append(s.asked, question)
	return s.answer
}

type stubReloader struct {
	count int
	err   error
}

func (s *stubReloader) Reload() (int, error) { return s.count, s.err }

func newTestServer(t *testing.T, pipeline Answerer, reloader Reloader) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewHandler(pipeline, reloader, nil, NewMetrics()).Routes(mux)
	srv := httptest.NewServer(RequestID(mux))
	t.Cleanup(srv.Close)
	return srv
}

func TestAskReturnsAnswer(t *testing.T) {
	pipeline := &stubPipeline{answer: domain.Answer{
		Text:    "Sleep in a bed.",
		Matches: []domain.Match{{Name: "faq.md", Type: domain.TypeDocumentation}},
		Outcome: domain.OutcomeGenerated,
	}}
	srv := newTestServer(t, pipeline, nil)

	resp, err := http.Post(srv.URL+"/ask", "application/json", strings.NewReader(`{"question":"how do I save?"}`))
	if err != nil {
		t.Fatalf("POST /ask failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var answer domain.Answer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if answer.Text != "Sleep in a bed." || answer.Outcome != domain.OutcomeGenerated {
		t.Fatalf("answer = %+v", answer)
	}
	if len(pipeline.asked) != 1 || pipeline.asked[0] != "how do I save?" {
		t.Fatalf("pipeline received %v", pipeline.asked)
	}
}

func TestAskRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t, &stubPipeline{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"empty question", `{"question":""}`},
		{"malformed json", `{"question":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/ask", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestAskMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &stubPipeline{}, nil)
	resp, err := http.Get(srv.URL + "/ask")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestReloadReportsDocumentCount(t *testing.T) {
	srv := newTestServer(t, &stubPipeline{}, &stubReloader{count: 7})
	resp, err := http.Post(srv.URL+"/reload", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["documents"] != 7 {
		t.Fatalf("documents = %d, want 7", body["documents"])
	}
}

func TestHealthAndCacheStats(t *testing.T) {
	srv := newTestServer(t, &stubPipeline{}, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/cache/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var stats map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats["status"] != "disabled" {
		t.Fatalf("cache stats without cache = %v", stats)
	}
}
