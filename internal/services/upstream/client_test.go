package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

// MockRoundTripper implements http.RoundTripper for testing
type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newMockClient(fn func(req *http.Request) (*http.Response, error)) *Client {
	c := NewClient("http://backend.test/", "/permanence", "severity-and-permanence", time.Second)
	c.httpClient = &http.Client{Transport: &MockRoundTripper{RoundTripFunc: fn}}
	return c
}

func TestNewClient(t *testing.T) {
	c := NewClient("http://localhost:3333//", "permanence", "/severity-and-permanence", 0)

	if c.baseURL != "http://localhost:3333" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.permanencePath != "/permanence" {
		t.Errorf("permanencePath = %q", c.permanencePath)
	}
	if c.severityPath != "/severity-and-permanence" {
		t.Errorf("severityPath = %q", c.severityPath)
	}
	if c.httpClient.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", c.httpClient.Timeout)
	}
}

func TestClient_FetchPermanence(t *testing.T) {
	var gotURL, gotAccept string
	c := newMockClient(func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		gotAccept = req.Header.Get("Accept")
		return jsonResponse(http.StatusOK, `[{"permanencia":100},{"permanencia":360},{"permanencia":"361"},{"permanencia":2881}]`), nil
	})

	batch, err := c.FetchPermanence(context.Background())
	if err != nil {
		t.Fatalf("FetchPermanence() error = %v", err)
	}

	if gotURL != "http://backend.test/permanence" {
		t.Errorf("URL = %q", gotURL)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}

	want := []float64{100, 360, 361, 2881}
	if len(batch.Records) != len(want) {
		t.Fatalf("got %d records, want %d", len(batch.Records), len(want))
	}
	for i, r := range batch.Records {
		if r.DurationMinutes != want[i] {
			t.Errorf("record %d = %v, want %v", i, r.DurationMinutes, want[i])
		}
	}
	if batch.Degraded != 0 {
		t.Errorf("Degraded = %d, want 0", batch.Degraded)
	}
}

func TestClient_FetchSeverity(t *testing.T) {
	c := newMockClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/severity-and-permanence" {
			t.Errorf("path = %q", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `[
			{"gravidade":"Baixa","permanencia":60},
			{"gravidade":" Alta ","permanencia":120},
			{"gravidade":"Média","permanencia":null}
		]`), nil
	})

	batch, err := c.FetchSeverity(context.Background())
	if err != nil {
		t.Fatalf("FetchSeverity() error = %v", err)
	}

	if len(batch.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(batch.Records))
	}
	if batch.Records[1].Category != "Alta" {
		t.Errorf("category not trimmed: %q", batch.Records[1].Category)
	}
	if batch.Records[2].DurationMinutes != 0 {
		t.Errorf("null duration = %v, want 0", batch.Records[2].DurationMinutes)
	}
	if batch.Degraded != 1 {
		t.Errorf("Degraded = %d, want 1", batch.Degraded)
	}
}

func TestClient_StatusError(t *testing.T) {
	c := newMockClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusServiceUnavailable, strings.Repeat("x", 1000)), nil
	})

	_, err := c.FetchPermanence(context.Background())

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d", statusErr.StatusCode)
	}
	if statusErr.Endpoint != EndpointPermanence {
		t.Errorf("Endpoint = %q", statusErr.Endpoint)
	}
	if len(statusErr.Body) != errorBodyExcerpt+len("...") {
		t.Errorf("body excerpt length = %d", len(statusErr.Body))
	}
	if !strings.Contains(err.Error(), "status 503") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestBodyExcerpt(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantLen int
	}{
		{"short body kept", "  unavailable  ", len("unavailable")},
		{"exact limit kept", strings.Repeat("x", errorBodyExcerpt), errorBodyExcerpt},
		{"ascii truncated", strings.Repeat("x", errorBodyExcerpt+10), errorBodyExcerpt + len("...")},
		{"two-byte rune on boundary", strings.Repeat("x", errorBodyExcerpt-1) + "ééé", errorBodyExcerpt - 1 + len("...")},
		{"three-byte runes", strings.Repeat("€", errorBodyExcerpt), errorBodyExcerpt - errorBodyExcerpt%3 + len("...")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bodyExcerpt([]byte(tt.body))
			if !utf8.ValidString(got) {
				t.Errorf("bodyExcerpt() = %q, not valid UTF-8", got)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len(bodyExcerpt()) = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestClient_StatusErrorMultibyteBody(t *testing.T) {
	c := newMockClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, strings.Repeat("espera ñ ", 100)), nil
	})

	_, err := c.FetchSeverity(context.Background())

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if !utf8.ValidString(statusErr.Body) {
		t.Errorf("Body = %q, not valid UTF-8", statusErr.Body)
	}
	if !strings.HasSuffix(statusErr.Body, "...") {
		t.Errorf("Body = %q, want truncation marker", statusErr.Body)
	}
}

func TestClient_NonArrayBody(t *testing.T) {
	c := newMockClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"error":"nope"}`), nil
	})

	if _, err := c.FetchSeverity(context.Background()); err == nil {
		t.Fatal("expected error for non-array body")
	}
}

func TestClient_TransportError(t *testing.T) {
	c := newMockClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	_, err := c.FetchPermanence(context.Background())
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("error = %v", err)
	}
}

func TestClient_HTTPServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/permanence":
			_, _ = io.WriteString(w, `[{"permanencia":30}]`)
		case "/severity-and-permanence":
			_, _ = io.WriteString(w, `[{"gravidade":"Baixa","permanencia":90}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/permanence", "/severity-and-permanence", time.Second)

	perm, err := c.FetchPermanence(context.Background())
	if err != nil {
		t.Fatalf("FetchPermanence() error = %v", err)
	}
	if len(perm.Records) != 1 || perm.Records[0].DurationMinutes != 30 {
		t.Errorf("permanence = %+v", perm.Records)
	}

	sev, err := c.FetchSeverity(context.Background())
	if err != nil {
		t.Fatalf("FetchSeverity() error = %v", err)
	}
	if len(sev.Records) != 1 || sev.Records[0].Category != "Baixa" {
		t.Errorf("severity = %+v", sev.Records)
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/permanence", "/severity-and-permanence", 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchPermanence(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestMinutes_Lenient(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantValue float64
		wantOK    bool
	}{
		{"number", `{"permanencia":42.5}`, 42.5, true},
		{"integer string", `{"permanencia":"90"}`, 90, true},
		{"comma decimal", `{"permanencia":"1,5"}`, 1.5, true},
		{"zero", `{"permanencia":0}`, 0, true},
		{"null", `{"permanencia":null}`, 0, false},
		{"missing", `{}`, 0, false},
		{"word", `{"permanencia":"abc"}`, 0, false},
		{"negative", `{"permanencia":-5}`, 0, false},
		{"bool", `{"permanencia":true}`, 0, false},
		{"object", `{"permanencia":{"v":1}}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := decodeRecords([]byte("[" + tt.body + "]"))
			if err != nil {
				t.Fatalf("decodeRecords() error = %v", err)
			}
			got, ok := raw[0].Minutes()
			if got != tt.wantValue || ok != tt.wantOK {
				t.Errorf("Minutes() = (%v, %v), want (%v, %v)", got, ok, tt.wantValue, tt.wantOK)
			}
		})
	}
}

func TestToWaitRecords_CountsDegraded(t *testing.T) {
	raw, err := decodeRecords([]byte(`[{"permanencia":null},{},{"permanencia":"abc"},{"permanencia":15}]`))
	if err != nil {
		t.Fatalf("decodeRecords() error = %v", err)
	}

	records, degraded := toWaitRecords(raw)
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}
	if degraded != 3 {
		t.Errorf("degraded = %d, want 3", degraded)
	}
	for i := 0; i < 3; i++ {
		if records[i].DurationMinutes != 0 {
			t.Errorf("record %d = %v, want 0", i, records[i].DurationMinutes)
		}
	}
}

func TestToSeverityRecords_NormalizesCategory(t *testing.T) {
	// "Média" written with a combining acute accent.
	raw, err := decodeRecords([]byte(`[{"gravidade":"Me\u0301dia","permanencia":10}]`))
	if err != nil {
		t.Fatalf("decodeRecords() error = %v", err)
	}

	records, _ := toSeverityRecords(raw)
	if records[0].Category != "M\u00e9dia" {
		t.Errorf("Category = %q, want NFC form", records[0].Category)
	}
}
