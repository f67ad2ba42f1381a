package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func TestPrintJSON(t *testing.T) {
	out := captureOutput(t, func() {
		printJSON([]byte(`{"a":1}`))
	})

	expected := "{\n  \"a\": 1\n}\n"
	if out != expected {
		t.Fatalf("unexpected json output:\n%s", out)
	}
}

func TestPrintJSONFallsBackOnInvalidBody(t *testing.T) {
	out := captureOutput(t, func() {
		printJSON([]byte("not json"))
	})

	if out != "not json\n" {
		t.Fatalf("expected raw passthrough, got %q", out)
	}
}

func TestBulkElectricityPayload(t *testing.T) {
	readings := []byte(`[{"property_id":"prop-1","meter_number":"MTR-100","current_reading":1450}]`)

	payload, err := bulkElectricityPayload(2025, 3, readings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		Year     int               `json:"year"`
		Month    int               `json:"month"`
		Readings []json.RawMessage `json:"readings"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not valid json: %v", err)
	}
	if decoded.Year != 2025 || decoded.Month != 3 {
		t.Fatalf("unexpected period: %d-%d", decoded.Year, decoded.Month)
	}
	if len(decoded.Readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(decoded.Readings))
	}
}

func TestBulkElectricityPayloadRejectsNonArray(t *testing.T) {
	if _, err := bulkElectricityPayload(2025, 3, []byte(`{"not":"an array"}`)); err == nil {
		t.Fatal("expected error for non-array readings file")
	}
}

func TestDoRequestSetsActorHeader(t *testing.T) {
	var gotActor, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor = r.Header.Get("X-Actor-ID")
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"updated":0}`))
	}))
	defer server.Close()

	origURL, origActor := baseURL, actor
	baseURL, actor = server.URL, "ops"
	defer func() { baseURL, actor = origURL, origActor }()

	body, status, err := doRequest(http.MethodPost, "/api/v1/invoices/sweep", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if gotActor != "ops" || gotMethod != http.MethodPost {
		t.Fatalf("request not built as expected: actor=%q method=%q", gotActor, gotMethod)
	}
	if string(body) != `{"updated":0}` {
		t.Fatalf("unexpected body: %s", body)
	}
}
