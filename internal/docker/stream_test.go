package docker

import (
	"strings"
	"testing"
)

func TestDrainStreamForwardsRenderableLines(t *testing.T) {
	payload := strings.Join([]string{
		`{"stream":"Step 1/3 : FROM python:3.11-slim\n"}`,
		`{"status":"Pushing","id":"abc123","progressDetail":{"current":10,"total":100}}`,
		`{"aux":{"ID":"sha256:deadbeef"}}`,
	}, "\n")

	var lines []string
	err := drainStream(strings.NewReader(payload), func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(lines), lines)
	}
	if lines[1] != "abc123 Pushing 10/100" {
		t.Fatalf("unexpected status render: %q", lines[1])
	}
	if lines[2] != "image id: sha256:deadbeef" {
		t.Fatalf("unexpected aux render: %q", lines[2])
	}
}

func TestDrainStreamSurfacesEmbeddedErrors(t *testing.T) {
	payload := `{"stream":"ok\n"}` + "\n" + `{"errorDetail":{"message":"denied: requested access to the resource is denied"}}`

	err := drainStream(strings.NewReader(payload), nil)
	if err == nil {
		t.Fatalf("expected error from stream")
	}
	if !strings.Contains(err.Error(), "denied") {
		t.Fatalf("expected embedded message in error, got: %v", err)
	}
}

func TestDrainStreamRejectsMalformedJSON(t *testing.T) {
	if err := drainStream(strings.NewReader("{not json"), nil); err == nil {
		t.Fatalf("expected decode error")
	}
}
