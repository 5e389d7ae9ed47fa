package envfile

import (
	"bytes"
	"strings"
	"testing"
)

func TestRewriteChangesExactlyOneLine(t *testing.T) {
	content := []byte("DOCKER_IMAGE=old/tag:abc123\nPOSTGRES_USER=cd2\nPOSTGRES_PASSWORD=secret\nAPP_ENV=production\n")

	rewritten, found := Rewrite(content, "DOCKER_IMAGE", "ns/backend:def456")
	if !found {
		t.Fatalf("expected the variable to be found")
	}

	lines := strings.Split(strings.TrimSuffix(string(rewritten), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[0] != "DOCKER_IMAGE=ns/backend:def456" {
		t.Fatalf("unexpected rewritten line: %q", lines[0])
	}

	original := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != original[i] {
			t.Fatalf("line %d changed: %q != %q", i, lines[i], original[i])
		}
	}
}

func TestRewritePreservesTrailingNewline(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{name: "with trailing newline", content: "A=1\nDOCKER_IMAGE=x\n"},
		{name: "without trailing newline", content: "A=1\nDOCKER_IMAGE=x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rewritten, found := Rewrite([]byte(tc.content), "DOCKER_IMAGE", "y")
			if !found {
				t.Fatalf("expected variable to be found")
			}
			wantSuffix := strings.HasSuffix(tc.content, "\n")
			gotSuffix := bytes.HasSuffix(rewritten, []byte("\n"))
			if wantSuffix != gotSuffix {
				t.Fatalf("trailing newline not preserved: want %v got %v", wantSuffix, gotSuffix)
			}
		})
	}
}

func TestRewriteMissingKeyLeavesContentIdentical(t *testing.T) {
	content := []byte("A=1\nB=2\nC=3\n")

	rewritten, found := Rewrite(content, "DOCKER_IMAGE", "ns/backend:def456")
	if found {
		t.Fatalf("expected the variable to be absent")
	}
	if !bytes.Equal(rewritten, content) {
		t.Fatalf("content changed despite missing key:\n%q\n%q", content, rewritten)
	}
}

func TestRewriteIgnoresSubstringKeys(t *testing.T) {
	content := []byte("OLD_DOCKER_IMAGE=keep\nDOCKER_IMAGE_EXTRA=keep\nDOCKER_IMAGE=replace\n")

	rewritten, found := Rewrite(content, "DOCKER_IMAGE", "new")
	if !found {
		t.Fatalf("expected the variable to be found")
	}
	want := "OLD_DOCKER_IMAGE=keep\nDOCKER_IMAGE_EXTRA=keep\nDOCKER_IMAGE=new\n"
	if string(rewritten) != want {
		t.Fatalf("unexpected result:\n%q", rewritten)
	}
}

func TestParseEnv(t *testing.T) {
	content := []byte("# comment\nA=1\n\nB=two=parts\n  C=3\nmalformed\n")

	env := ParseEnv(content)
	if len(env) != 3 {
		t.Fatalf("expected 3 entries, got %d: %v", len(env), env)
	}
	if env["A"] != "1" || env["B"] != "two=parts" || env["C"] != "3" {
		t.Fatalf("unexpected entries: %v", env)
	}
}

func TestSedCommand(t *testing.T) {
	cmd, err := SedCommand(".env", "DOCKER_IMAGE", "ns/backend:def456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `sed -i 's#^DOCKER_IMAGE=.*#DOCKER_IMAGE=ns/backend:def456#' '.env'`
	if cmd != want {
		t.Fatalf("unexpected command:\n%s\n%s", cmd, want)
	}
}

func TestSedCommandRejectsUnsafeInput(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
		path  string
	}{
		{name: "key with dash", key: "BAD-KEY", value: "v", path: ".env"},
		{name: "value with hash", key: "K", value: "a#b", path: ".env"},
		{name: "value with quote", key: "K", value: "a'b", path: ".env"},
		{name: "value with newline", key: "K", value: "a\nb", path: ".env"},
		{name: "path with quote", key: "K", value: "v", path: "a'.env"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := SedCommand(tc.path, tc.key, tc.value); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}
