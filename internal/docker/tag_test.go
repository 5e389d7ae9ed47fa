package docker

import "testing"

func TestImageTagDeterministic(t *testing.T) {
	first, err := ImageTag("seob0707", "cd2-backend", "def456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ImageTag("seob0707", "cd2-backend", "def456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("tag derivation not deterministic: %q != %q", first, second)
	}
	if first != "seob0707/cd2-backend:def456" {
		t.Fatalf("unexpected tag: %q", first)
	}
}

func TestImageTagRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name      string
		namespace string
		service   string
		commit    string
	}{
		{name: "empty namespace", namespace: "", service: "svc", commit: "abc"},
		{name: "empty service", namespace: "ns", service: "", commit: "abc"},
		{name: "empty commit", namespace: "ns", service: "svc", commit: ""},
		{name: "commit with slash", namespace: "ns", service: "svc", commit: "feature/x"},
		{name: "uppercase service", namespace: "ns", service: "Svc", commit: "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ImageTag(tc.namespace, tc.service, tc.commit); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}
