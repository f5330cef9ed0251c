package policy

import (
	"context"
	"strings"
	"testing"
)

func TestDigest_StableAcrossRoundTrip(t *testing.T) {
	ctx := context.Background()
	server := sampleServerPolicy()

	before, err := Digest(server)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if !strings.HasPrefix(before, "sha256:") || len(before) != len("sha256:")+64 {
		t.Errorf("digest format = %q", before)
	}

	after, err := Digest(GetServerPolicy(ctx, GetClientWizardPolicy(ctx, server)))
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if before != after {
		t.Errorf("digest changed across round trip: %s != %s", before, after)
	}
}

func TestDigest_KeyOrderIndependent(t *testing.T) {
	a, err := Digest(map[string]any{"b": 1, "a": []any{"x", 2.5}})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Digest(map[string]any{"a": []any{"x", 2.5}, "b": 1})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("digests differ: %s vs %s", a, b)
	}

	c, err := Digest(map[string]any{"a": []any{2.5, "x"}, "b": 1})
	if err != nil {
		t.Fatal(err)
	}
	if a == c {
		t.Error("array order must change the digest")
	}
}
