//go:build integration
// +build integration

package integration

import (
	"context"
	"os/exec"
	"testing"
)

// restartService bounces a compose service so the next request has to read
// state back from its store.
func restartService(t *testing.T, ctx context.Context, service string) {
	t.Helper()

	cmd := exec.CommandContext(ctx, "docker", "compose", "restart", service)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("docker compose restart %s failed: %v\n%s", service, err, string(out))
	}
}
