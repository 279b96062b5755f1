package forge

import (
	"context"
	"os"
	"testing"
)

func TestErrorRetryable(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindNetwork, true},
		{KindRateLimited, true},
		{KindInvalidToken, false},
		{KindPermission, false},
		{KindNotFound, false},
	}
	for _, tt := range tests {
		e := &Error{Kind: tt.kind}
		if got := e.Retryable(); got != tt.want {
			t.Errorf("Kind=%s Retryable() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := os.ErrNotExist
	e := &Error{Kind: KindOther, Cause: cause}
	if e.Unwrap() != cause {
		t.Errorf("Unwrap() did not return the wrapped cause")
	}
}

func TestNewClientReadOnlyWithoutToken(t *testing.T) {
	c := NewClient("", AuthModeNone)
	if !c.ReadOnly() {
		t.Fatalf("expected ReadOnly() true for empty token")
	}
	if err := c.ValidateToken(context.Background()); err == nil {
		t.Fatalf("expected ValidateToken to fail without a token")
	}
}

func TestResolveTokenFromEnv(t *testing.T) {
	t.Setenv("GH_TOKEN", "ghtoken123")
	t.Setenv("GITHUB_TOKEN", "")

	tok, mode, err := ResolveToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "ghtoken123" || mode != AuthModeEnvToken {
		t.Errorf("token=%q mode=%s, want ghtoken123/env-token", tok, mode)
	}
}

func TestResolveTokenGitHubTokenAlias(t *testing.T) {
	t.Setenv("GH_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "alias-token")

	tok, mode, err := ResolveToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "alias-token" || mode != AuthModeEnvToken {
		t.Errorf("token=%q mode=%s, want alias-token/env-token", tok, mode)
	}
}
