package auth

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{UserID: 42, Plan: "pro", SessionID: 7})

	ac, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context")
	}
	if ac.UserID != 42 || ac.Plan != "pro" || ac.SessionID != 7 {
		t.Errorf("unexpected auth context: %+v", ac)
	}
	if UserID(ctx) != 42 {
		t.Errorf("UserID = %d, want 42", UserID(ctx))
	}
	if Plan(ctx) != "pro" {
		t.Errorf("Plan = %q, want pro", Plan(ctx))
	}
}

func TestEmptyContext(t *testing.T) {
	ctx := context.Background()

	if _, ok := FromContext(ctx); ok {
		t.Error("expected no auth context")
	}
	if UserID(ctx) != 0 {
		t.Errorf("UserID = %d, want 0", UserID(ctx))
	}
	if Plan(ctx) != "" {
		t.Errorf("Plan = %q, want empty", Plan(ctx))
	}
}
