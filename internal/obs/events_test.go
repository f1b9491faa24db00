package obs

import "testing"

func TestEventRequiresName(t *testing.T) {
	if err := Event("", "acc-1", nil); err == nil {
		t.Fatal("expected error for empty event name")
	}
	if err := Event("  ", "acc-1", nil); err == nil {
		t.Fatal("expected error for blank event name")
	}
}

func TestEventAcceptsAnonymousActor(t *testing.T) {
	if err := Event("auth.login", "", map[string]any{"attempt": 1}); err != nil {
		t.Fatalf("Event: %v", err)
	}
}
