package session

import (
	"testing"
)

func TestSession_AppendChat(t *testing.T) {
	sess := NewSession("room-1")

	msg := sess.AppendChat("Alice", "hello")
	if msg.ID == "" {
		t.Error("Chat message should get a server-assigned id")
	}
	if msg.SentAt.IsZero() {
		t.Error("SentAt should be stamped")
	}
	if msg.DisplayName != "Alice" || msg.Text != "hello" {
		t.Errorf("Unexpected message: %+v", msg)
	}
}

func TestSession_ChatOrderedByArrival(t *testing.T) {
	sess := NewSession("room-1")
	sess.AppendChat("Alice", "first")
	sess.AppendChat("Bob", "second")
	sess.AppendChat("Alice", "third")

	messages := sess.ChatMessages()
	if len(messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(messages))
	}
	for i, want := range []string{"first", "second", "third"} {
		if messages[i].Text != want {
			t.Errorf("Message %d: expected %q, got %q", i, want, messages[i].Text)
		}
	}
}

func TestSession_ChatMessageIDsUnique(t *testing.T) {
	sess := NewSession("room-1")

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		msg := sess.AppendChat("Alice", "x")
		if seen[msg.ID] {
			t.Fatalf("Duplicate chat message id %s", msg.ID)
		}
		seen[msg.ID] = true
	}
}

func TestSession_ChatInSnapshot(t *testing.T) {
	sess := NewSession("room-1")
	sess.AppendChat("Alice", "hello")

	snap := sess.Snapshot()
	if len(snap.ChatMessages) != 1 {
		t.Fatalf("Expected 1 chat message in snapshot, got %d", len(snap.ChatMessages))
	}

	// snapshot holds copies, not the live records
	snap.ChatMessages[0].Text = "tampered"
	if sess.ChatMessages()[0].Text != "hello" {
		t.Error("Snapshot mutation leaked into chat log")
	}
}
