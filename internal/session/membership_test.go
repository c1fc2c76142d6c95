package session

import (
	"testing"

	"pollroom/pkg/types"
)

func TestSession_Join(t *testing.T) {
	sess := NewSession("room-1")

	p, err := sess.Join("c1", "Alice", types.RoleStudent)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if p.ConnectionID != "c1" || p.DisplayName != "Alice" || p.Role != types.RoleStudent {
		t.Errorf("Unexpected participant record: %+v", p)
	}
	if p.JoinedAt.IsZero() {
		t.Error("JoinedAt should be stamped")
	}
	if sess.ParticipantCount() != 1 {
		t.Errorf("Expected 1 participant, got %d", sess.ParticipantCount())
	}
}

func TestSession_JoinDuplicateNameCaseInsensitive(t *testing.T) {
	sess := NewSession("room-1")

	if _, err := sess.Join("c1", "Alice", types.RoleStudent); err != nil {
		t.Fatalf("First join failed: %v", err)
	}

	if _, err := sess.Join("c2", "alice", types.RoleStudent); err != ErrDuplicateName {
		t.Errorf("Expected ErrDuplicateName for case-differing name, got %v", err)
	}
	if _, err := sess.Join("c2", "ALICE", types.RoleTeacher); err != ErrDuplicateName {
		t.Errorf("Expected ErrDuplicateName regardless of role, got %v", err)
	}
	if sess.ParticipantCount() != 1 {
		t.Errorf("Rejected joins must not add participants, got %d", sess.ParticipantCount())
	}
}

func TestSession_NameFreedAfterLeave(t *testing.T) {
	sess := NewSession("room-1")

	if _, err := sess.Join("c1", "Alice", types.RoleStudent); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if _, err := sess.Leave("c1"); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}

	// uniqueness is checked against connected participants only
	if _, err := sess.Join("c2", "alice", types.RoleStudent); err != nil {
		t.Errorf("Name should be reusable after its holder left, got %v", err)
	}
}

func TestSession_LeaveReturnsRemovedRecord(t *testing.T) {
	sess := NewSession("room-1")
	sess.Join("c1", "Alice", types.RoleStudent)
	sess.Join("c2", "Bob", types.RoleStudent)

	removed, err := sess.Leave("c1")
	if err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if removed.DisplayName != "Alice" {
		t.Errorf("Expected removed record for Alice, got %s", removed.DisplayName)
	}
	if sess.ParticipantCount() != 1 {
		t.Errorf("Expected 1 participant left, got %d", sess.ParticipantCount())
	}
}

func TestSession_LeaveUnknownConnection(t *testing.T) {
	sess := NewSession("room-1")
	sess.Join("c1", "Alice", types.RoleStudent)

	if _, err := sess.Leave("ghost"); err != ErrParticipantNotFound {
		t.Errorf("Expected ErrParticipantNotFound, got %v", err)
	}
	if sess.ParticipantCount() != 1 {
		t.Errorf("Leave of unknown connection must not mutate membership, got %d", sess.ParticipantCount())
	}
}

func TestSession_KickSharesRemovalSemantics(t *testing.T) {
	sess := NewSession("room-1")
	sess.Join("c1", "Teacher", types.RoleTeacher)
	sess.Join("c2", "Bob", types.RoleStudent)

	removed, err := sess.Kick("c2")
	if err != nil {
		t.Fatalf("Kick failed: %v", err)
	}
	if removed.ConnectionID != "c2" {
		t.Errorf("Expected c2 removed, got %s", removed.ConnectionID)
	}

	if _, err := sess.Kick("c2"); err != ErrParticipantNotFound {
		t.Errorf("Expected ErrParticipantNotFound on repeat kick, got %v", err)
	}
}

func TestSession_ParticipantLookup(t *testing.T) {
	sess := NewSession("room-1")
	sess.Join("c1", "Alice", types.RoleStudent)

	p, ok := sess.Participant("c1")
	if !ok {
		t.Fatal("Participant should find a joined connection")
	}
	if p.DisplayName != "Alice" {
		t.Errorf("Expected Alice, got %s", p.DisplayName)
	}

	if _, ok := sess.Participant("ghost"); ok {
		t.Error("Participant should not find unknown connections")
	}
}

func TestSession_SnapshotReflectsMembership(t *testing.T) {
	sess := NewSession("room-1")
	sess.Join("c1", "Alice", types.RoleStudent)
	sess.Join("c2", "Bob", types.RoleStudent)
	sess.Leave("c1")

	snap := sess.Snapshot()
	if len(snap.Participants) != 1 {
		t.Fatalf("Expected 1 participant in snapshot, got %d", len(snap.Participants))
	}
	if snap.Participants[0].DisplayName != "Bob" {
		t.Errorf("Expected Bob in snapshot, got %s", snap.Participants[0].DisplayName)
	}
	if snap.Key != "room-1" {
		t.Errorf("Expected snapshot key room-1, got %s", snap.Key)
	}
}
