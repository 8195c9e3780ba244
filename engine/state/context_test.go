package state

import (
	"testing"
	"time"
)

func TestAppendBoundsHistory(t *testing.T) {
	t.Parallel()

	conv := NewConversationContext("c1", "u1", "insurance", "greeting", time.Now())
	for i := 0; i < 50; i++ {
		conv.Append(RoleUser, "msg", time.Now())
		if len(conv.History) > maxHistory {
			t.Fatalf("history exceeded bound after append %d: len=%d", i, len(conv.History))
		}
	}
	if len(conv.History) > maxHistory {
		t.Fatalf("final history exceeded bound: len=%d", len(conv.History))
	}
}

func TestAppendTruncatesToRecent(t *testing.T) {
	t.Parallel()

	conv := NewConversationContext("c1", "u1", "insurance", "greeting", time.Now())
	for i := 0; i < maxHistory; i++ {
		conv.Append(RoleUser, "old", time.Now())
	}
	conv.Append(RoleUser, "newest", time.Now())

	if got := len(conv.History); got != keepHistory {
		t.Fatalf("expected %d entries after truncation, got %d", keepHistory, got)
	}
	if last := conv.History[len(conv.History)-1].Content; last != "newest" {
		t.Fatalf("expected newest entry preserved, got %q", last)
	}
}

func TestRecentHistory(t *testing.T) {
	t.Parallel()

	conv := NewConversationContext("c1", "u1", "resort", "greeting", time.Now())
	for i := 0; i < 5; i++ {
		conv.Append(RoleUser, "m", time.Now())
	}

	if got := conv.RecentHistory(0); got != nil {
		t.Fatalf("expected nil for n=0, got %v", got)
	}
	if got := len(conv.RecentHistory(3)); got != 3 {
		t.Fatalf("expected 3 entries, got %d", got)
	}
	if got := len(conv.RecentHistory(10)); got != 5 {
		t.Fatalf("expected all 5 entries, got %d", got)
	}
}

func TestUserTurnsCountsUserRoleOnly(t *testing.T) {
	t.Parallel()

	conv := NewConversationContext("c1", "u1", "resort", "greeting", time.Now())
	conv.Append(RoleUser, "hi", time.Now())
	conv.Append(RoleAssistant, "hello", time.Now())
	conv.Append(RoleUser, "price?", time.Now())

	if got := conv.UserTurns(); got != 2 {
		t.Fatalf("expected 2 user turns, got %d", got)
	}
}

func TestMergeCustomerInfo(t *testing.T) {
	t.Parallel()

	conv := NewConversationContext("c1", "u1", "insurance", "greeting", time.Now())
	conv.MergeCustomerInfo(map[string]any{"name": "Mali", "age": 34})
	conv.MergeCustomerInfo(map[string]any{"age": 35, "phone": "081", "name": nil})

	if conv.CustomerInfo["name"] != "Mali" {
		t.Fatalf("nil value must not erase existing key, got %v", conv.CustomerInfo["name"])
	}
	if conv.CustomerInfo["age"] != 35 {
		t.Fatalf("re-supplied value must win, got %v", conv.CustomerInfo["age"])
	}
	if conv.CustomerInfo["phone"] != "081" {
		t.Fatalf("new key must be added, got %v", conv.CustomerInfo["phone"])
	}
}

func TestCloneIsolatesMutation(t *testing.T) {
	t.Parallel()

	conv := NewConversationContext("c1", "u1", "pension", "greeting", time.Now())
	conv.Append(RoleUser, "hi", time.Now())
	conv.SetBusinessScratch("pending_quote", []string{"age"})

	clone := conv.Clone()
	clone.Append(RoleAssistant, "hello", time.Now())
	clone.CustomerInfo["name"] = "changed"
	clone.BusinessLogic["pending_quote"] = nil
	clone.LeadScore = 42

	if len(conv.History) != 1 {
		t.Fatalf("clone append leaked into original: len=%d", len(conv.History))
	}
	if _, ok := conv.CustomerInfo["name"]; ok {
		t.Fatal("clone customer info write leaked into original")
	}
	if conv.BusinessLogic["pending_quote"] == nil {
		t.Fatal("clone scratch write leaked into original")
	}
	if conv.LeadScore != 0 {
		t.Fatalf("clone score write leaked into original: %v", conv.LeadScore)
	}
}
