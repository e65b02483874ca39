package rules

import (
	"testing"

	"github.com/agenium/postgate/internal/model"
)

func TestBroadcastKindsRequireBrand(t *testing.T) {
	required := []model.ActionKind{model.KindPost, model.KindSubmit, model.KindDiscussion, model.KindIssue}
	for _, kind := range required {
		if !RequiresBrandMention(kind) {
			t.Errorf("expected %s to require a brand mention", kind)
		}
	}
	exempt := []model.ActionKind{model.KindReply, model.KindComment}
	for _, kind := range exempt {
		if RequiresBrandMention(kind) {
			t.Errorf("expected %s to be exempt from brand compliance", kind)
		}
	}
}

func TestBrandMentionCaseInsensitive(t *testing.T) {
	keywords := []string{"agenium", "agent registry"}

	if !HasBrandMention("The AGENT REGISTRY is live.", keywords) {
		t.Error("expected case-insensitive substring match")
	}
	if HasBrandMention("Totally unrelated announcement.", keywords) {
		t.Error("expected no match without a keyword")
	}
	if HasBrandMention("anything", nil) {
		t.Error("empty keyword list must never match")
	}
}
