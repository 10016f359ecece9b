package filter

import "testing"

func TestMatchesGlobsNoPatternsMeansEverythingIncluded(t *testing.T) {
	if !matchesGlobs("a/b.txt", nil, nil) {
		t.Fatalf("expected pass-through with no globs configured")
	}
}

func TestMatchesGlobsRequiresIncludeMatch(t *testing.T) {
	if matchesGlobs("a/b.txt", []string{"docs/**"}, nil) {
		t.Fatalf("expected exclusion when no include glob matches")
	}
	if !matchesGlobs("docs/readme.md", []string{"docs/**"}, nil) {
		t.Fatalf("expected inclusion when an include glob matches")
	}
}

func TestMatchesGlobsExcludeTakesPrecedence(t *testing.T) {
	if matchesGlobs("docs/drafts/todo.md", []string{"docs/**"}, []string{"docs/drafts/**"}) {
		t.Fatalf("expected exclude glob to override a matching include glob")
	}
}
