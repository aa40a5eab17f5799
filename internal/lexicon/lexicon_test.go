package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/wnli/internal/model"
)

func TestEnglishInflector_IsSingular(t *testing.T) {
	inf := NewEnglishInflector()

	tests := []struct {
		word     string
		singular bool
	}{
		{"trophy", true},
		{"Trophy", true},
		{"suitcase", true},
		{"demonstrators", false},
		{"councilmen", false},
		{"firemen", false},
		{"children", false},
		{"people", false},
		{"They", false},
		{"police", false},
		{"bus", true},
		{"glass", true},
		{"analysis", true},
		{"specimen", true},
		{"semen", true},
		{"boxes", false},
		{"news", true},
		{"octopi", false},
		{"James", true},
		{"thomas", true},
		{"charles", true},
		{"lucas", true},
		{"carlos", true},
		{"", true},
	}

	for _, tt := range tests {
		if got := inf.IsSingular(tt.word); got != tt.singular {
			t.Errorf("IsSingular(%q) = %v, want %v", tt.word, got, tt.singular)
		}
	}
}

func TestEnglishInflector_AgreesWithDefaultTable(t *testing.T) {
	table, err := DefaultTable()
	if err != nil {
		t.Fatalf("DefaultTable failed: %v", err)
	}
	inf := NewEnglishInflector()

	for word, p := range table.entries {
		wantSingular := p.Category() != model.CategoryPlural
		if got := inf.IsSingular(word); got != wantSingular {
			t.Errorf("IsSingular(%q) = %v, but the table maps it to %s", word, got, p)
		}
	}
}

func TestEnglishInflector_Overrides(t *testing.T) {
	inf := NewEnglishInflector()

	inf.AddSingular("Kirilovs")
	if !inf.IsSingular("kirilovs") {
		t.Error("expected pinned singular to win over the -s rule")
	}

	inf.AddPlural("kirilovs")
	if inf.IsSingular("kirilovs") {
		t.Error("expected later AddPlural to replace the singular pin")
	}
}

func TestNewInflectorFor(t *testing.T) {
	table := NewStaticTable(map[string]model.Pronoun{
		"Athos":  model.PronounHe,
		"sheep":  model.PronounThey,
		"gizmos": model.PronounIt,
	})
	inf := NewInflectorFor(table)

	if !inf.IsSingular("athos") {
		t.Error("expected athos (he) to be singular")
	}
	if !inf.IsSingular("gizmos") {
		t.Error("expected gizmos (it) to be singular")
	}
	if inf.IsSingular("sheep") {
		t.Error("expected sheep (they) to be plural")
	}
	if inf.IsSingular("dogs") {
		t.Error("expected words outside the table to follow the rules")
	}
}

func TestDefaultTable(t *testing.T) {
	table, err := DefaultTable()
	if err != nil {
		t.Fatalf("DefaultTable failed: %v", err)
	}
	if table.Len() == 0 {
		t.Fatal("expected a non-empty built-in table")
	}

	checks := map[string]model.Pronoun{
		"trophy":        model.PronounIt,
		"man":           model.PronounHe,
		"woman":         model.PronounShe,
		"teacher":       model.PronounPerson,
		"demonstrators": model.PronounThey,
		"they":          model.PronounThey,
	}
	for word, want := range checks {
		got, ok := table.Lookup(word)
		if !ok {
			t.Errorf("expected %q in table", word)
			continue
		}
		if got != want {
			t.Errorf("Lookup(%q) = %s, want %s", word, got, want)
		}
	}

	if _, ok := table.Lookup("xylophonist"); ok {
		t.Error("expected unknown word to be missing")
	}
}

func TestParseTable_UnknownPronoun(t *testing.T) {
	_, err := ParseTable([]byte("xe:\n  - someone\n"))
	if err == nil {
		t.Error("expected error for unknown pronoun key")
	}
}

func TestParseTable_ConflictingEntries(t *testing.T) {
	_, err := ParseTable([]byte("he:\n  - sam\nshe:\n  - Sam\n"))
	if err == nil {
		t.Error("expected error for word listed under two pronouns")
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pronouns.yaml")
	if err := os.WriteFile(path, []byte("it:\n  - Widget\nperson:\n  - clerk\n"), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	if p, ok := table.Lookup("widget"); !ok || p != model.PronounIt {
		t.Errorf("expected widget -> it, got %s (%v)", p, ok)
	}
	if table.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", table.Len())
	}

	if _, err := LoadTable(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	builtin, err := LoadTable("")
	if err != nil || builtin.Len() == 0 {
		t.Errorf("expected built-in table for empty path, got %v", err)
	}
}
