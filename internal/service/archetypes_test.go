package service

import (
	"errors"
	"testing"

	"github.com/softmind/personabot/internal/domain"
)

func TestLoadArchetypes(t *testing.T) {
	catalog, err := LoadArchetypes()
	if err != nil {
		t.Fatalf("LoadArchetypes() error = %v", err)
	}

	list := catalog.List()
	if len(list) < 4 {
		t.Fatalf("catalog has %d archetypes, want at least 4", len(list))
	}
	for _, a := range list {
		if a.Key == "" || a.Title == "" || a.Personality == "" {
			t.Errorf("archetype %+v incomplete", a)
		}
		if len(a.Needs) == 0 {
			t.Errorf("archetype %q has no needs", a.Key)
		}
	}

	sage, err := catalog.Get("sage")
	if err != nil {
		t.Fatalf("Get(sage) error = %v", err)
	}
	if sage.Title != "Sage" {
		t.Errorf("sage title = %q", sage.Title)
	}

	if _, err := catalog.Get("nonexistent"); !errors.Is(err, domain.ErrArchetypeUnknown) {
		t.Errorf("Get(nonexistent) err = %v, want ErrArchetypeUnknown", err)
	}
}
