package page

import (
	"context"
	"errors"
	"testing"
)

func TestSession_Lifecycle(t *testing.T) {
	s := NewSession(&fakeService{results: results(1), total: 1}, "", discard)

	if _, err := s.SearchPage(10); !errors.Is(err, ErrNotMounted) {
		t.Errorf("expected ErrNotMounted, got %v", err)
	}

	if err := s.Mount(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Mount(); err == nil {
		t.Errorf("expected error on double mount")
	}

	sp, err := s.SearchPage(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sp.Navigate(context.Background(), "/search?q=a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.CrawlerPage(CrawlerOptions{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if c, err := s.Classifier(); err != nil || c == nil {
		t.Errorf("expected classifier hook, got %v", err)
	}
	if i, err := s.Indexer(); err != nil || i == nil {
		t.Errorf("expected indexer hook, got %v", err)
	}

	s.Unmount()
	if err := sp.Retry(context.Background()); err == nil {
		t.Errorf("expected closed hook error after unmount")
	}
	if _, err := s.Classifier(); !errors.Is(err, ErrNotMounted) {
		t.Errorf("expected ErrNotMounted after unmount")
	}
	s.Unmount()
}

func TestSession_Theme(t *testing.T) {
	s := NewSession(&fakeService{}, "", discard)
	if s.Theme() != ThemeSystem {
		t.Errorf("expected system theme by default")
	}
	if s.ToggleTheme() != ThemeDark || s.ToggleTheme() != ThemeLight || s.ToggleTheme() != ThemeDark {
		t.Errorf("unexpected toggle sequence")
	}
	s.SetTheme(ThemeLight)
	if s.Theme() != ThemeLight {
		t.Errorf("SetTheme did not apply")
	}

	if _, err := ParseTheme("sepia"); err == nil {
		t.Errorf("expected error for unknown theme")
	}
	if th, _ := ParseTheme(" Dark "); th != ThemeDark {
		t.Errorf("expected dark, got %q", th)
	}
}
