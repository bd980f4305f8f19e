package history

import (
	"context"
	"testing"

	_ "modernc.org/sqlite"
)

func TestRecordAndList(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	entries := []Entry{
		{ID: "cap_1", URL: "https://example.com/a", Phase: "completed", Frames: 4,
			Width: 800, Height: 2850, OutputPath: "captures/a.png", DurationMs: 1200, CreatedAt: 100},
		{ID: "cap_2", URL: "https://example.com/b", Phase: "error",
			Error: "capture failed: tab crashed", DurationMs: 300, CreatedAt: 200},
		{ID: "cap_3", URL: "https://example.com/c", Phase: "completed", Frames: 1,
			Width: 800, Height: 600, OutputPath: "captures/c.pdf", DurationMs: 800, CreatedAt: 300},
	}
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	// Newest first.
	if got[0].ID != "cap_3" || got[1].ID != "cap_2" || got[2].ID != "cap_1" {
		t.Errorf("order = %s, %s, %s; want cap_3, cap_2, cap_1", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[1].Error != "capture failed: tab crashed" {
		t.Errorf("error column = %q", got[1].Error)
	}
	if got[2].Width != 800 || got[2].Height != 2850 {
		t.Errorf("dims = %dx%d, want 800x2850", got[2].Width, got[2].Height)
	}
}

func TestListLimit(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		e := Entry{
			ID:        string(rune('a' + i)),
			URL:       "https://example.com",
			Phase:     "completed",
			CreatedAt: int64(i),
		}
		if err := s.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].CreatedAt != 4 || got[1].CreatedAt != 3 {
		t.Errorf("limit did not keep the newest entries: %+v", got)
	}
}

func TestRecordReplacesExisting(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	if err := s.Record(ctx, Entry{ID: "cap_1", URL: "https://example.com", Phase: "capturing", CreatedAt: 10}); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, Entry{ID: "cap_1", URL: "https://example.com", Phase: "completed", Frames: 3, CreatedAt: 10}); err != nil {
		t.Fatal(err)
	}

	got, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0].Phase != "completed" || got[0].Frames != 3 {
		t.Errorf("replace did not take: %+v", got[0])
	}
}

func TestListEmpty(t *testing.T) {
	s := OpenMemory(t)
	got, err := s.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d entries, want 0", len(got))
	}
}
