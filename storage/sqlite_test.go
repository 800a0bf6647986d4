package storage

import "testing"

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProfileRoundTrip(t *testing.T) {
	s := openTest(t)

	if got := s.DisplayName(); got != "" {
		t.Fatalf("fresh store name = %q", got)
	}
	s.SaveDisplayName("tester")
	if got := s.DisplayName(); got != "tester" {
		t.Fatalf("name = %q, want tester", got)
	}

	s.SaveRoomCode("ROOM1")
	if got := s.RoomCode(); got != "ROOM1" {
		t.Fatalf("room code = %q, want ROOM1", got)
	}
	s.ClearRoomCode()
	if got := s.RoomCode(); got != "" {
		t.Fatalf("room code not cleared: %q", got)
	}
}

func TestRecordRunTrimsToCap(t *testing.T) {
	s := openTest(t)

	for i := 0; i < LeaderboardCap+5; i++ {
		s.RecordRun("tester", i*10, 60)
	}

	runs := s.TopRuns(100)
	if len(runs) != LeaderboardCap {
		t.Fatalf("runs = %d, want %d", len(runs), LeaderboardCap)
	}
	// Best score first, and the lowest 5 were trimmed.
	if runs[0].Score != (LeaderboardCap+4)*10 {
		t.Fatalf("top score = %d", runs[0].Score)
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].Score > runs[i-1].Score {
			t.Fatalf("runs not sorted: %v", runs)
		}
	}
	if last := runs[len(runs)-1].Score; last != 50 {
		t.Fatalf("worst kept score = %d, want 50", last)
	}
}

func TestTopRunsLimit(t *testing.T) {
	s := openTest(t)
	s.RecordRun("a", 1, 10)
	s.RecordRun("b", 2, 20)
	s.RecordRun("c", 3, 30)

	runs := s.TopRuns(2)
	if len(runs) != 2 || runs[0].Name != "c" || runs[1].Name != "b" {
		t.Fatalf("top 2 = %v", runs)
	}
}
