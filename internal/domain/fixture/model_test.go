package fixture

import "testing"

func TestStatusHelpers(t *testing.T) {
	cases := []struct {
		status   string
		live     bool
		finished bool
	}{
		{"1H", true, false},
		{" ht ", true, false},
		{"LIVE", true, false},
		{"FT", false, true},
		{"pen", false, true},
		{"NS", false, false},
		{"", false, false},
	}
	for _, tc := range cases {
		f := Fixture{Status: tc.status}
		if f.IsLive() != tc.live || f.IsFinished() != tc.finished {
			t.Fatalf("status %q: live=%v finished=%v", tc.status, f.IsLive(), f.IsFinished())
		}
	}
}

func TestStatusGroup(t *testing.T) {
	if got := StatusGroup("Finished").Statuses(); len(got) != 3 {
		t.Fatalf("unexpected finished statuses: %v", got)
	}
	if got := StatusGroup("unknown").Statuses(); got != nil {
		t.Fatalf("expected nil statuses, got %v", got)
	}

	live := GroupLive.Statuses()
	live[0] = "XX"
	if GroupLive.Statuses()[0] != StatusLive {
		t.Fatalf("statuses must be copied")
	}
}
