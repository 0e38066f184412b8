package bound

import "testing"

func TestParseRoundTrip(t *testing.T) {
	cases := []string{"2018-07-07", "2015-10-20", "2019-05-01"}
	for _, s := range cases {
		b, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if !b.IsDate() {
			t.Fatalf("Parse(%q): expected a date bound", s)
		}
		if got := b.String(); got != s {
			t.Errorf("round trip: got %q, want %q", got, s)
		}
	}
}

func TestParseCommitFallback(t *testing.T) {
	cases := []string{"a1b2c3d", "master", "refs/tags/1.0.0", "not-a-date"}
	for _, s := range cases {
		b, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if !b.IsCommit() {
			t.Fatalf("Parse(%q): expected a commit bound", s)
		}
		if got := b.Commit(); got != s {
			t.Errorf("Commit(): got %q, want %q", got, s)
		}
		if got := b.String(); got != s {
			t.Errorf("String(): got %q, want %q", got, s)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Fatal("Parse(\"\"): expected error")
	}
}

func TestSameKind(t *testing.T) {
	d1 := MustParse("2018-07-07")
	d2 := MustParse("2019-05-01")
	c1 := MustParse("master")
	c2 := MustParse("deadbeef")
	if !SameKind(d1, d2) {
		t.Error("two dates should be SameKind")
	}
	if !SameKind(c1, c2) {
		t.Error("two commits should be SameKind")
	}
	if SameKind(d1, c1) {
		t.Error("a date and a commit should not be SameKind")
	}
}

func TestNewDateTruncatesToDay(t *testing.T) {
	d, err := Parse("2018-07-07")
	if err != nil {
		t.Fatal(err)
	}
	again := NewDate(d.Date())
	if again.String() != "2018-07-07" {
		t.Errorf("NewDate did not round-trip: %s", again.String())
	}
}
