package series

import (
	"testing"

	"bidsprep/internal/dicomhdr"
)

func TestKeyFromHeaderDeterministic(t *testing.T) {
	h := dicomhdr.Header{
		SequenceName: "*tfl3d1_16ns",
		Protocol:     "T1 MPRAGE Sag",
		ImageType:    "ORIGINAL-PRIMARY-M-ND",
		SeriesNumber: 4,
	}

	a := KeyFromHeader(h)
	b := KeyFromHeader(h)
	if a != b {
		t.Fatalf("same header produced different keys: %v vs %v", a, b)
	}
	if a.Number != 4 {
		t.Errorf("Number = %d", a.Number)
	}
}

func TestKeyStringForm(t *testing.T) {
	k := Key{SequenceName: "epfid2d1_64", Protocol: "BOLD_rest", ImageType: "ORIGINAL-PRIMARY-M", Number: 12}
	want := "epfid2d1_64--BOLD_rest--ORIGINAL-PRIMARY-M--12"
	if got := k.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestKeyStringFillsUnknowns(t *testing.T) {
	k := Key{Number: 3}
	want := "unknown--unknown--unknown--3"
	if got := k.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSeriesNumberDistinguishesKeys(t *testing.T) {
	base := dicomhdr.Header{SequenceName: "tfl3d1", Protocol: "T1w", ImageType: "ORIGINAL"}
	run1 := base
	run1.SeriesNumber = 2
	run2 := base
	run2.SeriesNumber = 3

	if KeyFromHeader(run1) == KeyFromHeader(run2) {
		t.Fatal("different series numbers must produce distinct keys")
	}
}

func TestClean(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  T1 MPRAGE Sag  ", "T1_MPRAGE_Sag"},
		{"Résonance tête", "Resonance_tete"},
		{"a/b\\c", "a_b_c"},
		{"", ""},
		{"___", ""},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		if got := Clean(tc.in); got != tc.want {
			t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSetDedupesAndKeepsOrder(t *testing.T) {
	s := NewSet()
	k1 := Key{Protocol: "T1w", Number: 2}
	k2 := Key{Protocol: "BOLD", Number: 5}

	if !s.Add(k1) || !s.Add(k2) {
		t.Fatal("first Add must report true")
	}
	if s.Add(k1) {
		t.Fatal("duplicate Add must report false")
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d", s.Len())
	}

	keys := s.Keys()
	if keys[0] != k1 || keys[1] != k2 {
		t.Errorf("order not preserved: %v", keys)
	}
	if !s.Contains(k2) {
		t.Error("Contains(k2) = false")
	}
}
