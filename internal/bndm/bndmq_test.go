package bndm

import (
	"strings"
	"testing"
)

func TestBNDMqScenarioS1(t *testing.T) {
	m, err := NewBNDMq([]byte("ACG"), 2)
	if err != nil {
		t.Fatalf("NewBNDMq: %v", err)
	}
	got := m.FindAll([]byte("ACGACGACG"))
	want := []int{0, 3, 6}
	if !equalInts(got, want) {
		t.Errorf("FindAll = %v, want %v", got, want)
	}
}

func TestBNDMqScenarioS2(t *testing.T) {
	m, err := NewBNDMq([]byte("abc"), 2)
	if err != nil {
		t.Fatalf("NewBNDMq: %v", err)
	}
	got := m.FindAll([]byte("aabcabcabc"))
	want := []int{1, 4, 7}
	if !equalInts(got, want) {
		t.Errorf("FindAll = %v, want %v", got, want)
	}
}

func TestBNDMqPatternLongerThanText(t *testing.T) {
	m, err := NewBNDMq([]byte("ACGTACGT"), 3)
	if err != nil {
		t.Fatalf("NewBNDMq: %v", err)
	}
	if m.FindMatch([]byte("ACG")) {
		t.Errorf("FindMatch on shorter text returned true")
	}
	if got := m.FindAll([]byte("ACG")); len(got) != 0 {
		t.Errorf("FindAll on shorter text = %v, want empty", got)
	}
}

func TestBNDMqEmptyText(t *testing.T) {
	m, err := NewBNDMq([]byte("A"), 1)
	if err != nil {
		t.Fatalf("NewBNDMq: %v", err)
	}
	if got := m.FindAll(nil); len(got) != 0 {
		t.Errorf("FindAll(nil) = %v, want empty", got)
	}
}

func TestBNDMqPatternEqualsText(t *testing.T) {
	m, err := NewBNDMq([]byte("ACGT"), 2)
	if err != nil {
		t.Fatalf("NewBNDMq: %v", err)
	}
	got := m.FindAll([]byte("ACGT"))
	want := []int{0}
	if !equalInts(got, want) {
		t.Errorf("FindAll = %v, want %v", got, want)
	}
}

func TestBNDMqConstructorErrors(t *testing.T) {
	if _, err := NewBNDMq(nil, 1); err != ErrEmptyPattern {
		t.Errorf("NewBNDMq(nil, 1) = %v, want ErrEmptyPattern", err)
	}
	if _, err := NewBNDMq([]byte("AC"), 0); err != ErrInvalidQGramLength {
		t.Errorf("NewBNDMq q=0 = %v, want ErrInvalidQGramLength", err)
	}
	if _, err := NewBNDMq([]byte("AC"), 3); err != ErrInvalidQGramLength {
		t.Errorf("NewBNDMq q>len = %v, want ErrInvalidQGramLength", err)
	}
}

func TestBNDMqFindIterMatchesFindAll(t *testing.T) {
	m, err := NewBNDMq([]byte("GATTACA"), 3)
	if err != nil {
		t.Fatalf("NewBNDMq: %v", err)
	}
	text := []byte("GATTACAGATTACAXGATTACA")
	want := m.FindAll(text)
	it := m.FindIter(text)
	var got []int
	for {
		pos, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, pos)
	}
	if !equalInts(got, want) {
		t.Errorf("FindIter = %v, want %v (from FindAll)", got, want)
	}
}

// naiveFindAll is a brute-force reference search used to check the universal
// law that BNDMq agrees with a naive scan on arbitrary inputs.
func naiveFindAll(pattern, text []byte) []int {
	var out []int
	if len(pattern) == 0 || len(pattern) > len(text) {
		return out
	}
	for i := 0; i+len(pattern) <= len(text); i++ {
		if string(text[i:i+len(pattern)]) == string(pattern) {
			out = append(out, i)
		}
	}
	return out
}

// Universal law 2 from the spec: matcher equivalence vs naive scan.
func TestBNDMqMatchesNaiveScan(t *testing.T) {
	cases := []struct {
		pattern, text string
		q             int
	}{
		{"ACG", strings.Repeat("ACGACGACG", 3), 2},
		{"AAAA", "AAAAAAAAAA", 2},
		{"ACGT", "TTTTTTTTTT", 2},
		{"GATTACA", "AGATTACAGATTACAAGATTACAG", 3},
		{"N", "ACGTNACGTNNN", 1},
	}
	for _, c := range cases {
		m, err := NewBNDMq([]byte(c.pattern), c.q)
		if err != nil {
			t.Fatalf("NewBNDMq(%q, %d): %v", c.pattern, c.q, err)
		}
		got := m.FindAll([]byte(c.text))
		want := naiveFindAll([]byte(c.pattern), []byte(c.text))
		if !equalInts(got, want) {
			t.Errorf("pattern %q text %q: FindAll = %v, want %v", c.pattern, c.text, got, want)
		}
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
