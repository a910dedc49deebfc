package console

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestDocument_InsertAndText(t *testing.T) {
	tests := []struct {
		name    string
		inserts []struct {
			offset int
			text   string
		}
		expected string
	}{
		{
			name: "append only",
			inserts: []struct {
				offset int
				text   string
			}{{0, "hello"}, {5, " world"}},
			expected: "hello world",
		},
		{
			name: "insert at head",
			inserts: []struct {
				offset int
				text   string
			}{{0, "world"}, {0, "hello "}},
			expected: "hello world",
		},
		{
			name: "insert mid-document",
			inserts: []struct {
				offset int
				text   string
			}{{0, "held"}, {2, "llo wor"}},
			expected: "hello world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDocument()
			for _, in := range tt.inserts {
				if err := d.Insert(in.offset, in.text, nil); err != nil {
					t.Fatalf("Insert(%d, %q) returned error: %v", in.offset, in.text, err)
				}
			}
			if got := d.Text(); got != tt.expected {
				t.Errorf("Text() = %q, expected %q", got, tt.expected)
			}
			if d.Len() != len(tt.expected) {
				t.Errorf("Len() = %d, expected %d", d.Len(), len(tt.expected))
			}
		})
	}
}

func TestDocument_InsertOutOfRange(t *testing.T) {
	d := NewDocument()
	if err := d.Insert(1, "x", nil); err != ErrOffsetRange {
		t.Errorf("Insert past end returned %v, expected ErrOffsetRange", err)
	}
	if err := d.Insert(-1, "x", nil); err != ErrOffsetRange {
		t.Errorf("Insert at -1 returned %v, expected ErrOffsetRange", err)
	}
	if d.Len() != 0 {
		t.Errorf("failed insert mutated document, Len() = %d", d.Len())
	}
}

func TestDocument_Remove(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		offset   int
		length   int
		expected string
		wantErr  bool
	}{
		{name: "from head", initial: "abcdef", offset: 0, length: 2, expected: "cdef"},
		{name: "from tail", initial: "abcdef", offset: 4, length: 2, expected: "abcd"},
		{name: "middle", initial: "abcdef", offset: 2, length: 2, expected: "abef"},
		{name: "everything", initial: "abcdef", offset: 0, length: 6, expected: ""},
		{name: "zero length", initial: "abc", offset: 1, length: 0, expected: "abc"},
		{name: "past end", initial: "abc", offset: 2, length: 5, expected: "abc", wantErr: true},
		{name: "negative offset", initial: "abc", offset: -1, length: 1, expected: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDocument()
			if err := d.Insert(0, tt.initial, nil); err != nil {
				t.Fatalf("seeding document: %v", err)
			}
			err := d.Remove(tt.offset, tt.length)
			if tt.wantErr {
				if err != ErrOffsetRange {
					t.Errorf("Remove returned %v, expected ErrOffsetRange", err)
				}
			} else if err != nil {
				t.Errorf("Remove returned error: %v", err)
			}
			if got := d.Text(); got != tt.expected {
				t.Errorf("Text() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestDocument_RemoveSpanningRuns(t *testing.T) {
	d := NewDocument()
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	if err := d.Insert(0, "red", &red); err != nil {
		t.Fatal(err)
	}
	if err := d.Insert(3, "plain", nil); err != nil {
		t.Fatal(err)
	}
	if err := d.Remove(2, 2); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if got := d.Text(); got != "relain" {
		t.Errorf("Text() = %q, expected %q", got, "relain")
	}
	runs := d.Runs()
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs after spanning removal, got %d", len(runs))
	}
	if runs[0].Style != &red || runs[1].Style != nil {
		t.Error("styles not preserved across spanning removal")
	}
}

func TestDocument_StyledRuns(t *testing.T) {
	d := NewDocument()
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	if err := d.Insert(0, "a", &red); err != nil {
		t.Fatal(err)
	}
	if err := d.Insert(1, "b", &red); err != nil {
		t.Fatal(err)
	}
	if err := d.Insert(2, "c", nil); err != nil {
		t.Fatal(err)
	}

	runs := d.Runs()
	if len(runs) != 2 {
		t.Fatalf("expected same-style inserts to merge into 2 runs, got %d", len(runs))
	}
	if runs[0].Text != "ab" || runs[0].Style != &red {
		t.Errorf("first run = %+v, expected styled %q", runs[0], "ab")
	}
	if runs[1].Text != "c" || runs[1].Style != nil {
		t.Errorf("second run = %+v, expected unstyled %q", runs[1], "c")
	}
}

func TestDocument_ChangeNotifications(t *testing.T) {
	d := NewDocument()
	var changes []Change
	d.Subscribe(func(c Change) { changes = append(changes, c) })

	if err := d.Insert(0, "hello", nil); err != nil {
		t.Fatal(err)
	}
	if err := d.Insert(5, "!", nil); err != nil {
		t.Fatal(err)
	}
	if err := d.Remove(0, 2); err != nil {
		t.Fatal(err)
	}

	expected := []Change{
		{Offset: 0, Delta: 5, AtStart: true},
		{Offset: 5, Delta: 1, AtStart: false},
		{Offset: 0, Delta: -2, AtStart: true},
	}
	if len(changes) != len(expected) {
		t.Fatalf("got %d changes, expected %d", len(changes), len(expected))
	}
	for i, c := range changes {
		if c != expected[i] {
			t.Errorf("change %d = %+v, expected %+v", i, c, expected[i])
		}
	}
}

func TestDocument_Unsubscribe(t *testing.T) {
	d := NewDocument()
	calls := 0
	id := d.Subscribe(func(Change) { calls++ })

	if err := d.Insert(0, "a", nil); err != nil {
		t.Fatal(err)
	}
	if !d.Unsubscribe(id) {
		t.Error("Unsubscribe returned false for a live subscription")
	}
	if d.Unsubscribe(id) {
		t.Error("Unsubscribe returned true for a removed subscription")
	}
	if err := d.Insert(1, "b", nil); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("handler called %d times, expected 1", calls)
	}
}

func TestDocument_Clear(t *testing.T) {
	d := NewDocument()
	if err := d.Insert(0, "content", nil); err != nil {
		t.Fatal(err)
	}
	var got Change
	d.Subscribe(func(c Change) { got = c })

	d.Clear()
	if d.Len() != 0 || d.Text() != "" {
		t.Errorf("Clear left content: %q", d.Text())
	}
	want := Change{Offset: 0, Delta: -7, AtStart: true}
	if got != want {
		t.Errorf("Clear notified %+v, expected %+v", got, want)
	}

	// Clearing an empty document must not notify.
	got = Change{Offset: -1}
	d.Clear()
	if got.Offset != -1 {
		t.Error("Clear of empty document notified subscribers")
	}
}
