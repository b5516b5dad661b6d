package worker_test

import (
	"fmt"
	"reflect"
	"testing"

	"sorcerer/pkg/worker"
)

func TestChatLog_EvictsWholeTurns(t *testing.T) {
	l := worker.NewChatLog(6)
	for i := 1; i <= 5; i++ {
		l.AppendTurn(fmt.Sprintf("req %d", i), fmt.Sprintf("resp %d", i))
	}

	want := []string{"req 3", "resp 3", "req 4", "resp 4", "req 5", "resp 5"}
	if got := l.Last(0); !reflect.DeepEqual(got, want) {
		t.Errorf("Last(0) = %v, want %v", got, want)
	}
}

func TestChatLog_OddCapacityHoldsWholeTurns(t *testing.T) {
	l := worker.NewChatLog(5)
	for i := 0; i < 4; i++ {
		l.AppendTurn("q", "a")
	}
	if l.Len() != 4 {
		t.Errorf("Len = %d, want 4", l.Len())
	}
	if got := l.Last(0); got[0] != "q" {
		t.Errorf("log must start on a request line: %v", got)
	}
}

func TestChatLog_Last(t *testing.T) {
	l := worker.NewChatLog(100)
	l.AppendTurn("a", "b")
	l.AppendTurn("c", "d")

	tests := []struct {
		n    int
		want []string
	}{
		{0, []string{"a", "b", "c", "d"}},
		{1, []string{"d"}},
		{3, []string{"b", "c", "d"}},
		{4, []string{"a", "b", "c", "d"}},
		{50, []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		if got := l.Last(tt.n); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Last(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestChatLog_LastIsACopy(t *testing.T) {
	l := worker.NewChatLog(4)
	l.AppendTurn("a", "b")
	got := l.Last(0)
	got[0] = "mutated"
	if l.Last(0)[0] != "a" {
		t.Error("Last must not alias the log")
	}
}

func TestChatLog_EmptyLast(t *testing.T) {
	l := worker.NewChatLog(4)
	if got := l.Last(0); len(got) != 0 {
		t.Errorf("Last on empty log = %v", got)
	}
}
