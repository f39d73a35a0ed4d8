package filter

import (
	"testing"
	"time"

	"github.com/mclog/mclog-go/pkg/mclog/event"
)

func ts(h, m, s int) time.Time {
	return time.Date(2023, time.January, 2, h, m, s, 0, time.UTC)
}

func TestCompile_KindEquality(t *testing.T) {
	f, err := Compile(`Kind == "death"`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	death := event.Event{Kind: event.Death, Timestamp: ts(12, 0, 0), Player: "Alice", Cause: "drowned"}
	chat := event.Event{Kind: event.Chat, Timestamp: ts(12, 0, 5), Player: "Alice", Message: "hi"}

	if !f(death) {
		t.Error("death event should match")
	}
	if f(chat) {
		t.Error("chat event should not match")
	}
}

func TestCompile_CombinedFields(t *testing.T) {
	f, err := Compile(`Kind == "death" && Player == "Alice" && Killer != ""`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	tests := []struct {
		name string
		ev   event.Event
		want bool
	}{
		{
			name: "killed by mob",
			ev:   event.Event{Kind: event.Death, Player: "Alice", Cause: "slain by Zombie", Killer: "Zombie"},
			want: true,
		},
		{
			name: "environmental death",
			ev:   event.Event{Kind: event.Death, Player: "Alice", Cause: "drowned"},
			want: false,
		},
		{
			name: "other player",
			ev:   event.Event{Kind: event.Death, Player: "Bob", Cause: "slain by Zombie", Killer: "Zombie"},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f(tt.ev); got != tt.want {
				t.Errorf("filter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompile_RegexOperator(t *testing.T) {
	f, err := Compile(`Message matches "creeper"`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	hit := event.Event{Kind: event.Chat, Player: "Bob", Message: "watch out, creeper behind you"}
	miss := event.Event{Kind: event.Chat, Player: "Bob", Message: "all clear"}

	if !f(hit) {
		t.Error("message mentioning creeper should match")
	}
	if f(miss) {
		t.Error("unrelated message should not match")
	}
}

func TestCompile_TimestampMethods(t *testing.T) {
	f, err := Compile(`Timestamp.Hour() >= 18`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	evening := event.Event{Kind: event.Chat, Timestamp: ts(20, 15, 0)}
	morning := event.Event{Kind: event.Chat, Timestamp: ts(9, 0, 0)}

	if !f(evening) {
		t.Error("evening event should match")
	}
	if f(morning) {
		t.Error("morning event should not match")
	}
}

func TestCompile_DataAccess(t *testing.T) {
	f, err := Compile(`Kind == "raid" && Data["location"] == "village"`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	hit := event.Event{Kind: "raid", Data: map[string]string{"location": "village"}}
	miss := event.Event{Kind: "raid", Data: map[string]string{"location": "outpost"}}

	if !f(hit) {
		t.Error("matching data value should match")
	}
	if f(miss) {
		t.Error("other data value should not match")
	}
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := Compile(`Kind == `)
	if err == nil {
		t.Fatal("expected error for malformed expression")
	}
}

func TestCompile_NonBoolean(t *testing.T) {
	_, err := Compile(`1 + 2`)
	if err == nil {
		t.Fatal("expected error for non-boolean expression")
	}
}

func TestCompile_UnknownField(t *testing.T) {
	_, err := Compile(`Severity == "high"`)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestCompile_CustomKindPassthrough(t *testing.T) {
	// Kinds outside the base set filter like any other.
	f, err := Compile(`Kind == "raid_won"`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !f(event.Event{Kind: "raid_won"}) {
		t.Error("custom kind should match")
	}
	if f(event.Event{Kind: event.Death}) {
		t.Error("base kind should not match")
	}
}
