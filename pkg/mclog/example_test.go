package mclog_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mclog/mclog-go/pkg/mclog"
	"github.com/mclog/mclog-go/pkg/mclog/event"
	"github.com/mclog/mclog-go/pkg/mclog/logline"
)

// ExampleAggregate demonstrates a batch pass over a server's logs directory.
func ExampleAggregate() {
	result, err := mclog.Aggregate(context.Background(),
		mclog.WithLogDir("/srv/minecraft/logs"),
	)
	if err != nil {
		log.Fatal(err)
	}

	for _, kind := range result.Kinds() {
		fmt.Printf("%s: %d events\n", kind, len(result.Events[kind]))
	}
	for _, warn := range result.Warnings {
		log.Printf("warning: %v", warn)
	}
}

// ExampleEvents demonstrates streaming events instead of collecting them.
func ExampleEvents() {
	ctx := context.Background()

	for ev, err := range mclog.Events(ctx,
		mclog.WithIncludeKinds(event.Chat),
	) {
		if err != nil {
			log.Printf("warning: %v", err)
			continue
		}
		fmt.Printf("[%s] <%s> %s\n",
			ev.Timestamp.Format("15:04:05"), ev.Player, ev.Message)
	}
}

// ExampleWithMatcher demonstrates extending the built-in matchers with a
// custom one.
func ExampleWithMatcher() {
	seen := mclog.MatcherFunc(func(_ context.Context, l logline.Line) (mclog.MatchResult, error) {
		const marker = "Villager trade completed by "
		if !strings.HasPrefix(l.Body, marker) {
			return mclog.MatchResult{}, nil
		}
		ev := event.Event{
			Kind:      "trade",
			Timestamp: l.Timestamp,
			Player:    strings.TrimPrefix(l.Body, marker),
		}
		return mclog.MatchResult{Event: ev, Matched: true}, nil
	})

	result, err := mclog.Aggregate(context.Background(),
		mclog.WithLogDir("/srv/minecraft/logs"),
		mclog.WithMatcher("trade", seen),
	)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("trades: %d\n", len(result.Events["trade"]))
}

// ExampleMatchLine demonstrates matching a single log line.
func ExampleMatchLine() {
	line := "[18:40:41] [Server thread/INFO]: Alice joined the game"

	ev, err := mclog.MatchLine(line)
	if err != nil {
		log.Printf("match error: %v", err)
		return
	}

	if ev == nil {
		// Line doesn't carry any known event
		fmt.Println("Not a recognized event")
		return
	}

	fmt.Printf("Kind: %s\n", ev.Kind)
	fmt.Printf("Player: %s\n", ev.Player)
	// Output:
	// Kind: join_leave
	// Player: Alice
}

// ExampleMatchLine_death demonstrates matching a death message.
func ExampleMatchLine_death() {
	line := "[19:02:10] [Server thread/INFO]: Alice was slain by Zombie"

	ev, err := mclog.MatchLine(line)
	if err != nil {
		log.Printf("match error: %v", err)
		return
	}

	if ev != nil {
		fmt.Printf("Kind: %s\n", ev.Kind)
		fmt.Printf("Cause: %s\n", ev.Cause)
		fmt.Printf("Killer: %s\n", ev.Killer)
	}
	// Output:
	// Kind: death
	// Cause: slain by Zombie
	// Killer: Zombie
}
