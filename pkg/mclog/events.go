package mclog

import "github.com/mclog/mclog-go/pkg/mclog/event"

// Aliases into the event package, so typical callers only import mclog.

// Event is one extracted log event.
type Event = event.Event

// EventKind identifies an event family.
type EventKind = event.Kind

// Base event kinds.
const (
	KindJoinLeave   = event.JoinLeave
	KindAdvancement = event.Advancement
	KindDeath       = event.Death
	KindChat        = event.Chat
)

// Join/leave directions.
const (
	Joined = event.Joined
	Left   = event.Left
)

// BaseKinds returns the built-in kinds in canonical order.
func BaseKinds() []EventKind {
	return event.BaseKinds()
}
