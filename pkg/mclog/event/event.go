// Package event defines the core Event type for Minecraft server log parsing.
//
// This package is separated from the main mclog package to avoid import cycles
// between pkg/mclog and internal/match.
package event

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Kind represents the kind of Minecraft server log event.
type Kind string

const (
	// JoinLeave indicates a player joined or left the server.
	// The Direction field distinguishes the two.
	JoinLeave Kind = "join_leave"

	// Advancement indicates a player earned an advancement, goal or challenge.
	Advancement Kind = "advancement"

	// Death indicates a player died.
	Death Kind = "death"

	// Chat indicates a player sent a chat message.
	Chat Kind = "chat"
)

// baseKinds is the canonical list of built-in event kinds, in the order the
// built-in matchers and exporters process them.
// Add new built-in kinds here when extending the matchers.
var baseKinds = []Kind{JoinLeave, Advancement, Death, Chat}

// BaseKinds returns the built-in event kinds in canonical order.
// Custom matchers may emit kinds outside this list.
func BaseKinds() []Kind {
	kinds := make([]Kind, len(baseKinds))
	copy(kinds, baseKinds)
	return kinds
}

// KindNames returns a sorted list of all built-in event kind names.
// This is the single source of truth for kind enumeration.
func KindNames() []string {
	names := make([]string, len(baseKinds))
	for i, k := range baseKinds {
		names[i] = string(k)
	}
	sort.Strings(names)
	return names
}

// kindByName maps lowercase string names to Kind for efficient lookup.
// Built once from baseKinds at package initialization.
var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(baseKinds))
	for _, k := range baseKinds {
		m[string(k)] = k
	}
	return m
}()

// ParseKind converts a string to a built-in Kind if valid.
// It is case-insensitive and trims leading/trailing whitespace.
// Returns the kind and true if found, zero value and false otherwise.
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	k, ok := kindByName[name]
	return k, ok
}

// Direction indicates whether a join/leave event is a join or a leave.
type Direction string

const (
	// Joined indicates the player joined the game.
	Joined Direction = "joined"

	// Left indicates the player left the game.
	Left Direction = "left"
)

// AdvancementType distinguishes the three vanilla advancement frames.
type AdvancementType string

const (
	// AdvancementTask is a regular advancement ("has made the advancement").
	AdvancementTask AdvancementType = "task"

	// AdvancementGoal is a goal ("has reached the goal").
	AdvancementGoal AdvancementType = "goal"

	// AdvancementChallenge is a challenge ("has completed the challenge").
	AdvancementChallenge AdvancementType = "challenge"
)

// Event represents a parsed Minecraft server log event.
type Event struct {
	// Kind is the event kind.
	Kind Kind `json:"kind"`

	// Timestamp is when the event occurred (local time from log).
	Timestamp time.Time `json:"timestamp"`

	// Player is the name of the player the event concerns.
	Player string `json:"player,omitempty"`

	// Direction says whether the player joined or left (join_leave events).
	Direction Direction `json:"direction,omitempty"`

	// Advancement is the advancement display text, verbatim (advancement events).
	Advancement string `json:"advancement,omitempty"`

	// AdvancementType is the advancement frame: task, goal or challenge.
	AdvancementType AdvancementType `json:"advancement_type,omitempty"`

	// Cause is the death cause text (death events).
	Cause string `json:"cause,omitempty"`

	// Killer is the killer name extracted from the cause, if any.
	Killer string `json:"killer,omitempty"`

	// Message is the chat message text, verbatim (chat events).
	Message string `json:"message,omitempty"`

	// Data holds extra captures from custom matchers.
	Data map[string]string `json:"data,omitempty"`

	// Raw is the original log line (only included if requested).
	Raw string `json:"raw,omitempty"`
}

// NewJoinLeave builds a validated join/leave event.
func NewJoinLeave(ts time.Time, player string, dir Direction) (Event, error) {
	if player == "" {
		return Event{}, fmt.Errorf("join_leave event: empty player name")
	}
	if dir != Joined && dir != Left {
		return Event{}, fmt.Errorf("join_leave event: invalid direction %q", dir)
	}
	return Event{Kind: JoinLeave, Timestamp: ts, Player: player, Direction: dir}, nil
}

// NewAdvancement builds a validated advancement event.
func NewAdvancement(ts time.Time, player, advancement string, typ AdvancementType) (Event, error) {
	if player == "" {
		return Event{}, fmt.Errorf("advancement event: empty player name")
	}
	if advancement == "" {
		return Event{}, fmt.Errorf("advancement event: empty advancement text")
	}
	switch typ {
	case AdvancementTask, AdvancementGoal, AdvancementChallenge:
	default:
		return Event{}, fmt.Errorf("advancement event: invalid type %q", typ)
	}
	return Event{Kind: Advancement, Timestamp: ts, Player: player, Advancement: advancement, AdvancementType: typ}, nil
}

// NewDeath builds a validated death event. Killer may be empty when the cause
// does not name one.
func NewDeath(ts time.Time, player, cause, killer string) (Event, error) {
	if player == "" {
		return Event{}, fmt.Errorf("death event: empty player name")
	}
	if cause == "" {
		return Event{}, fmt.Errorf("death event: empty cause")
	}
	return Event{Kind: Death, Timestamp: ts, Player: player, Cause: cause, Killer: killer}, nil
}

// NewChat builds a validated chat event. The message may be empty (a player
// can send a blank line) but the player name may not.
func NewChat(ts time.Time, player, message string) (Event, error) {
	if player == "" {
		return Event{}, fmt.Errorf("chat event: empty player name")
	}
	return Event{Kind: Chat, Timestamp: ts, Player: player, Message: message}, nil
}
