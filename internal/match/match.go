// Package match implements the built-in event matchers for Minecraft server
// log bodies.
package match

import (
	"strings"

	"github.com/mclog/mclog-go/pkg/mclog/event"
	"github.com/mclog/mclog-go/pkg/mclog/logline"
)

// eligible reports whether built-in matchers should consider the line at all.
// Mirrors the prefix the server writes player-facing messages under: an info
// (or tag-less) line from the dedicated server logger. Continuation lines and
// warnings never carry the modeled phrasings.
func eligible(l logline.Line) bool {
	if l.Category != "" && l.Category != logline.CategoryInfo {
		return false
	}
	if l.Logger != "" && !serverLogger(l.Logger) {
		return false
	}
	return true
}

// serverLogger reports whether a Forge-era logger tag belongs to the server
// itself rather than a mod or network handler.
func serverLogger(name string) bool {
	return strings.Contains(name, "DedicatedServer") || strings.Contains(name, "MinecraftServer")
}

// JoinLeave matches "X joined the game" / "X left the game" bodies.
func JoinLeave(l logline.Line) (event.Event, bool) {
	if !eligible(l) {
		return event.Event{}, false
	}
	if m := joinPattern.FindStringSubmatch(l.Body); m != nil {
		ev, err := event.NewJoinLeave(l.Timestamp, m[1], event.Joined)
		if err != nil {
			return event.Event{}, false
		}
		return ev, true
	}
	if m := leavePattern.FindStringSubmatch(l.Body); m != nil {
		ev, err := event.NewJoinLeave(l.Timestamp, m[1], event.Left)
		if err != nil {
			return event.Event{}, false
		}
		return ev, true
	}
	return event.Event{}, false
}

// Advancement matches the three advancement phrasings. The identifier text is
// captured verbatim.
func Advancement(l logline.Line) (event.Event, bool) {
	if !eligible(l) {
		return event.Event{}, false
	}
	m := advancementPattern.FindStringSubmatch(l.Body)
	if m == nil {
		return event.Event{}, false
	}

	var typ event.AdvancementType
	switch m[2] {
	case "made the advancement":
		typ = event.AdvancementTask
	case "reached the goal":
		typ = event.AdvancementGoal
	case "completed the challenge":
		typ = event.AdvancementChallenge
	default:
		return event.Event{}, false
	}

	ev, err := event.NewAdvancement(l.Timestamp, m[1], m[3], typ)
	if err != nil {
		return event.Event{}, false
	}
	return ev, true
}

// Chat matches "<X> message" bodies. The message is kept verbatim, including
// angle brackets and surrounding whitespace, minus only the single space
// after the closing name bracket.
func Chat(l logline.Line) (event.Event, bool) {
	if !eligible(l) {
		return event.Event{}, false
	}
	m := chatPattern.FindStringSubmatch(l.Body)
	if m == nil {
		return event.Event{}, false
	}
	ev, err := event.NewChat(l.Timestamp, m[1], m[2])
	if err != nil {
		return event.Event{}, false
	}
	return ev, true
}

// Death matches the registered death phrasings and falls back to capturing
// any remaining "<player> <text>" body as an unclassified cause. The fallback
// only runs for lines on the main server thread, where the server announces
// deaths.
func Death(l logline.Line) (event.Event, bool) {
	if !eligible(l) {
		return event.Event{}, false
	}
	if l.Thread != "" && l.Thread != "Server thread" {
		return event.Event{}, false
	}

	if m := deathByPattern.FindStringSubmatch(l.Body); m != nil {
		ev, err := event.NewDeath(l.Timestamp, m[1], m[2], m[3])
		if err != nil {
			return event.Event{}, false
		}
		return ev, true
	}

	if m := deathPlainPattern.FindStringSubmatch(l.Body); m != nil {
		ev, err := event.NewDeath(l.Timestamp, m[1], m[2], "")
		if err != nil {
			return event.Event{}, false
		}
		return ev, true
	}

	m := deathFallbackPattern.FindStringSubmatch(l.Body)
	if m == nil {
		return event.Event{}, false
	}
	if notPlayers[m[1]] {
		return event.Event{}, false
	}
	for _, prefix := range notDeathBodies {
		if strings.HasPrefix(m[2], prefix) {
			return event.Event{}, false
		}
	}
	ev, err := event.NewDeath(l.Timestamp, m[1], m[2], "")
	if err != nil {
		return event.Event{}, false
	}
	return ev, true
}
