package match

import "regexp"

// Player names follow the vanilla username rule: 1-16 word characters.
// All patterns anchor on the full message body.
var (
	// Matches: "Alice joined the game"
	// Captures: (1) player
	joinPattern = regexp.MustCompile(`^(\w{1,16}) joined the game$`)

	// Matches: "Alice left the game"
	// Captures: (1) player
	leavePattern = regexp.MustCompile(`^(\w{1,16}) left the game$`)

	// Matches: "Alice has made the advancement [Stone Age]"
	// Matches: "Alice has reached the goal [Sniper Duel]"
	// Matches: "Alice has completed the challenge [Beaconator [Deluxe]]"
	// Captures: (1) player, (2) phrasing, (3) advancement text (greedy, so
	// embedded brackets survive)
	advancementPattern = regexp.MustCompile(
		`^(\w{1,16}) has (made the advancement|reached the goal|completed the challenge) \[(.+)\]$`,
	)

	// Matches: "<Alice> hello there"
	// Matches: "<Alice> <3 everyone"
	// Captures: (1) player, (2) message (verbatim after the single
	// delimiting space)
	chatPattern = regexp.MustCompile(`^<(\w{1,16})> (.*)$`)

	// Matches: "Alice was slain by Zombie"
	// Matches: "Alice was shot by Skeleton using Bow"
	// Captures: (1) player, (2) cause without the leading "was", (3) killer
	deathByPattern = regexp.MustCompile(
		`^(\w{1,16}) was ((?:slain|shot|blown up|killed|fireballed|pummeled|impaled|squashed|struck|poked to death|stung to death|doomed to fall) by (.+?)(?: using .+)?)$`,
	)

	// Matches: "Alice drowned"
	// Matches: "Alice fell from a high place"
	// Matches: "Alice tried to swim in lava whilst trying to escape Zombie"
	// Captures: (1) player, (2) cause
	deathPlainPattern = regexp.MustCompile(
		`^(\w{1,16}) ((?:drowned|suffocated in a wall|starved to death|withered away|blew up|burned to death|went up in flames|walked into fire|tried to swim in lava|discovered the floor was lava|experienced kinetic energy|froze to death|fell from a high place|fell off a ladder|fell off some vines|fell out of the world|hit the ground too hard|died)(?: whilst .+)?)$`,
	)

	// Matches: "Alice went skydiving without a parachute" (any phrasing the
	// registered sets above do not know)
	// Captures: (1) player, (2) cause, verbatim
	deathFallbackPattern = regexp.MustCompile(`^(\w{1,16}) (.+)$`)
)

// notPlayers are first words of routine server messages that would otherwise
// look like a player name to the death fallback.
var notPlayers = map[string]bool{
	"Added":         true,
	"Applying":      true,
	"Automatic":     true,
	"Banned":        true,
	"Closing":       true,
	"Config":        true,
	"Default":       true,
	"Disconnecting": true,
	"Done":          true,
	"Found":         true,
	"Gave":          true,
	"Generating":    true,
	"Kicked":        true,
	"Killed":        true,
	"Loaded":        true,
	"Loading":       true,
	"Made":          true,
	"Opped":         true,
	"Preparing":     true,
	"Saved":         true,
	"Saving":        true,
	"Set":           true,
	"Showing":       true,
	"Starting":      true,
	"Stopping":      true,
	"Successfully":  true,
	"Summoned":      true,
	"Teleported":    true,
	"There":         true,
	"Time":          true,
	"UUID":          true,
	"Unbanned":      true,
	"Unknown":       true,
	"Use":           true,
	"Using":         true,
	"Whitelisted":   true,
	"You":           true,
}

// notDeathBodies are body remainders that name routine per-player server
// messages, not deaths. Checked as prefixes of the fallback cause.
var notDeathBodies = []string{
	"lost connection",
	"logged in with entity id",
	"moved too quickly",
	"moved wrongly",
}
