package filter

import (
	"fmt"
	"strings"
)

// Action is the verdict a rule assigns to a matched item.
type Action int

const (
	// ActionNotify delivers the item through the notification channels.
	ActionNotify Action = iota
	// ActionIgnore stores the item but excludes it from all delivery.
	ActionIgnore
	// ActionDigestOnly withholds the item from immediate delivery and
	// surfaces it only in periodic digests.
	ActionDigestOnly
)

// Markers appended to an item's tags so downstream stages can tell how the
// item was classified without re-running the rules.
const (
	MarkerIgnored = "[IGNORED]"
	MarkerDigest  = "[DIGEST]"
)

func (a Action) String() string {
	switch a {
	case ActionNotify:
		return "notify"
	case ActionIgnore:
		return "ignore"
	case ActionDigestOnly:
		return "digest_only"
	default:
		return fmt.Sprintf("unknown(%d)", int(a))
	}
}

// ParseAction maps a rule file action string onto an Action. Casing is
// irrelevant so both "ignore" and "IGNORE" name the same verdict.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "notify":
		return ActionNotify, nil
	case "ignore":
		return ActionIgnore, nil
	case "digest_only":
		return ActionDigestOnly, nil
	default:
		return ActionNotify, fmt.Errorf("unknown action %q", s)
	}
}
