package tutor

import "strings"

// bannedPhrases are refused before any routing happens.
var bannedPhrases = []string{"build a bomb", "self harm", "suicide", "harm others"}

// RefusalMessage is shown instead of a reply when a message is refused.
const RefusalMessage = "I can’t help with that. If you’re in immediate danger, please contact local emergency services."

// IsBanned reports whether text contains a banned phrase, ignoring case.
func IsBanned(text string) bool {
	return containsAny(strings.ToLower(text), bannedPhrases)
}
