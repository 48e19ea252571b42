package search

import (
	"errors"
	"fmt"
)

// Mode selects which search endpoint a Searcher uses.
type Mode string

const (
	ModeAuto     Mode = "auto"     // enhanced on cloud with legacy fallback, legacy elsewhere
	ModeEnhanced Mode = "enhanced" // enhanced endpoint only
	ModeLegacy   Mode = "legacy"   // legacy endpoint only
)

// ErrInvalidArgument is matched by errors caused by caller-supplied values.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidModeError reports a rejected search mode token.
type InvalidModeError struct {
	Token string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("Invalid search mode '%s'", e.Token)
}

// Is makes errors.Is(err, ErrInvalidArgument) report true.
func (e *InvalidModeError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// Modes returns all valid mode tokens.
func Modes() []string {
	return []string{string(ModeAuto), string(ModeEnhanced), string(ModeLegacy)}
}

// ParseMode returns the Mode for token. Matching is exact and case-sensitive.
func ParseMode(token string) (Mode, error) {
	switch m := Mode(token); m {
	case ModeAuto, ModeEnhanced, ModeLegacy:
		return m, nil
	default:
		return "", &InvalidModeError{Token: token}
	}
}
