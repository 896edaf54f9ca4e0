package config

import (
	"fmt"
	"strings"
)

// ParseBool accepts true/yes/1 and false/no/0, case-insensitively.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", value)
	}
}

// Flag is a boolean setting decoded with ParseBool.
type Flag bool

// Decode implements envconfig.Decoder.
func (f *Flag) Decode(value string) error {
	parsed, err := ParseBool(value)
	if err != nil {
		return err
	}
	*f = Flag(parsed)
	return nil
}

func (f Flag) Enabled() bool {
	return bool(f)
}
