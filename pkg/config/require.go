package config

import (
	"errors"
	"fmt"
)

func NonEmpty(value, envName string) error {
	if value == "" {
		return fmt.Errorf("missing required env %s", envName)
	}
	return nil
}

func NonEmptyBytes(value []byte, envName string) error {
	if len(value) == 0 {
		return fmt.Errorf("missing required env %s", envName)
	}
	return nil
}

// Require joins every failed check into one error.
func Require(checks ...error) error {
	return errors.Join(checks...)
}
