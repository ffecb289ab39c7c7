package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/neflyte/seoredirect/internal/logging"
)

// AddFlagValidation adds validation for a specific flag. The flag may be
// local or persistent on the command.
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		flag = cmd.PersistentFlags().Lookup(flagName)
	}
	if flag == nil {
		return
	}

	// Store original value setter
	originalSet := flag.Value.Set

	// Create wrapper that validates
	flag.Value = &validatingValue{
		Value:       flag.Value,
		validator:   validator,
		originalSet: originalSet,
	}
}

type validatingValue struct {
	pflag.Value
	validator   func(string) error
	originalSet func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.originalSet(val)
}

// ValidateChoice returns a validator accepting only the listed values.
func ValidateChoice(choices ...string) func(string) error {
	return func(val string) error {
		for _, choice := range choices {
			if val == choice {
				return nil
			}
		}
		return fmt.Errorf("invalid value %s, must be one of: %s", val, strings.Join(choices, ", "))
	}
}

// ValidateFileExists rejects paths to files that do not exist. Empty is
// valid for optional files.
func ValidateFileExists(filename string) error {
	if filename == "" {
		return nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	return nil
}

// ValidateOutputPath rejects output directories that climb out of the
// working tree.
func ValidateOutputPath(path string) error {
	if path == "" {
		return nil
	}

	if strings.Contains(path, "..") {
		return fmt.Errorf("output path contains directory traversal: %s", path)
	}

	return nil
}

// ValidateLogLevel accepts the log level names the logging package parses.
func ValidateLogLevel(level string) error {
	if level == "" {
		return nil
	}

	if _, err := logging.ParseLevel(level); err != nil {
		return fmt.Errorf("invalid log level: %s", level)
	}

	return nil
}
