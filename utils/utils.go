package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

// Ternary mimics the ternary operator for places where inline selection keeps
// the code flatter than an if block.
func Ternary(cond bool, one, two any) any {
	if cond {
		return one
	}
	return two
}

// ArrayContains returns the index of the first element matching fn.
func ArrayContains[T any](array []T, fn func(elem T) bool) (int, bool) {
	for idx, elem := range array {
		if fn(elem) {
			return idx, true
		}
	}
	return -1, false
}

// UnmarshalFile reads a JSON or YAML file into dest; the format is picked by
// file extension, defaulting to JSON.
func UnmarshalFile(filePath string, dest any) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %s", filePath, err)
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, dest)
	default:
		err = json.Unmarshal(data, dest)
	}
	if err != nil {
		return fmt.Errorf("failed to unmarshal file %s: %s", filePath, err)
	}
	return nil
}

func IsValidSubcommand(available []*cobra.Command, sub string) bool {
	_, found := ArrayContains(available, func(command *cobra.Command) bool {
		return command.Name() == sub
	})
	return found
}
