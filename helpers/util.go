package helpers

import (
	"errors"
	"strings"
)

// GetSplitPart returns the index-th piece of target split on separate. The
// supplier configs use it to pull numeric ids out of listing URL segments.
func GetSplitPart(target string, separate string, index int) (string, error) {
	parts := strings.Split(target, separate)
	if index >= len(parts) {
		return "", errors.New("index out of range")
	}
	return parts[index], nil
}
