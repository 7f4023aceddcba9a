package model

import (
	"strings"

	"github.com/google/uuid"
)

// NewCode returns a short display code such as "U3FA91C".
func NewCode(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(id[:6])
}
