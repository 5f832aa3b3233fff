package utils

import (
	"fmt"

	"github.com/ralt/pirum/internal/models"
)

// ReleaseIdentity returns a unique identifier for a release
func ReleaseIdentity(name, version string) string {
	return fmt.Sprintf("%s:%s", name, version)
}

// DetectConflicts returns releases from incoming that are already present in existing
func DetectConflicts(existing, incoming []*models.Release) []*models.Release {
	existingMap := make(map[string]bool)
	for _, r := range existing {
		existingMap[ReleaseIdentity(r.Name, r.Version)] = true
	}

	var conflicts []*models.Release
	for _, r := range incoming {
		if existingMap[ReleaseIdentity(r.Name, r.Version)] {
			conflicts = append(conflicts, r)
		}
	}
	return conflicts
}
