package service

import (
	"strings"

	"insightlink/backend/model"
)

// DefaultLimits is the provider wired at startup. Tests construct their own
// LimitsProvider with an injected fetcher instead of touching this one.
var DefaultLimits *LimitsProvider

// DefaultGuard is the quota guard over DefaultLimits.
var DefaultGuard *QuotaGuard

// InitServices wires the process-wide provider and guard. Must run after
// model.InitDB.
func InitServices() {
	DefaultLimits = NewDefaultLimitsProvider()
	DefaultGuard = NewQuotaGuard(DefaultLimits)
}

// UpdateOption persists an option and invalidates any derived caches.
func UpdateOption(key string, value string) error {
	if err := model.UpdateOption(key, value); err != nil {
		return err
	}
	if strings.HasPrefix(key, "TIER_") && DefaultLimits != nil {
		DefaultLimits.Invalidate()
	}
	return nil
}

func getOption(key string) (string, bool) {
	return model.GetOption(key)
}
