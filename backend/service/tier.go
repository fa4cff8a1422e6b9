package service

import (
	"math"
	"strconv"
	"sync"
	"time"

	"insightlink/backend/model"
)

// Unlimited is the internal representation of the -1 override sentinel.
const Unlimited = int64(math.MaxInt64)

// TierLimits is the resolved ceiling set for one tier.
type TierLimits struct {
	MaxFiles         int64 `json:"max_files"`
	MaxLinksPerFile  int64 `json:"max_links_per_file"`
	MaxStorageBytes  int64 `json:"max_storage_bytes"`
	MaxFileSizeBytes int64 `json:"max_file_size_bytes"`
	Analytics        bool  `json:"analytics"`
	HideBrand        bool  `json:"hide_brand"`
	CustomDomain     bool  `json:"custom_domain"`
	CustomTheme      bool  `json:"custom_theme"`
}

const (
	mb = int64(1024 * 1024)
	gb = 1024 * mb
)

// Built-in defaults, in force whenever no admin override is set or the
// option store is unreachable.
var tierDefaults = map[string]TierLimits{
	model.TierFree: {
		MaxFiles:         2,
		MaxLinksPerFile:  3,
		MaxStorageBytes:  20 * mb,
		MaxFileSizeBytes: 100 * mb,
	},
	model.TierPro: {
		MaxFiles:         50,
		MaxLinksPerFile:  Unlimited,
		MaxStorageBytes:  1 * gb,
		MaxFileSizeBytes: 1 * gb,
		Analytics:        true,
		HideBrand:        true,
	},
	model.TierMax: {
		MaxFiles:         Unlimited,
		MaxLinksPerFile:  Unlimited,
		MaxStorageBytes:  Unlimited,
		MaxFileSizeBytes: 5 * gb,
		Analytics:        true,
		HideBrand:        true,
		CustomDomain:     true,
		CustomTheme:      true,
	},
}

// EffectiveTier computes the tier actually in force. The stored tier is
// never eagerly reset on expiry; every quota check and link-serving decision
// resolves it on read so they all observe the same notion of "current".
func EffectiveTier(tier string, expiresAt *time.Time, now time.Time) string {
	if tier == model.TierFree || tier == "" {
		return model.TierFree
	}
	if expiresAt == nil {
		return tier
	}
	if now.After(*expiresAt) {
		return model.TierFree
	}
	return tier
}

// EffectiveTierOf resolves a user's effective tier at now.
func EffectiveTierOf(user *model.User, now time.Time) string {
	return EffectiveTier(user.Tier, user.TierExpiresAt, now)
}

// OptionFetcher resolves one override key. ok is false when the key is not
// set; a non-nil error means the backing store is unreachable.
type OptionFetcher func(key string) (value string, ok bool, err error)

// LimitsProvider resolves TierLimits from admin overrides layered over the
// built-in defaults. The fetch function is injected so tests run without a
// shared process-global option map, and resolution fails open to defaults
// when the store errors.
type LimitsProvider struct {
	mu    sync.RWMutex
	fetch OptionFetcher
	cache map[string]TierLimits
}

func NewLimitsProvider(fetch OptionFetcher) *LimitsProvider {
	return &LimitsProvider{
		fetch: fetch,
		cache: make(map[string]TierLimits),
	}
}

// NewDefaultLimitsProvider reads overrides from the model option cache.
func NewDefaultLimitsProvider() *LimitsProvider {
	return NewLimitsProvider(func(key string) (string, bool, error) {
		value, ok := model.GetOption(key)
		return value, ok, nil
	})
}

// Invalidate drops the resolved cache; the next lookup re-reads overrides.
// Called after any TIER_* option update.
func (p *LimitsProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string]TierLimits)
}

// GetTierLimits resolves the limits for a tier. Unknown tiers resolve to
// FREE limits, the most restrictive set.
func (p *LimitsProvider) GetTierLimits(tier string) TierLimits {
	defaults, ok := tierDefaults[tier]
	if !ok {
		tier = model.TierFree
		defaults = tierDefaults[model.TierFree]
	}

	p.mu.RLock()
	cached, hit := p.cache[tier]
	p.mu.RUnlock()
	if hit {
		return cached
	}

	r := resolver{fetch: p.fetch}
	limits := defaults
	limits.MaxFiles = r.numeric(tier, "MAX_FILES", defaults.MaxFiles)
	limits.MaxLinksPerFile = r.numeric(tier, "MAX_LINKS_PER_FILE", defaults.MaxLinksPerFile)
	limits.MaxStorageBytes = r.numeric(tier, "MAX_STORAGE", defaults.MaxStorageBytes)
	limits.MaxFileSizeBytes = r.numeric(tier, "MAX_FILE_SIZE", defaults.MaxFileSizeBytes)
	limits.Analytics = r.boolean(tier, "ANALYTICS", defaults.Analytics)
	limits.HideBrand = r.boolean(tier, "HIDE_BRAND", defaults.HideBrand)
	limits.CustomDomain = r.boolean(tier, "CUSTOM_DOMAIN", defaults.CustomDomain)
	limits.CustomTheme = r.boolean(tier, "CUSTOM_THEME", defaults.CustomTheme)

	// Fail open: an unreachable store yields the built-in defaults, and the
	// result is not cached so recovery is picked up on the next lookup.
	if r.storeErr {
		return defaults
	}

	p.mu.Lock()
	p.cache[tier] = limits
	p.mu.Unlock()
	return limits
}

func optionKey(tier string, dimension string) string {
	return "TIER_" + tier + "_" + dimension
}

// resolver tracks store health across the individual key lookups of one
// resolution pass.
type resolver struct {
	fetch    OptionFetcher
	storeErr bool
}

// numeric parses one numeric dimension. -1 maps to Unlimited; a missing or
// unparsable override keeps the built-in default.
func (r *resolver) numeric(tier string, dimension string, fallback int64) int64 {
	value, ok, err := r.fetch(optionKey(tier, dimension))
	if err != nil {
		r.storeErr = true
		return fallback
	}
	if !ok {
		return fallback
	}
	parsed, parseErr := strconv.ParseInt(value, 10, 64)
	if parseErr != nil {
		return fallback
	}
	if parsed == -1 {
		return Unlimited
	}
	if parsed < 0 {
		return fallback
	}
	return parsed
}

// boolean parses one feature flag: the literal "true" enables it, anything
// else disables it, absence keeps the default.
func (r *resolver) boolean(tier string, dimension string, fallback bool) bool {
	value, ok, err := r.fetch(optionKey(tier, dimension))
	if err != nil {
		r.storeErr = true
		return fallback
	}
	if !ok {
		return fallback
	}
	return value == "true"
}
