package config

import (
	"fmt"
	"time"

	"github.com/vanyastaff/nebula-memcache/allocator"
	"github.com/vanyastaff/nebula-memcache/rotation"
)

// RotationSection configures one rotation.Policy variant for TOML
// decoding. Only the fields relevant to Kind need be set.
type RotationSection struct {
	Kind string `toml:"kind"` // "periodic", "before_expiry", "scheduled", "manual"

	// periodic
	Interval     string `toml:"interval"`
	EnableJitter bool   `toml:"enable_jitter"`

	// before_expiry
	ThresholdPercentage     float64 `toml:"threshold_percentage"`
	MinimumTimeBeforeExpiry string  `toml:"minimum_time_before_expiry"`

	// scheduled
	ScheduledAt  time.Time `toml:"scheduled_at"`
	NotifyBefore string    `toml:"notify_before"`

	// manual
	ImmediateRevoke bool `toml:"immediate_revoke"`

	// shared
	GracePeriod string `toml:"grace_period"`
}

const (
	RotationPeriodic     = "periodic"
	RotationBeforeExpiry = "before_expiry"
	RotationScheduled    = "scheduled"
	RotationManual       = "manual"
)

// ToPolicy builds the rotation.Policy named by Kind.
func (s *RotationSection) ToPolicy() (rotation.Policy, error) {
	if s == nil {
		return nil, allocator.NewInvalidConfiguration("config: rotation section is absent")
	}
	grace, err := parseDuration(s.GracePeriod)
	if err != nil {
		return nil, allocator.NewInvalidConfiguration(fmt.Sprintf("config: invalid grace_period: %v", err))
	}

	switch s.Kind {
	case RotationPeriodic:
		interval, err := parseDuration(s.Interval)
		if err != nil {
			return nil, allocator.NewInvalidConfiguration(fmt.Sprintf("config: invalid interval: %v", err))
		}
		return rotation.NewPeriodicConfig(interval, grace, s.EnableJitter)

	case RotationBeforeExpiry:
		minTime, err := parseDuration(s.MinimumTimeBeforeExpiry)
		if err != nil {
			return nil, allocator.NewInvalidConfiguration(fmt.Sprintf("config: invalid minimum_time_before_expiry: %v", err))
		}
		return rotation.NewBeforeExpiryConfig(s.ThresholdPercentage, minTime, grace)

	case RotationScheduled:
		notify, err := parseDuration(s.NotifyBefore)
		if err != nil {
			return nil, allocator.NewInvalidConfiguration(fmt.Sprintf("config: invalid notify_before: %v", err))
		}
		return rotation.NewScheduledConfig(s.ScheduledAt, grace, notify, nil)

	case RotationManual:
		if s.ImmediateRevoke {
			return rotation.NewManualEmergencyConfig(), nil
		}
		return rotation.NewManualPlannedConfig(grace), nil

	default:
		return nil, allocator.NewInvalidConfiguration(fmt.Sprintf("config: unknown rotation kind %q", s.Kind))
	}
}
