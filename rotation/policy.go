// Package rotation models credential-rotation policies: when and how a
// credential should be replaced. It is pure data and validation, with no
// dependency on pool or cache (allocator is imported only for its error
// constructor), expressed as Go constructors
// returning (*T, error) rather than a Result enum.
package rotation

import (
	"fmt"
	"time"

	"github.com/vanyastaff/nebula-memcache/allocator"
)

// Policy is one of Periodic, BeforeExpiry, Scheduled, or Manual.
type Policy interface {
	// GracePeriod returns the duration during which both the old and new
	// credential remain valid, or (0, false) if rotation is immediate.
	GracePeriod() (time.Duration, bool)
	validate() error
}

// PeriodicConfig rotates a credential at a fixed interval, e.g. every 90
// days for compliance.
type PeriodicConfig struct {
	interval     time.Duration
	gracePeriod  time.Duration
	enableJitter bool
}

// NewPeriodicConfig validates and constructs a PeriodicConfig. interval
// must be at least one hour, and gracePeriod must not exceed interval.
// enableJitter, when true, tells the caller's scheduler to randomize the
// rotation time by up to ±10%, spreading out rotation storms.
func NewPeriodicConfig(interval, gracePeriod time.Duration, enableJitter bool) (*PeriodicConfig, error) {
	c := &PeriodicConfig{interval: interval, gracePeriod: gracePeriod, enableJitter: enableJitter}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *PeriodicConfig) validate() error {
	if c.interval < time.Hour {
		return allocator.NewInvalidConfiguration(
			fmt.Sprintf("rotation interval must be at least 1 hour, got %s", c.interval))
	}
	if c.gracePeriod > c.interval {
		return allocator.NewInvalidConfiguration(
			fmt.Sprintf("grace period (%s) cannot exceed rotation interval (%s)", c.gracePeriod, c.interval))
	}
	return nil
}

func (c *PeriodicConfig) Interval() time.Duration  { return c.interval }
func (c *PeriodicConfig) EnableJitter() bool        { return c.enableJitter }
func (c *PeriodicConfig) GracePeriod() (time.Duration, bool) { return c.gracePeriod, true }

// BeforeExpiryConfig rotates a credential once it reaches a percentage of
// its TTL, e.g. OAuth tokens rotated at 80% of lifetime.
type BeforeExpiryConfig struct {
	thresholdPct            float64
	minimumTimeBeforeExpiry time.Duration
	gracePeriod             time.Duration
}

// NewBeforeExpiryConfig validates and constructs a BeforeExpiryConfig.
// thresholdPct must be in [0.5, 0.95]; minimumTimeBeforeExpiry must be
// positive.
func NewBeforeExpiryConfig(thresholdPct float64, minimumTimeBeforeExpiry, gracePeriod time.Duration) (*BeforeExpiryConfig, error) {
	c := &BeforeExpiryConfig{
		thresholdPct:            thresholdPct,
		minimumTimeBeforeExpiry: minimumTimeBeforeExpiry,
		gracePeriod:             gracePeriod,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *BeforeExpiryConfig) validate() error {
	if c.thresholdPct < 0.5 || c.thresholdPct > 0.95 {
		return allocator.NewInvalidConfiguration(
			fmt.Sprintf("threshold percentage must be between 0.5 and 0.95, got %v", c.thresholdPct))
	}
	if c.minimumTimeBeforeExpiry <= 0 {
		return allocator.NewInvalidConfiguration("minimum time before expiry must be positive")
	}
	return nil
}

func (c *BeforeExpiryConfig) ThresholdPercentage() float64         { return c.thresholdPct }
func (c *BeforeExpiryConfig) MinimumTimeBeforeExpiry() time.Duration { return c.minimumTimeBeforeExpiry }
func (c *BeforeExpiryConfig) GracePeriod() (time.Duration, bool)    { return c.gracePeriod, true }

// ScheduledConfig rotates a credential at an exact point in time, e.g. a
// planned maintenance window.
type ScheduledConfig struct {
	scheduledAt  time.Time
	gracePeriod  time.Duration
	notifyBefore time.Duration // 0 means no notification
	now          func() time.Time
}

// NewScheduledConfig validates and constructs a ScheduledConfig.
// scheduledAt must be in the future relative to now (time.Now if nil).
// notifyBefore of 0 disables the pre-rotation notification.
func NewScheduledConfig(scheduledAt time.Time, gracePeriod, notifyBefore time.Duration, now func() time.Time) (*ScheduledConfig, error) {
	if now == nil {
		now = time.Now
	}
	c := &ScheduledConfig{scheduledAt: scheduledAt, gracePeriod: gracePeriod, notifyBefore: notifyBefore, now: now}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ScheduledConfig) validate() error {
	if !c.scheduledAt.After(c.now()) {
		return allocator.NewInvalidConfiguration(
			fmt.Sprintf("scheduled time must be in the future, got %s", c.scheduledAt))
	}
	return nil
}

func (c *ScheduledConfig) ScheduledAt() time.Time { return c.scheduledAt }
func (c *ScheduledConfig) NotifyBefore() (time.Duration, bool) {
	if c.notifyBefore <= 0 {
		return 0, false
	}
	return c.notifyBefore, true
}
func (c *ScheduledConfig) GracePeriod() (time.Duration, bool) { return c.gracePeriod, true }

// ManualConfig rotates a credential only on an explicit trigger, e.g. a
// security incident response.
type ManualConfig struct {
	immediateRevoke bool
	gracePeriod     time.Duration // only meaningful if !immediateRevoke
}

// NewManualEmergencyConfig builds a ManualConfig for immediate revocation,
// skipping the grace period — compromised credentials must be invalidated
// at once.
func NewManualEmergencyConfig() *ManualConfig {
	return &ManualConfig{immediateRevoke: true}
}

// NewManualPlannedConfig builds a ManualConfig for a planned manual
// rotation that still affords a grace period.
func NewManualPlannedConfig(gracePeriod time.Duration) *ManualConfig {
	return &ManualConfig{immediateRevoke: false, gracePeriod: gracePeriod}
}

func (c *ManualConfig) ImmediateRevoke() bool { return c.immediateRevoke }

func (c *ManualConfig) GracePeriod() (time.Duration, bool) {
	if c.immediateRevoke {
		return 0, false
	}
	return c.gracePeriod, true
}

func (c *ManualConfig) validate() error { return nil }

var (
	_ Policy = (*PeriodicConfig)(nil)
	_ Policy = (*BeforeExpiryConfig)(nil)
	_ Policy = (*ScheduledConfig)(nil)
	_ Policy = (*ManualConfig)(nil)
)

// Validate re-runs the policy's own validation, useful after
// deserializing a Policy from configuration.
func Validate(p Policy) error { return p.validate() }
