package monitoring

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/idalmas/chatterbox-be/internal/services"
)

// Maintenance periodically clears expired OTP state and drops trusted-device
// rows that fell out of the trust window. The trust check and OTP check are
// already time-bounded, so this is storage hygiene, not enforcement.
type Maintenance struct {
	otpSvc    services.OTPServiceProvider
	deviceSvc services.DeviceServiceProvider
	eventSvc  services.EventServiceProvider
	schedule  cron.Schedule
	nextRun   time.Time
	ticker    *time.Ticker
	done      chan bool
}

// NewMaintenance creates a maintenance loop from a standard cron expression
// (descriptors like "@hourly" included).
func NewMaintenance(otpSvc services.OTPServiceProvider, deviceSvc services.DeviceServiceProvider, eventSvc services.EventServiceProvider, cronExpr string) (*Maintenance, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Maintenance{
		otpSvc:    otpSvc,
		deviceSvc: deviceSvc,
		eventSvc:  eventSvc,
		schedule:  schedule,
		done:      make(chan bool),
	}, nil
}

// Run starts the maintenance ticking loop.
func (m *Maintenance) Run() {
	log.Info().Msg("Starting background maintenance...")
	m.ticker = time.NewTicker(1 * time.Minute)
	defer m.ticker.Stop()

	// Run once immediately on start
	m.RunOnce(context.Background())
	m.nextRun = m.schedule.Next(time.Now())

	for {
		select {
		case <-m.done:
			log.Info().Msg("Stopping background maintenance.")
			return
		case <-m.ticker.C:
			now := time.Now()
			if now.After(m.nextRun) {
				m.RunOnce(context.Background())
				m.nextRun = m.schedule.Next(now)
			}
		}
	}
}

// Stop halts the maintenance loop.
func (m *Maintenance) Stop() {
	m.done <- true
}

// RunOnce performs a single maintenance pass.
func (m *Maintenance) RunOnce(ctx context.Context) {
	otps, err := m.otpSvc.PruneExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Maintenance: failed to prune expired OTPs")
		m.eventSvc.CreateEvent(ctx, "maintenance.otp.fail", "error", err.Error(), nil)
	}

	devices, err := m.deviceSvc.PruneExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Maintenance: failed to prune stale devices")
		m.eventSvc.CreateEvent(ctx, "maintenance.devices.fail", "error", err.Error(), nil)
	}

	if otps > 0 || devices > 0 {
		log.Info().Int64("expired_otps", otps).Int64("stale_devices", devices).Msg("Maintenance pass complete")
	}
}
