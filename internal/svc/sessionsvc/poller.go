package sessionsvc

import (
	"context"
	"time"

	"github.com/yks-app/yks-go/internal/infra/logging"
)

// PollerConfig holds configuration for the periodic profile refresh.
type PollerConfig struct {
	// Interval between profile refreshes
	Interval time.Duration `env:"INTERVAL" default:"5s"`
}

// Poller refreshes the session profile periodically while running. Ticks
// are skipped while a profile mutation is in flight, so a slow refresh
// response cannot overwrite a newer manual update.
type Poller struct {
	session  *Service
	profiles ProfileFetcher
	cfg      PollerConfig
	log      logging.Logger
}

// NewPoller creates a Poller driving the given session from the profile fetcher.
func NewPoller(session *Service, profiles ProfileFetcher, cfg PollerConfig) *Poller {
	return &Poller{
		session:  session,
		profiles: profiles,
		cfg:      cfg,
		log:      logging.GetLogger("svc.sessionsvc.poller"),
	}
}

// Run refreshes the profile every interval until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick performs one refresh. A successful fetch with a non-empty profile
// moves the session through SetProfile; an error or empty profile while the
// session is not loading clears it.
func (p *Poller) tick(ctx context.Context) {
	if p.session.MutationInFlight() {
		p.log.DebugContext(ctx, "refresh skipped, profile mutation in flight")

		return
	}

	profile, release, err := p.profiles.GetProfile(ctx)
	if release != nil {
		defer release()
	}

	if err != nil || profile.IsZero() {
		if !p.session.IsLoading() {
			p.log.WarnContext(ctx, "profile refresh failed", "error", err)
			p.session.ClearError(ctx)
		}

		return
	}

	p.session.SetProfile(ctx, "", &profile)
}
