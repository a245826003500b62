package autoapply

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonasahlin/matbit/internal/adapter/logger"
	"github.com/jonasahlin/matbit/internal/app/cart"
	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

// fallbackInterval bounds how long the selector sleeps when no window
// boundary is coming up, so clock drift and missed events self-heal.
const fallbackInterval = 15 * time.Minute

// Selector keeps the shared auto-apply key in sync with whichever
// time-restricted campaign is live right now. It recomputes when a campaign
// changes and when the next window boundary passes, instead of polling on a
// fixed short interval.
type Selector struct {
	campaigns interfaces.CampaignRepository
	kv        interfaces.KeyValueStore
	logger    logger.Logger
	now       func() time.Time
	trigger   chan struct{}
}

func NewSelector(campaigns interfaces.CampaignRepository, kv interfaces.KeyValueStore, logger logger.Logger) *Selector {
	return &Selector{
		campaigns: campaigns,
		kv:        kv,
		logger:    logger,
		now:       time.Now,
		trigger:   make(chan struct{}, 1),
	}
}

// Trigger asks for an immediate recompute. Safe to call from any goroutine;
// coalesces when one is already pending.
func (s *Selector) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// CampaignEventHandler adapts broker campaign events into recompute triggers.
func (s *Selector) CampaignEventHandler() interfaces.CampaignEventHandler {
	return func(ctx context.Context, body []byte) error {
		var msg interfaces.CampaignEventMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to decode campaign event: %w", err)
		}
		s.logger.Debug("campaign_event_received", "Campaign changed, recomputing auto-apply", "", map[string]interface{}{
			"campaign_id": msg.CampaignID,
			"action":      msg.Action,
		})
		s.Trigger()
		return nil
	}
}

// Run recomputes until the context is cancelled, waking on triggers and on
// the next campaign window boundary.
func (s *Selector) Run(ctx context.Context) error {
	for {
		wait, err := s.Recompute(ctx)
		if err != nil {
			s.logger.Error("auto_apply_recompute_failed", "Failed to recompute auto-apply campaign", "", nil, err)
			wait = fallbackInterval
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		case <-s.trigger:
			timer.Stop()
		}
	}
}

// Recompute scans the auto-apply campaigns, publishes the first one whose
// date range and time window match now, and clears the key otherwise. It
// returns how long until the published decision could change.
func (s *Selector) Recompute(ctx context.Context) (time.Duration, error) {
	candidates, err := s.campaigns.ListAutoApply(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list auto-apply campaigns: %w", err)
	}

	now := s.now()
	var picked *domain.Campaign
	for _, c := range candidates {
		if c.NotYetActive(now) || c.Expired(now) {
			continue
		}
		if !c.WithinWindow(now) {
			continue
		}
		picked = c
		break
	}

	if picked == nil {
		if err := s.kv.Delete(ctx, cart.AutoApplyKey); err != nil {
			return 0, fmt.Errorf("failed to clear auto-apply key: %w", err)
		}
		return nextBoundary(now, candidates), nil
	}

	data, err := json.Marshal(picked)
	if err != nil {
		return 0, fmt.Errorf("failed to encode campaign: %w", err)
	}
	if err := s.kv.Set(ctx, cart.AutoApplyKey, string(data), 0); err != nil {
		return 0, fmt.Errorf("failed to publish auto-apply campaign: %w", err)
	}

	s.logger.Info("auto_apply_published", "Auto-apply campaign published", "", map[string]interface{}{
		"campaign_id": picked.ID,
		"coupon_code": picked.CouponCode,
	})
	return nextBoundary(now, candidates), nil
}

// nextBoundary returns the duration until the soonest window edge among the
// candidates, capped at the fallback interval. Window edges are when a
// campaign's start or end clock next comes around; the cap covers day-of-week
// and date-range flips without modelling them exactly.
func nextBoundary(now time.Time, candidates []*domain.Campaign) time.Duration {
	minute := now.Hour()*60 + now.Minute()
	wait := fallbackInterval

	for _, c := range candidates {
		for _, clock := range []string{c.StartTime, c.EndTime} {
			edge, err := parseClockMinutes(clock)
			if err != nil {
				continue
			}
			// The window closes the minute after its inclusive end, and
			// opens at its start minute.
			for _, boundary := range []int{edge, edge + 1} {
				until := boundary - minute
				if until <= 0 {
					until += 24 * 60
				}
				if d := time.Duration(until) * time.Minute; d < wait {
					wait = d
				}
			}
		}
	}
	return wait
}

func parseClockMinutes(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	return h*60 + m, nil
}
