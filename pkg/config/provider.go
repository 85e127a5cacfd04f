package config

import (
	"context"
	"strconv"
	"time"

	"simlink/pkg/store"
)

// Provider gives access to settings that may be overridden at runtime.
type Provider interface {
	SimProvider(ctx context.Context) string
	Aircraft(ctx context.Context) string
	SwitchTolerance(ctx context.Context) float64
	SyncLoop(ctx context.Context) time.Duration
	RemoteAddr(ctx context.Context) string

	// Raw access (for components that need deep access)
	AppConfig() *Config
}

// UnifiedProvider implements Provider by bridging static Config and persistent Store.
type UnifiedProvider struct {
	base  *Config
	store store.StateStore
}

// NewProvider creates a new UnifiedProvider.
func NewProvider(base *Config, st store.StateStore) *UnifiedProvider {
	return &UnifiedProvider{
		base:  base,
		store: st,
	}
}

func (p *UnifiedProvider) AppConfig() *Config { return p.base }

func (p *UnifiedProvider) SimProvider(ctx context.Context) string {
	fallback := p.base.Sim.Provider
	if fallback == "" {
		fallback = ProviderUDP
	}
	return p.getString(ctx, KeySimProvider, fallback)
}

func (p *UnifiedProvider) Aircraft(ctx context.Context) string {
	return p.getString(ctx, KeyAircraft, p.base.Sim.Aircraft)
}

func (p *UnifiedProvider) SwitchTolerance(ctx context.Context) float64 {
	v := p.getFloat64(ctx, KeySwitchTolerance, p.base.Switch.Tolerance)
	if v < 0 {
		return p.base.Switch.Tolerance
	}
	return v
}

func (p *UnifiedProvider) SyncLoop(ctx context.Context) time.Duration {
	return p.getDuration(ctx, KeySyncLoop, time.Duration(p.base.Ticker.SyncLoop))
}

func (p *UnifiedProvider) RemoteAddr(ctx context.Context) string {
	return p.getString(ctx, KeyRemoteAddr, p.base.UDP.Remote)
}

func (p *UnifiedProvider) getString(ctx context.Context, key, fallback string) string {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val
		}
	}
	return fallback
}

func (p *UnifiedProvider) getFloat64(ctx context.Context, key string, fallback float64) float64 {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return f
			}
		}
	}
	return fallback
}

func (p *UnifiedProvider) getDuration(ctx context.Context, key string, fallback time.Duration) time.Duration {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if dur, err := ParseDuration(val); err == nil && dur > 0 {
				return dur
			}
		}
	}
	return fallback
}
