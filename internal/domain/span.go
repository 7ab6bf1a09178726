package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Span times one stage of a backtest run
type Span struct {
	Name    string    `json:"name"`
	startTs time.Time `json:"-"`

	SubSpans []*Span `json:"subSpans,omitempty"`
	Elapsed  *int64  `json:"elapsedMs"`
}

type profileKey struct{}

// Profile is simply a list of spans
type Profile struct {
	Spans   []*Span `json:"spans"`
	startTs time.Time
	TotalMs *int64 `json:"totalMs"`
}

func NewProfile() (newProfile *Profile, endNewProfile func()) {
	newProfile = &Profile{
		Spans:   []*Span{},
		startTs: time.Now(),
	}
	return newProfile, newProfile.End
}

func WithProfile(ctx context.Context, p *Profile) context.Context {
	return context.WithValue(ctx, profileKey{}, p)
}

// ProfileFromContext returns the profile attached to ctx, if any
func ProfileFromContext(ctx context.Context) (*Profile, bool) {
	p, ok := ctx.Value(profileKey{}).(*Profile)
	return p, ok && p != nil
}

func (p *Profile) End() {
	t := time.Since(p.startTs).Milliseconds()
	if p.TotalMs == nil {
		p.TotalMs = &t
	}
}

func (s *Span) End() {
	if s.Elapsed == nil {
		t := time.Since(s.startTs).Milliseconds()
		s.Elapsed = &t
	}
}

// StartNewSpan ends the last span and begins a new one
// not thread safe
func (p *Profile) StartNewSpan(name string) (newSpan *Span, endSpan func()) {
	newSpan = &Span{
		Name:    name,
		startTs: time.Now(),
	}
	if len(p.Spans) > 0 {
		p.Spans[len(p.Spans)-1].End()
	}
	p.Spans = append(p.Spans, newSpan)
	return newSpan, newSpan.End
}

// StartSpan starts a span on the profile in ctx. Without a profile the
// returned end func is a no-op, so callers can always defer it.
func StartSpan(ctx context.Context, name string) func() {
	p, ok := ProfileFromContext(ctx)
	if !ok {
		return func() {}
	}
	_, end := p.StartNewSpan(name)
	return end
}

func (p *Profile) ToJsonBytes() ([]byte, error) {
	bytes, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}
