package client

import (
	"context"
	"errors"
	"sync"
)

// GateState is where a ProfileGate is in its profile lookup.
type GateState int

const (
	GateUnknown GateState = iota
	GateChecking
	GateHasProfile
	GateNoProfile
	GateError
)

func (s GateState) String() string {
	switch s {
	case GateUnknown:
		return "unknown"
	case GateChecking:
		return "checking"
	case GateHasProfile:
		return "has-profile"
	case GateNoProfile:
		return "no-profile"
	case GateError:
		return "error"
	}
	return "unknown"
}

// GateAction tells the caller what to show after a check.
type GateAction int

const (
	ActionNone GateAction = iota
	ActionRedirectSetup
	ActionRenderDashboard
	ActionShowError
)

func (a GateAction) String() string {
	switch a {
	case ActionRedirectSetup:
		return "redirect-setup"
	case ActionRenderDashboard:
		return "render-dashboard"
	case ActionShowError:
		return "show-error"
	case ActionNone:
		return "none"
	}
	return "none"
}

// GatePolicy decides what a failed lookup (anything but 2xx or 404) leads to.
type GatePolicy int

const (
	// FailClosed surfaces the error.
	FailClosed GatePolicy = iota
	// FailOpen renders the dashboard anyway.
	FailOpen
)

// ProfileFetcher is satisfied by *Client.
type ProfileFetcher interface {
	MyCommunityProfile(ctx context.Context) (*CommunityProfile, error)
}

// ProfileGate guards community views that need a profile to exist.
type ProfileGate struct {
	fetcher ProfileFetcher
	policy  GatePolicy

	mu      sync.Mutex
	state   GateState
	profile *CommunityProfile
	err     error
}

func NewProfileGate(fetcher ProfileFetcher, policy GatePolicy) *ProfileGate {
	return &ProfileGate{fetcher: fetcher, policy: policy}
}

// Check looks the profile up and moves the gate to its next state. The
// returned error is the lookup failure, if any, regardless of policy.
func (g *ProfileGate) Check(ctx context.Context) (GateAction, error) {
	g.mu.Lock()
	g.state, g.profile, g.err = GateChecking, nil, nil
	g.mu.Unlock()

	profile, err := g.fetcher.MyCommunityProfile(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case err == nil:
		g.state, g.profile = GateHasProfile, profile
		return ActionRenderDashboard, nil
	case errors.Is(err, ErrNotFound):
		g.state = GateNoProfile
		return ActionRedirectSetup, nil
	}

	g.state, g.err = GateError, err
	if g.policy == FailOpen {
		return ActionRenderDashboard, err
	}
	return ActionShowError, err
}

func (g *ProfileGate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Profile is set only in GateHasProfile.
func (g *ProfileGate) Profile() *CommunityProfile {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.profile
}

func (g *ProfileGate) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}
