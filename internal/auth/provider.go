package auth

import (
	"context"
	"fmt"
	"sync"

	"pos-agent/internal/apiclient"
	"pos-agent/internal/models"
	"pos-agent/internal/session"
	"pos-agent/internal/util"

	"go.uber.org/zap"
)

type State string

const (
	StateUninitialized State = "uninitialized"
	StateProbing       State = "probing"
	StateAuthenticated State = "authenticated"
	StateAnonymous     State = "anonymous"
)

// API is the subset of the remote API the provider drives.
type API interface {
	Login(ctx context.Context, body models.LoginRequest) (*models.MessageResponse, error)
	Signup(ctx context.Context, body models.SignupRequest, picture *apiclient.File) (*models.SignupResponse, error)
	Logout(ctx context.Context) (*models.MessageResponse, error)
	Me(ctx context.Context) (*models.UserProfile, error)
}

// Provider owns the login, logout and probe state machine and is the single
// source of truth for who is logged in.
type Provider struct {
	api       API
	session   *session.Session
	refresher apiclient.TokenRefresher
	navigator session.Navigator
	loginPath string
	logger    *zap.Logger

	// ops serializes initialize, login and logout.
	ops sync.Mutex

	mu      sync.RWMutex
	state   State
	loading bool
}

func NewProvider(
	api API,
	sess *session.Session,
	refresher apiclient.TokenRefresher,
	navigator session.Navigator,
	loginPath string,
) *Provider {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Provider{
		api:       api,
		session:   sess,
		refresher: refresher,
		navigator: navigator,
		loginPath: loginPath,
		logger:    util.Named("auth"),
		state:     StateUninitialized,
		loading:   true,
	}
}

func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Loading is true until Initialize has completed.
func (p *Provider) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

func (p *Provider) CurrentUser() *models.UserProfile {
	return p.session.CurrentUser()
}

func (p *Provider) Authenticated() bool {
	return p.State() == StateAuthenticated
}

// Initialize bootstraps the CSRF token and probes for an existing session.
// It never fails: any probe failure ends anonymous.
func (p *Provider) Initialize(ctx context.Context) State {
	p.ops.Lock()
	defer p.ops.Unlock()

	ctx, span := util.StartSpan(ctx, "Session.Initialize")
	defer span.End()

	p.setLoading(true)
	defer p.setLoading(false)

	p.setState(StateProbing)
	p.refreshToken(ctx)

	if !p.session.HasSessionCookie() {
		p.logger.Info("No session cookie, starting anonymous")
		p.session.ClearUser()
		p.setState(StateAnonymous)
		return StateAnonymous
	}

	if err := p.probe(ctx); err != nil {
		p.logger.Info("Session probe failed, starting anonymous", zap.Error(err))
		return StateAnonymous
	}
	return StateAuthenticated
}

// Revalidate re-runs the session probe.
func (p *Provider) Revalidate(ctx context.Context) State {
	p.ops.Lock()
	defer p.ops.Unlock()

	if err := p.probe(ctx); err != nil {
		p.logger.Info("Session revalidation failed", zap.Error(err))
	}
	return p.State()
}

// Login submits credentials, then refreshes the anti-forgery token, then
// probes for the profile. A rejected submission leaves state untouched.
func (p *Provider) Login(ctx context.Context, creds models.LoginRequest) (*models.UserProfile, error) {
	p.ops.Lock()
	defer p.ops.Unlock()

	ctx, span := util.StartSpan(ctx, "Session.Login")
	defer span.End()

	if _, err := p.api.Login(ctx, creds); err != nil {
		util.RecordError(span, err)
		p.logger.Info("Login rejected", zap.String("email", creds.Email), zap.Error(err))
		return nil, err
	}

	// A successful login starts a fresh session lifetime, re-arming the
	// one-time login redirect.
	p.session.Reset()
	p.refreshToken(ctx)

	if err := p.probe(ctx); err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("login succeeded but session probe failed: %w", err)
	}

	user := p.session.CurrentUser()
	p.logger.Info("Logged in", zap.String("email", user.Email))
	return user, nil
}

// Signup registers a new account. It does not log the new account in.
func (p *Provider) Signup(ctx context.Context, req models.SignupRequest, picture *apiclient.File) (*models.SignupResponse, error) {
	ctx, span := util.StartSpan(ctx, "Session.Signup")
	defer span.End()

	resp, err := p.api.Signup(ctx, req, picture)
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}
	return resp, nil
}

// Logout always ends anonymous, whatever the server answers, and sends the
// operator to the login page.
func (p *Provider) Logout(ctx context.Context) {
	p.ops.Lock()
	defer p.ops.Unlock()

	ctx, span := util.StartSpan(ctx, "Session.Logout")
	defer span.End()

	if _, err := p.api.Logout(ctx); err != nil {
		util.RecordError(span, err)
		p.logger.Warn("Logout call failed, clearing local session anyway", zap.Error(err))
		p.session.ClearSessionCookies()
	}

	p.session.ClearUser()
	p.setState(StateAnonymous)
	if p.navigator != nil {
		p.navigator.Navigate(p.loginPath)
	}
}

func (p *Provider) probe(ctx context.Context) error {
	p.setState(StateProbing)

	user, err := p.api.Me(ctx)
	if err != nil {
		p.session.ClearUser()
		p.setState(StateAnonymous)
		return err
	}

	p.session.SetUser(user)
	p.setState(StateAuthenticated)
	return nil
}

func (p *Provider) refreshToken(ctx context.Context) {
	if p.refresher == nil {
		return
	}
	// Failure is already logged by the refresher and is not fatal here.
	_ = p.refresher.Refresh(ctx)
}

func (p *Provider) setState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
}

func (p *Provider) setLoading(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = v
}
