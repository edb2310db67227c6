package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"pos-agent/internal/apiclient"
	"pos-agent/internal/models"
	"pos-agent/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type callLog struct {
	calls []string
}

func (l *callLog) add(c string) { l.calls = append(l.calls, c) }

type fakeAPI struct {
	log       *callLog
	loginErr  error
	logoutErr error
	meErr     error
	user      *models.UserProfile
}

func (f *fakeAPI) Login(_ context.Context, _ models.LoginRequest) (*models.MessageResponse, error) {
	f.log.add("login")
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.MessageResponse{Message: "ok"}, nil
}

func (f *fakeAPI) Signup(_ context.Context, req models.SignupRequest, _ *apiclient.File) (*models.SignupResponse, error) {
	f.log.add("signup")
	return &models.SignupResponse{Message: "created", Email: req.Email}, nil
}

func (f *fakeAPI) Logout(_ context.Context) (*models.MessageResponse, error) {
	f.log.add("logout")
	if f.logoutErr != nil {
		return nil, f.logoutErr
	}
	return &models.MessageResponse{Message: "bye"}, nil
}

func (f *fakeAPI) Me(_ context.Context) (*models.UserProfile, error) {
	f.log.add("me")
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.user, nil
}

type fakeRefresher struct {
	log *callLog
	err error
}

func (f *fakeRefresher) Refresh(_ context.Context) error {
	f.log.add("csrf")
	return f.err
}

type fixture struct {
	log      *callLog
	api      *fakeAPI
	sess     *session.Session
	nav      *session.PendingNavigator
	provider *Provider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := &callLog{}
	sess, err := session.New("http://pos.test/api", session.Options{})
	require.NoError(t, err)

	api := &fakeAPI{log: log, user: &models.UserProfile{Email: "ada@shop.ng", FullName: "Ada Obi"}}
	nav := session.NewPendingNavigator()
	return &fixture{
		log:      log,
		api:      api,
		sess:     sess,
		nav:      nav,
		provider: NewProvider(api, sess, &fakeRefresher{log: log}, nav, "/login"),
	}
}

func (f *fixture) setSessionCookie() {
	f.sess.Jar().SetCookies(f.sess.BaseURL(), []*http.Cookie{{Name: "jwt", Value: "signed", Path: "/"}})
}

func TestInitializeWithoutCookieSkipsProbe(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.provider.Loading())
	assert.Equal(t, StateUninitialized, f.provider.State())

	state := f.provider.Initialize(context.Background())

	assert.Equal(t, StateAnonymous, state)
	assert.Equal(t, []string{"csrf"}, f.log.calls)
	assert.False(t, f.provider.Loading())
	assert.Nil(t, f.provider.CurrentUser())
}

func TestInitializeWithCookieProbes(t *testing.T) {
	f := newFixture(t)
	f.setSessionCookie()

	state := f.provider.Initialize(context.Background())

	assert.Equal(t, StateAuthenticated, state)
	assert.Equal(t, []string{"csrf", "me"}, f.log.calls)
	require.NotNil(t, f.provider.CurrentUser())
	assert.Equal(t, "Ada Obi", f.provider.CurrentUser().FullName)
}

func TestInitializeProbeFailureIsAnonymous(t *testing.T) {
	f := newFixture(t)
	f.setSessionCookie()
	f.api.meErr = errors.New("connection refused")

	state := f.provider.Initialize(context.Background())

	assert.Equal(t, StateAnonymous, state)
	assert.False(t, f.provider.Loading())
	assert.Nil(t, f.provider.CurrentUser())
}

func TestInitializeSurvivesCSRFFailure(t *testing.T) {
	f := newFixture(t)
	f.provider.refresher = &fakeRefresher{log: f.log, err: errors.New("csrf down")}
	f.setSessionCookie()

	assert.Equal(t, StateAuthenticated, f.provider.Initialize(context.Background()))
}

func TestLoginOrdersCSRFBeforeProbe(t *testing.T) {
	f := newFixture(t)
	f.provider.Initialize(context.Background())
	f.log.calls = nil

	user, err := f.provider.Login(context.Background(), models.LoginRequest{Email: "ada@shop.ng", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "ada@shop.ng", user.Email)
	assert.Equal(t, []string{"login", "csrf", "me"}, f.log.calls)
	assert.Equal(t, StateAuthenticated, f.provider.State())
}

func TestLoginRejectedLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	f.provider.Initialize(context.Background())
	f.api.loginErr = &apiclient.Error{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	f.log.calls = nil

	_, err := f.provider.Login(context.Background(), models.LoginRequest{Email: "ada@shop.ng", Password: "bad"})

	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", apiclient.MessageOf(err, "Login failed"))
	assert.Equal(t, []string{"login"}, f.log.calls)
	assert.Equal(t, StateAnonymous, f.provider.State())
}

func TestLoginProbeFailureEndsAnonymous(t *testing.T) {
	f := newFixture(t)
	f.api.meErr = errors.New("boom")

	_, err := f.provider.Login(context.Background(), models.LoginRequest{Email: "ada@shop.ng", Password: "pw"})

	require.Error(t, err)
	assert.Equal(t, StateAnonymous, f.provider.State())
}

func TestLogoutFailOpen(t *testing.T) {
	f := newFixture(t)
	f.setSessionCookie()
	f.provider.Initialize(context.Background())
	require.True(t, f.provider.Authenticated())

	f.api.logoutErr = errors.New("network down")
	f.provider.Logout(context.Background())

	assert.Equal(t, StateAnonymous, f.provider.State())
	assert.Nil(t, f.provider.CurrentUser())
	assert.False(t, f.sess.HasSessionCookie())
	assert.Equal(t, []string{"/login"}, f.nav.History())
}

func TestLogoutSuccess(t *testing.T) {
	f := newFixture(t)
	f.setSessionCookie()
	f.provider.Initialize(context.Background())

	f.provider.Logout(context.Background())

	assert.Equal(t, StateAnonymous, f.provider.State())
	assert.Nil(t, f.provider.CurrentUser())
	assert.Equal(t, "/login", f.nav.Pending())
}

func TestRevalidateFunnelsThroughProbe(t *testing.T) {
	f := newFixture(t)
	f.setSessionCookie()
	f.provider.Initialize(context.Background())

	f.api.meErr = errors.New("expired")
	assert.Equal(t, StateAnonymous, f.provider.Revalidate(context.Background()))
	assert.Nil(t, f.provider.CurrentUser())
}

func TestLoginRearmsRedirectGuard(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.sess.RecordAuthFailure()
	}
	require.True(t, f.sess.RedirectScheduled())

	_, err := f.provider.Login(context.Background(), models.LoginRequest{Email: "ada@shop.ng", Password: "pw"})
	require.NoError(t, err)

	assert.False(t, f.sess.RedirectScheduled())
	assert.Equal(t, 0, f.sess.AuthFailureCount())
}
