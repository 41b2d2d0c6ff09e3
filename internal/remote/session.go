package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/mkravets/jobvault/internal/common"
	"github.com/mkravets/jobvault/internal/logging"
	"github.com/mkravets/jobvault/internal/settings"
)

// State names the session lifecycle phase. Authenticating and Refreshing are
// the only phases with outstanding I/O; every other state is instantaneous
// local state.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
	StateRefreshing      State = "refreshing"
	StateSignedOut       State = "signed_out"
)

// DefaultRefreshMargin is how close to expiry a token may get before it is
// refreshed proactively.
const DefaultRefreshMargin = 2 * time.Minute

// SessionConfig carries the OAuth client settings for the remote service.
type SessionConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	Scopes       []string

	// RefreshMargin overrides DefaultRefreshMargin when positive.
	RefreshMargin time.Duration
}

// Session owns the credential state of the remote client: created on
// successful authentication, refreshed transparently near expiry, destroyed
// on sign-out or irrecoverable auth failure. Tokens persist in the settings
// store so a restarted app resumes the session. Single-writer: callers must
// not run two auth flows concurrently.
type Session struct {
	oauth  *oauth2.Config
	store  settings.Store
	log    logging.Logger
	margin time.Duration

	state State
	token *oauth2.Token
	now   func() time.Time
}

// NewSession builds a Session. No I/O happens until the first call that
// needs a token.
func NewSession(cfg SessionConfig, store settings.Store, log logging.Logger) *Session {
	margin := cfg.RefreshMargin
	if margin <= 0 {
		margin = DefaultRefreshMargin
	}
	return &Session{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		store:  store,
		log:    log,
		margin: margin,
		state:  StateUnauthenticated,
		now:    time.Now,
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

// AuthCodeURL starts the authorization-code flow: it returns the URL the
// user must visit and the state nonce the callback must echo back.
func (s *Session) AuthCodeURL() (url, state string) {
	state = uuid.NewString()
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline), state
}

// Exchange completes the authorization-code flow. On failure the session
// returns to Unauthenticated with common.ErrAuthFailed; the flow is never
// silently restarted.
func (s *Session) Exchange(ctx context.Context, code string) error {
	s.state = StateAuthenticating
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.state = StateUnauthenticated
		return fmt.Errorf("%w: code exchange: %v", common.ErrAuthFailed, err)
	}
	s.token = tok
	s.state = StateAuthenticated
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.log.Info(ctx, "cloud session established", "expires", tok.Expiry)
	return nil
}

// AccessToken returns a live bearer token, loading persisted credentials on
// first use and refreshing proactively once the token is within the safety
// margin of expiry. Returns common.ErrAuthFailed when no session exists.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	if s.token == nil {
		if err := s.load(ctx); err != nil {
			return "", err
		}
	}
	if s.token.AccessToken == "" || s.withinMargin() {
		if err := s.ForceRefresh(ctx); err != nil {
			return "", err
		}
	}
	return s.token.AccessToken, nil
}

// ForceRefresh exchanges the refresh token for a new access token. Callers
// use it reactively after an authorization failure, at most once per
// request. Irrecoverable failures surface as common.ErrTokenExpired and
// drop the session back to Unauthenticated.
func (s *Session) ForceRefresh(ctx context.Context) error {
	if s.token == nil || s.token.RefreshToken == "" {
		s.state = StateUnauthenticated
		return fmt.Errorf("%w: no refresh token", common.ErrTokenExpired)
	}
	s.state = StateRefreshing
	src := s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: s.token.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		s.state = StateUnauthenticated
		s.token = nil
		return fmt.Errorf("%w: refresh: %v", common.ErrTokenExpired, err)
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = s.token.RefreshToken
	}
	s.token = tok
	s.state = StateAuthenticated
	s.log.Debug(ctx, "access token refreshed", "expires", tok.Expiry)
	return s.persist(ctx)
}

// SignOut destroys the session and wipes persisted credentials.
func (s *Session) SignOut(ctx context.Context) error {
	s.token = nil
	s.state = StateSignedOut
	for _, key := range []string{
		settings.KeyCloudAccessToken,
		settings.KeyCloudRefreshToken,
		settings.KeyCloudTokenExpiry,
	} {
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear credential %s: %w", key, err)
		}
	}
	s.log.Info(ctx, "cloud session signed out")
	return nil
}

// withinMargin reports whether the access token is within the safety margin
// of its expiry. Tokens without a known expiry are treated as live.
func (s *Session) withinMargin() bool {
	exp := s.expiry()
	if exp.IsZero() {
		return false
	}
	return s.now().After(exp.Add(-s.margin))
}

// expiry determines the access token expiry: the token response when it
// carried one, otherwise the exp claim of a JWT access token.
func (s *Session) expiry() time.Time {
	if s.token == nil {
		return time.Time{}
	}
	if !s.token.Expiry.IsZero() {
		return s.token.Expiry
	}
	return jwtExpiry(s.token.AccessToken)
}

// jwtExpiry extracts the exp claim from a JWT without verifying the
// signature; the token is only inspected for scheduling, never trusted.
func jwtExpiry(accessToken string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func (s *Session) load(ctx context.Context) error {
	access, err := s.store.Get(ctx, settings.KeyCloudAccessToken)
	if err != nil {
		return err
	}
	refresh, err := s.store.Get(ctx, settings.KeyCloudRefreshToken)
	if err != nil {
		return err
	}
	if access == "" && refresh == "" {
		return fmt.Errorf("%w: sign in required", common.ErrAuthFailed)
	}

	tok := &oauth2.Token{AccessToken: access, RefreshToken: refresh}
	if raw, err := s.store.Get(ctx, settings.KeyCloudTokenExpiry); err == nil && raw != "" {
		if exp, perr := time.Parse(time.RFC3339Nano, raw); perr == nil {
			tok.Expiry = exp
		}
	}
	s.token = tok
	s.state = StateAuthenticated
	return nil
}

func (s *Session) persist(ctx context.Context) error {
	if err := s.store.Set(ctx, settings.KeyCloudAccessToken, s.token.AccessToken); err != nil {
		return err
	}
	if err := s.store.Set(ctx, settings.KeyCloudRefreshToken, s.token.RefreshToken); err != nil {
		return err
	}
	expiry := ""
	if !s.token.Expiry.IsZero() {
		expiry = s.token.Expiry.UTC().Format(time.RFC3339Nano)
	}
	return s.store.Set(ctx, settings.KeyCloudTokenExpiry, expiry)
}
