// Package session drives phone-number verification to completion and exposes
// a single authenticated/unauthenticated signal to the rest of the client.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/clipfeed/clipfeed/internal/client/models"
	"github.com/clipfeed/clipfeed/internal/client/providers"
	"github.com/clipfeed/clipfeed/internal/common"
	"github.com/clipfeed/clipfeed/internal/logging"
)

// ErrRequestInFlight is returned when a verification operation is issued while
// a previous one has not finished. Overlapping calls are rejected instead of
// silently racing.
var ErrRequestInFlight = errors.New("request already in flight")

// Config holds the normalization policy and the demo fixtures.
//
// DefaultCountryPrefix is a product policy, not a phone-number validator:
// a bare 10-digit number is assumed to belong to the default country.
type Config struct {
	DefaultCountryPrefix string
	TestPhoneNumber      string
	TestVerificationID   string
	TestConfirmCode      string
	SimulatedDelay       time.Duration
}

func (c Config) withDefaults() Config {
	if c.DefaultCountryPrefix == "" {
		c.DefaultCountryPrefix = "+91"
	}
	if c.TestPhoneNumber == "" {
		c.TestPhoneNumber = "9335922265"
	}
	if c.TestVerificationID == "" {
		c.TestVerificationID = "test-verification-id"
	}
	if c.TestConfirmCode == "" {
		c.TestConfirmCode = "000000"
	}
	if c.SimulatedDelay == 0 {
		c.SimulatedDelay = time.Second
	}
	return c
}

// Controller owns the Session state machine:
//
//	Unauthenticated --RequestCode--> CodeSent --ConfirmCode--> Authenticated
//	Authenticated --SignOut--> Unauthenticated
//
// A failed transition lands back in its origin phase with Err set.
// Re-requesting a code while in CodeSent overwrites the pending verification.
//
// Operations are synchronous and context-threaded. At most one operation runs
// at a time; a concurrent call gets ErrRequestInFlight. Snapshot may be called
// from any goroutine at any time.
type Controller struct {
	creds  providers.CredentialProvider
	cfg    Config
	logger logging.Logger

	mu          sync.Mutex
	state       models.Session
	inFlight    bool
	unsubscribe func()

	sleep func(ctx context.Context, d time.Duration) error
}

// NewController builds a Controller and subscribes to the credential
// provider's session-change notifications, so a restored session is reflected
// without any user action. Close releases the subscription.
func NewController(creds providers.CredentialProvider, cfg Config, logger logging.Logger) *Controller {
	c := &Controller{
		creds:  creds,
		cfg:    cfg.withDefaults(),
		logger: logger.With("module", "session"),
		sleep:  sleepCtx,
	}
	c.unsubscribe = creds.OnSessionChange(c.onSessionChange)
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// begin claims the single in-flight slot. Callers that fail to claim it must
// not touch the session.
func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return false
	}
	c.inFlight = true
	return true
}

func (c *Controller) end() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

func (c *Controller) update(fn func(s *models.Session)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsAuthenticated reports whether the session is in the authenticated phase.
func (c *Controller) IsAuthenticated() bool {
	return c.Snapshot().Phase == models.SessionAuthenticated
}

func (c *Controller) onSessionChange(authenticated bool) {
	c.update(func(s *models.Session) {
		if authenticated {
			s.Phase = models.SessionAuthenticated
			return
		}
		// A sign-out notification must not destroy an in-progress code flow.
		if s.Phase == models.SessionAuthenticated {
			s.Phase = models.SessionUnauthenticated
		}
	})
}

// RequestCode normalizes the raw phone number and starts a verification.
//
// Normalization: surrounding whitespace is stripped; the designated test
// number short-circuits to a simulated "code sent" state without touching the
// provider; a bare 10-digit number gets the default country prefix. An empty
// result fails fast with common.ErrValidation.
func (c *Controller) RequestCode(ctx context.Context, rawPhoneNumber string) error {
	if !c.begin() {
		return ErrRequestInFlight
	}
	defer c.end()

	c.update(func(s *models.Session) { s.Err = "" })
	trimmed := strings.TrimSpace(rawPhoneNumber)

	if trimmed == c.cfg.TestPhoneNumber {
		return c.requestCodeTestFixture(ctx, trimmed)
	}

	if !strings.HasPrefix(trimmed, "+") {
		digits := keepDigits(trimmed)
		if len(digits) == 10 {
			trimmed = c.cfg.DefaultCountryPrefix + digits
		}
	}

	if trimmed == "" {
		c.update(func(s *models.Session) { s.Err = "enter phone number" })
		return common.ErrValidation
	}

	c.update(func(s *models.Session) {
		s.PhoneNumber = trimmed
		s.Loading = true
	})
	id, err := c.creds.StartPhoneVerification(ctx, trimmed)
	if err != nil {
		c.update(func(s *models.Session) {
			s.Loading = false
			s.Err = err.Error()
		})
		c.logger.Warn(ctx, "verification start failed", "phone", trimmed, "error", err)
		return err
	}

	c.update(func(s *models.Session) {
		s.Loading = false
		s.VerificationID = id
		s.Phase = models.SessionCodeSent
	})
	c.logger.Info(ctx, "verification code sent", "phone", trimmed)
	return nil
}

// requestCodeTestFixture simulates the provider for the demo number: fixed
// prefix, fixed verification id, fixed delay, zero provider calls.
func (c *Controller) requestCodeTestFixture(ctx context.Context, number string) error {
	c.update(func(s *models.Session) {
		s.PhoneNumber = c.cfg.DefaultCountryPrefix + number
		s.Loading = true
	})
	err := c.sleep(ctx, c.cfg.SimulatedDelay)
	if err != nil {
		c.update(func(s *models.Session) {
			s.Loading = false
			s.Err = err.Error()
		})
		return err
	}
	c.update(func(s *models.Session) {
		s.Loading = false
		s.VerificationID = c.cfg.TestVerificationID
		s.Phase = models.SessionCodeSent
	})
	return nil
}

// ConfirmCode confirms the pending verification with the supplied code.
// Fails fast with common.ErrValidation when no verification is pending or the
// code is empty. The test verification id with the fixed test code
// authenticates after a simulated delay; any other code goes down the
// provider path.
func (c *Controller) ConfirmCode(ctx context.Context, code string) error {
	if !c.begin() {
		return ErrRequestInFlight
	}
	defer c.end()

	c.update(func(s *models.Session) { s.Err = "" })
	verificationID := c.Snapshot().VerificationID

	if verificationID == "" || code == "" {
		c.update(func(s *models.Session) { s.Err = "enter the code sent to your phone" })
		return common.ErrValidation
	}

	if verificationID == c.cfg.TestVerificationID && code == c.cfg.TestConfirmCode {
		c.update(func(s *models.Session) { s.Loading = true })
		err := c.sleep(ctx, c.cfg.SimulatedDelay)
		if err != nil {
			c.update(func(s *models.Session) {
				s.Loading = false
				s.Err = err.Error()
			})
			return err
		}
		c.update(func(s *models.Session) {
			s.Loading = false
			s.Phase = models.SessionAuthenticated
		})
		return nil
	}

	c.update(func(s *models.Session) { s.Loading = true })
	err := c.creds.ConfirmVerification(ctx, verificationID, code)
	if err != nil {
		c.update(func(s *models.Session) {
			s.Loading = false
			s.Err = err.Error()
		})
		c.logger.Warn(ctx, "verification confirm failed", "error", err)
		return err
	}

	c.update(func(s *models.Session) {
		s.Loading = false
		s.Phase = models.SessionAuthenticated
	})
	c.logger.Info(ctx, "authenticated")
	return nil
}

// SignOut ends the session. Provider failures are logged and swallowed; local
// state is reset regardless of the outcome.
func (c *Controller) SignOut(ctx context.Context) {
	if !c.begin() {
		return
	}
	defer c.end()

	if err := c.creds.SignOut(ctx); err != nil {
		c.logger.Warn(ctx, "sign-out failed, resetting local session anyway", "error", err)
	}
	c.update(func(s *models.Session) {
		s.Phase = models.SessionUnauthenticated
		s.VerificationID = ""
		s.Err = ""
	})
}

// Close releases the session-change subscription. Safe to call repeatedly,
// also from concurrent goroutines.
func (c *Controller) Close() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
