package modelstar

import (
	"errors"
	"net/url"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/storage"
)

// Surface is the UI-automation collaborator the controller drives. It is
// the model-selector equivalent of the page adapter: best-effort reads of
// what the host page currently shows, plus one action.
type Surface interface {
	// CurrentMode reports the mode the host page currently has selected,
	// when it can be determined.
	CurrentMode() (Mode, bool)
	// AvailableModes lists the modes the selector currently offers.
	// Empty while the selector has not rendered yet.
	AvailableModes() []Mode
	// Select switches the host page to the given mode.
	Select(Mode) error
	// Location returns the current page URL.
	Location() string
}

// Notifier delivers page-change signals. The page adapter satisfies this.
type Notifier interface {
	Subscribe() (<-chan struct{}, func())
}

var newConversationPath = regexp.MustCompile(`^/(?:u/\d+/)?app/?$`)

// IsNewConversationRoute reports whether the location is a blank-chat
// route, the only place auto-apply is allowed to act.
func IsNewConversationRoute(location string) bool {
	path := location
	if u, err := url.Parse(location); err == nil && u.Path != "" {
		path = u.Path
	}
	return newConversationPath.MatchString(path)
}

const (
	defaultRoutePoll     = 600 * time.Millisecond
	defaultRetryInterval = 900 * time.Millisecond
	defaultMaxAttempts   = 20
)

// Options configures a Controller. Zero durations and counts get the
// production defaults.
type Options struct {
	Store    *storage.Service
	Surface  Surface
	Notifier Notifier
	Logger   *zap.Logger
	User     string

	RoutePollInterval time.Duration
	RetryInterval     time.Duration
	MaxAttempts       int
}

// Controller owns the starred-mode preference and the auto-apply loop
// that switches a fresh conversation to the starred mode. The loop has
// two triggers feeding one idempotent apply attempt: a route watcher
// polling Location(), and page-change notifications. Application is
// bounded per route session so a user switching modes by hand is not
// fought with.
type Controller struct {
	store    *storage.Service
	surface  Surface
	notifier Notifier
	logger   *zap.Logger
	user     string

	routePoll     time.Duration
	retryInterval time.Duration
	maxAttempts   int

	mu         sync.Mutex
	starred    *Mode
	sessionKey string
	attempts   int
	pending    bool

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewController loads the user's starred mode and returns a stopped
// controller. Call Start to arm the auto-apply loop.
func NewController(opts Options) (*Controller, error) {
	if opts.Store == nil || opts.Surface == nil || opts.Notifier == nil {
		return nil, errors.New("modelstar: store, surface and notifier are required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RoutePollInterval <= 0 {
		opts.RoutePollInterval = defaultRoutePoll
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = defaultRetryInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}

	c := &Controller{
		store:         opts.Store,
		surface:       opts.Surface,
		notifier:      opts.Notifier,
		logger:        opts.Logger,
		user:          opts.User,
		routePoll:     opts.RoutePollInterval,
		retryInterval: opts.RetryInterval,
		maxAttempts:   opts.MaxAttempts,
		done:          make(chan struct{}),
	}

	raw, err := c.store.GetStarredMode(c.user)
	if err != nil {
		return nil, err
	}
	if mode, ok := ParseMode(raw); ok {
		c.starred = &mode
	}

	return c, nil
}

// Starred returns the starred mode, if any.
func (c *Controller) Starred() (Mode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.starred == nil {
		return "", false
	}
	return *c.starred, true
}

// Star persists mode as the user's default and re-arms auto-apply for the
// current route. Starring the already-starred mode clears the star.
func (c *Controller) Star(mode Mode) error {
	canonical, ok := ParseMode(string(mode))
	if !ok {
		return errors.New("modelstar: unknown mode " + string(mode))
	}
	mode = canonical

	c.mu.Lock()
	toggleOff := c.starred != nil && *c.starred == mode
	c.mu.Unlock()
	if toggleOff {
		return c.Unstar()
	}

	if err := c.store.SetStarredMode(c.user, string(mode)); err != nil {
		return err
	}

	c.mu.Lock()
	m := mode
	c.starred = &m
	c.sessionKey = ""
	c.mu.Unlock()

	c.beginSession(c.surface.Location(), true)
	return nil
}

// Unstar clears the starred mode.
func (c *Controller) Unstar() error {
	if err := c.store.SetStarredMode(c.user, ""); err != nil {
		return err
	}

	c.mu.Lock()
	c.starred = nil
	c.sessionKey = ""
	c.pending = false
	c.mu.Unlock()
	return nil
}

// Start arms the auto-apply loop. An attempt for the current route runs
// immediately.
func (c *Controller) Start() {
	// Captured before the goroutine spawns so a navigation landing
	// between Start returning and the first tick is still seen as a
	// transition.
	lastLocation := c.surface.Location()
	c.beginSession(lastLocation, true)

	changes, cancelSub := c.notifier.Subscribe()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancelSub()

		route := time.NewTicker(c.routePoll)
		defer route.Stop()
		retry := time.NewTicker(c.retryInterval)
		defer retry.Stop()

		for {
			select {
			case <-c.done:
				return
			case <-route.C:
				if location := c.surface.Location(); location != lastLocation {
					lastLocation = location
					c.beginSession(location, true)
				}
			case <-changes:
				// Page changes can carry a navigation with them.
				if location := c.surface.Location(); location != lastLocation {
					lastLocation = location
					c.beginSession(location, true)
				} else {
					c.attempt()
				}
			case <-retry.C:
				c.attempt()
			}
		}
	}()
}

// Stop tears the loop down. Safe to call any number of times, including
// before Start.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
	c.wg.Wait()
}

// beginSession opens an apply session for a route. Each route gets at
// most one session unless forced; a session expires after a bounded
// number of attempts.
func (c *Controller) beginSession(location string, force bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.starred == nil || !IsNewConversationRoute(location) {
		c.pending = false
		return
	}
	if !force && c.sessionKey == location {
		return
	}

	c.sessionKey = location
	c.attempts = 0
	c.pending = true
	c.attemptLocked()
}

// attempt runs one idempotent apply try when a session is open.
func (c *Controller) attempt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attemptLocked()
}

func (c *Controller) attemptLocked() {
	if !c.pending || c.starred == nil {
		return
	}

	// The route may have moved on since the session opened.
	if c.surface.Location() != c.sessionKey || !IsNewConversationRoute(c.sessionKey) {
		c.pending = false
		return
	}

	if c.attempts >= c.maxAttempts {
		c.logger.Debug("auto-apply gave up", zap.String("mode", string(*c.starred)))
		c.pending = false
		return
	}

	want := *c.starred
	if current, ok := c.surface.CurrentMode(); ok && current == want {
		c.pending = false
		return
	}

	// Waiting for the selector to render does not consume the budget;
	// only actual switch tries count.
	if !modeAvailable(c.surface.AvailableModes(), want) {
		return
	}

	c.attempts++
	if err := c.surface.Select(want); err != nil {
		c.logger.Debug("mode select failed", zap.String("mode", string(want)), zap.Error(err))
		return
	}
	c.pending = false
	c.logger.Debug("auto-applied starred mode", zap.String("mode", string(want)))
}

func modeAvailable(modes []Mode, want Mode) bool {
	for _, m := range modes {
		if m == want {
			return true
		}
	}
	return false
}
