package modelstar_test

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/modelstar"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/storage"
)

var errSelectorBusy = errors.New("selector busy")

type fakeSurface struct {
	mu          sync.Mutex
	location    string
	current     modelstar.Mode
	hasCurrent  bool
	available   []modelstar.Mode
	selectErr   error
	selectCalls int
}

func (f *fakeSurface) CurrentMode() (modelstar.Mode, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, f.hasCurrent
}

func (f *fakeSurface) AvailableModes() []modelstar.Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

func (f *fakeSurface) Select(mode modelstar.Mode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectCalls++
	if f.selectErr != nil {
		return f.selectErr
	}
	f.current = mode
	f.hasCurrent = true
	return nil
}

func (f *fakeSurface) Location() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.location
}

func (f *fakeSurface) setLocation(location string) {
	f.mu.Lock()
	f.location = location
	f.mu.Unlock()
}

func (f *fakeSurface) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selectCalls
}

func (f *fakeSurface) mode() (modelstar.Mode, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, f.hasCurrent
}

type fakeNotifier struct {
	mu   sync.Mutex
	subs []chan struct{}
}

func (f *fakeNotifier) Subscribe() (<-chan struct{}, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{}, 1)
	f.subs = append(f.subs, ch)
	return ch, func() {}
}

func (f *fakeNotifier) notify() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func newTestService(t *testing.T) *storage.Service {
	t.Helper()
	return storage.NewService(storage.NewJSONKV(filepath.Join(t.TempDir(), "state.json")), nil)
}

func newTestController(t *testing.T, svc *storage.Service, surface *fakeSurface, notifier *fakeNotifier) *modelstar.Controller {
	t.Helper()
	c, err := modelstar.NewController(modelstar.Options{
		Store:             svc,
		Surface:           surface,
		Notifier:          notifier,
		User:              "someone@example.com",
		RoutePollInterval: 5 * time.Millisecond,
		RetryInterval:     5 * time.Millisecond,
		MaxAttempts:       5,
	})
	assert.NilError(t, err)
	t.Cleanup(c.Stop)
	return c
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for " + what)
		case <-time.After(2 * time.Millisecond):
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, raw := range []string{"Fast", "Thinking", "Pro"} {
		mode, ok := modelstar.ParseMode(raw)
		assert.Assert(t, ok)
		assert.Equal(t, string(mode), raw)
	}
	for _, raw := range []string{"", "Ultra", "null", "fastest"} {
		_, ok := modelstar.ParseMode(raw)
		assert.Assert(t, !ok, "expected %q to be rejected", raw)
	}
}

func TestParseMode_CaseInsensitiveCanonicalizes(t *testing.T) {
	cases := map[string]modelstar.Mode{
		"fast":     modelstar.ModeFast,
		"thinking": modelstar.ModeThinking,
		"pro":      modelstar.ModePro,
		"PRO":      modelstar.ModePro,
	}
	for raw, want := range cases {
		mode, ok := modelstar.ParseMode(raw)
		assert.Assert(t, ok, "expected %q to parse", raw)
		assert.Equal(t, mode, want)
	}
}

func TestIsNewConversationRoute(t *testing.T) {
	cases := []struct {
		location string
		want     bool
	}{
		{"/app", true},
		{"/app/", true},
		{"/u/1/app", true},
		{"https://gemini.google.com/app", true},
		{"https://gemini.google.com/u/2/app/", true},
		{"/app/abc123", false},
		{"/gem/writing/abc123", false},
		{"/", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, modelstar.IsNewConversationRoute(tc.location), tc.want, tc.location)
	}
}

func TestController_LoadsStarredModeFromStorage(t *testing.T) {
	svc := newTestService(t)
	assert.NilError(t, svc.SetStarredMode("someone@example.com", "Thinking"))

	c := newTestController(t, svc, &fakeSurface{}, &fakeNotifier{})

	mode, ok := c.Starred()
	assert.Assert(t, ok)
	assert.Equal(t, mode, modelstar.ModeThinking)
}

func TestController_InvalidStoredModeFallsBackToUnstarred(t *testing.T) {
	svc := newTestService(t)
	assert.NilError(t, svc.SetStarredMode("someone@example.com", "Ultra"))

	c := newTestController(t, svc, &fakeSurface{}, &fakeNotifier{})

	_, ok := c.Starred()
	assert.Assert(t, !ok)
}

func TestController_StarPersistsAndToggles(t *testing.T) {
	svc := newTestService(t)
	c := newTestController(t, svc, &fakeSurface{}, &fakeNotifier{})

	assert.NilError(t, c.Star(modelstar.ModePro))
	stored, err := svc.GetStarredMode("someone@example.com")
	assert.NilError(t, err)
	assert.Equal(t, stored, "Pro")

	// Starring the starred mode clears it.
	assert.NilError(t, c.Star(modelstar.ModePro))
	_, ok := c.Starred()
	assert.Assert(t, !ok)
	stored, err = svc.GetStarredMode("someone@example.com")
	assert.NilError(t, err)
	assert.Equal(t, stored, "")
}

func TestController_StarCanonicalizesLowercaseInput(t *testing.T) {
	svc := newTestService(t)
	c := newTestController(t, svc, &fakeSurface{}, &fakeNotifier{})

	assert.NilError(t, c.Star(modelstar.Mode("pro")))
	mode, ok := c.Starred()
	assert.Assert(t, ok)
	assert.Equal(t, mode, modelstar.ModePro)

	stored, err := svc.GetStarredMode("someone@example.com")
	assert.NilError(t, err)
	assert.Equal(t, stored, "Pro")
}

func TestController_StarRejectsUnknownMode(t *testing.T) {
	svc := newTestService(t)
	c := newTestController(t, svc, &fakeSurface{}, &fakeNotifier{})

	err := c.Star(modelstar.Mode("Ultra"))
	assert.ErrorContains(t, err, "unknown mode")
}

func TestController_AutoAppliesOnNewConversationRoute(t *testing.T) {
	svc := newTestService(t)
	assert.NilError(t, svc.SetStarredMode("someone@example.com", "Thinking"))

	surface := &fakeSurface{
		location:   "https://gemini.google.com/app",
		current:    modelstar.ModeFast,
		hasCurrent: true,
		available:  modelstar.Modes(),
	}
	c := newTestController(t, svc, surface, &fakeNotifier{})
	c.Start()

	waitFor(t, "auto-apply", func() bool {
		mode, ok := surface.mode()
		return ok && mode == modelstar.ModeThinking
	})
}

func TestController_DoesNotApplyOnConversationRoute(t *testing.T) {
	svc := newTestService(t)
	assert.NilError(t, svc.SetStarredMode("someone@example.com", "Thinking"))

	surface := &fakeSurface{
		location:   "https://gemini.google.com/app/abc123",
		current:    modelstar.ModeFast,
		hasCurrent: true,
		available:  modelstar.Modes(),
	}
	c := newTestController(t, svc, surface, &fakeNotifier{})
	c.Start()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, surface.calls(), 0)
}

func TestController_AppliesAfterNavigatingToNewConversation(t *testing.T) {
	svc := newTestService(t)
	assert.NilError(t, svc.SetStarredMode("someone@example.com", "Pro"))

	surface := &fakeSurface{
		location:   "https://gemini.google.com/app/abc123",
		current:    modelstar.ModeFast,
		hasCurrent: true,
		available:  modelstar.Modes(),
	}
	notifier := &fakeNotifier{}
	c := newTestController(t, svc, surface, notifier)
	c.Start()

	surface.setLocation("https://gemini.google.com/app")
	notifier.notify()

	waitFor(t, "auto-apply after route change", func() bool {
		mode, _ := surface.mode()
		return mode == modelstar.ModePro
	})
}

func TestController_RouteChangeBetweenStartAndFirstPoll(t *testing.T) {
	svc := newTestService(t)
	assert.NilError(t, svc.SetStarredMode("someone@example.com", "Thinking"))

	surface := &fakeSurface{
		location:  "https://gemini.google.com/app/abc123",
		available: modelstar.Modes(),
	}
	c := newTestController(t, svc, surface, &fakeNotifier{})
	c.Start()

	// No page-change signal: only the route poll can see this move.
	surface.setLocation("https://gemini.google.com/app")

	waitFor(t, "auto-apply from route poll", func() bool {
		mode, _ := surface.mode()
		return mode == modelstar.ModeThinking
	})
}

func TestController_RetriesWhileSelectorUnrendered(t *testing.T) {
	svc := newTestService(t)
	assert.NilError(t, svc.SetStarredMode("someone@example.com", "Thinking"))

	// Selector has not rendered: no current mode, no options.
	surface := &fakeSurface{location: "https://gemini.google.com/app"}
	c := newTestController(t, svc, surface, &fakeNotifier{})
	c.Start()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, surface.calls(), 0)

	// Options render late; the retry trigger picks them up.
	surface.mu.Lock()
	surface.available = modelstar.Modes()
	surface.mu.Unlock()

	waitFor(t, "late apply", func() bool {
		mode, ok := surface.mode()
		return ok && mode == modelstar.ModeThinking
	})
}

func TestController_GivesUpAfterBoundedAttempts(t *testing.T) {
	svc := newTestService(t)
	assert.NilError(t, svc.SetStarredMode("someone@example.com", "Thinking"))

	surface := &fakeSurface{
		location:  "https://gemini.google.com/app",
		available: modelstar.Modes(),
		selectErr: errSelectorBusy,
	}
	c := newTestController(t, svc, surface, &fakeNotifier{})
	c.Start()

	waitFor(t, "attempt budget exhausted", func() bool {
		return surface.calls() >= 1
	})
	time.Sleep(100 * time.Millisecond)

	calls := surface.calls()
	assert.Assert(t, calls <= 5, "expected at most 5 attempts, got %d", calls)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, surface.calls(), calls)
}

func TestController_StopIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	surface := &fakeSurface{location: "https://gemini.google.com/app"}
	c := newTestController(t, svc, surface, &fakeNotifier{})

	// Stop before Start must not hang or panic.
	c.Stop()
	c.Stop()
}
