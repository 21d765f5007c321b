package player

import "log/slog"

// Synchronizer derives the transport UI from the media element and applies
// user transport actions to it. Not safe for concurrent use: every method,
// including the handlers installed by Attach, must run on the event loop
// that the Poster feeds.
type Synchronizer struct {
	media  Media
	screen Fullscreen
	cfg    *Config
	logger *slog.Logger

	ui    UIState
	track TrackBounds
	hide  *autoHide

	observers []func(UIState)
}

// NewSynchronizer wires a synchronizer to its collaborators. post receives
// the auto-hide timeouts and must deliver them back through the same loop.
func NewSynchronizer(media Media, screen Fullscreen, post Poster, opts ...Option) *Synchronizer {
	cfg := DefaultConfig()
	cfg.Apply(opts...)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "player")

	s := &Synchronizer{
		media:  media,
		screen: screen,
		cfg:    cfg,
		logger: logger,
		track:  cfg.Track,
		ui: UIState{
			PlayPause:       GlyphPlay,
			FullscreenGlyph: GlyphExpand,
			Elapsed:         FormatTime(0),
			DurationLabel:   FormatTime(0),
		},
		hide: &autoHide{
			clock:  cfg.Clock,
			delay:  cfg.AutoHideDelay,
			post:   post,
			logger: logger,
		},
	}
	return s
}

// State returns the current UI state.
func (s *Synchronizer) State() UIState {
	return s.ui
}

// Snapshot returns the media state as currently reported.
func (s *Synchronizer) Snapshot() Snapshot {
	network := NetworkReady
	switch {
	case s.ui.ErrorVisible:
		network = NetworkError
	case s.ui.Buffering:
		network = NetworkBuffering
	}
	return Snapshot{
		CurrentTime: s.media.CurrentTime(),
		Duration:    s.media.Duration(),
		Paused:      s.media.Paused(),
		Ended:       s.media.Ended(),
		Network:     network,
	}
}

// OnChange registers fn to be called with the new state whenever a handler
// or transport operation changes it.
func (s *Synchronizer) OnChange(fn func(UIState)) {
	s.observers = append(s.observers, fn)
}

// SetTrack replaces the progress track geometry, e.g. after a resize.
func (s *Synchronizer) SetTrack(b TrackBounds) {
	s.track = b
}

// Track returns the progress track geometry.
func (s *Synchronizer) Track() TrackBounds {
	return s.track
}

// HidePending reports whether an auto-hide is scheduled.
func (s *Synchronizer) HidePending() bool {
	return s.hide.pending
}

// Close cancels the pending auto-hide.
func (s *Synchronizer) Close() {
	s.hide.stop()
}

// mutate runs fn and notifies observers if the state changed.
func (s *Synchronizer) mutate(fn func()) {
	before := s.ui
	fn()
	if s.ui == before {
		return
	}
	for _, obs := range s.observers {
		obs(s.ui)
	}
}

func (s *Synchronizer) updateProgress() {
	ct := s.media.CurrentTime()
	s.ui.ProgressPercent = progressPercent(ct, s.media.Duration())
	s.ui.Elapsed = FormatTime(ct)
}

func (s *Synchronizer) updatePlayPause() {
	if s.media.Paused() || s.media.Ended() {
		s.ui.PlayPause = GlyphPlay
	} else {
		s.ui.PlayPause = GlyphPause
	}
}

func (s *Synchronizer) updateFullscreen() {
	if s.screen.IsFullscreen() {
		s.ui.FullscreenGlyph = GlyphCompress
	} else {
		s.ui.FullscreenGlyph = GlyphExpand
	}
}

// show makes the controls visible and refreshes the play/pause glyph.
func (s *Synchronizer) show() {
	s.ui.Visible = true
	s.updatePlayPause()
}

// resetHide shows the controls and restarts the hide countdown.
func (s *Synchronizer) resetHide() {
	s.hide.reset()
	s.show()
}

func (s *Synchronizer) showError(err error) {
	s.ui.ErrorVisible = true
	s.ui.ErrorMessage = bannerText(err)
	s.logger.Warn("media error", "error", err)
}

func (s *Synchronizer) clearError() {
	s.ui.ErrorVisible = false
	s.ui.ErrorMessage = ""
}
