package player

import (
	"errors"
	"math"
	"strings"
)

// Play starts playback unless already playing.
func (s *Synchronizer) Play() {
	s.mutate(func() {
		if !s.media.Paused() && !s.media.Ended() {
			return
		}
		if err := s.media.Play(); err != nil {
			s.showError(err)
		}
		s.updatePlayPause()
	})
}

// Pause pauses playback unless already paused.
func (s *Synchronizer) Pause() {
	s.mutate(func() {
		if s.media.Paused() {
			return
		}
		s.media.Pause()
		s.updatePlayPause()
	})
}

// TogglePlay plays when paused and pauses otherwise.
func (s *Synchronizer) TogglePlay() {
	if s.media.Paused() {
		s.Play()
	} else {
		s.Pause()
	}
}

// Seek moves playback to the time under pointer x on the progress track.
// The fraction is clamped to [0, 1] so pointers outside the track land on
// its ends.
func (s *Synchronizer) Seek(x float64) error {
	frac, ok := s.track.Fraction(x)
	if !ok {
		return ErrNoTrack
	}
	d := s.media.Duration()
	if !knownDuration(d) {
		return ErrUnknownDuration
	}

	target := frac * d
	s.logger.Debug("seek", "x", x, "fraction", frac, "time", target)
	s.mutate(func() {
		s.media.SetCurrentTime(target)
		s.updateProgress()
		s.resetHide()
	})
	return nil
}

// BeginSeek starts a drag-seek at x.
func (s *Synchronizer) BeginSeek(x float64) {
	s.mutate(func() { s.ui.Seeking = true })
	s.seekQuiet(x)
}

// DragSeek seeks to x if a drag-seek is in progress.
func (s *Synchronizer) DragSeek(x float64) {
	if s.ui.Seeking {
		s.seekQuiet(x)
	}
}

// EndSeek ends any drag-seek.
func (s *Synchronizer) EndSeek() {
	s.mutate(func() { s.ui.Seeking = false })
}

func (s *Synchronizer) seekQuiet(x float64) {
	if err := s.Seek(x); err != nil {
		s.logger.Debug("seek ignored", "x", x, "error", err)
	}
}

// SkipForward jumps SkipSeconds ahead without passing the end.
func (s *Synchronizer) SkipForward() {
	if err := s.skip(s.cfg.SkipSeconds); err != nil {
		s.logger.Debug("skip ignored", "error", err)
	}
}

func (s *Synchronizer) skip(seconds float64) error {
	if s.media.Source() == "" {
		return ErrNoSource
	}
	d := s.media.Duration()
	if !knownDuration(d) {
		return ErrUnknownDuration
	}
	target := math.Min(s.media.CurrentTime()+seconds, d)
	s.mutate(func() {
		s.media.SetCurrentTime(target)
		s.updateProgress()
	})
	return nil
}

// ToggleFullscreen enters fullscreen, or leaves it when already there.
// The request completes asynchronously; the FullscreenChange event that
// follows drives the glyph and the auto-hide reset.
func (s *Synchronizer) ToggleFullscreen() {
	var err error
	if !s.screen.IsFullscreen() {
		err = s.screen.RequestFullscreen()
	} else {
		err = s.screen.ExitFullscreen()
	}
	if err != nil {
		s.logger.Warn("fullscreen request failed", "error", err)
	}
	s.mutate(s.updateFullscreen)
}

// LoadSource points the media element at url and reloads it. Empty input
// is ignored. It reports whether a load was issued.
func (s *Synchronizer) LoadSource(url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}
	s.logger.Info("loading source", "url", url)
	s.mutate(func() {
		s.media.SetSource(url)
		s.media.Load()
		s.updateProgress()
		s.updatePlayPause()
	})
	return true
}

// SetURL mirrors the URL field.
func (s *Synchronizer) SetURL(url string) {
	s.mutate(func() { s.ui.URL = url })
}

// ClearURL empties the URL field without touching the media element.
func (s *Synchronizer) ClearURL() {
	s.SetURL("")
}

// Paste handles the result of a clipboard read. A failed read is only
// logged; a successful one fills the URL field and loads it.
func (s *Synchronizer) Paste(text string, readErr error) {
	if readErr != nil {
		s.logger.Error("failed to read clipboard contents", "error", readErr)
		return
	}
	s.SetURL(text)
	s.LoadSource(text)
}

// errClipboard wraps a clipboard failure reported by the host.
func errClipboard(msg string) error {
	return errors.New("clipboard: " + msg)
}
