package player

import "github.com/teslashibe/go-panorama/pkg/events"

// Attach subscribes the synchronizer to media, input, control and timer
// events on bus and returns a function that detaches it.
func (s *Synchronizer) Attach(bus *events.Bus) func() {
	handlers := map[events.Type]events.Handler{
		events.Ready:            s.onReady,
		events.MetadataLoaded:   s.onMetadata,
		events.TimeUpdate:       s.onTimeUpdate,
		events.Play:             s.onPlayState,
		events.Pause:            s.onPlayState,
		events.Ended:            s.onPlayState,
		events.CanPlay:          s.onCanPlay,
		events.CanPlayThrough:   s.onCanPlay,
		events.Waiting:          s.onWaiting,
		events.Playing:          s.onPlaying,
		events.Error:            s.onError,
		events.FullscreenChange: s.onFullscreenChange,
		events.Click:            s.onClick,
		events.MouseDown:        s.onPointerDown,
		events.TouchStart:       s.onTouchStart,
		events.MouseMove:        s.onPointerMove,
		events.TouchMove:        s.onPointerMove,
		events.MouseUp:          s.onPointerUp,
		events.TouchEnd:         s.onTouchEnd,
		events.Control:          s.onControl,
		events.HideTimeout:      s.onHideTimeout,
	}

	unsubs := make([]func(), 0, len(handlers))
	for t, h := range handlers {
		unsubs = append(unsubs, bus.Subscribe(t, h))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// onReady puts the controls in their initial hidden state. They become
// visible once metadata loads.
func (s *Synchronizer) onReady(events.Event) {
	s.mutate(func() {
		s.updateFullscreen()
		s.hide.stop()
		s.ui.Visible = false
	})
}

func (s *Synchronizer) onMetadata(events.Event) {
	s.mutate(func() {
		s.ui.DurationLabel = FormatTime(s.media.Duration())
		s.updateProgress()
		s.resetHide()
	})
}

func (s *Synchronizer) onTimeUpdate(events.Event) {
	s.mutate(s.updateProgress)
}

func (s *Synchronizer) onPlayState(events.Event) {
	s.mutate(s.updatePlayPause)
}

func (s *Synchronizer) onCanPlay(events.Event) {
	s.mutate(s.clearError)
}

func (s *Synchronizer) onWaiting(events.Event) {
	s.mutate(func() {
		s.ui.Buffering = true
		s.resetHide()
	})
}

func (s *Synchronizer) onPlaying(events.Event) {
	s.mutate(func() { s.ui.Buffering = false })
}

func (s *Synchronizer) onError(ev events.Event) {
	s.mutate(func() {
		s.showError(&MediaError{Message: ev.Message})
	})
}

func (s *Synchronizer) onFullscreenChange(events.Event) {
	s.mutate(func() {
		s.updateFullscreen()
		s.resetHide()
	})
}

// onClick handles clicks anywhere in the document. A click on the video
// toggles playback and stops there; a click on the track seeks; every
// other click counts as activity.
func (s *Synchronizer) onClick(ev events.Event) {
	switch ev.Target.ID {
	case s.cfg.VideoID:
		s.TogglePlay()
		return
	case s.cfg.TrackID:
		s.seekQuiet(ev.Point.X)
	}
	s.mutate(s.resetHide)
}

func (s *Synchronizer) onPointerDown(ev events.Event) {
	if ev.Target.ID == s.cfg.TrackID {
		s.BeginSeek(ev.Point.X)
	}
}

func (s *Synchronizer) onTouchStart(ev events.Event) {
	s.onPointerDown(ev)
	s.mutate(s.resetHide)
}

func (s *Synchronizer) onPointerMove(ev events.Event) {
	s.DragSeek(ev.Point.X)
}

// onPointerUp ends a drag-seek wherever the pointer is released.
func (s *Synchronizer) onPointerUp(events.Event) {
	s.EndSeek()
}

// onTouchEnd seeks to the lift-off point when the finger leaves the track,
// then ends the drag.
func (s *Synchronizer) onTouchEnd(ev events.Event) {
	if ev.Target.ID == s.cfg.TrackID {
		s.seekQuiet(ev.Point.X)
	}
	s.EndSeek()
}

func (s *Synchronizer) onControl(ev events.Event) {
	switch ev.Action {
	case events.ActionPlay:
		s.Play()
	case events.ActionPause:
		s.Pause()
	case events.ActionTogglePlay:
		s.TogglePlay()
	case events.ActionFullscreen:
		s.ToggleFullscreen()
	case events.ActionLoad:
		s.LoadSource(ev.Value)
	case events.ActionSetURL:
		s.SetURL(ev.Value)
		s.LoadSource(ev.Value)
	case events.ActionClearURL:
		s.ClearURL()
	case events.ActionPaste:
		var err error
		if ev.Message != "" {
			err = errClipboard(ev.Message)
		}
		s.Paste(ev.Value, err)
	case events.ActionSkip:
		s.SkipForward()
	default:
		s.logger.Debug("unknown control action", "action", ev.Action)
	}
}

func (s *Synchronizer) onHideTimeout(ev events.Event) {
	s.mutate(func() {
		if s.hide.fire(ev.Gen) {
			s.ui.Visible = false
		}
	})
}
