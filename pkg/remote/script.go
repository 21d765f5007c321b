package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-panorama/pkg/protocol"
)

// ErrBadStep is returned for script steps that do not name exactly one
// action.
var ErrBadStep = errors.New("remote: step must have exactly one action")

// Script is a recorded or hand-written interaction with a player page
type Script struct {
	// Duration is what the simulated element reports after a load.
	Duration float64 `yaml:"duration"`

	Steps []Step `yaml:"steps"`
}

// Step is one action, performed after Wait.
type Step struct {
	Wait time.Duration `yaml:"wait"`

	Input   *protocol.InputEvent  `yaml:"input"`
	Media   string                `yaml:"media"`
	Control *protocol.ControlData `yaml:"control"`
	Track   *protocol.TrackData   `yaml:"track"`
	Advance float64               `yaml:"advance"`
	Ready   bool                  `yaml:"ready"`
}

func (s Step) actions() int {
	n := 0
	if s.Input != nil {
		n++
	}
	if s.Media != "" {
		n++
	}
	if s.Control != nil {
		n++
	}
	if s.Track != nil {
		n++
	}
	if s.Advance > 0 {
		n++
	}
	if s.Ready {
		n++
	}
	return n
}

// ParseScript decodes a YAML script
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, step := range s.Steps {
		if n := step.actions(); n > 1 || (n == 0 && step.Wait == 0) {
			return nil, fmt.Errorf("step %d: %w", i, ErrBadStep)
		}
	}
	return &s, nil
}

// LoadScript reads and decodes a YAML script file
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// Runner plays a script through a page
type Runner struct {
	Page  *Page
	Clock clockwork.Clock

	// OnStep is called after each step is sent.
	OnStep func(i int, step Step)
}

// NewRunner creates a runner using the real clock
func NewRunner(page *Page) *Runner {
	return &Runner{Page: page, Clock: clockwork.NewRealClock()}
}

// Run performs every step in order, stopping at the first send error or
// when ctx is done.
func (r *Runner) Run(ctx context.Context, script *Script) error {
	if script.Duration > 0 {
		r.Page.mu.Lock()
		r.Page.Duration = script.Duration
		r.Page.mu.Unlock()
	}

	for i, step := range script.Steps {
		if step.Wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.Clock.After(step.Wait):
			}
		}
		if err := r.perform(step); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if r.OnStep != nil {
			r.OnStep(i, step)
		}
	}
	return nil
}

func (r *Runner) perform(step Step) error {
	c := r.Page.Client()
	switch {
	case step.Input != nil:
		msg, err := protocol.NewMessage(protocol.TypeInput, step.Input)
		if err != nil {
			return err
		}
		return c.Send(msg)
	case step.Media != "":
		return c.SendMedia(step.Media, r.Page.Media())
	case step.Control != nil:
		msg, err := protocol.NewMessage(protocol.TypeControl, step.Control)
		if err != nil {
			return err
		}
		return c.Send(msg)
	case step.Track != nil:
		return c.SendTrack(step.Track.Left, step.Track.Width)
	case step.Advance > 0:
		return r.Page.Advance(step.Advance)
	case step.Ready:
		return r.Page.Ready()
	}
	return nil
}
