// Package gesture turns touch drags on the panorama into camera orientation
// updates and recognizes double-taps as a skip-forward request.
//
// The controller only depends on two small interfaces: the camera it steers
// and whatever consumes the skip action. Both are usually remote adapters
// owned by a session, and hand-written fakes in tests.
//
// Result.PreventDefault says whether the host's default touch handling
// must be suppressed. A remote page cannot wait for that answer, so it
// applies the same rule locally: suppress touchmove and touchend for
// gestures that did not start on an ExcludedClass element, and suppress a
// touchstart that follows the previous start within DoubleTapWindow.
package gesture

// OrientationSink is the camera the controller steers.
type OrientationSink interface {
	Orientation() Orientation
	SetOrientation(o Orientation)
}

// Skipper consumes the double-tap action.
type Skipper interface {
	SkipForward()
}

// SkipperFunc adapts a plain function to Skipper.
type SkipperFunc func()

// SkipForward calls f.
func (f SkipperFunc) SkipForward() { f() }
