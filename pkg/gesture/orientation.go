package gesture

// DefaultLimit bounds both axes, in degrees. The view is deliberately kept
// inside a ±39° window rather than allowing a full 360° look.
const DefaultLimit = 39.0

// clamp restricts v to the range [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Orientation is the camera look direction in degrees.
// Yaw maps to the camera's Y rotation, Pitch to its X rotation.
type Orientation struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Clamp returns o with both axes pulled into [-limit, limit].
func (o Orientation) Clamp(limit float64) Orientation {
	return Orientation{
		Yaw:   clamp(o.Yaw, -limit, limit),
		Pitch: clamp(o.Pitch, -limit, limit),
	}
}

// Add returns the sum of o and other.
func (o Orientation) Add(other Orientation) Orientation {
	return Orientation{
		Yaw:   o.Yaw + other.Yaw,
		Pitch: o.Pitch + other.Pitch,
	}
}

// Within reports whether both axes lie inside [-limit, limit].
func (o Orientation) Within(limit float64) bool {
	return o.Yaw >= -limit && o.Yaw <= limit && o.Pitch >= -limit && o.Pitch <= limit
}
