package protocol

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewInputMessage creates an input event message
func NewInputMessage(kind string, x, y float64, target TargetRef) (*Message, error) {
	return NewMessage(TypeInput, InputEvent{
		Kind:   kind,
		X:      x,
		Y:      y,
		Target: target,
	})
}

// NewMediaMessage creates a media event message
func NewMediaMessage(name string, snap MediaSnapshot) (*Message, error) {
	return NewMessage(TypeMedia, MediaEvent{
		Name:     name,
		Snapshot: snap,
	})
}

// NewMediaErrorMessage creates a media error event message
func NewMediaErrorMessage(snap MediaSnapshot, code int, message string) (*Message, error) {
	return NewMessage(TypeMedia, MediaEvent{
		Name:     "error",
		Snapshot: snap,
		Code:     code,
		Message:  message,
	})
}

// NewControlMessage creates a transport control message
func NewControlMessage(action, value string) (*Message, error) {
	return NewMessage(TypeControl, ControlData{
		Action: action,
		Value:  value,
	})
}

// NewTrackMessage creates a progress track geometry message
func NewTrackMessage(left, width float64) (*Message, error) {
	return NewMessage(TypeTrack, TrackData{
		Left:  left,
		Width: width,
	})
}

// NewRotationMessage creates a camera rotation message
func NewRotationMessage(yaw, pitch float64) (*Message, error) {
	return NewMessage(TypeRotation, RotationData{
		Yaw:   yaw,
		Pitch: pitch,
	})
}

// NewMediaCommandMessage creates a media command message
func NewMediaCommandMessage(cmd MediaCommand) (*Message, error) {
	return NewMessage(TypeMediaCmd, cmd)
}

// NewFullscreenMessage creates a fullscreen request message
func NewFullscreenMessage(enter bool) (*Message, error) {
	return NewMessage(TypeFullscreen, FullscreenCommand{Enter: enter})
}

// NewUIMessage creates a UI state message
func NewUIMessage(ui UIData) (*Message, error) {
	return NewMessage(TypeUI, ui)
}

// NewWelcomeMessage creates a session assignment message
func NewWelcomeMessage(sessionID string) (*Message, error) {
	return NewMessage(TypeWelcome, WelcomeData{SessionID: sessionID})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: 0, // Will be set by NewMessage
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetInputEvent extracts an input event from a message
func (m *Message) GetInputEvent() (*InputEvent, error) {
	var data InputEvent
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetMediaEvent extracts a media event from a message
func (m *Message) GetMediaEvent() (*MediaEvent, error) {
	var data MediaEvent
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetControlData extracts a control action from a message
func (m *Message) GetControlData() (*ControlData, error) {
	var data ControlData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetTrackData extracts track geometry from a message
func (m *Message) GetTrackData() (*TrackData, error) {
	var data TrackData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetRotationData extracts a rotation from a message
func (m *Message) GetRotationData() (*RotationData, error) {
	var data RotationData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetMediaCommand extracts a media command from a message
func (m *Message) GetMediaCommand() (*MediaCommand, error) {
	var data MediaCommand
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetFullscreenCommand extracts a fullscreen request from a message
func (m *Message) GetFullscreenCommand() (*FullscreenCommand, error) {
	var data FullscreenCommand
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetUIData extracts UI state from a message
func (m *Message) GetUIData() (*UIData, error) {
	var data UIData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetWelcomeData extracts the session assignment from a message
func (m *Message) GetWelcomeData() (*WelcomeData, error) {
	var data WelcomeData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Float returns a pointer to v, for optional fields such as
// MediaSnapshot.Duration.
func Float(v float64) *float64 {
	return &v
}
