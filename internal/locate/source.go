package locate

import "github.com/sells-group/directory-locator/internal/geo"

// SourceKind tags the active LocationSource.
type SourceKind int

const (
	KindNone SourceKind = iota
	KindDevice
	KindTypedText
)

// LocationSource is the single "current location" of a session: nothing, a
// device fix, or typed text with the point it last resolved to.
type LocationSource struct {
	kind  SourceKind
	point geo.Coordinate
	// resolved is false for typed text that has not been resolved yet.
	resolved bool
	text     string
}

// NoLocation is the empty LocationSource.
func NoLocation() LocationSource { return LocationSource{} }

// DeviceSource holds a device fix.
func DeviceSource(c geo.Coordinate) LocationSource {
	return LocationSource{kind: KindDevice, point: c, resolved: true}
}

// TypedTextSource holds typed text that has not been resolved.
func TypedTextSource(text string) LocationSource {
	return LocationSource{kind: KindTypedText, text: text}
}

// Kind returns the active variant.
func (s LocationSource) Kind() SourceKind { return s.kind }

// Text returns the typed text, empty unless Kind is KindTypedText.
func (s LocationSource) Text() string { return s.text }

// DevicePoint returns the device fix when Kind is KindDevice.
func (s LocationSource) DevicePoint() (*geo.Coordinate, bool) {
	if s.kind != KindDevice {
		return nil, false
	}
	c := s.point
	return &c, true
}

// TypedPoint returns the point typed text last resolved to.
func (s LocationSource) TypedPoint() (geo.Coordinate, bool) {
	if s.kind != KindTypedText || !s.resolved {
		return geo.Coordinate{}, false
	}
	return s.point, true
}

// WithDeviceFix switches to the device. Any typed text is forgotten.
func (s LocationSource) WithDeviceFix(c geo.Coordinate) LocationSource {
	return DeviceSource(c)
}

// WithTypedText records an edit of the typed text. Typing always discards a
// device fix; retyping the same text keeps its resolved point.
func (s LocationSource) WithTypedText(text string) LocationSource {
	if s.kind == KindTypedText && s.text == text {
		return s
	}
	if text == "" {
		return NoLocation()
	}
	return TypedTextSource(text)
}

// WithResolved attaches a resolved point to typed text. It is a no-op unless
// the source still holds exactly that text.
func (s LocationSource) WithResolved(text string, c geo.Coordinate) LocationSource {
	if s.kind != KindTypedText || s.text != text {
		return s
	}
	s.point = c
	s.resolved = true
	return s
}
