package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/directory-locator/internal/geo"
)

func TestLocationSource_TypingDiscardsDeviceFix(t *testing.T) {
	fix := geo.Coordinate{Lat: 40, Lon: -76}
	s := NoLocation().WithDeviceFix(fix)

	p, ok := s.DevicePoint()
	assert.True(t, ok)
	assert.Equal(t, fix, *p)

	s = s.WithTypedText("Harrisburg")
	assert.Equal(t, KindTypedText, s.Kind())
	_, ok = s.DevicePoint()
	assert.False(t, ok)
	_, ok = s.TypedPoint()
	assert.False(t, ok)
}

func TestLocationSource_ClearingTextIsNone(t *testing.T) {
	s := DeviceSource(geo.Coordinate{Lat: 1, Lon: 2}).WithTypedText("")
	assert.Equal(t, KindNone, s.Kind())
}

func TestLocationSource_Resolved(t *testing.T) {
	c := geo.Coordinate{Lat: 40.3, Lon: -77.1}
	s := TypedTextSource("17055").WithResolved("17055", c)

	p, ok := s.TypedPoint()
	assert.True(t, ok)
	assert.Equal(t, c, p)

	// Same text keeps the point; new text drops it.
	_, ok = s.WithTypedText("17055").TypedPoint()
	assert.True(t, ok)
	_, ok = s.WithTypedText("17011").TypedPoint()
	assert.False(t, ok)

	// A resolution for stale text is ignored.
	_, ok = TypedTextSource("17011").WithResolved("17055", c).TypedPoint()
	assert.False(t, ok)
}

func TestLocationSource_DeviceReplacesText(t *testing.T) {
	s := TypedTextSource("Harrisburg").WithDeviceFix(geo.Coordinate{Lat: 1, Lon: 2})
	assert.Equal(t, KindDevice, s.Kind())
	assert.Empty(t, s.Text())
}

func TestIntentAndSourceStrings(t *testing.T) {
	assert.Equal(t, "device", UseDeviceLocation.String())
	assert.Equal(t, "typed_text", UseTypedText.String())
	assert.Equal(t, "zip_centroid", SourceZipCentroid.String())
	assert.Equal(t, "geocoded", SourceGeocoded.String())
}
