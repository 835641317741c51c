package geocode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocoder struct {
	result *Result
	err    error
	calls  int
}

func (s *stubGeocoder) Geocode(context.Context, string) (*Result, error) {
	s.calls++
	return s.result, s.err
}

func TestCascade_FirstMatchWins(t *testing.T) {
	primary := &stubGeocoder{result: &Result{Matched: true, Latitude: 40, Longitude: -76, Source: "nominatim"}}
	fallback := &stubGeocoder{result: &Result{Matched: true, Source: "google"}}

	result, err := NewCascade(0, primary, fallback).Geocode(context.Background(), "Harrisburg")
	require.NoError(t, err)
	assert.Equal(t, "nominatim", result.Source)
	assert.Equal(t, 0, fallback.calls)
}

func TestCascade_FallsBackOnMissAndError(t *testing.T) {
	failing := &stubGeocoder{err: errors.New("boom")}
	miss := &stubGeocoder{result: &Result{Matched: false}}
	hit := &stubGeocoder{result: &Result{Matched: true, Source: "google"}}

	result, err := NewCascade(0, failing, miss, hit).Geocode(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "google", result.Source)
}

func TestCascade_AllErrorsReturnsError(t *testing.T) {
	_, err := NewCascade(0, &stubGeocoder{err: errors.New("a")}, &stubGeocoder{err: errors.New("b")}).
		Geocode(context.Background(), "x")
	assert.EqualError(t, err, "b")
}

func TestCascade_NoMatch(t *testing.T) {
	result, err := NewCascade(0, &stubGeocoder{err: errors.New("a")}, &stubGeocoder{result: &Result{}}).
		Geocode(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestCascade_CachesMatchesAndMisses(t *testing.T) {
	hit := &stubGeocoder{result: &Result{Matched: true, Latitude: 1}}
	c := NewCascade(time.Minute, hit)

	_, err := c.Geocode(context.Background(), "Camp  Hill")
	require.NoError(t, err)
	again, err := c.Geocode(context.Background(), "camp hill")
	require.NoError(t, err)
	assert.Equal(t, 1, hit.calls)
	assert.True(t, again.Matched)

	miss := &stubGeocoder{result: &Result{Matched: false}}
	c = NewCascade(time.Minute, miss)
	_, _ = c.Geocode(context.Background(), "nowhere")
	_, _ = c.Geocode(context.Background(), "nowhere")
	assert.Equal(t, 1, miss.calls)
}

func TestCascade_ErrorsNotCached(t *testing.T) {
	failing := &stubGeocoder{err: errors.New("down")}
	c := NewCascade(time.Minute, failing)
	_, _ = c.Geocode(context.Background(), "x")
	_, _ = c.Geocode(context.Background(), "x")
	assert.Equal(t, 2, failing.calls)
}
