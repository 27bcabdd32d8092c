package domain

import (
	"testing"
	"time"

	"voyago/internal/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFlight(t *testing.T, totalSeats int) *Flight {
	t.Helper()
	dep := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	f, err := NewFlight("VY101", "Voyago Air", "PEK", "SHA", dep, dep.Add(2*time.Hour), 899.0, totalSeats)
	require.NoError(t, err)
	return f
}

func TestNewFlight(t *testing.T) {
	f := newTestFlight(t, 180)
	assert.Equal(t, 180, f.AvailableSeats)
	assert.Equal(t, StatusScheduled, f.Status)

	_, err := NewFlight("", "Voyago Air", "PEK", "SHA", time.Now(), time.Now(), 899.0, 180)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = NewFlight("VY101", "Voyago Air", "PEK", "SHA", time.Now(), time.Now(), 899.0, 0)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = NewFlight("VY101", "Voyago Air", "PEK", "SHA", time.Now(), time.Now(), -1, 180)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestBookable(t *testing.T) {
	f := newTestFlight(t, 180)
	assert.NoError(t, f.Bookable())

	for _, status := range []Status{StatusDelayed, StatusCancelled, StatusCompleted} {
		f.Status = status
		err := f.Bookable()
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindBusinessRejection))
		assert.Equal(t, apperr.CodeResourceNotBookable, apperr.CodeOf(err))
	}
}

func TestCheckAvailability(t *testing.T) {
	f := newTestFlight(t, 10)

	av := f.CheckAvailability(10)
	assert.True(t, av.Available)
	assert.Equal(t, 10, av.Remaining)
	assert.Equal(t, "flight is available with 10 seats", av.Reason)

	av = f.CheckAvailability(11)
	assert.False(t, av.Available)
	assert.Equal(t, "only 10 seats available", av.Reason)

	f.Status = StatusCancelled
	av = f.CheckAvailability(1)
	assert.False(t, av.Available)
	assert.Equal(t, "flight is CANCELLED", av.Reason)
}

func TestValidateNewCapacity(t *testing.T) {
	f := newTestFlight(t, 100)
	f.AvailableSeats = 40 // 60 seats reserved

	assert.NoError(t, f.ValidateNewCapacity(60))
	assert.NoError(t, f.ValidateNewCapacity(200))

	err := f.ValidateNewCapacity(59)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	err = f.ValidateNewCapacity(0)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestReservedSeats(t *testing.T) {
	f := newTestFlight(t, 100)
	assert.Equal(t, 0, f.ReservedSeats())
	f.AvailableSeats = 73
	assert.Equal(t, 27, f.ReservedSeats())
}
