package domain

import (
	"testing"

	"voyago/internal/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHotel(t *testing.T, totalRooms int) *Hotel {
	t.Helper()
	h, err := NewHotel("Harbour View", "Shanghai", "1 Bund Road", 4.5, 620.0, totalRooms)
	require.NoError(t, err)
	return h
}

func TestNewHotel(t *testing.T) {
	h := newTestHotel(t, 50)
	assert.Equal(t, 50, h.AvailableRooms)
	assert.True(t, h.Active)

	cases := []struct {
		name  string
		build func() error
	}{
		{"empty name", func() error {
			_, err := NewHotel("", "Shanghai", "", 4.5, 620.0, 50)
			return err
		}},
		{"empty city", func() error {
			_, err := NewHotel("Harbour View", " ", "", 4.5, 620.0, 50)
			return err
		}},
		{"zero price", func() error {
			_, err := NewHotel("Harbour View", "Shanghai", "", 4.5, 0, 50)
			return err
		}},
		{"zero rooms", func() error {
			_, err := NewHotel("Harbour View", "Shanghai", "", 4.5, 620.0, 0)
			return err
		}},
		{"rating out of range", func() error {
			_, err := NewHotel("Harbour View", "Shanghai", "", 5.1, 620.0, 50)
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, apperr.IsKind(tc.build(), apperr.KindValidation))
		})
	}
}

func TestBookableGate(t *testing.T) {
	h := newTestHotel(t, 50)
	assert.NoError(t, h.Bookable())

	h.Active = false
	err := h.Bookable()
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindBusinessRejection))
	assert.Equal(t, apperr.CodeResourceNotBookable, apperr.CodeOf(err))
}

func TestHotelCheckAvailability(t *testing.T) {
	h := newTestHotel(t, 5)

	av := h.CheckAvailability(5)
	assert.True(t, av.Available)
	assert.Equal(t, "hotel is available with 5 rooms", av.Reason)

	av = h.CheckAvailability(6)
	assert.False(t, av.Available)
	assert.Equal(t, "only 5 rooms available", av.Reason)

	h.Active = false
	av = h.CheckAvailability(1)
	assert.False(t, av.Available)
	assert.Equal(t, "hotel is not active", av.Reason)
}

func TestHotelValidateNewCapacity(t *testing.T) {
	h := newTestHotel(t, 20)
	h.AvailableRooms = 8 // 12 rooms reserved

	assert.NoError(t, h.ValidateNewCapacity(12))
	assert.True(t, apperr.IsKind(h.ValidateNewCapacity(11), apperr.KindValidation))
	assert.True(t, apperr.IsKind(h.ValidateNewCapacity(0), apperr.KindValidation))
}
