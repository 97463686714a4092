package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to AppointmentStatus }{
		{AppointmentStatusScheduled, AppointmentStatusWaiting},
		{AppointmentStatusScheduled, AppointmentStatusInProgress},
		{AppointmentStatusScheduled, AppointmentStatusCancelled},
		{AppointmentStatusScheduled, AppointmentStatusNoShow},
		{AppointmentStatusWaiting, AppointmentStatusInProgress},
		{AppointmentStatusWaiting, AppointmentStatusCancelled},
		{AppointmentStatusWaiting, AppointmentStatusNoShow},
		{AppointmentStatusInProgress, AppointmentStatusCompleted},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to AppointmentStatus }{
		{AppointmentStatusScheduled, AppointmentStatusCompleted},
		{AppointmentStatusWaiting, AppointmentStatusScheduled},
		{AppointmentStatusInProgress, AppointmentStatusCancelled},
		{AppointmentStatusInProgress, AppointmentStatusNoShow},
		{AppointmentStatusCompleted, AppointmentStatusScheduled},
		{AppointmentStatusCancelled, AppointmentStatusScheduled},
		{AppointmentStatusNoShow, AppointmentStatusWaiting},
		{AppointmentStatusCompleted, AppointmentStatusCompleted},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}
