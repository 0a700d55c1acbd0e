package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cutline/internal/domain"
)

func TestPlanTransition_LegalTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.BookingStatus
		to      domain.BookingStatus
		trigger Trigger
		check   func(t *testing.T, p Plan)
	}{
		{
			name:    "created upcoming mirrors and notifies owner",
			from:    "",
			to:      domain.BookingUpcoming,
			trigger: TriggerCreate,
			check: func(t *testing.T, p Plan) {
				assert.True(t, p.EnsureMirror)
				assert.True(t, p.notifies(NotifyOwner))
				assert.False(t, p.PromoteNext)
			},
		},
		{
			name:    "accept moves to waiting and notifies customer and barber",
			from:    domain.BookingUpcoming,
			to:      domain.BookingWaiting,
			trigger: TriggerUpdate,
			check: func(t *testing.T, p Plan) {
				assert.True(t, p.MarkWaiting)
				assert.True(t, p.notifies(NotifyCustomer))
				assert.True(t, p.notifies(NotifyBarber))
				assert.False(t, p.notifies(NotifyOwner))
			},
		},
		{
			name:    "call-up claims the turn slot",
			from:    domain.BookingWaiting,
			to:      domain.BookingTurnReady,
			trigger: TriggerUpdate,
			check: func(t *testing.T, p Plan) {
				assert.True(t, p.ClaimTurnReady)
				assert.True(t, p.notifies(NotifyCustomer))
			},
		},
		{
			name:    "arrival is silent",
			from:    domain.BookingTurnReady,
			to:      domain.BookingArrived,
			trigger: TriggerUpdate,
			check: func(t *testing.T, p Plan) {
				assert.True(t, p.ClaimArrival)
				assert.Empty(t, p.Notify)
			},
		},
		{
			name:    "expired turn_ready forces no_show and promotes",
			from:    domain.BookingTurnReady,
			to:      domain.BookingNoShow,
			trigger: TriggerExpiry,
			check: func(t *testing.T, p Plan) {
				assert.True(t, p.ForceNoShow)
				assert.True(t, p.PromoteNext)
			},
		},
		{
			name:    "expired arrival forces no_show and promotes",
			from:    domain.BookingArrived,
			to:      domain.BookingNoShow,
			trigger: TriggerExpiry,
			check: func(t *testing.T, p Plan) {
				assert.True(t, p.ForceNoShow)
				assert.True(t, p.PromoteNext)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, ok := PlanTransition(tt.from, tt.to, tt.trigger)
			assert.True(t, ok)
			tt.check(t, plan)
		})
	}
}

func TestPlanTransition_OutsideGraph(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.BookingStatus
		to      domain.BookingStatus
		trigger Trigger
	}{
		{"same state write", domain.BookingWaiting, domain.BookingWaiting, TriggerUpdate},
		{"skip waiting", domain.BookingUpcoming, domain.BookingTurnReady, TriggerUpdate},
		{"backwards", domain.BookingArrived, domain.BookingWaiting, TriggerUpdate},
		{"client cannot force no_show", domain.BookingTurnReady, domain.BookingNoShow, TriggerUpdate},
		{"expiry cannot touch waiting", domain.BookingWaiting, domain.BookingNoShow, TriggerExpiry},
		{"cancellation ignored by queue", domain.BookingWaiting, domain.BookingCancelled, TriggerUpdate},
		{"completion ignored by queue", domain.BookingArrived, domain.BookingCompleted, TriggerUpdate},
		{"resurrecting terminal state", domain.BookingNoShow, domain.BookingWaiting, TriggerUpdate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := PlanTransition(tt.from, tt.to, tt.trigger)
			assert.False(t, ok)
		})
	}
}
