package queue

import (
	"cutline/internal/domain"
)

// Trigger says who asked for a transition.
type Trigger string

const (
	// TriggerCreate is the booking-created store observer.
	TriggerCreate Trigger = "create"
	// TriggerUpdate is the booking-updated store observer.
	TriggerUpdate Trigger = "update"
	// TriggerExpiry is the scheduler's forced path.
	TriggerExpiry Trigger = "expiry"
)

// NotifyTarget names who a transition notifies. Whether the
// notification actually fires still depends on the booking (manual
// entries never notify, barber only when one is assigned).
type NotifyTarget string

const (
	NotifyOwner    NotifyTarget = "owner"
	NotifyCustomer NotifyTarget = "customer"
	NotifyBarber   NotifyTarget = "barber"
)

// Plan is the side-effect set of one legal transition. It is data, not
// behavior: the executor in Service carries it out against the store
// and dispatcher, re-checking persisted state as it goes.
type Plan struct {
	// exactly one claim step per legal transition
	EnsureMirror   bool // create -> upcoming
	MarkWaiting    bool // upcoming -> waiting
	ClaimTurnReady bool // waiting -> turn_ready
	ClaimArrival   bool // turn_ready -> arrived
	ForceNoShow    bool // {turn_ready,arrived} -> no_show

	// PromoteNext runs after a successful forced no_show.
	PromoteNext bool

	Notify []NotifyTarget
}

type transitionKey struct {
	from    domain.BookingStatus
	to      domain.BookingStatus
	trigger Trigger
}

// The legal transition graph. Anything absent here is a logged no-op,
// never an error: same-state writes, out-of-order replays, and client
// writes the queue does not care about all fall through.
var transitions = map[transitionKey]Plan{
	{"", domain.BookingUpcoming, TriggerCreate}: {
		EnsureMirror: true,
		Notify:       []NotifyTarget{NotifyOwner},
	},
	{domain.BookingUpcoming, domain.BookingWaiting, TriggerUpdate}: {
		MarkWaiting: true,
		Notify:      []NotifyTarget{NotifyCustomer, NotifyBarber},
	},
	{domain.BookingWaiting, domain.BookingTurnReady, TriggerUpdate}: {
		ClaimTurnReady: true,
		Notify:         []NotifyTarget{NotifyCustomer},
	},
	{domain.BookingTurnReady, domain.BookingArrived, TriggerUpdate}: {
		ClaimArrival: true,
	},
	{domain.BookingTurnReady, domain.BookingNoShow, TriggerExpiry}: {
		ForceNoShow: true,
		PromoteNext: true,
	},
	{domain.BookingArrived, domain.BookingNoShow, TriggerExpiry}: {
		ForceNoShow: true,
		PromoteNext: true,
	},
}

// PlanTransition classifies an observed old->new status pair under the
// given trigger. The second return is false for anything outside the
// graph.
func PlanTransition(from, to domain.BookingStatus, trigger Trigger) (Plan, bool) {
	plan, ok := transitions[transitionKey{from, to, trigger}]
	return plan, ok
}

func (p Plan) notifies(target NotifyTarget) bool {
	for _, t := range p.Notify {
		if t == target {
			return true
		}
	}
	return false
}
