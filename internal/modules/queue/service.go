package queue

import (
	"context"
	"errors"
	"log"
	"time"

	"cutline/internal/domain"
	"cutline/internal/modules/notify"
	"cutline/internal/repository"
)

// Service executes transition plans against the store and dispatcher.
// Handlers feed it observed status changes; the scheduler feeds it
// expiry cutoffs. Every entry point re-reads persisted state and claims
// the transition with a conditional write, so replays and concurrent
// deliveries collapse into no-ops.
type Service struct {
	bookings   BookingStore
	resolver   *Resolver
	dispatcher Dispatcher
	hub        *Hub

	turnReadyWindow time.Duration
	arrivalWindow   time.Duration

	now func() time.Time
}

func NewService(bookings BookingStore, resolver *Resolver, dispatcher Dispatcher, hub *Hub, turnReadyWindow, arrivalWindow time.Duration) *Service {
	return &Service{
		bookings:        bookings,
		resolver:        resolver,
		dispatcher:      dispatcher,
		hub:             hub,
		turnReadyWindow: turnReadyWindow,
		arrivalWindow:   arrivalWindow,
		now:             time.Now,
	}
}

// HandleCreated reacts to a new booking: mirror rows are written and,
// for app-sourced upcoming bookings, the salon owners are notified of
// the request. Store failures are logged and swallowed so the trigger
// is not redelivered forever.
func (s *Service) HandleCreated(ctx context.Context, salonID, bookingID string) error {
	b, err := s.bookings.GetByID(ctx, salonID, bookingID)
	if err != nil {
		log.Printf("level=error msg=\"queue: load created booking\" salon_id=%s booking_id=%s err=%v", salonID, bookingID, err)
		return nil
	}
	if b == nil {
		log.Printf("level=warn msg=\"queue: created booking vanished\" salon_id=%s booking_id=%s", salonID, bookingID)
		return nil
	}

	claimed, err := s.bookings.EnsureMirror(ctx, b)
	if err != nil {
		log.Printf("level=error msg=\"queue: ensure mirror\" salon_id=%s booking_id=%s err=%v", salonID, bookingID, err)
		return nil
	}
	if !claimed {
		log.Printf("level=info msg=\"queue: mirror already present\" salon_id=%s booking_id=%s", salonID, bookingID)
		return nil
	}
	s.broadcast(ctx, salonID)

	plan, ok := PlanTransition("", b.Status, TriggerCreate)
	if !ok {
		// mirror rows exist for any status; only fresh upcoming
		// bookings notify
		log.Printf("level=info msg=\"queue: created in non-initial status\" salon_id=%s booking_id=%s status=%s", salonID, bookingID, b.Status)
		return nil
	}
	if b.Manual() {
		log.Printf("level=info msg=\"queue: manual entry, notifications suppressed\" salon_id=%s booking_id=%s", salonID, bookingID)
		return nil
	}
	if plan.notifies(NotifyOwner) {
		s.notifyOwners(ctx, b)
	}
	return nil
}

// HandleUpdated reacts to an observed status change. The before/after
// pair from the trigger payload selects the plan, but the claim write
// checks current persisted state, so a stale or replayed delivery
// claims nothing.
func (s *Service) HandleUpdated(ctx context.Context, salonID, bookingID string, before, after domain.BookingStatus) error {
	b, err := s.bookings.GetByID(ctx, salonID, bookingID)
	if err != nil {
		log.Printf("level=error msg=\"queue: load updated booking\" salon_id=%s booking_id=%s err=%v", salonID, bookingID, err)
		return nil
	}
	if b == nil {
		log.Printf("level=warn msg=\"queue: updated booking vanished\" salon_id=%s booking_id=%s", salonID, bookingID)
		return nil
	}

	plan, ok := PlanTransition(before, after, TriggerUpdate)
	if !ok {
		// keep the mirror honest even for transitions the queue
		// ignores (cancellations, completion, payment edits)
		if err := s.bookings.SyncMirror(ctx, b); err != nil {
			log.Printf("level=error msg=\"queue: sync mirror\" salon_id=%s booking_id=%s err=%v", salonID, bookingID, err)
		}
		log.Printf("level=info msg=\"queue: transition outside graph\" salon_id=%s booking_id=%s before=%s after=%s", salonID, bookingID, before, after)
		s.broadcast(ctx, salonID)
		return nil
	}

	switch {
	case plan.MarkWaiting:
		s.applyWaiting(ctx, b, plan)
	case plan.ClaimTurnReady:
		s.applyTurnReady(ctx, b, plan)
	case plan.ClaimArrival:
		s.applyArrival(ctx, b)
	}
	return nil
}

func (s *Service) applyWaiting(ctx context.Context, b *domain.Booking, plan Plan) {
	claimed, err := s.bookings.MarkWaiting(ctx, b)
	if err != nil {
		log.Printf("level=error msg=\"queue: mark waiting\" salon_id=%s booking_id=%s err=%v", b.SalonID, b.ID, err)
		return
	}
	if !claimed {
		log.Printf("level=info msg=\"queue: waiting already recorded\" salon_id=%s booking_id=%s", b.SalonID, b.ID)
		return
	}
	s.broadcast(ctx, b.SalonID)
	if b.Manual() {
		return
	}

	if plan.notifies(NotifyCustomer) && b.CustomerID != "" {
		s.dispatcher.Dispatch(ctx, b.CustomerID, notify.BookingAccepted(b.ID, b.SalonID))
	}
	if plan.notifies(NotifyBarber) {
		barber, err := s.resolver.ResolveBarber(ctx, b.SalonID, b)
		if err != nil {
			log.Printf("level=error msg=\"queue: resolve barber\" salon_id=%s booking_id=%s err=%v", b.SalonID, b.ID, err)
			return
		}
		if barber == nil {
			if b.WantsBarber() {
				log.Printf("level=warn msg=\"queue: no barber matched\" salon_id=%s booking_id=%s barber_name=%q", b.SalonID, b.ID, b.BarberName)
			}
			return
		}
		s.dispatcher.Dispatch(ctx, barber.ID, notify.BarberWaiting(b.ID, b.SalonID))
	}
}

func (s *Service) applyTurnReady(ctx context.Context, b *domain.Booking, plan Plan) {
	claimed, err := s.bookings.ClaimTurnReady(ctx, b.SalonID, b.ID, s.now())
	if errors.Is(err, repository.ErrTurnSlotTaken) {
		log.Printf("level=warn msg=\"queue: turn slot already held\" salon_id=%s booking_id=%s", b.SalonID, b.ID)
		return
	}
	if err != nil {
		log.Printf("level=error msg=\"queue: claim turn ready\" salon_id=%s booking_id=%s err=%v", b.SalonID, b.ID, err)
		return
	}
	if !claimed {
		log.Printf("level=info msg=\"queue: turn ready already recorded\" salon_id=%s booking_id=%s", b.SalonID, b.ID)
		return
	}
	s.broadcast(ctx, b.SalonID)
	if b.Manual() || !plan.notifies(NotifyCustomer) || b.CustomerID == "" {
		return
	}
	s.dispatcher.Dispatch(ctx, b.CustomerID, notify.TurnReady(b.ID, b.SalonID, int(s.turnReadyWindow.Seconds())))
}

func (s *Service) applyArrival(ctx context.Context, b *domain.Booking) {
	claimed, err := s.bookings.ClaimArrival(ctx, b.SalonID, b.ID, s.now())
	if err != nil {
		log.Printf("level=error msg=\"queue: claim arrival\" salon_id=%s booking_id=%s err=%v", b.SalonID, b.ID, err)
		return
	}
	if !claimed {
		log.Printf("level=info msg=\"queue: arrival already recorded\" salon_id=%s booking_id=%s", b.SalonID, b.ID)
		return
	}
	s.broadcast(ctx, b.SalonID)
}

// SweepExpired is the scheduler body: bookings past the turn-ready
// window without arrival and arrivals past the service window are
// forced to no_show, each followed by promotion of the next waiting
// booking. Returns how many bookings were forced out. Per-booking
// failures are logged and the sweep continues; only the forced status
// write itself surfaces as an error, since losing it silently would
// wedge the queue.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	now := s.now()
	forced := 0
	var firstErr error

	turnCutoff := now.Add(-s.turnReadyWindow)
	stale, err := s.bookings.ExpiredTurnReady(ctx, turnCutoff)
	if err != nil {
		return 0, err
	}
	for i := range stale {
		ok, err := s.forceNoShow(ctx, &stale[i], turnCutoff, now)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if ok {
			forced++
		}
	}

	arrCutoff := now.Add(-s.arrivalWindow)
	parked, err := s.bookings.ExpiredArrived(ctx, arrCutoff)
	if err != nil {
		if firstErr == nil {
			firstErr = err
		}
		return forced, firstErr
	}
	for i := range parked {
		ok, err := s.forceNoShow(ctx, &parked[i], arrCutoff, now)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if ok {
			forced++
		}
	}
	return forced, firstErr
}

func (s *Service) forceNoShow(ctx context.Context, b *domain.Booking, cutoff, now time.Time) (bool, error) {
	claimed, err := s.bookings.ClaimNoShow(ctx, b, cutoff, now)
	if err != nil {
		log.Printf("level=error msg=\"queue: force no_show\" salon_id=%s booking_id=%s err=%v", b.SalonID, b.ID, err)
		return false, err
	}
	if !claimed {
		// someone arrived or cancelled between the query and the claim
		log.Printf("level=info msg=\"queue: no_show claim lost race\" salon_id=%s booking_id=%s", b.SalonID, b.ID)
		return false, nil
	}
	log.Printf("level=info msg=\"queue: booking timed out\" salon_id=%s booking_id=%s was=%s", b.SalonID, b.ID, b.Status)
	s.broadcast(ctx, b.SalonID)
	s.promoteNext(ctx, b.SalonID)
	return true, nil
}

// promoteNext moves the earliest waiting booking into turn_ready. A
// lost race on the turn slot means another promotion got there first,
// which is fine.
func (s *Service) promoteNext(ctx context.Context, salonID string) {
	next, err := s.bookings.NextWaiting(ctx, salonID)
	if err != nil {
		log.Printf("level=error msg=\"queue: next waiting\" salon_id=%s err=%v", salonID, err)
		return
	}
	if next == nil {
		log.Printf("level=info msg=\"queue: nothing waiting to promote\" salon_id=%s", salonID)
		return
	}

	claimed, err := s.bookings.PromoteToTurnReady(ctx, salonID, next.ID, s.now())
	if errors.Is(err, repository.ErrTurnSlotTaken) {
		log.Printf("level=info msg=\"queue: promotion lost turn slot\" salon_id=%s booking_id=%s", salonID, next.ID)
		return
	}
	if err != nil {
		log.Printf("level=error msg=\"queue: promote\" salon_id=%s booking_id=%s err=%v", salonID, next.ID, err)
		return
	}
	if !claimed {
		return
	}
	s.broadcast(ctx, salonID)
	if next.Manual() || next.CustomerID == "" {
		return
	}
	s.dispatcher.Dispatch(ctx, next.CustomerID, notify.TurnReady(next.ID, salonID, int(s.turnReadyWindow.Seconds())))
}

func (s *Service) notifyOwners(ctx context.Context, b *domain.Booking) {
	owners, step, err := s.resolver.ResolveOwners(ctx, b.SalonID)
	if err != nil {
		log.Printf("level=error msg=\"queue: resolve owners\" salon_id=%s booking_id=%s err=%v", b.SalonID, b.ID, err)
		return
	}
	if len(owners) == 0 {
		log.Printf("level=warn msg=\"queue: no owner account for salon\" salon_id=%s booking_id=%s", b.SalonID, b.ID)
		return
	}
	log.Printf("level=info msg=\"queue: owners resolved\" salon_id=%s step=%s count=%d", b.SalonID, step, len(owners))
	for i := range owners {
		s.dispatcher.Dispatch(ctx, owners[i].ID, notify.BookingRequest(b.ID, b.SalonID, b.CustomerName))
	}
}

// Entries returns the live queue for a salon, oldest first.
func (s *Service) Entries(ctx context.Context, salonID string) ([]domain.QueueEntry, error) {
	return s.bookings.QueueEntries(ctx, salonID)
}

func (s *Service) broadcast(ctx context.Context, salonID string) {
	if s.hub == nil {
		return
	}
	entries, err := s.bookings.QueueEntries(ctx, salonID)
	if err != nil {
		log.Printf("level=error msg=\"queue: load entries for broadcast\" salon_id=%s err=%v", salonID, err)
		return
	}
	s.hub.Broadcast(salonID, QueueUpdate{SalonID: salonID, Entries: entries})
}
