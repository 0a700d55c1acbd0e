package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"cutline/internal/database"
	"cutline/internal/domain"
	"cutline/internal/repository"
)

const pageSize = 500

// backfill repairs data older code wrote incompletely. Dry run by
// default; -apply writes.
func main() {
	task := flag.String("task", "", "one of: owner-salon-id, user-bookings, daily-stats")
	apply := flag.Bool("apply", false, "write changes instead of reporting them")
	salonFlag := flag.String("salon", "", "limit to one salon id")
	fromFlag := flag.String("from", "", "daily-stats: earliest day, YYYY-MM-DD")
	toFlag := flag.String("to", "", "daily-stats: latest day, YYYY-MM-DD")
	flag.Parse()

	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	users := repository.NewUserRepository(db)
	salons := repository.NewSalonRepository(db)
	bookings := repository.NewBookingRepository(db)

	ctx := context.Background()
	if !*apply {
		log.Println("dry run, pass -apply to write")
	}

	switch *task {
	case "owner-salon-id":
		backfillOwnerSalonID(ctx, users, salons, *apply)
	case "user-bookings":
		backfillUserBookings(ctx, salons, bookings, *salonFlag, *apply)
	case "daily-stats":
		backfillDailyStats(ctx, salons, bookings, *salonFlag, *fromFlag, *toFlag, *apply)
	default:
		log.Fatalf("unknown task %q", *task)
	}
}

// backfillOwnerSalonID fills the salon_id field on owner accounts that
// predate it. The salon is found by its owner_id field first, then by
// the legacy convention of the salon id equalling the owner's user id.
func backfillOwnerSalonID(ctx context.Context, users *repository.UserRepository, salons *repository.SalonRepository, apply bool) {
	fixed, defaulted := 0, 0

	for offset := 0; ; offset += pageSize {
		page, err := users.OwnersPage(ctx, pageSize, offset)
		if err != nil {
			log.Fatalf("list owners: %v", err)
		}
		if len(page) == 0 {
			break
		}

		for i := range page {
			owner := &page[i]
			if owner.SalonID != "" {
				continue
			}

			salonID := findSalonForOwner(ctx, salons, owner.ID)
			if salonID == "" {
				// legacy convention: the salon id is the owner's
				// account id
				salonID = owner.ID
				defaulted++
			}

			if apply {
				if err := users.UpdateSalonID(ctx, owner.ID, salonID); err != nil {
					log.Fatalf("update owner %s: %v", owner.ID, err)
				}
			}
			fixed++
			log.Printf("owner_id=%s salon_id=%s", owner.ID, salonID)
		}
	}

	log.Printf("owner-salon-id done fixed=%d defaulted=%d", fixed, defaulted)
}

func findSalonForOwner(ctx context.Context, salons *repository.SalonRepository, ownerID string) string {
	if id, err := salons.IDByOwner(ctx, ownerID); err == nil && id != "" {
		return id
	}
	// legacy single-doc salons use the owner's user id as salon id
	if s, err := salons.GetByID(ctx, ownerID); err == nil && s != nil {
		return s.ID
	}
	return ""
}

// backfillUserBookings rebuilds the queue and customer mirrors from
// the booking table.
func backfillUserBookings(ctx context.Context, salons *repository.SalonRepository, bookings *repository.BookingRepository, only string, apply bool) {
	mirrored, synced := 0, 0

	for _, salonID := range salonIDs(ctx, salons, only) {
		for offset := 0; ; offset += pageSize {
			page, err := bookings.ListBySalon(ctx, salonID, pageSize, offset)
			if err != nil {
				log.Fatalf("list bookings salon_id=%s: %v", salonID, err)
			}
			if len(page) == 0 {
				break
			}

			for i := range page {
				b := &page[i]
				b.Normalize()

				if !b.Status.Terminal() {
					if apply {
						if _, err := bookings.EnsureMirror(ctx, b); err != nil {
							log.Fatalf("ensure mirror booking_id=%s: %v", b.ID, err)
						}
					}
					mirrored++
				}
				if apply {
					if err := bookings.SyncMirror(ctx, b); err != nil {
						log.Fatalf("sync mirror booking_id=%s: %v", b.ID, err)
					}
				}
				synced++
			}
		}
	}

	log.Printf("user-bookings done active=%d synced=%d", mirrored, synced)
}

// backfillDailyStats recomputes per-day aggregates from completed
// bookings, optionally limited to a day range.
func backfillDailyStats(ctx context.Context, salons *repository.SalonRepository, bookings *repository.BookingRepository, only, from, to string, apply bool) {
	written := 0

	for _, salonID := range salonIDs(ctx, salons, only) {
		type agg struct {
			total     int
			completed int
			revenue   float64
			tips      float64
			charge    float64
		}
		days := map[string]*agg{}

		for offset := 0; ; offset += pageSize {
			page, err := bookings.ListBySalon(ctx, salonID, pageSize, offset)
			if err != nil {
				log.Fatalf("list bookings salon_id=%s: %v", salonID, err)
			}
			if len(page) == 0 {
				break
			}

			for i := range page {
				b := &page[i]
				b.Normalize()

				day := b.ScheduledAt
				if b.CompletedAt != nil {
					day = *b.CompletedAt
				}
				key := day.Format("2006-01-02")
				if (from != "" && key < from) || (to != "" && key > to) {
					continue
				}

				a, ok := days[key]
				if !ok {
					a = &agg{}
					days[key] = a
				}
				a.total++
				if b.Status == domain.BookingCompleted {
					a.completed++
					a.revenue += b.Total
					a.tips += b.TipAmount
					a.charge += b.ServiceCharge
				}
			}
		}

		for key, a := range days {
			if apply {
				err := salons.UpsertDailyStats(ctx, &domain.DailyStats{
					SalonID:           salonID,
					DateKey:           key,
					TotalBookings:     a.total,
					CompletedBookings: a.completed,
					Revenue:           a.revenue,
					Tips:              a.tips,
					ServiceCharge:     a.charge,
					UpdatedAt:         time.Now(),
				})
				if err != nil {
					log.Fatalf("upsert stats salon_id=%s date=%s: %v", salonID, key, err)
				}
			}
			written++
		}
	}

	log.Printf("daily-stats done rows=%d", written)
}

func salonIDs(ctx context.Context, salons *repository.SalonRepository, only string) []string {
	if only != "" {
		return []string{only}
	}
	ids, err := salons.ListIDs(ctx)
	if err != nil {
		log.Fatalf("list salons: %v", err)
	}
	return ids
}
