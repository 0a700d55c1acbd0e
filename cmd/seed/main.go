package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cutline/internal/database"
	"cutline/internal/domain"
)

func main() {
	db, err := database.Connect("cutline.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM customer_bookings")
	db.Exec("DELETE FROM queue_entries")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM daily_stats")
	db.Exec("DELETE FROM salons")
	db.Exec("DELETE FROM users")

	log.Println("Creating users...")

	ownerHash, _ := bcrypt.GenerateFromPassword([]byte("owner123"), bcrypt.DefaultCost)
	owner := domain.User{
		ID:           uuid.NewString(),
		Email:        "aidar@cutline.kz",
		PasswordHash: string(ownerHash),
		Role:         domain.RoleOwner,
		Name:         "Aidar",
		Phone:        "+7 777 123 4567",
	}
	db.Create(&owner)
	log.Println("Owner created: aidar@cutline.kz / owner123")

	salon := domain.Salon{
		ID:      uuid.NewString(),
		Name:    "Cutline Barbershop",
		OwnerID: owner.ID,
		Address: "Almaty, Dostyk 91",
	}
	db.Create(&salon)
	db.Model(&domain.User{}).Where("id = ?", owner.ID).Update("salon_id", salon.ID)

	barbers := make([]domain.User, 0, 2)
	for i, name := range []string{"Marat", "Dias"} {
		hash, _ := bcrypt.GenerateFromPassword([]byte("barber123"), bcrypt.DefaultCost)
		barber := domain.User{
			ID:           uuid.NewString(),
			Email:        fmt.Sprintf("barber%d@cutline.kz", i+1),
			PasswordHash: string(hash),
			Role:         domain.RoleBarber,
			Name:         name,
			OwnerID:      owner.ID,
		}
		db.Create(&barber)
		barbers = append(barbers, barber)
	}

	customers := make([]domain.User, 0, 3)
	for i, email := range []string{"asel@mail.kz", "bekzat@gmail.com", "dina@yandex.kz"} {
		hash, _ := bcrypt.GenerateFromPassword([]byte("customer123"), bcrypt.DefaultCost)
		customer := domain.User{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: string(hash),
			Role:         domain.RoleCustomer,
			Name:         fmt.Sprintf("Customer %d", i+1),
			Phone:        fmt.Sprintf("+7 777 123 45%02d", i+67),
		}
		db.Create(&customer)
		customers = append(customers, customer)
	}

	log.Println("Creating bookings...")

	now := time.Now()
	statuses := []domain.BookingStatus{domain.BookingUpcoming, domain.BookingWaiting, domain.BookingWaiting}
	for i, customer := range customers {
		booking := domain.Booking{
			ID:           uuid.NewString(),
			SalonID:      salon.ID,
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			BarberName:   barbers[i%len(barbers)].Name,
			EntrySource:  domain.EntryApp,
			Status:       statuses[i],
			ScheduledAt:  now.Add(time.Duration(i+1) * 30 * time.Minute),
			RequestedAt:  now,
		}
		db.Create(&booking)

		db.Create(&domain.QueueEntry{
			SalonID:      salon.ID,
			BookingID:    booking.ID,
			CustomerName: booking.CustomerName,
			BarberName:   booking.BarberName,
			Status:       booking.Status,
			ScheduledAt:  booking.ScheduledAt,
			UpdatedAt:    now,
		})
		db.Create(&domain.CustomerBooking{
			CustomerID:  customer.ID,
			BookingID:   booking.ID,
			SalonID:     salon.ID,
			Status:      booking.Status,
			ScheduledAt: booking.ScheduledAt,
			UpdatedAt:   now,
		})
	}

	log.Println("Seed complete")
}
