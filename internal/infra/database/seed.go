package database

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/omerdahan/whatsapp-rsvp/internal/entity"
)

var seedNames = []string{
	"Israel Israeli", "Moshe Cohen", "Avi Levi", "Dana Sharon",
	"Yael Katz", "Tomer Hadad", "Noa Biton", "Guy Avraham",
}

// SeedGuests fills an empty database with demo guests so the dashboard
// has something to show. The random phone numbers are placeholders;
// replace them with numbers you can actually message.
func SeedGuests(ctx context.Context, repo *GuestRepository) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count guests: %w", err)
	}
	if count > 0 {
		log.Info().Int("guests", count).Msg("database already seeded")
		return nil
	}

	guests := make([]*entity.Guest, 0, 20)
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("%s %d", seedNames[rand.Intn(len(seedNames))], i+1)
		phone := fmt.Sprintf("9725%08d", rand.Intn(100000000))

		guest, err := entity.NewGuest(name, phone)
		if err != nil {
			return err
		}
		guests = append(guests, guest)
	}

	if err := repo.CreateBatch(ctx, guests); err != nil {
		return fmt.Errorf("seed guests: %w", err)
	}

	log.Info().Int("guests", len(guests)).Msg("seeded demo guests")
	return nil
}
