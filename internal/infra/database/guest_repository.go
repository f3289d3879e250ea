package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/omerdahan/whatsapp-rsvp/internal/entity"
)

const guestColumns = "id, name, phone, status, attendees_count, response_message, last_update, created_at"

type GuestRepository struct {
	DB *sql.DB
}

func NewGuestRepository(db *sql.DB) *GuestRepository {
	return &GuestRepository{DB: db}
}

func (r *GuestRepository) FindByID(ctx context.Context, id string) (*entity.Guest, error) {
	query := "SELECT " + guestColumns + " FROM guests WHERE id = $1"
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *GuestRepository) FindByPhone(ctx context.Context, phone string) (*entity.Guest, error) {
	query := "SELECT " + guestColumns + " FROM guests WHERE phone = $1"
	return r.scanOne(r.DB.QueryRowContext(ctx, query, phone))
}

func (r *GuestRepository) FindAll(ctx context.Context) ([]entity.Guest, error) {
	query := "SELECT " + guestColumns + " FROM guests ORDER BY created_at ASC"

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query guests: %w", err)
	}
	defer rows.Close()

	guests := []entity.Guest{}
	for rows.Next() {
		guest, err := scanGuest(rows.Scan)
		if err != nil {
			return nil, err
		}
		guests = append(guests, *guest)
	}

	return guests, rows.Err()
}

// Update persists the mutable RSVP fields. Last write wins: replies
// are human-paced, so there is no compare-and-swap guard.
func (r *GuestRepository) Update(ctx context.Context, guest *entity.Guest) error {
	query := `
		UPDATE guests
		SET status = $2, attendees_count = $3, response_message = $4, last_update = $5
		WHERE id = $1
	`

	res, err := r.DB.ExecContext(ctx, query,
		guest.ID,
		guest.Status,
		nullableInt(guest.AttendeesCount),
		nullableString(guest.ResponseMessage),
		guest.LastUpdate,
	)
	if err != nil {
		return fmt.Errorf("update guest %s: %w", guest.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrGuestNotFound
	}

	return nil
}

func (r *GuestRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM guests").Scan(&count)
	return count, err
}

func (r *GuestRepository) CreateBatch(ctx context.Context, guests []*entity.Guest) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO guests (id, name, phone, status, attendees_count, response_message, last_update, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, guest := range guests {
		_, err := tx.ExecContext(ctx, query,
			guest.ID,
			guest.Name,
			guest.Phone,
			guest.Status,
			nullableInt(guest.AttendeesCount),
			nullableString(guest.ResponseMessage),
			guest.LastUpdate,
			guest.CreatedAt,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return entity.ErrPhoneAlreadyExists
			}
			return fmt.Errorf("insert guest %s: %w", guest.ID, err)
		}
	}

	return tx.Commit()
}

func (r *GuestRepository) scanOne(row *sql.Row) (*entity.Guest, error) {
	guest, err := scanGuest(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrGuestNotFound
	}
	if err != nil {
		return nil, err
	}
	return guest, nil
}

func scanGuest(scan func(dest ...any) error) (*entity.Guest, error) {
	var guest entity.Guest
	var attendees sql.NullInt64
	var response sql.NullString

	err := scan(
		&guest.ID,
		&guest.Name,
		&guest.Phone,
		&guest.Status,
		&attendees,
		&response,
		&guest.LastUpdate,
		&guest.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if attendees.Valid {
		n := int(attendees.Int64)
		guest.AttendeesCount = &n
	}
	if response.Valid {
		s := response.String
		guest.ResponseMessage = &s
	}

	return &guest, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
