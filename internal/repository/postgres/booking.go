package postgres

import (
	"context"
	"fmt"

	"github.com/medigo/backend/internal/domain"
	"github.com/medigo/backend/pkg/database"
)

// ConsultationRepository implements repository.ConsultationRepository.
type ConsultationRepository struct {
	db database.DBTX
}

// NewConsultationRepository creates a new PostgreSQL-backed consultation repository.
func NewConsultationRepository(db database.DBTX) *ConsultationRepository {
	return &ConsultationRepository{db: db}
}

const insertConsultationSQL = `
		INSERT INTO consultations (id, name, age, gender, symptoms, preferred_date, preferred_time, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Create inserts a consultation request.
func (r *ConsultationRepository) Create(ctx context.Context, c *domain.Consultation) (err error) {
	ctx, end := database.TraceQuery(ctx, "InsertConsultation", insertConsultationSQL)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, insertConsultationSQL,
		c.ID,
		c.Name,
		c.Age,
		c.Gender,
		c.Symptoms,
		c.Date,
		c.Time,
		c.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert consultation: %w", err)
	}
	return nil
}

// LabBookingRepository implements repository.LabBookingRepository.
type LabBookingRepository struct {
	db database.DBTX
}

// NewLabBookingRepository creates a new PostgreSQL-backed lab booking repository.
func NewLabBookingRepository(db database.DBTX) *LabBookingRepository {
	return &LabBookingRepository{db: db}
}

const insertLabBookingSQL = `
		INSERT INTO lab_bookings (id, user_id, test_id, name, price, fasting, report_time, includes, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// Create inserts a lab-test booking.
func (r *LabBookingRepository) Create(ctx context.Context, b *domain.LabBooking) (err error) {
	ctx, end := database.TraceQuery(ctx, "InsertLabBooking", insertLabBookingSQL)
	defer func() { end(err) }()

	includes := b.Includes
	if includes == nil {
		includes = []string{}
	}

	_, err = r.db.Exec(ctx, insertLabBookingSQL,
		b.ID,
		b.UserID,
		b.TestID,
		b.Name,
		b.Price,
		b.Fasting,
		b.ReportTime,
		includes,
		b.Quantity,
		b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lab booking: %w", err)
	}
	return nil
}
