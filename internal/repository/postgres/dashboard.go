package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
)

type dashboardRepository struct {
	BaseRepository
}

func NewDashboardRepository(base BaseRepository) repository.DashboardRepository {
	return &dashboardRepository{base}
}

// dayBounds returns the start of the day of now and of the next day.
func dayBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// weekBounds returns Monday 00:00 of the ISO week containing now and the Monday after.
func weekBounds(now time.Time) (time.Time, time.Time) {
	day, _ := dayBounds(now)
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// Stats counts over all data, or over a physician's assigned patients and own
// appointments when physicianID is set.
func (r *dashboardRepository) Stats(ctx context.Context, physicianID *uuid.UUID, now time.Time) (*model.DashboardStats, error) {
	dayStart, dayEnd := dayBounds(now)
	weekStart, weekEnd := weekBounds(now)

	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE type = $1) AS total_patients,
			(SELECT COUNT(*) FROM appointments
				WHERE appointment_date >= $2 AND appointment_date < $3) AS today_appointments,
			(SELECT COUNT(*) FROM appointments
				WHERE appointment_date >= $4 AND appointment_date < $5) AS week_appointments
	`
	args := []interface{}{model.UserTypePatient, dayStart, dayEnd, weekStart, weekEnd}

	if physicianID != nil {
		query = `
			SELECT
				(SELECT COUNT(*) FROM physician_patients pp
					JOIN users u ON u.id = pp.patient_id
					WHERE pp.physician_id = $6 AND pp.is_active AND u.type = $1) AS total_patients,
				(SELECT COUNT(*) FROM appointments
					WHERE physician_id = $6
					AND appointment_date >= $2 AND appointment_date < $3) AS today_appointments,
				(SELECT COUNT(*) FROM appointments
					WHERE physician_id = $6
					AND appointment_date >= $4 AND appointment_date < $5) AS week_appointments
		`
		args = append(args, *physicianID)
	}

	var stats model.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, wrapError(err, "get dashboard stats")
	}
	return &stats, nil
}
