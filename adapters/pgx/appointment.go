package pgx

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/medgate/medgate/booking"
)

var (
	_ booking.Catalog            = (*Adapter)(nil)
	_ booking.AppointmentStorage = (*Adapter)(nil)
)

func (a *Adapter) Specialities(ctx context.Context) ([]string, error) {
	rows, err := a.pool.Query(ctx,
		`SELECT DISTINCT speciality FROM public.doctors ORDER BY speciality`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (a *Adapter) DoctorsBySpeciality(ctx context.Context, speciality string) ([]booking.Doctor, error) {
	rows, err := a.pool.Query(ctx,
		`SELECT id, name, speciality FROM public.doctors WHERE speciality = $1 ORDER BY name`,
		speciality)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []booking.Doctor
	for rows.Next() {
		var d booking.Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Speciality); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (a *Adapter) Doctor(ctx context.Context, id string) (*booking.Doctor, error) {
	d := &booking.Doctor{}
	err := a.pool.QueryRow(ctx,
		`SELECT id, name, speciality FROM public.doctors WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Speciality)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, booking.ErrDoctorNotFound
		}
		return nil, err
	}
	return d, nil
}

func (a *Adapter) AvailableSlots(ctx context.Context, doctorID string, date time.Time) ([]string, error) {
	q := `SELECT s.slot FROM public.doctor_slots s
	      WHERE s.doctor_id = $1
	        AND NOT EXISTS (
	          SELECT 1 FROM public.appointments ap
	          WHERE ap.doctor_id = s.doctor_id AND ap.date = $2 AND ap.slot = s.slot)
	      ORDER BY s.slot`

	rows, err := a.pool.Query(ctx, q, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (a *Adapter) CreateAppointment(ctx context.Context, appt *booking.Appointment) error {
	q := `INSERT INTO public.appointments (id, patient_id, doctor_id, speciality, date, slot, reason, status, created_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	      ON CONFLICT (doctor_id, date, slot) DO NOTHING`

	tag, err := a.pool.Exec(ctx, q,
		appt.ID, appt.PatientID, appt.DoctorID, appt.Speciality,
		appt.Date, appt.Slot, appt.Reason, appt.Status, appt.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrSlotUnavailable
	}
	return nil
}

func (a *Adapter) ListPatientAppointments(ctx context.Context, patientID string) ([]*booking.Appointment, error) {
	q := `SELECT id, patient_id, doctor_id, speciality, date, slot, reason, status, created_at
	      FROM public.appointments WHERE patient_id = $1 ORDER BY created_at DESC`

	rows, err := a.pool.Query(ctx, q, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*booking.Appointment
	for rows.Next() {
		appt := &booking.Appointment{}
		if err := rows.Scan(&appt.ID, &appt.PatientID, &appt.DoctorID, &appt.Speciality,
			&appt.Date, &appt.Slot, &appt.Reason, &appt.Status, &appt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}
