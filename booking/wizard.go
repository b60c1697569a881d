package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Wizard steps, linear with no skipping.
const (
	StepSpeciality = 1
	StepDoctor     = 2
	StepDateTime   = 3
	StepConfirm    = 4
)

// Wizard holds the transient state of an in-progress booking. It is
// created empty when the booking flow opens and reset on successful
// submission or cancel; it is never persisted across sessions.
type Wizard struct {
	catalog   Catalog
	storage   AppointmentStorage
	patientID string

	step       int
	speciality string
	doctor     *Doctor
	date       time.Time
	slot       string
	reason     string
}

func NewWizard(catalog Catalog, storage AppointmentStorage, patientID string) *Wizard {
	return &Wizard{
		catalog:   catalog,
		storage:   storage,
		patientID: patientID,
		step:      StepSpeciality,
	}
}

func (w *Wizard) Step() int          { return w.step }
func (w *Wizard) Speciality() string { return w.speciality }
func (w *Wizard) Doctor() *Doctor    { return w.doctor }
func (w *Wizard) Date() time.Time    { return w.date }
func (w *Wizard) Slot() string       { return w.slot }
func (w *Wizard) Reason() string     { return w.reason }

// SetSpeciality records the chosen speciality. Changing it after a
// doctor was picked clears the doctor, date and time - availability is
// doctor-specific, so the dependents are stale.
func (w *Wizard) SetSpeciality(speciality string) {
	if speciality != w.speciality {
		w.doctor = nil
		w.date = time.Time{}
		w.slot = ""
	}
	w.speciality = speciality
}

// SetDoctor records the chosen doctor, verifying it belongs to the
// selected speciality.
func (w *Wizard) SetDoctor(ctx context.Context, doctorID string) error {
	doctor, err := w.catalog.Doctor(ctx, doctorID)
	if err != nil {
		return err
	}
	if w.speciality != "" && doctor.Speciality != w.speciality {
		return ErrDoctorSpecialityMismatch
	}
	if w.doctor == nil || w.doctor.ID != doctor.ID {
		w.date = time.Time{}
		w.slot = ""
	}
	w.doctor = doctor
	return nil
}

// SetDateTime records the desired date and time slot. Validation against
// the doctor's advertised availability happens on Next.
func (w *Wizard) SetDateTime(date time.Time, slot string) {
	w.date = date
	w.slot = slot
}

func (w *Wizard) SetReason(reason string) {
	w.reason = reason
}

// Next validates the current step and advances on success. A failed
// validation keeps the step unchanged and returns the message as an
// error value. Next at the confirmation step is a no-op - only Submit
// completes the flow.
func (w *Wizard) Next(ctx context.Context) error {
	switch w.step {
	case StepSpeciality:
		if w.speciality == "" {
			return ErrSpecialityRequired
		}
	case StepDoctor:
		if w.doctor == nil {
			return ErrDoctorRequired
		}
		if w.speciality != "" && w.doctor.Speciality != w.speciality {
			return ErrDoctorSpecialityMismatch
		}
	case StepDateTime:
		if w.date.IsZero() || w.slot == "" {
			return ErrDateTimeRequired
		}
		open, err := w.catalog.AvailableSlots(ctx, w.doctor.ID, w.date)
		if err != nil {
			return err
		}
		if !contains(open, w.slot) {
			return ErrSlotUnavailable
		}
	case StepConfirm:
		return nil
	}
	w.step++
	return nil
}

// Back moves one step toward the start, never below the first step, and
// clears nothing.
func (w *Wizard) Back() {
	if w.step > StepSpeciality {
		w.step--
	}
}

// Submit finalizes the booking. Only callable from the confirmation
// step with doctor, date and time all set; on success the draft resets
// to empty.
func (w *Wizard) Submit(ctx context.Context) (*Appointment, error) {
	if w.step != StepConfirm {
		return nil, ErrNotAtConfirmStep
	}
	if w.doctor == nil || w.date.IsZero() || w.slot == "" {
		return nil, ErrIncompleteDraft
	}

	appt := &Appointment{
		ID:         uuid.NewString(),
		PatientID:  w.patientID,
		DoctorID:   w.doctor.ID,
		Speciality: w.doctor.Speciality,
		Date:       w.date,
		Slot:       w.slot,
		Reason:     w.reason,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}
	if err := w.storage.CreateAppointment(ctx, appt); err != nil {
		return nil, err
	}

	w.Reset()
	return appt, nil
}

// Reset discards the draft, returning the wizard to an empty first step.
func (w *Wizard) Reset() {
	w.step = StepSpeciality
	w.speciality = ""
	w.doctor = nil
	w.date = time.Time{}
	w.slot = ""
	w.reason = ""
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
