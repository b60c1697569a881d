package booking

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestWizard(t *testing.T) (*Wizard, *MemoryCatalog, *MemoryAppointments) {
	t.Helper()
	catalog := NewDefaultCatalog()
	storage := NewMemoryAppointments(catalog)
	return NewWizard(catalog, storage, "patient-1"), catalog, storage
}

func appointmentDate() time.Time {
	return time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
}

// advance drives a wizard to the confirmation step with a valid draft.
func advance(t *testing.T, w *Wizard) {
	t.Helper()
	ctx := context.Background()
	w.SetSpeciality("Cardiologist")
	if err := w.Next(ctx); err != nil {
		t.Fatalf("Next() from speciality: %v", err)
	}
	if err := w.SetDoctor(ctx, "doc1"); err != nil {
		t.Fatalf("SetDoctor() error = %v", err)
	}
	if err := w.Next(ctx); err != nil {
		t.Fatalf("Next() from doctor: %v", err)
	}
	w.SetDateTime(appointmentDate(), "09:30")
	if err := w.Next(ctx); err != nil {
		t.Fatalf("Next() from date/time: %v", err)
	}
	if w.Step() != StepConfirm {
		t.Fatalf("Step() = %d, want confirm", w.Step())
	}
}

// Requirement: Next at step 1 with no speciality stays on step 1 and
// surfaces a validation message; selecting one advances to step 2.
func TestWizard_SpecialityValidation(t *testing.T) {
	w, _, _ := newTestWizard(t)
	ctx := context.Background()

	if err := w.Next(ctx); !errors.Is(err, ErrSpecialityRequired) {
		t.Fatalf("Next() error = %v, want ErrSpecialityRequired", err)
	}
	if w.Step() != StepSpeciality {
		t.Fatalf("Step() = %d, want 1 after failed validation", w.Step())
	}

	w.SetSpeciality("Cardiologist")
	if err := w.Next(ctx); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if w.Step() != StepDoctor {
		t.Fatalf("Step() = %d, want 2", w.Step())
	}
}

// Requirement: step stays within [1,4] for every sequence of Next/Back;
// Back from step 1 stays at 1, Next at step 4 is a no-op.
func TestWizard_StepClamping(t *testing.T) {
	w, _, _ := newTestWizard(t)
	ctx := context.Background()

	w.Back()
	if w.Step() != StepSpeciality {
		t.Fatalf("Back() at step 1 moved to %d", w.Step())
	}

	advance(t, w)

	if err := w.Next(ctx); err != nil {
		t.Fatalf("Next() at confirm errored: %v", err)
	}
	if w.Step() != StepConfirm {
		t.Fatalf("Next() at confirm moved to %d", w.Step())
	}

	for i := 0; i < 10; i++ {
		w.Back()
	}
	if w.Step() != StepSpeciality {
		t.Fatalf("repeated Back() ended at %d, want 1", w.Step())
	}
}

// Requirement: Back preserves all prior selections.
func TestWizard_BackPreservesFields(t *testing.T) {
	w, _, _ := newTestWizard(t)
	advance(t, w)

	w.Back()
	w.Back()
	if w.Speciality() != "Cardiologist" {
		t.Error("speciality cleared by Back()")
	}
	if w.Doctor() == nil || w.Doctor().ID != "doc1" {
		t.Error("doctor cleared by Back()")
	}
	if w.Date().IsZero() || w.Slot() != "09:30" {
		t.Error("date/time cleared by Back()")
	}
}

// Requirement: changing the speciality after a doctor was chosen clears
// the doctor and transitively the date and time.
func TestWizard_SpecialityChangeClearsDependents(t *testing.T) {
	w, _, _ := newTestWizard(t)
	advance(t, w)

	w.SetSpeciality("Dermatologist")
	if w.Doctor() != nil {
		t.Error("doctor survived speciality change")
	}
	if !w.Date().IsZero() || w.Slot() != "" {
		t.Error("date/time survived speciality change")
	}

	// Re-selecting the same speciality does not clear anything.
	w2, _, _ := newTestWizard(t)
	advance(t, w2)
	w2.SetSpeciality("Cardiologist")
	if w2.Doctor() == nil {
		t.Error("doctor cleared by re-selecting the same speciality")
	}
}

// Requirement: a doctor outside the chosen speciality is rejected.
func TestWizard_DoctorSpecialityMismatch(t *testing.T) {
	w, _, _ := newTestWizard(t)
	ctx := context.Background()

	w.SetSpeciality("Cardiologist")
	if err := w.Next(ctx); err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	// doc2 is a dermatologist.
	if err := w.SetDoctor(ctx, "doc2"); !errors.Is(err, ErrDoctorSpecialityMismatch) {
		t.Fatalf("SetDoctor() error = %v, want ErrDoctorSpecialityMismatch", err)
	}
	if err := w.Next(ctx); !errors.Is(err, ErrDoctorRequired) {
		t.Fatalf("Next() error = %v, want ErrDoctorRequired", err)
	}

	if err := w.SetDoctor(ctx, "missing"); !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("SetDoctor() error = %v, want ErrDoctorNotFound", err)
	}
}

// Requirement: step 3 requires date and time, and the time must be one
// of the doctor's advertised slots for that exact date.
func TestWizard_DateTimeValidation(t *testing.T) {
	w, catalog, _ := newTestWizard(t)
	ctx := context.Background()

	w.SetSpeciality("Cardiologist")
	if err := w.Next(ctx); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if err := w.SetDoctor(ctx, "doc1"); err != nil {
		t.Fatalf("SetDoctor() error = %v", err)
	}
	if err := w.Next(ctx); err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	if err := w.Next(ctx); !errors.Is(err, ErrDateTimeRequired) {
		t.Fatalf("Next() with empty date/time error = %v, want ErrDateTimeRequired", err)
	}

	w.SetDateTime(appointmentDate(), "23:45")
	if err := w.Next(ctx); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("Next() with unadvertised slot error = %v, want ErrSlotUnavailable", err)
	}

	// A slot already booked on that date is unavailable too.
	catalog.MarkBooked("doc1", appointmentDate(), "09:30")
	w.SetDateTime(appointmentDate(), "09:30")
	if err := w.Next(ctx); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("Next() with booked slot error = %v, want ErrSlotUnavailable", err)
	}

	// Same slot on a different date is fine.
	other := appointmentDate().AddDate(0, 0, 1)
	w.SetDateTime(other, "09:30")
	if err := w.Next(ctx); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if w.Step() != StepConfirm {
		t.Fatalf("Step() = %d, want confirm", w.Step())
	}
}

// Requirement: Submit only works from the confirmation step, produces a
// pending appointment, and resets the draft.
func TestWizard_Submit(t *testing.T) {
	w, _, storage := newTestWizard(t)
	ctx := context.Background()

	if _, err := w.Submit(ctx); !errors.Is(err, ErrNotAtConfirmStep) {
		t.Fatalf("Submit() at step 1 error = %v, want ErrNotAtConfirmStep", err)
	}

	advance(t, w)
	w.SetReason("chest pain")

	appt, err := w.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if appt.ID == "" {
		t.Error("appointment missing id")
	}
	if appt.PatientID != "patient-1" || appt.DoctorID != "doc1" {
		t.Errorf("appointment refs = %q/%q, want patient-1/doc1", appt.PatientID, appt.DoctorID)
	}
	if appt.Speciality != "Cardiologist" || appt.Slot != "09:30" || appt.Reason != "chest pain" {
		t.Errorf("appointment fields = %+v", appt)
	}
	if appt.Status != StatusPending {
		t.Errorf("Status = %q, want %q", appt.Status, StatusPending)
	}

	// Draft resets to empty.
	if w.Step() != StepSpeciality || w.Speciality() != "" || w.Doctor() != nil || w.Slot() != "" || w.Reason() != "" {
		t.Error("draft not reset after submit")
	}

	stored, err := storage.ListPatientAppointments(ctx, "patient-1")
	if err != nil {
		t.Fatalf("ListPatientAppointments() error = %v", err)
	}
	if len(stored) != 1 || stored[0].ID != appt.ID {
		t.Errorf("stored appointments = %+v, want the submitted one", stored)
	}
}

// Requirement: the booked slot disappears from availability.
func TestWizard_SubmitConsumesSlot(t *testing.T) {
	w, catalog, _ := newTestWizard(t)
	ctx := context.Background()

	advance(t, w)
	if _, err := w.Submit(ctx); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	open, err := catalog.AvailableSlots(ctx, "doc1", appointmentDate())
	if err != nil {
		t.Fatalf("AvailableSlots() error = %v", err)
	}
	for _, s := range open {
		if s == "09:30" {
			t.Error("booked slot still advertised as available")
		}
	}
}

// Requirement: cancel (Reset) discards every selection.
func TestWizard_Reset(t *testing.T) {
	w, _, _ := newTestWizard(t)
	advance(t, w)
	w.SetReason("follow-up")

	w.Reset()
	if w.Step() != StepSpeciality || w.Speciality() != "" || w.Doctor() != nil ||
		!w.Date().IsZero() || w.Slot() != "" || w.Reason() != "" {
		t.Error("Reset() left state behind")
	}
}
