// Package booking drives the four-step appointment booking flow:
// speciality, doctor, date and time, confirm.
package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Common errors returned by the booking flow.
var (
	ErrDoctorNotFound           = errors.New("doctor not found")
	ErrSpecialityRequired       = errors.New("please select a speciality")
	ErrDoctorRequired           = errors.New("please select a doctor")
	ErrDoctorSpecialityMismatch = errors.New("doctor does not belong to the selected speciality")
	ErrDateTimeRequired         = errors.New("please select a date and time")
	ErrSlotUnavailable          = errors.New("selected time is not available for this doctor")
	ErrNotAtConfirmStep         = errors.New("appointment can only be submitted from the confirmation step")
	ErrIncompleteDraft          = errors.New("doctor, date and time are required to book")
)

// Doctor is a bookable practitioner.
type Doctor struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Speciality string `json:"speciality"`
}

// Catalog lists doctors and their advertised availability.
type Catalog interface {
	Specialities(ctx context.Context) ([]string, error)
	DoctorsBySpeciality(ctx context.Context, speciality string) ([]Doctor, error)
	Doctor(ctx context.Context, id string) (*Doctor, error)
	// AvailableSlots returns the doctor's open time slots ("09:30") for
	// the given calendar date, already net of existing bookings.
	AvailableSlots(ctx context.Context, doctorID string, date time.Time) ([]string, error)
}

// Appointment is a finalized booking produced by the wizard.
type Appointment struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patientId"`
	DoctorID   string    `json:"doctorId"`
	Speciality string    `json:"speciality"`
	Date       time.Time `json:"date"`
	Slot       string    `json:"slot"`
	Reason     string    `json:"reason,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// StatusPending is the initial appointment status; the doctor confirms
// out-of-band.
const StatusPending = "pending"

// AppointmentStorage persists finalized appointments.
type AppointmentStorage interface {
	CreateAppointment(ctx context.Context, appt *Appointment) error
	ListPatientAppointments(ctx context.Context, patientID string) ([]*Appointment, error)
}

// MemoryCatalog is an in-memory Catalog, used for development wiring and
// tests. Slots are shared across dates unless overridden per doctor.
type MemoryCatalog struct {
	mu      sync.RWMutex
	doctors map[string]Doctor
	order   []string            // doctor ids in insertion order
	slots   map[string][]string // doctor id -> advertised slots
	booked  map[string]bool     // doctor id + date + slot -> taken
}

var defaultSlots = []string{"09:00", "09:30", "10:00", "10:30", "11:00", "14:00", "14:30", "15:00"}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		doctors: make(map[string]Doctor),
		slots:   make(map[string][]string),
		booked:  make(map[string]bool),
	}
}

// NewDefaultCatalog returns a catalog seeded with the portal's doctor
// roster.
func NewDefaultCatalog() *MemoryCatalog {
	c := NewMemoryCatalog()
	for _, d := range []Doctor{
		{ID: "doc1", Name: "Dr. Sarah Johnson", Speciality: "Cardiologist"},
		{ID: "doc2", Name: "Dr. Michael Chen", Speciality: "Dermatologist"},
		{ID: "doc3", Name: "Dr. Emily Rodriguez", Speciality: "General Practitioner"},
		{ID: "doc4", Name: "Dr. James Wilson", Speciality: "Neurologist"},
		{ID: "doc5", Name: "Dr. Lisa Thompson", Speciality: "Pediatrician"},
		{ID: "doc6", Name: "Dr. Robert Garcia", Speciality: "Orthopedic Surgeon"},
	} {
		c.AddDoctor(d, nil)
	}
	return c
}

// AddDoctor registers a doctor; nil slots advertise the default grid.
func (c *MemoryCatalog) AddDoctor(d Doctor, slots []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.doctors[d.ID]; !exists {
		c.order = append(c.order, d.ID)
	}
	c.doctors[d.ID] = d
	if slots == nil {
		slots = defaultSlots
	}
	c.slots[d.ID] = append([]string(nil), slots...)
}

// MarkBooked removes a slot from a doctor's availability on a date.
func (c *MemoryCatalog) MarkBooked(doctorID string, date time.Time, slot string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.booked[bookKey(doctorID, date, slot)] = true
}

func (c *MemoryCatalog) Specialities(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, id := range c.order {
		s := c.doctors[id].Speciality
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (c *MemoryCatalog) DoctorsBySpeciality(_ context.Context, speciality string) ([]Doctor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Doctor
	for _, id := range c.order {
		if d := c.doctors[id]; d.Speciality == speciality {
			out = append(out, d)
		}
	}
	return out, nil
}

func (c *MemoryCatalog) Doctor(_ context.Context, id string) (*Doctor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &d, nil
}

func (c *MemoryCatalog) AvailableSlots(_ context.Context, doctorID string, date time.Time) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	advertised, ok := c.slots[doctorID]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	var open []string
	for _, slot := range advertised {
		if !c.booked[bookKey(doctorID, date, slot)] {
			open = append(open, slot)
		}
	}
	return open, nil
}

func bookKey(doctorID string, date time.Time, slot string) string {
	return doctorID + "|" + date.Format("2006-01-02") + "|" + slot
}

// MemoryAppointments is an in-memory AppointmentStorage that also keeps
// the paired catalog availability consistent.
type MemoryAppointments struct {
	mu      sync.RWMutex
	byID    map[string]*Appointment
	order   []string
	catalog *MemoryCatalog // optional; marks slots booked on create
}

func NewMemoryAppointments(catalog *MemoryCatalog) *MemoryAppointments {
	return &MemoryAppointments{
		byID:    make(map[string]*Appointment),
		catalog: catalog,
	}
}

func (m *MemoryAppointments) CreateAppointment(_ context.Context, appt *Appointment) error {
	m.mu.Lock()
	copied := *appt
	m.byID[appt.ID] = &copied
	m.order = append(m.order, appt.ID)
	m.mu.Unlock()

	if m.catalog != nil {
		m.catalog.MarkBooked(appt.DoctorID, appt.Date, appt.Slot)
	}
	return nil
}

func (m *MemoryAppointments) ListPatientAppointments(_ context.Context, patientID string) ([]*Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Appointment
	for _, id := range m.order {
		if a := m.byID[id]; a.PatientID == patientID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}
