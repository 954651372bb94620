package entities

import "time"

// Status is the entry state of an attendee. It only ever moves from
// StatusNotEntered to StatusEntered.
type Status string

const (
	StatusNotEntered Status = "NOT_ENTERED"
	StatusEntered    Status = "ENTERED"
)

// ParseStatus returns the status named by s and whether s is one of the two
// known values. Matching is exact.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusNotEntered, StatusEntered:
		return Status(s), true
	}
	return "", false
}

// Attendee is a registered guest of an event.
type Attendee struct {
	UID       string
	Name      string
	Event     string
	Issued    bool
	Status    Status
	Venue     string    // empty until entered
	EnteredAt time.Time // zero until entered
	CreatedAt time.Time
}

// HasEntered reports whether the attendee has been admitted.
func (a *Attendee) HasEntered() bool {
	return a.Status == StatusEntered
}

// NewAttendee is one row of a registration batch.
type NewAttendee struct {
	UID  string
	Name string
}

// RegistrationResult summarises a registration batch.
type RegistrationResult struct {
	InsertedCount int
	SkippedCount  int
	Inserted      []NewAttendee
}

// AttendeeFilter narrows an attendee listing. Zero values mean "no filter".
type AttendeeFilter struct {
	Status Status
	Event  string
	Limit  int
}
