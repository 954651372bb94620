package entities

import "time"

// EntryKind tells why an entry attempt succeeded or failed.
type EntryKind int

const (
	// EntryUnknown means no attendee holds the scanned uid.
	EntryUnknown EntryKind = iota
	// EntryAdmitted means this attempt moved the attendee to ENTERED.
	EntryAdmitted
	// EntryAlreadyUsed means the attendee had already entered before this attempt.
	EntryAlreadyUsed
)

func (k EntryKind) String() string {
	switch k {
	case EntryAdmitted:
		return "admitted"
	case EntryAlreadyUsed:
		return "already_used"
	default:
		return "unknown"
	}
}

// EntryOutcome is the result of one atomic redemption attempt.
type EntryOutcome struct {
	Kind         EntryKind
	AttendeeName string
	Status       Status
	Venue        string
	EnteredAt    time.Time
}

// Admitted builds the outcome of a successful redemption.
func Admitted(name, venue string, at time.Time) EntryOutcome {
	return EntryOutcome{Kind: EntryAdmitted, AttendeeName: name, Status: StatusEntered, Venue: venue, EnteredAt: at}
}

// AlreadyUsed builds the outcome of a redemption on an already entered attendee.
func AlreadyUsed(name string) EntryOutcome {
	return EntryOutcome{Kind: EntryAlreadyUsed, AttendeeName: name, Status: StatusEntered}
}

// Unknown builds the outcome of a redemption on an unknown uid.
func Unknown() EntryOutcome {
	return EntryOutcome{Kind: EntryUnknown}
}
