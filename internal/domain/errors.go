package domain

import "errors"

// Domain errors.
var (
	ErrEventRequired     = errors.New("event is required")
	ErrNamesRequired     = errors.New("names must be a list")
	ErrUIDRequired       = errors.New("uid is required")
	ErrVenueRequired     = errors.New("venue is required")
	ErrDuplicateAttendee = errors.New("attendee already registered")
	ErrNothingToIssue    = errors.New("no credentials left to issue")
)

var codes = map[error]string{
	ErrEventRequired:     "event_required",
	ErrNamesRequired:     "names_required",
	ErrUIDRequired:       "uid_required",
	ErrVenueRequired:     "venue_required",
	ErrDuplicateAttendee: "duplicate_attendee",
	ErrNothingToIssue:    "nothing_to_issue",
}

// Code returns the stable code of the domain error wrapped in err, or "" when
// err is not a domain error.
func Code(err error) string {
	for sentinel, code := range codes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return ""
}

// IsValidation reports whether err is caused by a malformed request.
func IsValidation(err error) bool {
	switch Code(err) {
	case "event_required", "names_required", "uid_required", "venue_required":
		return true
	}
	return false
}
