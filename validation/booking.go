package validation

import (
	"time"
)

// Duration bounds in hours for a single booking.
const (
	MinDuration = 2
	MaxDuration = 8
)

// PostcodeLength is the exact length of an Australian postcode.
const PostcodeLength = 4

// AddressInput is the service address of a booking submission.
type AddressInput struct {
	Street   string `json:"street"`
	Suburb   string `json:"suburb"`
	Postcode string `json:"postcode"`
}

// BookingInput is the body of a booking submission.
type BookingInput struct {
	Service  string       `json:"service"`
	City     string       `json:"city"`
	Date     time.Time    `json:"date"`
	Time     string       `json:"time"`
	Duration int          `json:"duration"`
	Address  AddressInput `json:"address"`
	Extras   []string     `json:"extras,omitempty"`
	Notes    string       `json:"notes,omitempty"`
}

// ValidateBooking checks a booking submission against the known service and
// city slugs. It returns nil when the input is valid.
func ValidateBooking(in BookingInput, serviceSlugs, citySlugs []string) error {
	var errs Errors

	if !contains(serviceSlugs, in.Service) {
		errs.add("service", "Please select a service")
	}
	if !contains(citySlugs, in.City) {
		errs.add("city", "Please select a city")
	}
	if in.Date.IsZero() {
		errs.add("date", "Please select a date")
	} else if in.Date.Before(startOfToday()) {
		errs.add("date", "Date cannot be in the past")
	}
	if in.Time == "" {
		errs.add("time", "Please select a time")
	}
	if in.Duration < MinDuration || in.Duration > MaxDuration {
		errs.add("duration", "Duration must be between 2 and 8 hours")
	}
	if in.Address.Street == "" {
		errs.add("address.street", "Street address is required")
	}
	if in.Address.Suburb == "" {
		errs.add("address.suburb", "Suburb is required")
	}
	if len(in.Address.Postcode) != PostcodeLength {
		errs.add("address.postcode", "Invalid postcode")
	}

	return errs.OrNil()
}

// startOfToday is the earliest instant a booking may be dated. Same-day
// bookings are allowed; anything before midnight today is not.
func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func contains(slugs []string, s string) bool {
	for _, slug := range slugs {
		if slug == s {
			return true
		}
	}
	return false
}
