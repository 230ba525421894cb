package service

import (
	"time"

	"github.com/amarfts/ph-scheduler/internal/pharmacies/repository"
)

// PublicationHour is the fixed local hour of day at which publications go out.
const PublicationHour = 6

// NextOccurrence computes the next publication slot for the target weekday,
// counting forward from referenceStart. The slot lands on the target weekday
// at PublicationHour in referenceStart's location. If that slot is not
// strictly after now, the slot one week later is returned. Pure and
// deterministic given its three inputs.
func NextOccurrence(referenceStart time.Time, weekday time.Weekday, now time.Time) time.Time {
	offset := (int(weekday) - int(referenceStart.Weekday()) + 7) % 7

	candidate := time.Date(
		referenceStart.Year(), referenceStart.Month(), referenceStart.Day()+offset,
		PublicationHour, 0, 0, 0, referenceStart.Location())

	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}

	return candidate
}

// MaxAdvanceDays bounds how far past the reference start a single generation
// run may schedule: 13 days for biweekly recurrence, 6 for weekly.
func MaxAdvanceDays(frequency string) int {
	if frequency == repository.FrequencyBiweekly {
		return 13
	}
	return 6
}
