package models

// HolidayAllLocations marks a public holiday observed everywhere.
const HolidayAllLocations = "ALL"

// PublicHoliday is a non-working day for one location, or for all locations
// when Location is HolidayAllLocations.
type PublicHoliday struct {
	Date     string `db:"date" json:"date"`
	Name     string `db:"name" json:"name"`
	Location string `db:"location" json:"location"`
}

// AppliesTo reports whether the holiday removes the given location's day.
func (h PublicHoliday) AppliesTo(location string) bool {
	return h.Location == HolidayAllLocations || h.Location == location
}
