package models

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the seven weekday tokens in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (w Weekday) Valid() bool {
	for _, d := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}

// AvailabilitySlot is a time-of-day window, "HH:MM" strings with Start < End.
type AvailabilitySlot struct {
	Start string `json:"start" validate:"required,time_of_day"`
	End   string `json:"end" validate:"required,time_of_day"`
}

// Label renders the slot the way requests reference it, e.g. "10:00 - 11:00".
func (s AvailabilitySlot) Label() string {
	return s.Start + " - " + s.End
}

// WeeklyAvailability maps every weekday to its ordered slot list.
type WeeklyAvailability map[Weekday][]AvailabilitySlot
