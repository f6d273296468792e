package domain

// DayKey is the layout for a NotificationCounter's calendar date in the
// reference timezone.
const DayKey = "2006-01-02"

// NotificationCounter tracks how many notifications a user received on one
// calendar day. Count only increases within a day; a new date starts a
// fresh counter.
type NotificationCounter struct {
	UserID uint
	Day    string
	Count  int
}
