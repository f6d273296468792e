package domain

// Notification is one dispatch directive: this order matched this alert
// for this user, and the throttle allowed it. Message formatting is the
// delivery layer's concern.
type Notification struct {
	User  User
	Order Order
	Alert Alert
}
