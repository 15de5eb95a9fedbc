package models

// NotificationLevel is the severity of a user-facing notification
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// Notification is a non-blocking message shown to the user (a toast)
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}
