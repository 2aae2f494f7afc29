package models

// NotificationType classifies a notification for display
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
)

// Notification is an entry in a user's event log
type Notification struct {
	ID      string           `json:"id"`
	UserID  string           `json:"userId"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Date    string           `json:"date"`
	Read    bool             `json:"read"`
	Type    NotificationType `json:"type"`
}

// Preferences are the UI settings kept alongside the ledger
type Preferences struct {
	PageAnimation        string `json:"pageAnimation"`
	DarkModeEnabled      bool   `json:"darkModeEnabled"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
}

// PageAnimations are the accepted PageAnimation values
var PageAnimations = []string{
	"fade",
	"fade-in",
	"slide-up",
	"slide-down",
	"slide-left",
	"slide-right",
	"zoom-in",
	"zoom-out",
	"flip-x",
	"flip-y",
	"bounce-in",
}

// DefaultPreferences returns the settings used before anything is saved
func DefaultPreferences() Preferences {
	return Preferences{
		PageAnimation:        "fade",
		DarkModeEnabled:      true,
		NotificationsEnabled: true,
	}
}
