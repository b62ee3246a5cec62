package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	DefaultDBPath = "wonderfulgo.db"

	DefaultAssistantBaseURL         = "http://127.0.0.1:5000"
	DefaultAssistantTimeout         = 2 * time.Minute
	DefaultAssistantThrottledStatus = 503

	// Weekly VACUUM, Sunday 04:00 (seconds field first).
	DefaultMaintenanceSchedule = "0 0 4 * * 0"

	// MaintenanceTask is the scheduler key of the store VACUUM task.
	MaintenanceTask = "sql_maintenance"
)

// DefaultKnownBreeds are the breeds offered by the profile form.
var DefaultKnownBreeds = []string{
	"Toy Poodle",
	"Chihuahua",
	"Shiba Inu",
	"Miniature Dachshund",
	"Pomeranian",
	"Miniature Schnauzer",
	"Yorkshire Terrier",
	"French Bulldog",
	"Maltese",
	"Shih Tzu",
	"Labrador Retriever",
	"Golden Retriever",
	"Mixed",
}
