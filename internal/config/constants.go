package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./kashidashi.db"

	// DefaultOpenBDBaseURL is the public OpenBD bibliographic API endpoint
	DefaultOpenBDBaseURL = "https://api.openbd.jp"
)
