// Package params holds the compiled-in constants of kintai.
//
// Every value here can be overridden at deploy time through the INI file or
// KINTAI_* environment variables (see internal/config), but never while a
// session is running.
package params

import "time"

const (
	// DefaultTimeout bounds a single submission attempt.
	DefaultTimeout = 10 * time.Second

	// DefaultRetryCount is the number of attempts per submission.
	DefaultRetryCount = 3

	// DefaultRetryDelay is the base of the linear backoff between attempts.
	DefaultRetryDelay = 1 * time.Second

	// DefaultUserID and DefaultUserName identify the single user of this client.
	DefaultUserID   = "user01"
	DefaultUserName = "kintai"

	// StorageKeyToday is the fixed key holding the serialized record of today.
	StorageKeyToday = "today_attendance"

	// Storage backends.
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	// File names inside the application directory.
	BoltFileName   = "kintai.bolt"
	SQLiteFileName = "kintai.sqlite"
	ConfigFileName = "config.ini"
	PIDFileName    = "kintai.pid"

	// ConnectivityInterval is how often the dashboard probes the endpoint.
	ConnectivityInterval = 15 * time.Second

	// ToastDuration is how long a toast stays visible on the dashboard.
	ToastDuration = 3 * time.Second
)
