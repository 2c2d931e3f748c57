package config

// Backend is the platform-native store behind the typed config keys.
// Get methods report ok=false for unset keys so callers can fall back
// to defaults. On macOS this is the com.careersync.app UserDefaults
// domain; everywhere else a JSON file under $XDG_CONFIG_HOME.
type Backend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
	Delete(key string) error
}
