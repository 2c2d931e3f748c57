package config

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Upload   UploadConfig
	Sessions SessionsConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port     int
	MCPPort  int
	MaxConns int
}

type StorageConfig struct {
	DataDir string
}

type UploadConfig struct {
	MaxBytes int
}

type SessionsConfig struct {
	HistoryLimit int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:     4600,
			MCPPort:  4601,
			MaxConns: 64,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Upload: UploadConfig{
			MaxBytes: 10 << 20,
		},
		Sessions: SessionsConfig{
			HistoryLimit: 50,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend and
// environment variables.
//
// On macOS the backend is UserDefaults (domain: com.careersync.app).
// On Linux the backend is a JSON file at
// $XDG_CONFIG_HOME/careersync/config.json.
//
// Environment variables (CAREERSYNC_*) override backend values on all
// platforms.
func Load() (Config, error) {
	return loadWith(newPlatformBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}
