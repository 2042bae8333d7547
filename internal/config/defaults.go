package config

const (
	defaultConfigPath            = "~/.config/sca/config.toml"
	defaultDataDir               = "~/.local/share/sca/data"
	defaultCaptureDir            = "~/.local/share/sca/captures"
	defaultLogDir                = "~/.local/share/sca/logs"
	defaultLogRetentionDays      = 30
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultAcquisitionName       = "acquisition"
	defaultAcquisitionIterations = 256
	defaultMode                  = "hw"
	defaultDirection             = "enc"
	defaultDevice                = "/dev/ttyUSB1"
	defaultBaudRate              = 921600
	defaultTimeoutSeconds        = 120
	defaultPollIntervalMS        = 50
	catalogFileName              = "catalog.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			CaptureDir: defaultCaptureDir,
			LogDir:     defaultLogDir,
		},
		Acquisition: Acquisition{
			Name:           defaultAcquisitionName,
			Source:         SourceFile,
			Iterations:     defaultAcquisitionIterations,
			Mode:           defaultMode,
			Direction:      defaultDirection,
			Device:         defaultDevice,
			BaudRate:       defaultBaudRate,
			TimeoutSeconds: defaultTimeoutSeconds,
			PollIntervalMS: defaultPollIntervalMS,
		},
		Storage: Storage{
			CompressCaptures: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
