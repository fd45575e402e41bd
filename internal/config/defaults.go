package config

const (
	defaultDatasetVersion = "1"
	defaultDataPath       = "/data/shared/projects/pkasolver-data"
	defaultScriptsDir     = "scripts"
	defaultInterpreter    = "python"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultLogRetention   = 14

	dotEnvFile = ".env"

	envDatasetVersion = "PKAPREP_DATASET_VERSION"
	envDataPath       = "PKAPREP_DATA_PATH"
	envPython         = "PKAPREP_PYTHON"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Dataset: Dataset{
			Version:  defaultDatasetVersion,
			DataPath: defaultDataPath,
		},
		Paths: Paths{
			StateDir:   defaultStateDir(),
			ScriptsDir: defaultScriptsDir,
		},
		Python: Python{
			Interpreter: defaultInterpreter,
		},
		Workflow: Workflow{
			SingleInstance: true,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}
