package utils

// GlobalOptionsType holds the global CLI options that can be applied to any
// command or subcommand.
type GlobalOptionsType struct {
	Version     string
	GitCommit   string
	LogLevel    string
	Environment string
	DatabaseURL string
}
