package utils

const (
	// LogLevelEnvironmentVariable selects the zap level, for example debug to see every materialization decision.
	LogLevelEnvironmentVariable = "TREEFORGE_LOG_LEVEL"
	// ConfigFileName is the name of the local configuration file.
	ConfigFileName = ".treeforge.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home that holds the global configuration.
	GlobalConfigDirectoryName = ".treeforge"
	// GlobalConfigFileName is the name of the configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// GitIgnoreFileName is the name of Git ignore files honored by scan.
	GitIgnoreFileName = ".gitignore"
	// StandardInputArgument selects standard input as the tree source.
	StandardInputArgument = "-"
)

const (
	// LoggerInitializationFailedMessageFormat reports a logger that could not be built.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes a fatal command error.
	ApplicationExecutionFailedMessage = "treeforge failed"
)
