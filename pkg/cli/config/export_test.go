package config

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, signingSecret, adminUserID string) *Slack {
	return &Slack{
		botToken:      botToken,
		signingSecret: signingSecret,
		adminUserID:   adminUserID,
	}
}

// NewSettingsForTest creates a Settings config for testing purposes
func NewSettingsForTest(path string) *Settings {
	return &Settings{path: path}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(resourceBackend, pairingBackend string) *Repository {
	return &Repository{
		resourceBackend: resourceBackend,
		pairingBackend:  pairingBackend,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}
