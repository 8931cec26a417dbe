package ndconfig

import "fmt"

// ConfigError reports a structural problem in a grid configuration.
// Every ConfigError is fatal to startup.
type ConfigError struct {
	Line    int
	Message string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("config error on line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

func lineErrorf(line int, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Line: line, Message: fmt.Sprintf(format, args...)}
}
