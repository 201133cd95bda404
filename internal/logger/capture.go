package logger

import "encoding/json"

const defaultCaptureSize = 1000

// LogEntry represents a parsed log entry for the logs API.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Capture implements io.Writer and keeps the most recent log entries in
// memory so the API can serve them without touching the log files.
type Capture struct {
	buffer *RingBuffer[LogEntry]
}

// NewCapture creates a new log capture with the given buffer size.
func NewCapture(size int) *Capture {
	if size <= 0 {
		size = defaultCaptureSize
	}
	return &Capture{buffer: NewRingBuffer[LogEntry](size)}
}

// Write implements io.Writer. It receives JSON log entries from zerolog.
func (c *Capture) Write(p []byte) (n int, err error) {
	n = len(p)

	entry, parseErr := parseLogEntry(p)
	if parseErr != nil {
		return n, nil //nolint:nilerr // Silently ignore malformed log entries
	}

	c.buffer.Push(entry)
	return n, nil
}

// Recent returns all buffered log entries, oldest first.
func (c *Capture) Recent() []LogEntry {
	return c.buffer.GetAll()
}

// parseLogEntry parses a zerolog JSON entry into a LogEntry.
func parseLogEntry(data []byte) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, err
	}

	entry := LogEntry{
		Fields: make(map[string]any),
	}

	if ts, ok := raw["time"].(string); ok {
		entry.Timestamp = ts
		delete(raw, "time")
	}
	if level, ok := raw["level"].(string); ok {
		entry.Level = level
		delete(raw, "level")
	}
	if component, ok := raw["component"].(string); ok {
		entry.Component = component
		delete(raw, "component")
	}
	if msg, ok := raw["message"].(string); ok {
		entry.Message = msg
		delete(raw, "message")
	}

	for k, v := range raw {
		entry.Fields[k] = v
	}

	return entry, nil
}
