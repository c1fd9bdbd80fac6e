package logger

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// LogEntry is one captured log line. RootTag and Type are set for entries
// logged in the context of a document.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Component string    `json:"component,omitempty"`
	Message   string    `json:"message"`
	Caller    string    `json:"caller,omitempty"`
	RootTag   string    `json:"root_tag,omitempty"`
	Type      string    `json:"type,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// LogBuffer is a circular buffer of recent log entries.
type LogBuffer struct {
	mu       sync.RWMutex
	entries  []LogEntry
	size     int
	writePos int
	count    int
}

var (
	globalBuffer *LogBuffer
	bufferOnce   sync.Once
)

// GetBuffer returns the process-wide log buffer.
func GetBuffer() *LogBuffer {
	bufferOnce.Do(func() {
		globalBuffer = NewLogBuffer(2000)
	})
	return globalBuffer
}

// NewLogBuffer creates a log buffer holding at most size entries.
func NewLogBuffer(size int) *LogBuffer {
	return &LogBuffer{
		entries: make([]LogEntry, size),
		size:    size,
	}
}

// Add stores an entry, overwriting the oldest one when full.
func (b *LogBuffer) Add(entry LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.writePos] = entry
	b.writePos = (b.writePos + 1) % b.size
	if b.count < b.size {
		b.count++
	}
}

// GetRecent returns up to limit entries, newest first, at or above level and
// no older than sinceMinutes.
func (b *LogBuffer) GetRecent(limit int, level string, sinceMinutes int) []LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if limit <= 0 || limit > b.count {
		limit = b.count
	}
	cutoff := time.Now().Add(-time.Duration(sinceMinutes) * time.Minute)
	minLevel := levelRank(level)

	var result []LogEntry
	for i := 0; i < b.count && len(result) < limit; i++ {
		entry := b.entries[(b.writePos-1-i+b.size)%b.size]
		if entry.Timestamp.Before(cutoff) {
			continue
		}
		if level != "" && levelRank(entry.Level) < minLevel {
			continue
		}
		result = append(result, entry)
	}
	return result
}

func levelRank(level string) int {
	switch strings.ToLower(level) {
	case "debug":
		return 0
	case "info":
		return 1
	case "warn", "warning":
		return 2
	case "error":
		return 3
	case "fatal", "panic":
		return 4
	default:
		return -1
	}
}

// Count returns the number of stored entries.
func (b *LogBuffer) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// LogBufferWriter decodes zerolog JSON lines into a LogBuffer.
type LogBufferWriter struct {
	buffer *LogBuffer
}

// NewLogBufferWriter creates a writer that stores entries in buffer.
func NewLogBufferWriter(buffer *LogBuffer) *LogBufferWriter {
	return &LogBufferWriter{buffer: buffer}
}

// Write implements io.Writer. Lines that are not JSON are dropped.
func (w *LogBufferWriter) Write(p []byte) (int, error) {
	if entry, ok := parseLogLine(p); ok {
		w.buffer.Add(entry)
	}
	return len(p), nil
}

func parseLogLine(p []byte) (LogEntry, bool) {
	var raw struct {
		Level     string `json:"level"`
		Component string `json:"component"`
		Message   string `json:"message"`
		Caller    string `json:"caller"`
		Time      string `json:"time"`
		RootTag   string `json:"root_tag"`
		Type      string `json:"type"`
		Error     string `json:"error"`
	}
	if err := json.Unmarshal(p, &raw); err != nil {
		return LogEntry{}, false
	}
	if raw.Level == "" && raw.Message == "" {
		return LogEntry{}, false
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     strings.ToUpper(raw.Level),
		Component: raw.Component,
		Message:   raw.Message,
		Caller:    raw.Caller,
		RootTag:   raw.RootTag,
		Type:      raw.Type,
		Error:     raw.Error,
	}
	if t, err := time.Parse(time.RFC3339, raw.Time); err == nil {
		entry.Timestamp = t
	}
	return entry, true
}
