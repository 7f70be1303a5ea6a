package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Structured log entry emitted as one JSON line on stdout.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Service   string `json:"service"`
	Action    string `json:"action"`
	Message   string `json:"message"`
	Hostname  string `json:"hostname"`
	RequestID string `json:"request_id"`
	ShiftID   string `json:"shift_id,omitempty"`
	Error     *struct {
		Msg   string `json:"msg"`
		Stack string `json:"stack"`
	} `json:"error,omitempty"`
}

var hostname, _ = os.Hostname()

var serviceName = "dispatch-service"

// SetServiceName overrides the service field; call once at startup.
func SetServiceName(name string) {
	serviceName = name
}

func Info(action, message, requestID, shiftID string) {
	output(LogEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     "INFO",
		Service:   serviceName,
		Action:    action,
		Message:   message,
		Hostname:  hostname,
		RequestID: requestID,
		ShiftID:   shiftID,
	})
}

func Debug(action, message, requestID, shiftID string) {
	output(LogEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     "DEBUG",
		Service:   serviceName,
		Action:    action,
		Message:   message,
		Hostname:  hostname,
		RequestID: requestID,
		ShiftID:   shiftID,
	})
}

func Warn(action, message, requestID, shiftID, errMsg string) {
	entry := LogEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     "WARN",
		Service:   serviceName,
		Action:    action,
		Message:   message,
		Hostname:  hostname,
		RequestID: requestID,
		ShiftID:   shiftID,
	}
	if errMsg != "" {
		entry.Error = &struct {
			Msg   string `json:"msg"`
			Stack string `json:"stack"`
		}{Msg: errMsg}
	}
	output(entry)
}

func Error(action, message, requestID, shiftID, errMsg string) {
	entry := LogEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     "ERROR",
		Service:   serviceName,
		Action:    action,
		Message:   message,
		Hostname:  hostname,
		RequestID: requestID,
		ShiftID:   shiftID,
	}
	entry.Error = &struct {
		Msg   string `json:"msg"`
		Stack string `json:"stack"`
	}{Msg: errMsg}
	output(entry)
}

func output(entry LogEntry) {
	jsonData, _ := json.Marshal(entry)
	fmt.Println(string(jsonData))
}
