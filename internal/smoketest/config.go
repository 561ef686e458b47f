package smoketest

import (
	"time"

	"github.com/okian/fishery/internal/domain/model"
)

// Config holds configuration for the smoke run.
type Config struct {
	BaseURL   string        // Base URL of the service
	Path      string        // Path of the fish endpoint
	Timeout   time.Duration // HTTP request timeout
	BatchSize int           // Number of fish created for the ordering check
	Workers   int           // Concurrent requests while creating the batch
	Verbose   bool          // Enable verbose logging
}

// Fish is the record shape served by the endpoint.
type Fish = model.FishRecord

// MessageResponse is the success body of create, update and delete.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Stats holds smoke run statistics.
type Stats struct {
	ChecksPassed int
	Requests     int64
	FishCreated  int
	FishDeleted  int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}
