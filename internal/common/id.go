package common

import (
	"github.com/google/uuid"
)

// NewReportID generates an opaque report identifier
func NewReportID() string {
	return uuid.New().String()
}
