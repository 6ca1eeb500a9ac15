// Package accesslog records every authentication attempt, successful or not,
// for the security review surfaces.
package accesslog

import (
	"time"

	id "github.com/belgacembalti/trustgate/pkg/domain"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusBlocked Status = "blocked"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusBlocked:
		return true
	}
	return false
}

// Entry is one authentication attempt. UserID may be zero when the attempt
// named an email that resolves to no identity.
type Entry struct {
	ID         int64
	UserID     id.UserID
	Email      string
	IP         string
	DeviceName string
	Status     Status
	Reason     string
	CreatedAt  time.Time
}
