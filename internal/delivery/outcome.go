// Package delivery hands the finished report to its best-effort channels:
// email, the shared spreadsheet and the results database.
package delivery

import (
	"errors"
)

// ErrNotConfigured marks a channel whose credentials are absent.
var ErrNotConfigured = errors.New("not configured")

type Channel string

const (
	ChannelEmail       Channel = "email"
	ChannelSpreadsheet Channel = "spreadsheet"
	ChannelDatabase    Channel = "database"
)

type Status string

const (
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Outcome is the result of one channel. Message explains failed and
// skipped outcomes.
type Outcome struct {
	Channel Channel `json:"channel"`
	Status  Status  `json:"status"`
	Message string  `json:"message,omitempty"`
}

func delivered(ch Channel) Outcome {
	return Outcome{Channel: ch, Status: StatusDelivered}
}

func skipped(ch Channel, reason string) Outcome {
	return Outcome{Channel: ch, Status: StatusSkipped, Message: reason}
}

func failed(ch Channel, err error) Outcome {
	return Outcome{Channel: ch, Status: StatusFailed, Message: err.Error()}
}

// Warnings returns the messages of every outcome that was not delivered.
func Warnings(outcomes []Outcome) []string {
	var out []string
	for _, o := range outcomes {
		if o.Status != StatusDelivered {
			out = append(out, string(o.Channel)+" "+string(o.Status)+": "+o.Message)
		}
	}
	return out
}
