package delivery

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"taicc-readiness/internal/model"
	"taicc-readiness/utilities"
)

// Job is one finished assessment to deliver.
type Job struct {
	SessionID string
	Row       model.ResultRow
	Document  *model.ReportDocument
}

// Dispatcher fans a Job out to every channel concurrently. A nil channel is
// reported as skipped.
type Dispatcher struct {
	mailer   Mailer
	sheet    RowAppender
	recorder ResultRecorder
}

func NewDispatcher(mailer Mailer, sheet RowAppender, recorder ResultRecorder) *Dispatcher {
	return &Dispatcher{mailer: mailer, sheet: sheet, recorder: recorder}
}

// Dispatch always returns one outcome per channel, in channel order, and
// never returns early because a channel failed.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) []Outcome {
	outcomes := make([]Outcome, 3)
	var g errgroup.Group

	run := func(i int, ch Channel, fn func() Outcome) {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = failed(ch, fmt.Errorf("panic: %v", r))
				}
			}()
			outcomes[i] = fn()
			return nil
		})
	}

	run(0, ChannelEmail, func() Outcome { return d.email(ctx, job) })
	run(1, ChannelSpreadsheet, func() Outcome { return d.spreadsheet(ctx, job) })
	run(2, ChannelDatabase, func() Outcome { return d.database(ctx, job) })
	_ = g.Wait()

	for _, o := range outcomes {
		switch o.Status {
		case StatusFailed:
			utilities.Error("Delivery %s for session %s failed: %s", o.Channel, job.SessionID, o.Message)
		case StatusSkipped:
			utilities.Warn("Delivery %s for session %s skipped: %s", o.Channel, job.SessionID, o.Message)
		default:
			utilities.Info("Delivery %s for session %s done", o.Channel, job.SessionID)
		}
	}
	return outcomes
}

func (d *Dispatcher) email(ctx context.Context, job Job) Outcome {
	if d.mailer == nil {
		return skipped(ChannelEmail, "email credentials "+ErrNotConfigured.Error())
	}
	to := strings.TrimSpace(job.Row.Profile.Email)
	if to == "" {
		return skipped(ChannelEmail, "no recipient email address")
	}
	if job.Document == nil {
		return failed(ChannelEmail, fmt.Errorf("no report document to attach"))
	}
	if err := d.mailer.SendReport(ctx, to, job.Row.Profile.Name, job.Document); err != nil {
		return failed(ChannelEmail, err)
	}
	return delivered(ChannelEmail)
}

func (d *Dispatcher) spreadsheet(ctx context.Context, job Job) Outcome {
	if d.sheet == nil {
		return skipped(ChannelSpreadsheet, "spreadsheet "+ErrNotConfigured.Error())
	}
	if err := d.sheet.AppendRow(ctx, job.Row); err != nil {
		return failed(ChannelSpreadsheet, err)
	}
	return delivered(ChannelSpreadsheet)
}

func (d *Dispatcher) database(ctx context.Context, job Job) Outcome {
	if d.recorder == nil {
		return skipped(ChannelDatabase, "results database "+ErrNotConfigured.Error())
	}
	if err := d.recorder.Record(ctx, job.SessionID, job.Row); err != nil {
		return failed(ChannelDatabase, err)
	}
	return delivered(ChannelDatabase)
}
