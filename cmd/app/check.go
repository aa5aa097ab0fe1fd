package main

import (
	"fmt"
	"io"

	"taicc-readiness/internal/config"
)

type featureLine struct {
	name    string
	enabled bool
	missing string
}

func featureLines(f config.Features) []featureLine {
	return []featureLine{
		{"text generation", f.TextGeneration, "GEMINI_API_KEY not set; session endpoints answer 503"},
		{"payment", f.Payment, "RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET not set; payment is waived"},
		{"email", f.Email, "EMAIL_SENDER/EMAIL_APP_PASSWORD not set; reports are not emailed"},
		{"spreadsheet", f.Spreadsheet, "GOOGLE_SERVICE_ACCOUNT_FILE/SPREADSHEET_ID not set; rows are not appended"},
		{"database", f.Database, "DB INITIALIZE is false; results are not stored"},
		{"admin api", f.AdminAPI, "ENABLE_BASIC_AUTH off or ADMIN_USER/ADMIN_PASSWORD not set"},
	}
}

// printFeatures writes one line per feature and reports whether text
// generation, the one required collaborator, is available.
func printFeatures(w io.Writer, f config.Features) bool {
	for _, l := range featureLines(f) {
		if l.enabled {
			fmt.Fprintf(w, "%s: ok\n", l.name)
		} else {
			fmt.Fprintf(w, "%s: degraded (%s)\n", l.name, l.missing)
		}
	}
	return f.TextGeneration
}
