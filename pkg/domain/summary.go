package domain

import "time"

// Summary is the clinical digest extracted from a consultation transcript.
type Summary struct {
	ID              int64     `json:"id"`
	TranscriptID    int64     `json:"transcript_id"`
	ChiefComplaint  string    `json:"chief_complaint"`
	Diagnosis       string    `json:"diagnosis"`
	Medication      string    `json:"medication"`
	LifestyleAdvice string    `json:"lifestyle_advice"`
	Model           string    `json:"model"`
	SummaryTime     float64   `json:"summary_time"`
	CreatedAt       time.Time `json:"created_at"`
}
