package domain

import "time"

// EvalMetrics holds accuracy figures against a reference transcript. Only
// produced when a reference text is supplied.
type EvalMetrics struct {
	ID           int64     `json:"id"`
	TranscriptID int64     `json:"transcript_id"`
	WER          float64   `json:"wer"`
	CER          float64   `json:"cer"`
	RefChars     int       `json:"ref_chars"`
	HypChars     int       `json:"hyp_chars"`
	CreatedAt    time.Time `json:"created_at"`
}

// QualityMetrics holds per-transcript quality indicators used for production
// monitoring: they require no reference text.
type QualityMetrics struct {
	ID                 int64     `json:"id"`
	TranscriptID       int64     `json:"transcript_id"`
	AvgConfidence      float64   `json:"avg_confidence"`
	MinConfidence      float64   `json:"min_confidence"`
	LowConfidenceRatio float64   `json:"low_confidence_ratio"`
	SilenceRatio       float64   `json:"silence_ratio"`
	RMSEnergy          float64   `json:"rms_energy"`
	ClippingDetected   bool      `json:"clipping_detected"`
	WordCount          int       `json:"word_count"`
	CreatedAt          time.Time `json:"created_at"`
}

// ConsultRecord aggregates everything the pipeline persisted for one audio file.
type ConsultRecord struct {
	Transcript *Transcript     `json:"transcript"`
	Quality    *QualityMetrics `json:"quality,omitempty"`
	Summary    *Summary        `json:"summary,omitempty"`
	Eval       *EvalMetrics    `json:"eval,omitempty"`
}
