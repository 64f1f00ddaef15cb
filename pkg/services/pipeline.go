package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/medscribe/medscribe/pkg/audio"
	"github.com/medscribe/medscribe/pkg/domain"
	"github.com/medscribe/medscribe/pkg/logger"
	"github.com/medscribe/medscribe/pkg/metrics"
)

type AudioLoader interface {
	Load(ctx context.Context, path string) (*audio.Waveform, error)
}

type Transcriber interface {
	Model() string
	Transcribe(ctx context.Context, w *audio.Waveform, name string) (*domain.Transcript, error)
}

type Diarizer interface {
	AssignSpeakers(ctx context.Context, t *domain.Transcript) error
}

type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (*domain.Summary, error)
}

type TranscriptsRepository interface {
	Save(ctx context.Context, t *domain.Transcript) (int64, error)
}

type SummariesRepository interface {
	Save(ctx context.Context, s *domain.Summary) (int64, error)
}

type EvalMetricsRepository interface {
	Save(ctx context.Context, m *domain.EvalMetrics) (int64, error)
}

type QualityMetricsRepository interface {
	Save(ctx context.Context, m *domain.QualityMetrics) (int64, error)
}

// PipelineConfig carries the audio gating thresholds.
type PipelineConfig struct {
	// MinAudioDuration in seconds; shorter recordings are not sent to STT.
	MinAudioDuration float64

	// SilenceRMSThreshold is the whole-signal RMS below which a recording
	// counts as silent.
	SilenceRMSThreshold float64

	// VADThreshold is the windowed energy level separating speech from silence.
	VADThreshold float64
}

// ProcessOptions are the per-invocation switches.
type ProcessOptions struct {
	NoiseReduction bool
	VAD            bool
	ReferenceText  string
}

type pipeline struct {
	loader      AudioLoader
	transcriber Transcriber
	diarizer    Diarizer
	summarizer  Summarizer
	transcripts TranscriptsRepository
	summaries   SummariesRepository
	evalMetrics EvalMetricsRepository
	quality     QualityMetricsRepository
	cfg         PipelineConfig
}

func NewPipeline(
	loader AudioLoader,
	transcriber Transcriber,
	diarizer Diarizer,
	summarizer Summarizer,
	transcripts TranscriptsRepository,
	summaries SummariesRepository,
	evalMetrics EvalMetricsRepository,
	quality QualityMetricsRepository,
	cfg PipelineConfig,
) *pipeline {
	return &pipeline{
		loader:      loader,
		transcriber: transcriber,
		diarizer:    diarizer,
		summarizer:  summarizer,
		transcripts: transcripts,
		summaries:   summaries,
		evalMetrics: evalMetrics,
		quality:     quality,
		cfg:         cfg,
	}
}

// Process runs one audio file through the whole pipeline and returns
// everything that was persisted. Too-short or silent recordings produce an
// empty transcript row rather than an error; a summarizer failure is logged
// and the rest of the record is kept.
func (p *pipeline) Process(ctx context.Context, audioPath string, opts ProcessOptions) (*domain.ConsultRecord, error) {
	name := filepath.Base(audioPath)
	start := time.Now()

	slog.InfoContext(ctx, "Processing audio", "file", name)

	raw, err := p.loader.Load(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("loading audio: %w", err)
	}

	if raw.Duration() < p.cfg.MinAudioDuration || raw.RMS() < p.cfg.SilenceRMSThreshold {
		slog.WarnContext(ctx, "Audio too short or silent, skipping transcription",
			"file", name, "duration", raw.Duration(), "rms", raw.RMS())
		return p.saveEmpty(ctx, name, raw, start, opts)
	}

	w := raw
	if opts.NoiseReduction {
		w = audio.ReduceNoise(w)
	}
	if opts.VAD {
		w = audio.TrimSilence(w, p.cfg.VADThreshold)
	}

	transcript, err := p.transcriber.Transcribe(ctx, w, name)
	if err != nil {
		return nil, fmt.Errorf("transcribing audio: %w", err)
	}
	transcript.AudioFile = name
	transcript.NoiseReduction = opts.NoiseReduction
	transcript.RTF = metrics.ComputeRTF(transcript.ProcessingTime, transcript.AudioDuration)

	if !transcript.Empty() && len(transcript.Segments) > 0 {
		if err := p.diarizer.AssignSpeakers(ctx, transcript); err != nil {
			slog.WarnContext(ctx, "Diarization failed", "file", name, logger.Err(err))
		}
	}

	if _, err := p.transcripts.Save(ctx, transcript); err != nil {
		return nil, err
	}

	record := &domain.ConsultRecord{Transcript: transcript}

	quality := metrics.Quality(transcript, raw, p.cfg.VADThreshold)
	quality.TranscriptID = transcript.ID
	if _, err := p.quality.Save(ctx, quality); err != nil {
		return nil, err
	}
	record.Quality = quality

	if !transcript.Empty() {
		summary, err := p.summarizer.Summarize(ctx, transcript.Text)
		if err != nil {
			slog.WarnContext(ctx, "Summary generation failed", "file", name, logger.Err(err))
		} else {
			summary.TranscriptID = transcript.ID
			if _, err := p.summaries.Save(ctx, summary); err != nil {
				return nil, err
			}
			record.Summary = summary
		}
	} else {
		slog.InfoContext(ctx, "Transcript empty, skipping summary", "file", name)
	}

	if opts.ReferenceText != "" {
		eval := metrics.Evaluate(opts.ReferenceText, transcript.Text)
		eval.TranscriptID = transcript.ID
		if _, err := p.evalMetrics.Save(ctx, eval); err != nil {
			return nil, err
		}
		record.Eval = eval
	}

	slog.InfoContext(ctx, "Processing complete",
		"file", name, "transcriptID", transcript.ID, "rtf", transcript.RTF,
		"elapsed", time.Since(start).Round(time.Millisecond).String())

	return record, nil
}

// saveEmpty persists the empty transcript produced by the silence gate so the
// attempt is still visible in the store.
func (p *pipeline) saveEmpty(ctx context.Context, name string, w *audio.Waveform, start time.Time, opts ProcessOptions) (*domain.ConsultRecord, error) {
	transcript := &domain.Transcript{
		AudioFile:      name,
		Model:          p.transcriber.Model(),
		ProcessingTime: time.Since(start).Seconds(),
		AudioDuration:  w.Duration(),
		NoiseReduction: opts.NoiseReduction,
		CreatedAt:      time.Now(),
	}
	transcript.RTF = metrics.ComputeRTF(transcript.ProcessingTime, transcript.AudioDuration)

	if _, err := p.transcripts.Save(ctx, transcript); err != nil {
		return nil, err
	}

	quality := metrics.Quality(transcript, w, p.cfg.VADThreshold)
	quality.TranscriptID = transcript.ID
	if _, err := p.quality.Save(ctx, quality); err != nil {
		return nil, err
	}

	return &domain.ConsultRecord{Transcript: transcript, Quality: quality}, nil
}
