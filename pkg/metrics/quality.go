package metrics

import (
	"math"
	"strings"

	"github.com/medscribe/medscribe/pkg/audio"
	"github.com/medscribe/medscribe/pkg/domain"
)

const (
	lowConfidenceThreshold = 0.7

	// clippingRatioLimit: more than 0.1% of samples at full scale means the
	// recording clipped.
	clippingRatioLimit = 0.001
)

// Quality derives production monitoring indicators from a transcript and the
// waveform it came from. Confidence figures come from per-segment avg_logprob
// converted to a probability; a transcript without segments counts as fully
// low-confidence.
func Quality(t *domain.Transcript, w *audio.Waveform, silenceThreshold float64) *domain.QualityMetrics {
	q := &domain.QualityMetrics{
		TranscriptID: t.ID,
		WordCount:    len(strings.Fields(t.Text)),
	}

	if w != nil {
		q.SilenceRatio = w.SilenceRatio(silenceThreshold)
		q.RMSEnergy = w.RMS()
		q.ClippingDetected = w.ClippingRatio() > clippingRatioLimit
	}

	if len(t.Segments) == 0 {
		q.LowConfidenceRatio = 1
		return q
	}

	var sum float64
	low := 0
	minConf := math.Inf(1)
	for _, seg := range t.Segments {
		conf := math.Exp(seg.AvgLogprob)
		sum += conf
		if conf < minConf {
			minConf = conf
		}
		if conf < lowConfidenceThreshold {
			low++
		}
	}

	q.AvgConfidence = sum / float64(len(t.Segments))
	q.MinConfidence = minConf
	q.LowConfidenceRatio = float64(low) / float64(len(t.Segments))

	return q
}
