package metrics

import (
	"math"
	"regexp"
	"strings"

	"github.com/medscribe/medscribe/pkg/domain"
)

// digitToHangul maps each digit to its Hangul reading so "3일" and "삼일" score
// the same. Multi-digit numbers are read digit by digit.
var digitToHangul = map[rune]string{
	'0': "영", '1': "일", '2': "이", '3': "삼", '4': "사",
	'5': "오", '6': "육", '7': "칠", '8': "팔", '9': "구",
}

// tokenPattern keeps Hangul and lowercase latin runs; punctuation and symbols
// fall away with the split.
var tokenPattern = regexp.MustCompile(`[가-힣a-z]+`)

// fillerPattern matches Korean hesitation sounds and discourse fillers that
// carry no clinical content and inflate the error rate.
var fillerPattern = regexp.MustCompile(`^(음+|으+[음응]|응+|어+|아+|에+|그+|이+|네+|예+|뭐+|저+|자+|좀+|막+|약간|진짜|되게)$`)

// Evaluate computes word and character error rates of a hypothesis transcript
// against a reference. Both sides are normalized first: lowercased, digits
// converted to Hangul readings, punctuation dropped, fillers removed and
// spacing canonicalized, so the rates measure recognition quality rather than
// orthography.
func Evaluate(refText, hypText string) *domain.EvalMetrics {
	ref := Normalize(refText)
	hyp := Normalize(hypText)

	return &domain.EvalMetrics{
		WER:      errorRate(strings.Fields(ref), strings.Fields(hyp)),
		CER:      errorRate([]rune(ref), []rune(hyp)),
		RefChars: len([]rune(ref)),
		HypChars: len([]rune(hyp)),
	}
}

// Normalize canonicalizes a transcript for comparison.
func Normalize(text string) string {
	text = strings.ToLower(text)

	var b strings.Builder
	for _, r := range text {
		if h, ok := digitToHangul[r]; ok {
			b.WriteString(h)
		} else {
			b.WriteRune(r)
		}
	}

	tokens := tokenPattern.FindAllString(b.String(), -1)
	kept := tokens[:0]
	for _, tok := range tokens {
		if !fillerPattern.MatchString(tok) {
			kept = append(kept, tok)
		}
	}

	return strings.Join(kept, " ")
}

// errorRate is the Levenshtein distance between reference and hypothesis
// divided by the reference length. An empty reference scores 0 against an
// empty hypothesis and 1 against anything else.
func errorRate[T comparable](ref, hyp []T) float64 {
	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0
		}
		return 1
	}
	return float64(levenshtein(ref, hyp)) / float64(len(ref))
}

func levenshtein[T comparable](a, b []T) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// ComputeRTF returns the real-time factor: processing time divided by audio
// duration. Zero when the duration is unknown.
func ComputeRTF(processingTime, audioDuration float64) float64 {
	if audioDuration <= 0 {
		return 0
	}
	return math.Round(processingTime/audioDuration*10000) / 10000
}
