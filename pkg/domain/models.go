package domain

import "fmt"

type Engine string

const (
	// EngineOpenAI transcribes through the hosted OpenAI audio API.
	EngineOpenAI Engine = "openai"
	// EngineWhisperServer transcribes through a self-hosted whisper HTTP service.
	EngineWhisperServer Engine = "whisperd"
)

// modelPresets maps user-facing model names to an engine and the concrete
// model identifier that engine understands. The fast/balanced/accurate
// presets select local whisper checkpoints; the rest are hosted API models.
var modelPresets = map[string]struct {
	engine Engine
	model  string
}{
	"fast":     {EngineWhisperServer, "small"},
	"balanced": {EngineWhisperServer, "medium"},
	"accurate": {EngineWhisperServer, "large-v3"},

	"whisper-1":              {EngineOpenAI, "whisper-1"},
	"gpt-4o-transcribe":      {EngineOpenAI, "gpt-4o-transcribe"},
	"gpt-4o-mini-transcribe": {EngineOpenAI, "gpt-4o-mini-transcribe"},
}

// ResolveModel returns the engine and concrete model for a user-facing name.
func ResolveModel(name string) (Engine, string, error) {
	p, ok := modelPresets[name]
	if !ok {
		return "", "", fmt.Errorf("unknown model %q, choose one of %v", name, ModelChoices())
	}
	return p.engine, p.model, nil
}

func ModelChoices() []string {
	return []string{
		"fast", "balanced", "accurate",
		"whisper-1", "gpt-4o-transcribe", "gpt-4o-mini-transcribe",
	}
}
