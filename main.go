package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"

	"github.com/medscribe/medscribe/pkg/api/handler"
	"github.com/medscribe/medscribe/pkg/audio"
	"github.com/medscribe/medscribe/pkg/database"
	"github.com/medscribe/medscribe/pkg/diarize"
	"github.com/medscribe/medscribe/pkg/domain"
	"github.com/medscribe/medscribe/pkg/logger"
	"github.com/medscribe/medscribe/pkg/report"
	"github.com/medscribe/medscribe/pkg/repository"
	"github.com/medscribe/medscribe/pkg/services"
	"github.com/medscribe/medscribe/pkg/stt"
	"github.com/medscribe/medscribe/pkg/summary"
	"github.com/medscribe/medscribe/pkg/workers"
)

type Config struct {
	OpenAIToken         string  `env:"OPENAI_API_KEY,required"`
	WhisperServerURL    string  `env:"WHISPER_SERVER_URL" envDefault:"http://localhost:9000"`
	DBPath              string  `env:"MEDSCRIBE_DB_PATH" envDefault:"data/medscribe.db"`
	Language            string  `env:"STT_LANGUAGE" envDefault:"ko"`
	InitialPrompt       string  `env:"STT_INITIAL_PROMPT" envDefault:"의료 상담 녹음입니다."`
	SummaryModel        string  `env:"SUMMARY_MODEL" envDefault:"gpt-4o-mini"`
	MinAudioDuration    float64 `env:"MIN_AUDIO_DURATION" envDefault:"1.0"`
	SilenceRMSThreshold float64 `env:"SILENCE_RMS_THRESHOLD" envDefault:"0.005"`
	VADThreshold        float64 `env:"VAD_THRESHOLD" envDefault:"0.01"`
	ListenAddr          string  `env:"LISTEN_ADDR" envDefault:":8002"`
	UploadDir           string  `env:"UPLOAD_DIR" envDefault:"tmp/uploads"`
	JobQueueSize        int     `env:"JOB_QUEUE_SIZE" envDefault:"16"`
	TempDir             string  `env:"MEDSCRIBE_TEMP_DIR"`
}

type cliFlags struct {
	model            string
	refFile          string
	noNoiseReduction bool
	vad              bool
	diarizeSpeakers  bool
	reportPath       string
	htmlPath         string
	serve            bool
	addr             string
	path             string
}

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
}

func runMain() error {
	flags := parseFlags()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parsing env config: %w", err)
	}

	if !flags.serve && flags.path == "" {
		flag.Usage()
		return fmt.Errorf("audio file or directory is required unless -serve is set")
	}
	if flags.addr != "" {
		cfg.ListenAddr = flags.addr
	}

	app, err := setupApp(cfg, flags)
	if err != nil {
		return err
	}
	defer app.close()

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	if flags.serve {
		return app.serve(ctx, cfg, flags)
	}
	return app.runCLI(ctx, flags)
}

func parseFlags() cliFlags {
	var flags cliFlags
	flag.StringVar(&flags.model, "model", "whisper-1",
		fmt.Sprintf("STT model, one of %v", domain.ModelChoices()))
	flag.StringVar(&flags.refFile, "ref-file", "", "reference transcript for accuracy metrics")
	flag.BoolVar(&flags.noNoiseReduction, "no-noise-reduction", false, "disable noise reduction preprocessing")
	flag.BoolVar(&flags.vad, "vad", false, "trim silence before transcription")
	flag.BoolVar(&flags.diarizeSpeakers, "diarize", false, "assign speaker labels to segments")
	flag.StringVar(&flags.reportPath, "report", "", "write a markdown report to this path")
	flag.StringVar(&flags.htmlPath, "html", "", "write an HTML report to this path")
	flag.BoolVar(&flags.serve, "serve", false, "run the HTTP API instead of processing a file")
	flag.StringVar(&flags.addr, "addr", "", "HTTP listen address (overrides LISTEN_ADDR)")
	flag.Parse()

	flags.path = flag.Arg(0)
	return flags
}

type consultPipeline interface {
	Process(ctx context.Context, audioPath string, opts services.ProcessOptions) (*domain.ConsultRecord, error)
	ProcessDir(ctx context.Context, dir string, opts services.ProcessOptions) ([]*domain.ConsultRecord, error)
}

type jobsRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	SetProcessing(ctx context.Context, id string) error
	SetDone(ctx context.Context, id string, transcriptID int64) error
	SetError(ctx context.Context, id string, jobErr error) error
}

type transcriptsRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Transcript, error)
}

type app struct {
	pipeline    consultPipeline
	transcripts transcriptsRepository
	jobs        jobsRepository
	sttModel    string
	closeFn     func() error
}

func setupApp(cfg Config, flags cliFlags) (*app, error) {
	engine, model, err := domain.ResolveModel(flags.model)
	if err != nil {
		return nil, err
	}

	var transcriber services.Transcriber
	switch engine {
	case domain.EngineOpenAI:
		transcriber, err = stt.NewOpenAIEngine(cfg.OpenAIToken, model, cfg.Language, cfg.InitialPrompt)
	case domain.EngineWhisperServer:
		transcriber, err = stt.NewWhisperdEngine(cfg.WhisperServerURL, model, cfg.Language, cfg.InitialPrompt)
	}
	if err != nil {
		return nil, fmt.Errorf("creating stt engine: %w", err)
	}

	summarizer, err := summary.NewSummarizer(cfg.OpenAIToken, cfg.SummaryModel)
	if err != nil {
		return nil, fmt.Errorf("creating summarizer: %w", err)
	}

	var diarizer services.Diarizer = diarize.Noop{}
	if flags.diarizeSpeakers {
		diarizer = diarize.NewTurnTaking()
	}

	db, err := database.NewSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("creating db: %w", err)
	}

	transcriptsRepo := repository.NewTranscriptsRepository(db)
	jobsRepo := repository.NewJobsRepository(db)

	pipeline := services.NewPipeline(
		audio.NewLoader(cfg.TempDir),
		transcriber,
		diarizer,
		summarizer,
		transcriptsRepo,
		repository.NewSummariesRepository(db),
		repository.NewEvalMetricsRepository(db),
		repository.NewQualityMetricsRepository(db),
		services.PipelineConfig{
			MinAudioDuration:    cfg.MinAudioDuration,
			SilenceRMSThreshold: cfg.SilenceRMSThreshold,
			VADThreshold:        cfg.VADThreshold,
		},
	)

	return &app{
		pipeline:    pipeline,
		transcripts: transcriptsRepo,
		jobs:        jobsRepo,
		sttModel:    transcriber.Model(),
		closeFn:     db.Close,
	}, nil
}

func (a *app) close() {
	if err := a.closeFn(); err != nil {
		slog.Error("closing db", logger.Err(err))
	}
}

func (a *app) serve(ctx context.Context, cfg Config, flags cliFlags) error {
	jobCh := make(chan domain.Job, cfg.JobQueueSize)

	transcribeHandler := handler.NewTranscribe(a.jobs, jobCh, cfg.UploadDir)
	jobStatusHandler := handler.NewJobStatus(a.jobs, a.transcripts)
	healthHandler := handler.NewHealth(a.sttModel)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler.Check)
	mux.HandleFunc("/stt", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		transcribeHandler.Submit(w, r)
	})
	mux.HandleFunc("/stt/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		jobStatusHandler.Get(w, r)
	})

	server, err := workers.NewHTTPServer(cfg.ListenAddr, mux)
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	processor, err := workers.NewJobProcessor(a.pipeline, a.jobs, jobCh, services.ProcessOptions{
		NoiseReduction: !flags.noNoiseReduction,
		VAD:            flags.vad,
	})
	if err != nil {
		return fmt.Errorf("creating job processor: %w", err)
	}

	return workers.Group{server, processor}.Start(ctx)
}

func (a *app) runCLI(ctx context.Context, flags cliFlags) error {
	opts := services.ProcessOptions{
		NoiseReduction: !flags.noNoiseReduction,
		VAD:            flags.vad,
	}

	if flags.refFile != "" {
		ref, err := os.ReadFile(flags.refFile)
		if err != nil {
			slog.Warn("Skipping evaluation, reference file unreadable", "path", flags.refFile, logger.Err(err))
		} else {
			opts.ReferenceText = string(ref)
		}
	}

	info, err := os.Stat(flags.path)
	if err != nil {
		return fmt.Errorf("checking input path: %w", err)
	}

	if info.IsDir() {
		if flags.reportPath != "" || flags.htmlPath != "" {
			slog.Warn("Report flags apply to single files only, skipping", "path", flags.path)
		}
		records, err := a.pipeline.ProcessDir(ctx, flags.path, opts)
		for _, record := range records {
			printRecord(record)
		}
		return err
	}

	record, err := a.pipeline.Process(ctx, flags.path, opts)
	if err != nil {
		return err
	}
	printRecord(record)

	return writeReports(flags, record)
}

func writeReports(flags cliFlags, record *domain.ConsultRecord) error {
	meta := report.Meta{
		Title:     "Consultation Report",
		Source:    record.Transcript.AudioFile,
		Generated: time.Now(),
	}
	if flags.reportPath != "" {
		if err := os.WriteFile(flags.reportPath, []byte(report.RenderMarkdown(meta, record)), 0o644); err != nil {
			return fmt.Errorf("writing markdown report: %w", err)
		}
		slog.Info("Report written", "path", flags.reportPath)
	}
	if flags.htmlPath != "" {
		if err := os.WriteFile(flags.htmlPath, report.RenderHTML(meta, record), 0o644); err != nil {
			return fmt.Errorf("writing html report: %w", err)
		}
		slog.Info("Report written", "path", flags.htmlPath)
	}
	return nil
}

func printRecord(record *domain.ConsultRecord) {
	t := record.Transcript

	fmt.Printf("\n=== %s ===\n", t.AudioFile)
	fmt.Printf("model: %s  duration: %.1fs  processing: %.1fs  rtf: %.4f\n",
		t.Model, t.AudioDuration, t.ProcessingTime, t.RTF)

	if t.Empty() {
		fmt.Println("\n(no speech recognized)")
	} else if hasSpeakers(t) {
		fmt.Println()
		for _, seg := range t.Segments {
			fmt.Printf("[%6.1fs] %s: %s\n", seg.Start, seg.Speaker, strings.TrimSpace(seg.Text))
		}
	} else {
		fmt.Printf("\n%s\n", t.Text)
	}

	if q := record.Quality; q != nil {
		fmt.Printf("\nquality: confidence %.2f (min %.2f), low-confidence %.0f%%, silence %.0f%%",
			q.AvgConfidence, q.MinConfidence, q.LowConfidenceRatio*100, q.SilenceRatio*100)
		if q.ClippingDetected {
			fmt.Print(", clipping detected")
		}
		fmt.Println()
	}

	if s := record.Summary; s != nil {
		fmt.Println("\nsummary:")
		fmt.Printf("  symptoms:    %s\n", s.ChiefComplaint)
		fmt.Printf("  diagnosis:   %s\n", s.Diagnosis)
		fmt.Printf("  medication:  %s\n", s.Medication)
		fmt.Printf("  care advice: %s\n", s.LifestyleAdvice)
	}

	if e := record.Eval; e != nil {
		fmt.Printf("\neval: WER %.4f  CER %.4f  (ref %d chars, hyp %d chars)\n",
			e.WER, e.CER, e.RefChars, e.HypChars)
	}
}

func hasSpeakers(t *domain.Transcript) bool {
	for _, seg := range t.Segments {
		if seg.Speaker != "" {
			return true
		}
	}
	return false
}
