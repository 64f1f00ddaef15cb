package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/medscribe/medscribe/pkg/domain"
	"github.com/medscribe/medscribe/pkg/logger"
)

var audioExtensions = map[string]struct{}{
	".wav":  {},
	".mp3":  {},
	".m4a":  {},
	".ogg":  {},
	".flac": {},
	".webm": {},
	".aac":  {},
}

// IsAudioFile reports whether the file name has a supported audio extension.
func IsAudioFile(name string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ProcessDir runs every audio file in dir through the pipeline. A failing
// file does not stop the batch; all failures are collected and returned
// alongside the records that did succeed. Reference-text evaluation only
// applies to single files, so it is ignored here.
func (p *pipeline) ProcessDir(ctx context.Context, dir string, opts ProcessOptions) ([]*domain.ConsultRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	opts.ReferenceText = ""

	var records []*domain.ConsultRecord
	var errs *multierror.Error
	var found bool

	for _, entry := range entries {
		if entry.IsDir() || !IsAudioFile(entry.Name()) {
			continue
		}
		found = true

		record, err := p.Process(ctx, filepath.Join(dir, entry.Name()), opts)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to process file", "file", entry.Name(), logger.Err(err))
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", entry.Name(), err))
			continue
		}
		records = append(records, record)
	}

	if !found {
		return nil, fmt.Errorf("no audio files found in %s", dir)
	}

	return records, errs.ErrorOrNil()
}
