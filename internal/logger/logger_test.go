package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{}},
		{name: "debug console", cfg: Config{Mode: "dev", Level: "debug"}},
		{name: "prod json", cfg: Config{Mode: "prod", Level: "warn"}},
		{name: "bad level", cfg: Config{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && log == nil {
				t.Fatal("expected non-nil logger")
			}
		})
	}
}

func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mathdaily.log")
	log, err := New(Config{Mode: "prod", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Info("worksheet generated")
	_ = log.Sync()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log file: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected log file to have content")
	}
}
