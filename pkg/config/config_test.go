package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ranking.Method != "TF-IDF" {
		t.Errorf("expected default method TF-IDF, got %q", cfg.Ranking.Method)
	}
	if cfg.Corpus.Source != "files" {
		t.Errorf("expected files source, got %q", cfg.Corpus.Source)
	}
	if !reflect.DeepEqual(cfg.Corpus.Files, DefaultCorpusFiles) {
		t.Errorf("unexpected default files %v", cfg.Corpus.Files)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9000
  readTimeout: 5s
corpus:
  dir: /srv/corpus
  files: [a.txt, b.txt]
ranking:
  method: Other
search:
  defaultLimit: 3
  maxResults: 5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server not decoded: %+v", cfg.Server)
	}
	if cfg.Corpus.Dir != "/srv/corpus" || !reflect.DeepEqual(cfg.Corpus.Files, []string{"a.txt", "b.txt"}) {
		t.Errorf("corpus not decoded: %+v", cfg.Corpus)
	}
	if cfg.Ranking.Method != "Other" {
		t.Errorf("expected method Other, got %q", cfg.Ranking.Method)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("unset field should keep default, got %v", cfg.Server.WriteTimeout)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SP_RANKING_METHOD", "BM25")
	t.Setenv("SP_CORPUS_DIR", "/data")
	t.Setenv("SP_CORPUS_FILES", "x.txt, y.txt,")
	t.Setenv("SP_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SP_SERVER_PORT", "not-a-number")
	t.Setenv("SP_SERVER_RATE_LIMIT", "120")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ranking.Method != "BM25" {
		t.Errorf("method override ignored: %q", cfg.Ranking.Method)
	}
	if cfg.Corpus.Dir != "/data" {
		t.Errorf("dir override ignored: %q", cfg.Corpus.Dir)
	}
	if !reflect.DeepEqual(cfg.Corpus.Files, []string{"x.txt", "y.txt"}) {
		t.Errorf("files override: %v", cfg.Corpus.Files)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("brokers override: %v", cfg.Kafka.Brokers)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("invalid port should be ignored, got %d", cfg.Server.Port)
	}
	if cfg.Server.RateLimit != 120 {
		t.Errorf("rate limit override: %d", cfg.Server.RateLimit)
	}
}

func TestValidate(t *testing.T) {
	cfg, _ := Load("")
	cfg.Corpus.Source = "s3"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown corpus source")
	}

	cfg, _ = Load("")
	cfg.Search.DefaultLimit = 50
	cfg.Search.MaxResults = 10
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when default limit exceeds max")
	}

	cfg, _ = Load("")
	cfg.Server.RateLimit = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative rate limit")
	}
}
