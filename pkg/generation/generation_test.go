package generation

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestGenerateDeterministic(t *testing.T) {
	svc := NewSimulated(0, slog.New(slog.NewTextHandler(io.Discard, nil)))

	first, err := svc.Generate(context.Background(), "Summarize the report.")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := svc.Generate(context.Background(), "Summarize the report.")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if first != second {
		t.Errorf("same prompt produced different content: %q vs %q", first, second)
	}

	other, err := svc.Generate(context.Background(), "Rewrite the report.")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if other == first {
		t.Errorf("different prompts produced identical content")
	}
}

func TestGenerateLatency(t *testing.T) {
	const latency = 20 * time.Millisecond
	svc := NewSimulated(latency, slog.New(slog.NewTextHandler(io.Discard, nil)))

	start := time.Now()
	if _, err := svc.Generate(context.Background(), "p"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if elapsed := time.Since(start); elapsed < latency {
		t.Errorf("Generate returned after %v, want at least %v", elapsed, latency)
	}
}

func TestGenerateCancelledDuringLatency(t *testing.T) {
	svc := NewSimulated(time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Generate(ctx, "p"); err == nil {
		t.Fatal("Generate with cancelled context returned nil error")
	}
}
