package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
)

// CLIEngine renders by running the mermaid CLI (mmdc) on a temporary file.
type CLIEngine struct {
	executablePath string
	extraArgs      []string
}

// NewCLIEngine resolves the executable on PATH or as a file path.
func NewCLIEngine(executable string, extraArgs ...string) (*CLIEngine, error) {
	path, err := exec.LookPath(executable)
	if err != nil {
		return nil, fmt.Errorf("render CLI not found: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve render CLI path: %w", err)
	}
	return &CLIEngine{executablePath: abs, extraArgs: extraArgs}, nil
}

func (e *CLIEngine) Render(ctx context.Context, requestID, text string) (*domain.Graphic, error) {
	workDir, err := os.MkdirTemp("", "studio-render-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	inPath := filepath.Join(workDir, requestID+".mmd")
	outPath := filepath.Join(workDir, requestID+".svg")
	if err := os.WriteFile(inPath, []byte(text), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write source: %w", err)
	}

	args := append([]string{"-q", "-i", inPath, "-o", outPath}, e.extraArgs...)
	cmd := exec.CommandContext(ctx, e.executablePath, args...)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg == "" {
			msg = err.Error()
		}
		return nil, &domain.RenderFailure{RequestID: requestID, Message: firstLines(msg, 5)}
	}

	svg, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("render CLI produced no output: %w", err)
	}
	return &domain.Graphic{RequestID: requestID, SVG: string(svg)}, nil
}

func firstLines(s string, n int) string {
	lines := strings.SplitN(s, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
