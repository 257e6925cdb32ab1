package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/classifier"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/engine"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/service"
	"github.com/spf13/cobra"
)

func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func buildClassifyCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "classify [file|-]",
		Short: "Print diagram type, complexity and element count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			stats := classifier.Classify(text)
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(stats)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "type: %s\ncomplexity: %s\nelements: %d\n", stats.Type, stats.Complexity, stats.ElementCount)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print stats as JSON")
	return cmd
}

func buildRenderCmd() *cobra.Command {
	var (
		engineURL string
		cliPath   string
		output    string
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a diagram to SVG through the configured engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}

			var eng service.Engine
			if cliPath != "" {
				eng, err = engine.NewCLIEngine(cliPath)
				if err != nil {
					return err
				}
			} else {
				eng = engine.NewHTTPEngine(engineURL, timeout)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			g, err := eng.Render(ctx, "studioctl_1", text)
			if err != nil {
				var rf *domain.RenderFailure
				if errors.As(err, &rf) {
					return fmt.Errorf("diagram rejected: %s", rf.Message)
				}
				return err
			}

			if output == "" || output == "-" {
				_, err = io.WriteString(cmd.OutOrStdout(), g.SVG)
				return err
			}
			if err := os.WriteFile(output, []byte(g.SVG), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&engineURL, "engine-url", envOr("RENDER_ENGINE_URL", "http://localhost:8000"), "Kroki-compatible render server")
	cmd.Flags().StringVar(&cliPath, "cli", "", "Render with a local mermaid CLI instead of the server")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Render timeout")
	return cmd
}

func buildProjectsCmd() *cobra.Command {
	var apiURL string
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects on a running studio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjects(cmd, apiURL)
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", envOr("STUDIO_API", "http://localhost:8080"), "Studio API base URL")
	return cmd
}

type projectsResponse struct {
	OK       bool             `json:"ok"`
	Error    string           `json:"error"`
	ActiveID string           `json:"active_id"`
	Projects []domain.Project `json:"projects"`
}

func runProjects(cmd *cobra.Command, apiURL string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	url := strings.TrimRight(apiURL, "/") + "/api/v1/projects"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach studio: %w", err)
	}
	defer resp.Body.Close()

	var body projectsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !body.OK {
		return fmt.Errorf("studio returned status %d: %s", resp.StatusCode, body.Error)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ACTIVE\tID\tNAME\tTYPE\tUPDATED")
	for _, p := range body.Projects {
		mark := ""
		if p.ID == body.ActiveID {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", mark, p.ID, p.Name, classifier.DetectType(p.SourceText), p.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
