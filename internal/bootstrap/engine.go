package bootstrap

import (
	"fmt"

	"github.com/GoSim-25-26J-441/diagram-studio/config"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/engine"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/service"
)

// BuildEngine returns the configured renderer and, for the HTTP engine, its health probe.
func BuildEngine(cfg config.RenderConfig) (service.Engine, *engine.HTTPEngine, error) {
	switch cfg.Engine {
	case config.EngineHTTP:
		e := engine.NewHTTPEngine(cfg.URL, cfg.Timeout)
		return e, e, nil
	case config.EngineCLI:
		e, err := engine.NewCLIEngine(cfg.CLIPath)
		if err != nil {
			return nil, nil, err
		}
		return e, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown render engine %q", cfg.Engine)
	}
}
