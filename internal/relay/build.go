package relay

import (
	"fmt"
	"net/http"

	"github.com/spf13/afero"

	"github.com/nikhilbhutani/mediainsight/internal/command"
	"github.com/nikhilbhutani/mediainsight/internal/config"
)

// Build assembles the chain in the order named by cfg.Strategies.
func Build(cfg config.RelayConfig, runner command.Runner, client *http.Client, fs afero.Fs) (*Chain, error) {
	strategies := make([]Strategy, 0, len(cfg.Strategies))
	for _, name := range cfg.Strategies {
		switch name {
		case "ytdlp-mobile":
			strategies = append(strategies, NewMobileYtDlp(cfg.YtDlpPath, runner, fs))
		case "cobalt":
			strategies = append(strategies, NewCobalt(cfg.CobaltInstances, client, fs))
		case "piped":
			strategies = append(strategies, NewPiped(cfg.PipedInstances, client, fs))
		case "ytdlp-insecure":
			strategies = append(strategies, NewInsecureYtDlp(cfg.YtDlpPath, runner, fs))
		default:
			return nil, fmt.Errorf("unknown relay strategy %q", name)
		}
	}
	if len(strategies) == 0 {
		return nil, fmt.Errorf("no relay strategies configured")
	}
	return NewChain(fs, cfg.MinBytes, cfg.Timeout, strategies...), nil
}
