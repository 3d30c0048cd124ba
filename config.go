package stache

import (
	"fmt"
	"os"

	"github.com/goliatone/go-stache/pkg/config"
	"github.com/goliatone/go-stache/pkg/widgets"
)

// Factories maps widget names used in config slots to view factories.
type Factories map[string]func(widgets.Owner) widgets.View

// FromConfig builds a pipeline from cfg: diagnostic and render policy,
// widget slots resolved through factories and partials loaded from
// cfg.Partials.Dir. Extra options are applied after the config.
func FromConfig(cfg config.Config, factories Factories, options ...Option) (*Pipeline, error) {
	all := []Option{WithConfig(cfg)}
	if len(cfg.Slots) > 0 {
		registry := widgets.NewRegistry()
		if err := cfg.Register(registry, factories); err != nil {
			return nil, fmt.Errorf("stache: %w", err)
		}
		all = append(all, WithWidgets(registry))
	}
	all = append(all, options...)

	p := New(all...)
	if cfg.Partials.Dir != "" {
		if err := p.LoadPartialsFS(os.DirFS(cfg.Partials.Dir), cfg.Partials.Extension); err != nil {
			return nil, err
		}
	}
	return p, nil
}
