package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/litbundle/internal/bundle"
)

type ConfigCmd struct {
	ConfigFlags `embed:""`
}

func (c *ConfigCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := c.load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := bundle.MarshalConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	_, err = globals.stdout().Write(data)
	return err
}
