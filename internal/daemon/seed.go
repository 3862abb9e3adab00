package daemon

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/GoPowerDNS-Admin/plugin-settings/internal/config"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/db/controller/setting"
)

// seed registers the durable identity of every manifest plugin, so their
// settings can be written.
func seed(ctx context.Context, cfg *config.Config, store *setting.Store) error {
	for key, p := range cfg.Plugins {
		pc, err := store.RegisterPlugin(ctx, key, p.Name, p.Active)
		if err != nil {
			return err
		}

		log.Debug().Str("plugin", key).Uint64("id", pc.ID).Bool("active", pc.Active).Msg("plugin registered")
	}

	return nil
}
