package cli

import (
	"github.com/akhuoa/console-formatter/pkg/config"
	"github.com/akhuoa/console-formatter/pkg/errors"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				return writeText(cmd.OutOrStdout(), config.DefaultContent())
			}
			data, err := a.cfg.TOML()
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
			}
			return writeText(cmd.OutOrStdout(), string(data))
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	return cmd
}
