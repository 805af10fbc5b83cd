// Package cli wires the sweetshop binary: configuration, storage and the
// HTTP server behind a cobra command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/sweet_shop/internal/config"
	pkgconfig "github.com/Skotchmaster/sweet_shop/pkg/config"
)

type app struct {
	cfgFile string
	cfg     config.Config
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "sweetshop",
		Short:         "Sweet shop inventory service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := pkgconfig.NewViper(a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = config.Load(v)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (yaml, json, toml or env)")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newSeedCmd(a),
		newReindexCmd(a),
	)
	return root
}
