package purge

import (
	"github.com/cirruslabs/imagecache/internal/command/opencache"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "clear",
		Aliases: []string{"purge"},
		Short:   "Remove all cached values",
		Args:    cobra.NoArgs,
		RunE:    run,
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cache, err := opencache.Open()
	if err != nil {
		return err
	}

	if err := cache.Clear(cmd.Context()); err != nil {
		return err
	}

	zap.S().Infof("cleared %s", cache)

	return nil
}
