package remove

import (
	"github.com/cirruslabs/imagecache/internal/command/opencache"
	"github.com/cirruslabs/imagecache/internal/imagecache"
	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete FILE...",
		Aliases: []string{"remove", "rm"},
		Short:   "Remove cached values for the images",
		Args:    cobra.MinimumNArgs(1),
		RunE:    run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	cache, err := opencache.Open()
	if err != nil {
		return err
	}

	for _, ref := range imagecache.Files(args...) {
		if err := cache.Delete(cmd.Context(), ref); err != nil {
			return err
		}
	}

	return nil
}
