package get

import (
	"fmt"
	"github.com/cirruslabs/imagecache/internal/command/opencache"
	"github.com/cirruslabs/imagecache/internal/imagecache"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get FILE",
		Short: "Print the cached JSON value for the image",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	cache, err := opencache.Open()
	if err != nil {
		return err
	}

	value, err := cache.Get(cmd.Context(), imagecache.File(args[0]))
	if err != nil {
		return err
	}

	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to render the cached value as JSON: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(valueJSON))

	return nil
}
