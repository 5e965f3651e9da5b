package put

import (
	"fmt"
	"github.com/cirruslabs/imagecache/internal/command/opencache"
	"github.com/cirruslabs/imagecache/internal/imagecache"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "put FILE JSON",
		Short:   "Cache a JSON value for the image",
		Example: `  imagecache put cat.jpeg '{"label": "cat", "score": 0.98}'`,
		Args:    cobra.ExactArgs(2),
		RunE:    run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	var value any

	if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
		return fmt.Errorf("failed to parse value %q as JSON: %w", args[1], err)
	}

	cache, err := opencache.Open()
	if err != nil {
		return err
	}

	return cache.Set(cmd.Context(), imagecache.File(args[0]), value)
}
