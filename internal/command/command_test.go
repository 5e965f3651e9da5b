package command_test

import (
	"bytes"
	"context"
	"fmt"
	"github.com/cirruslabs/imagecache/internal/command"
	"github.com/cirruslabs/imagecache/internal/fingerprint"
	"github.com/cirruslabs/imagecache/internal/imagecache"
	"github.com/cirruslabs/imagecache/internal/testutil"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cli struct {
	t        *testing.T
	baseDir  string
	cacheDir string
}

func (cli *cli) run(args ...string) (string, error) {
	var out bytes.Buffer

	cmd := command.NewRootCommand()
	cmd.SetArgs(append([]string{"--base-dir", cli.baseDir, "--cache-dir", cli.cacheDir}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func (cli *cli) mustRun(args ...string) string {
	out, err := cli.run(args...)
	require.NoError(cli.t, err)

	return out
}

func TestCommands(t *testing.T) {
	imageDir, imageList := testutil.RGBImages(t, 2)

	cli := &cli{t: t, baseDir: imageDir, cacheDir: t.TempDir()}

	// Fingerprints should match the library's
	fp, err := fingerprint.FromPath(imageDir, imageList[0])
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("%s  %s\n", fp, imageList[0]), cli.mustRun("fingerprint", imageList[0]))

	// Nothing is cached yet
	_, err = cli.run("get", imageList[0])
	require.ErrorIs(t, err, imagecache.ErrImageNotCached)

	cli.mustRun("put", imageList[0], `{"label": "cat", "score": 0.9}`)
	cli.mustRun("put", imageList[1], `{"label": "dog", "score": 0.2}`)

	require.JSONEq(t, `{"label": "cat", "score": 0.9}`, cli.mustRun("get", imageList[0]))

	// Listing with and without a filter
	require.Len(t, strings.Fields(cli.mustRun("list")), 2)
	require.Equal(t, fp.String()+"\n", cli.mustRun("list", "--filter", `value.label == "cat"`))
	require.Equal(t, fp.String()+"\n", cli.mustRun("list", "--filter", `value.score > 0.5`))

	info := cli.mustRun("info")
	require.Contains(t, info, cli.cacheDir)
	require.Contains(t, info, "Entries:  2")
	require.Contains(t, info, "Usage:")

	cli.mustRun("delete", imageList[0])

	_, err = cli.run("get", imageList[0])
	require.ErrorIs(t, err, imagecache.ErrImageNotCached)

	cli.mustRun("clear")
	require.Empty(t, cli.mustRun("list"))
}

func TestCommandErrors(t *testing.T) {
	imageDir, imageList := testutil.RGBImages(t, 1)

	cli := &cli{t: t, baseDir: imageDir, cacheDir: t.TempDir()}

	_, err := cli.run("get", "dummy_file")
	require.ErrorIs(t, err, imagecache.ErrNotFound)

	_, err = cli.run("put", imageList[0], "{not json")
	require.Error(t, err)

	_, err = cli.run("list", "--filter", "value +")
	require.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	imageDir, imageList := testutil.RGBImages(t, 1)
	cacheDir := t.TempDir()

	configPath := filepath.Join(t.TempDir(), "imagecache.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf("base-dir: %s\n"+
		"backend: disk\ndisk:\n  dir: %s\n  codec: go-json\n", imageDir, cacheDir)), 0600))

	cli := &cli{t: t, cacheDir: cacheDir}

	cli.mustRun("-f", configPath, "put", imageList[0], "42")
	require.JSONEq(t, "42", cli.mustRun("-f", configPath, "get", imageList[0]))

	// Info should point at the configured directory
	require.Contains(t, cli.mustRun("-f", configPath, "info"), cacheDir)
}

func TestCommandAliases(t *testing.T) {
	imageDir, imageList := testutil.RGBImages(t, 2)

	cli := &cli{t: t, baseDir: imageDir, cacheDir: t.TempDir()}

	cli.mustRun("put", imageList[0], "1")
	cli.mustRun("put", imageList[1], "2")

	cli.mustRun("rm", imageList[0])

	_, err := cli.run("get", imageList[0])
	require.ErrorIs(t, err, imagecache.ErrImageNotCached)

	cli.mustRun("purge")
	require.Empty(t, cli.mustRun("list"))
}
