package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imagepipe/internal/logging"
)

var (
	version = "0.1.0"
	verbose bool
)

// rootCmd's Args/RunE pass straight through to convertCmd so that
// `converter <input> [outfile]` keeps working without the `convert`
// subcommand name, per §6.
var rootCmd = &cobra.Command{
	Use:   "converter <input> [outfile]",
	Short: "Convert a raw sensor capture or raster image into sRGB JPEG",
	Long: `converter turns a raw sensor capture (or an ordinary raster image) into a
scaled, white-balanced, demosaiced, gamma-encoded sRGB JPEG.

If no outfile is given, writes <input>.jpg next to the input.`,
	Version:       version,
	Args:          cobra.RangeArgs(0, 2),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runConvert(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"converter %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
	cobra.OnInitialize(func() {
		logging.Default.SetVerbose(verbose)
	})
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
