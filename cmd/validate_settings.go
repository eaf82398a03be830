package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imagepipe/internal/pipeline"
)

var validateSettingsCmd = &cobra.Command{
	Use:           "validate-settings <input> <settings.yaml>",
	Short:         "Round-trip a saved op-chain settings file against an input",
	Args:          cobra.ExactArgs(2),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runValidateSettings,
}

func init() {
	rootCmd.AddCommand(validateSettingsCmd)
}

// runValidateSettings exercises the NewFromSerial/ToSerial round trip: load
// a saved settings file against a freshly opened source, then re-serialize
// and diff against the original text. Mirrors the teacher's validate
// subcommand doing the analogous check for a saved manifest.
func runValidateSettings(cmd *cobra.Command, args []string) error {
	src, err := openSource(args[0])
	if err != nil {
		return err
	}

	saved, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("%w: read %s: %s", ErrUsage, args[1], err)
	}

	p, err := pipeline.NewFromSerial(src, string(saved))
	if err != nil {
		return err
	}

	roundTripped, err := p.ToSerial()
	if err != nil {
		return err
	}

	if roundTripped != string(saved) {
		fmt.Println("settings changed after round-trip:")
		fmt.Println(roundTripped)
		return fmt.Errorf("pipeline: settings in %s do not round-trip cleanly", args[1])
	}

	fmt.Printf("%s: settings valid, round-trips cleanly\n", args[1])
	return nil
}
