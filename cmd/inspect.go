package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imagepipe/internal/pipeline"
)

var inspectCmd = &cobra.Command{
	Use:           "inspect <input>",
	Short:         "Print the default op-chain settings for an input as YAML",
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	src, err := openSource(args[0])
	if err != nil {
		return err
	}

	p := pipeline.New(src)
	// Plan sizes with the source's own dimensions as bounds (no scaling).
	// Planning does not change the serialized settings printed below.
	w, h := src.Dimensions()
	p.PlanSize(w, h)

	text, err := p.ToSerial()
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}
