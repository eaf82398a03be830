// Command converter turns a raw sensor capture, or an ordinary raster
// image, into a scaled, white-balanced, demosaiced, gamma-encoded sRGB
// JPEG.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/AnyUserName/imagepipe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, cmd.ErrUsage) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}
