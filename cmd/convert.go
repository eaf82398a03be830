package cmd

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/imagepipe/internal/cache"
	"github.com/AnyUserName/imagepipe/internal/decode"
	"github.com/AnyUserName/imagepipe/internal/imgsrc"
	"github.com/AnyUserName/imagepipe/internal/logging"
	"github.com/AnyUserName/imagepipe/internal/pipeline"
	"github.com/AnyUserName/imagepipe/internal/preset"
)

// ErrUsage marks an argument-validation failure; main.go maps it to exit
// code 1, everything else (decode/pipeline errors) to exit code 2, per §6.
var ErrUsage = errors.New("usage error")

var (
	convertPreset    string
	convertMaxWidth  int
	convertMaxHeight int
	convertLinear    bool
	convertQuality   int
	convertNoCache   bool
	convertPreview   int
	convertHashName  bool
)

var convertCmd = &cobra.Command{
	Use:           "convert <input> [outfile]",
	Short:         "Convert a raw sensor capture or raster image into sRGB JPEG",
	Args:          cobra.RangeArgs(1, 2),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runConvert,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, convertCmd} {
		c.Flags().StringVar(&convertPreset, "preset", "full", fmt.Sprintf("run preset: %v", preset.Names()))
		c.Flags().IntVar(&convertMaxWidth, "maxwidth", 0, "cap output width (0 = unbounded, overrides preset)")
		c.Flags().IntVar(&convertMaxHeight, "maxheight", 0, "cap output height (0 = unbounded, overrides preset)")
		c.Flags().BoolVar(&convertLinear, "linear", false, "set the preset's linear field (overrides preset); the JPEG is always written 8-bit and gamma-encoded")
		c.Flags().IntVar(&convertQuality, "quality", 92, "output JPEG quality 1-100")
		c.Flags().BoolVar(&convertNoCache, "no-cache", false, "disable the buffer cache for this run")
		c.Flags().IntVar(&convertPreview, "preview-width", 0, "also write a <outfile>.preview.jpg thumbnail at this width (0 = skip)")
		c.Flags().BoolVar(&convertHashName, "hash-name", false, "insert a content hash of the encoded bytes before outfile's extension")
	}
	rootCmd.AddCommand(convertCmd)
}

const defaultCacheBytes = 512 << 20

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: converter <input> [outfile]", ErrUsage)
	}
	input := args[0]
	outfile := input + ".jpg"
	if len(args) > 1 {
		outfile = args[1]
	}

	log := logging.Default
	log.Debugf("input:  %s", input)
	log.Debugf("output: %s", outfile)

	start := time.Now()

	src, err := openSource(input)
	if err != nil {
		return err
	}

	printMetadataBanner(src)

	p := preset.Get(convertPreset)
	p = p.WithOverrides(flagOverride(cmd, "maxwidth", convertMaxWidth), flagOverride(cmd, "maxheight", convertMaxHeight), flagBoolOverride(cmd, "linear", convertLinear))

	pl := pipeline.New(src)

	var c *cache.Cache
	if !convertNoCache {
		c = cache.New(defaultCacheBytes)
	}

	out := pl.Output8Bit(p.MaxWidth, p.MaxHeight, p.UseFastpath, c)
	decoded := time.Since(start)

	img := &image.RGBA{
		Pix:    expandToRGBA(out.Data),
		Stride: out.Width * 4,
		Rect:   image.Rect(0, 0, out.Width, out.Height),
	}

	encoded, err := encodeJPEG(img, convertQuality)
	if err != nil {
		return fmt.Errorf("encode %s: %w", outfile, err)
	}

	if convertHashName {
		outfile = withHashSuffix(outfile, encoded)
	}

	if err := writeFile(outfile, encoded); err != nil {
		return fmt.Errorf("write %s: %w", outfile, err)
	}

	if convertPreview > 0 {
		previewPath := outfile + ".preview.jpg"
		if err := writePreview(previewPath, img, convertPreview); err != nil {
			return fmt.Errorf("write %s: %w", previewPath, err)
		}
		fmt.Printf("Wrote %s\n", previewPath)
	}

	fmt.Printf("Decoded and converted in %s\n", decoded.Round(time.Millisecond))
	if info, err := os.Stat(outfile); err == nil {
		fmt.Printf("Wrote %s (%dx%d, %s)\n", outfile, out.Width, out.Height, formatBytes(info.Size()))
	} else {
		fmt.Printf("Wrote %s (%dx%d)\n", outfile, out.Width, out.Height)
	}
	return nil
}

// flagOverride returns a pointer to v when the flag was explicitly set,
// nil otherwise, matching preset.WithOverrides' "non-nil override" shape,
// so an explicit 0 still counts as set.
func flagOverride(cmd *cobra.Command, name string, v int) *int {
	if cmd.Flags().Changed(name) {
		return &v
	}
	return nil
}

func flagBoolOverride(cmd *cobra.Command, name string, v bool) *bool {
	if cmd.Flags().Changed(name) {
		return &v
	}
	return nil
}

// openSource tries the decoders this repo actually bundles. Raw decoding
// has no concrete implementation here (no Go raw-sensor library exists in
// the available dependency surface); only the raster path is wired.
func openSource(path string) (imgsrc.ImageSource, error) {
	r, err := decode.OpenRaster(path)
	if err != nil {
		return imgsrc.ImageSource{}, fmt.Errorf("%w: %s", pipeline.ErrUnknownSource, err)
	}
	return imgsrc.FromRaster(r), nil
}

func printMetadataBanner(src imgsrc.ImageSource) {
	switch src.Kind {
	case imgsrc.KindRaw:
		d := src.Raw
		fmt.Printf("Image size is %dx%d\n", d.Width(), d.Height())
		fmt.Printf("WB coeffs are %v\n", d.WBCoeffs())
		fmt.Printf("black levels are %v\n", d.BlackLevels())
		fmt.Printf("white levels are %v\n", d.WhiteLevels())
		fmt.Printf("xyz_to_cam is %v\n", d.XYZToCam())
		fmt.Printf("CFA is %s\n", d.CFA().String())
		fmt.Printf("crops are %v\n", d.Crops())
	case imgsrc.KindRaster:
		d := src.Raster
		fmt.Printf("Raster image size is %dx%d, bit depth %d\n", d.Width(), d.Height(), d.BitDepth())
	}
}

// expandToRGBA widens tightly-packed RGB8 bytes into RGBA with opaque
// alpha, the layout image.RGBA and image/jpeg both expect.
func expandToRGBA(rgb []byte) []byte {
	n := len(rgb) / 3
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		out[i*4+0] = rgb[i*3+0]
		out[i*4+1] = rgb[i*3+1]
		out[i*4+2] = rgb[i*3+2]
		out[i*4+3] = 0xff
	}
	return out
}

// encodeJPEG encodes img at quality (clamped into [1,100]) via the
// standard library's encoder, the same one the teacher's JPEGEncoder
// wraps for its own quality clamping, into an in-memory buffer so the
// caller can hash or further inspect the bytes before writing them out.
func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	buf := bytes.NewBuffer(make([]byte, 0, 256<<10))
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(absOrDot(path)), 0o755); err != nil && !os.IsExist(err) {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// withHashSuffix inserts a content hash of data before path's extension,
// the same xxHash64-over-encoded-bytes scheme the teacher's manifest
// builder uses for its content-addressed variant filenames, applied here
// to a single converted JPEG instead of a set of variants.
func withHashSuffix(path string, data []byte) string {
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	return fmt.Sprintf("%s.%s%s", base, contentHash(data), ext)
}

// contentHash returns the xxHash64 of data as a 16-character hex string
// (64 bits), collision-safe for the number of output files one run writes.
func contentHash(data []byte) string {
	var sum [8]byte
	for i, v := 0, xxhash.Sum64(data); i < 8; i++ {
		sum[7-i] = byte(v)
		v >>= 8
	}
	return hex.EncodeToString(sum[:])
}

// writePreview resizes img to width (height chosen to preserve aspect
// ratio) and writes it as a JPEG preview, the same imaging.Resize call the
// teacher's processor.go uses for its own thumbnail generation.
func writePreview(path string, img image.Image, width int) error {
	resized := imaging.Resize(img, width, 0, imaging.Lanczos)
	return imaging.Save(resized, path)
}

func absOrDot(path string) string {
	dir := filepath.Dir(path)
	if dir == "" {
		return "."
	}
	return dir
}
