package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/joho/godotenv"
)

// Terminal inline-image preview, kitty graphics protocol primary, chafa
// as the fallback for terminals that do not implement it. Debugging is
// controlled by PREVIEW_DEBUG=1.
var previewDebug bool

func init() {
	_ = godotenv.Load() // optional .env; ignore if absent

	debug := os.Getenv("PREVIEW_DEBUG")
	if debug == "1" || debug == "true" {
		previewDebug = true
	}
}

func debugf(format string, args ...interface{}) {
	if previewDebug {
		fmt.Fprintf(os.Stderr, "resynth-preview: "+format+"\n", args...)
	}
}

// isKitty reports whether the running terminal speaks the kitty
// graphics protocol (kitty itself, or a compatible implementation
// such as ghostty).
func isKitty() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}

// hasChafa reports whether the external 'chafa' binary is on PATH.
func hasChafa() bool {
	_, err := exec.LookPath("chafa")
	return err == nil
}

// PreviewSupported reports whether the running environment can preview
// an image at all.
func PreviewSupported() bool {
	return isKitty() || hasChafa()
}

// previewSize maps an image's pixel dimensions to a target terminal
// character-cell size, assuming an 8x16 cell and clamping to a small
// maximum so a preview never floods the scrollback.
func previewSize(img image.Image) (cols, rows int) {
	const charW, charH = 8, 16
	const maxCols, maxRows = 80, 40

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scale := math.Min(1.0, math.Min(float64(maxCols*charW)/float64(w), float64(maxRows*charH)/float64(h)))

	cols = int(math.Round(float64(w) * scale / charW))
	rows = int(math.Round(float64(h) * scale / charH))
	if cols < 6 {
		cols = 6
	}
	if rows < 3 {
		rows = 3
	}
	return cols, rows
}

// PreviewImage encodes img as PNG and renders it in the terminal via
// whichever backend is available, preferring the kitty graphics
// protocol. format is accepted for API symmetry with LoadImage's
// decoded format but is not used: the preview is always PNG.
func PreviewImage(img image.Image, format string) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("png encode failed: %w", err)
	}
	cols, rows := previewSize(img)

	if isKitty() {
		if err := sendKittyImage(buf.Bytes(), cols, rows); err == nil {
			return nil
		} else {
			debugf("kitty preview failed: %v", err)
		}
	}
	if hasChafa() {
		return sendChafaImage(buf.Bytes(), cols, rows)
	}
	return fmt.Errorf("no preview protocol available (need a kitty-compatible terminal or chafa on PATH)")
}

// sendKittyImage transmits PNG bytes via the kitty graphics protocol,
// chunked into <=4096-byte base64 segments per the protocol spec.
func sendKittyImage(data []byte, cols, rows int) error {
	enc := base64.StdEncoding.EncodeToString(data)
	const chunkSize = 4096

	total := len(enc)
	first := true
	for pos := 0; pos < total; pos += chunkSize {
		end := pos + chunkSize
		if end > total {
			end = total
		}
		chunk := enc[pos:end]
		last := end == total
		mVal := "0"
		if !last {
			mVal = "1"
		}

		var header string
		if first {
			// a=T transmit+display, f=100 PNG, t=d direct payload, q=2
			// suppress terminal responses, c/r request a rendering area.
			header = fmt.Sprintf("\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;%s\x1b\\", cols, rows, mVal, chunk)
			first = false
		} else {
			header = fmt.Sprintf("\x1b_Gm=%s;%s\x1b\\", mVal, chunk)
		}
		if _, err := os.Stdout.Write([]byte(header)); err != nil {
			return err
		}
	}
	fmt.Println()
	return nil
}

// sendChafaImage invokes the external chafa tool to render a
// block-symbol approximation of the PNG bytes on stdout.
func sendChafaImage(data []byte, cols, rows int) error {
	cmd := exec.Command("chafa", "--fill=block", "--symbols=block", "-s", fmt.Sprintf("%dx%d", cols, rows), "-")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("chafa failed: %w", err)
	}
	fmt.Println()
	return nil
}
