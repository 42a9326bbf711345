package cli

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/orvendai/resynth/pkg/raster"
	"github.com/orvendai/resynth/pkg/resynth"
)

func usage() {
	fmt.Println("Commands available:")
	fmt.Println("  i  - open the data image (the picture to repair)")
	fmt.Println("  m  - open the mask image (white = hole to fill)")
	fmt.Println("  r  - open the reference image (donor content; defaults to the data image)")
	fmt.Println("  k  - open the reference mask image (white = eligible donor; defaults to all)")
	fmt.Println("  p  - edit resynthesis parameters")
	fmt.Println("  x  - run resynthesis")
	fmt.Println("  s  - save the current data image")
	fmt.Println("  u  - check for updates")
	fmt.Println("  h  - show this help message")
	fmt.Println("  q  - quit")
}

// editorState tracks everything the REPL loop needs across commands:
// the loaded images/masks, the JPEG metadata LoadImage captured for
// the data image, and the parameters the next 'x' run will use.
type editorState struct {
	dataImg          image.Image
	dataFormat       string
	dataAppSegments  []AppSegment
	dataAutoOriented bool

	maskImg image.Image

	referenceImg     image.Image
	referenceMaskImg image.Image

	params resynth.Params
}

func RunCLI() {
	st := &editorState{params: resynth.DefaultParams()}

	if len(os.Args) >= 2 {
		if err := st.openData(os.Args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "failed to read image %s: %v\n", os.Args[1], err)
			os.Exit(1)
		}
	}

	fmt.Println("Resynthesis Workbench")
	usage()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		r, _, err := reader.ReadRune()
		if err != nil {
			fmt.Fprintf(os.Stderr, "read input error: %v\n", err)
			continue
		}
		// drain the rest of the line so a leftover newline doesn't
		// get echoed back as a blank command on the next iteration.
		reader.ReadString('\n')

		switch r {
		case 'i':
			path, err := pickFile("Path to data image (leave empty to cancel): ")
			if err != nil || path == "" {
				continue
			}
			if err := st.openData(path); err != nil {
				fmt.Fprintf(os.Stderr, "failed to read image %s: %v\n", path, err)
				continue
			}
			fmt.Printf("Opened data image %s\n", path)
			_ = PreviewImage(st.dataImg, st.dataFormat)

		case 'm':
			path, err := pickFile("Path to mask image (leave empty to cancel): ")
			if err != nil || path == "" {
				continue
			}
			img, _, _, _, err := LoadImage(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to read mask %s: %v\n", path, err)
				continue
			}
			st.maskImg = img
			fmt.Printf("Opened mask %s\n", path)

		case 'r':
			path, err := pickFile("Path to reference image (leave empty to cancel): ")
			if err != nil || path == "" {
				continue
			}
			img, _, _, _, err := LoadImage(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to read reference %s: %v\n", path, err)
				continue
			}
			st.referenceImg = img
			fmt.Printf("Opened reference image %s\n", path)

		case 'k':
			path, err := pickFile("Path to reference mask image (leave empty to cancel): ")
			if err != nil || path == "" {
				continue
			}
			img, _, _, _, err := LoadImage(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to read reference mask %s: %v\n", path, err)
				continue
			}
			st.referenceMaskImg = img
			fmt.Printf("Opened reference mask %s\n", path)

		case 'p':
			p, err := PromptParams(st.params)
			if err != nil {
				fmt.Fprintf(os.Stderr, "parameter edit aborted: %v\n", err)
				continue
			}
			st.params = p
			fmt.Println("parameters updated")

		case 'x':
			if err := st.run(); err != nil {
				fmt.Fprintf(os.Stderr, "resynthesize error: %v\n", err)
				continue
			}
			_ = PreviewImage(st.dataImg, st.dataFormat)

		case 's':
			if st.dataImg == nil {
				fmt.Println("no image loaded")
				continue
			}
			out, _ := PromptLine("Enter output filename: ")
			if out == "" {
				fmt.Println("no filename provided")
				continue
			}
			if err := SaveImage(out, st.dataImg, st.dataAppSegments, st.dataAutoOriented); err != nil {
				fmt.Fprintf(os.Stderr, "failed to write image: %v\n", err)
				continue
			}
			fmt.Printf("Saved to %s\n", out)

		case 'u':
			if err := CheckForUpdates(); err != nil {
				fmt.Fprintf(os.Stderr, "update check error: %v\n", err)
			}

		case 'h':
			usage()
			fmt.Println()
			fmt.Println(GenerateParamHelp())

		case 'q':
			fmt.Println("Exiting...")
			return

		default:
			// ignore other keys (including the stray newline rune)
		}
	}
}

// pickFile offers fzf-based selection, falling back to a typed prompt.
func pickFile(prompt string) (string, error) {
	selected, err := SelectFileWithFzf(".")
	if err == nil && selected != "" {
		return selected, nil
	}
	return PromptLine(prompt)
}

func (st *editorState) openData(path string) error {
	img, format, segs, autoOriented, err := LoadImage(path)
	if err != nil {
		return err
	}
	st.dataImg = img
	st.dataFormat = format
	st.dataAppSegments = segs
	st.dataAutoOriented = autoOriented
	if info, ierr := GetImageInfoImage(img); ierr == nil {
		fmt.Println(info)
	}
	return nil
}

// run executes one resynthesis pass over the currently loaded images,
// writing the result back into st.dataImg.
func (st *editorState) run() error {
	if st.dataImg == nil {
		return fmt.Errorf("no data image loaded (press 'i' first)")
	}
	if st.maskImg == nil {
		return fmt.Errorf("no mask image loaded (press 'm' first)")
	}

	data := RasterFromImage(st.dataImg)
	dataMask := MaskFromImage(st.maskImg)

	referenceImg := st.referenceImg
	if referenceImg == nil {
		referenceImg = st.dataImg
	}
	reference := RasterFromImage(referenceImg)

	var referenceMask *raster.Grid[uint8]
	if st.referenceMaskImg != nil {
		referenceMask = MaskFromImage(st.referenceMaskImg)
	} else {
		referenceMask = fullMask(reference.Width, reference.Height)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	lastPct := -1
	progress := func(frac float64) {
		pct := int(frac * 100)
		if pct != lastPct {
			fmt.Printf("\rresynthesizing... %3d%%", pct)
			lastPct = pct
		}
	}

	result, err := resynth.Resynthesize(ctx, data, reference, dataMask, referenceMask, st.params, progress)
	fmt.Println()
	if err != nil {
		return err
	}
	if result.Cancelled {
		fmt.Println("resynthesis timed out before completing")
	}
	if result.UnfilledCount > 0 {
		fmt.Printf("warning: %d masked pixels were unreachable and left unfilled\n", result.UnfilledCount)
	}
	fmt.Printf("fill passes: %d, refinement sweeps: %d, pixels filled: %d, compares: %d\n",
		result.Stats.FillPasses, result.Stats.RefinementSweeps, result.Stats.PixelsFilled, result.Stats.CandidateCompares)

	st.dataImg = ImageFromRaster(data)
	return nil
}
