// Command resynth is an interactive terminal workbench for patch-based
// image resynthesis: load a data image and a mask marking the region
// to fill, optionally a separate reference image and reference mask,
// tune the algorithm's parameters, run it, and save the result.
package main

import (
	"github.com/orvendai/resynth/pkg/cli"
)

func main() {
	cli.RunCLI()
}
