package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"

	"umahelper/pkg/ocr"
)

// Prints the polarity decision for an image and writes the conditioned
// result next to it (or to -out).
func main() {
	in := flag.String("file", "", "image file")
	out := flag.String("out", "", "output path (default <file>.conditioned.png)")
	force := flag.String("invert", "auto", "auto, yes or no")
	flag.Parse()
	if *in == "" {
		log.Fatal().Msg("-file required")
	}
	img, err := imaging.Open(*in, imaging.AutoOrientation(true))
	if err != nil {
		log.Fatal().Err(err).Msg("open")
	}

	ratio := ocr.DarkRatio(ocr.ToGray(img))
	invert := ocr.ShouldInvert(ocr.ToGray(img))
	switch *force {
	case "yes":
		invert = true
	case "no":
		invert = false
	}
	proc := ocr.Condition(img, invert)

	if *out == "" {
		*out = strings.TrimSuffix(*in, filepath.Ext(*in)) + ".conditioned.png"
	}
	if err := imaging.Save(proc, *out); err != nil {
		log.Fatal().Err(err).Msg("save")
	}
	fmt.Printf("dark_ratio=%.3f invert=%v size=%dx%d out=%s\n", ratio, invert, proc.Bounds().Dx(), proc.Bounds().Dy(), *out)
}
