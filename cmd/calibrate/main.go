// Command calibrate solves a full camera pose from saved image points
// and their georeferenced world coordinates, then writes K.txt, R.txt
// and t.txt next to the inputs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/edaniels/golog"

	"plane-mapper/internal/calibration"
	"plane-mapper/internal/correspondence"
	"plane-mapper/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	imagePtsPath := flag.String("image-points", "", "Path to image-plane points file")
	georefPath := flag.String("georef", "", "Path to georef triples file")
	solver := flag.String("solver", "", "Pose solver command (reads JSON on stdin, writes JSON on stdout)")
	outDir := flag.String("out", ".", "Directory for K.txt, R.txt and t.txt")
	flag.Parse()

	logger := golog.NewDevelopmentLogger("calibrate")

	if *showVersion {
		fmt.Printf("calibrate %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *imagePtsPath == "" || *georefPath == "" || *solver == "" {
		fmt.Println("Usage: calibrate -image-points <file> -georef <file> -solver <cmd> [-out <dir>]")
		os.Exit(1)
	}

	imagePts, err := correspondence.LoadPoints(*imagePtsPath)
	if err != nil {
		logger.Fatal(err)
	}
	worldPts, err := correspondence.LoadGeoPoints(*georefPath)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Infof("loaded %d image points, %d georef triples", len(imagePts), len(worldPts))

	parts := strings.Fields(*solver)
	svc := calibration.NewCommandService(parts[0], parts[1:]...)
	result, err := svc.Calibrate(context.Background(), imagePts, worldPts)
	if err != nil {
		logger.Fatal(err)
	}

	if err := calibration.WriteResult(result, *outDir); err != nil {
		logger.Fatal(err)
	}
	logger.Infof("calibration written to %s", *outDir)
}
