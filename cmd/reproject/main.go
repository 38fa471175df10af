// Command reproject fits a homography from saved correspondence point
// files, reports the reprojection error, and optionally renders a warp
// overlay to judge the fit visually.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/edaniels/golog"

	"plane-mapper/internal/correspondence"
	"plane-mapper/internal/homography"
	"plane-mapper/internal/overlay"
	"plane-mapper/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	imagePtsPath := flag.String("image-points", "", "Path to image-plane points file")
	groundPtsPath := flag.String("ground-points", "", "Path to ground-plane points file")
	outPath := flag.String("o", "homography.txt", "Output homography file")
	imageFrame := flag.String("image-frame", "", "Image-plane frame for the overlay (optional)")
	groundFrame := flag.String("ground-frame", "", "Ground-plane raster for the overlay (optional)")
	overlayPath := flag.String("overlay", "result_reprojection.jpg", "Overlay output file")
	flag.Parse()

	logger := golog.NewDevelopmentLogger("reproject")

	if *showVersion {
		fmt.Printf("reproject %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *imagePtsPath == "" || *groundPtsPath == "" {
		fmt.Println("Usage: reproject -image-points <file> -ground-points <file> [-o <homography>] [-image-frame <img> -ground-frame <img>]")
		os.Exit(1)
	}

	imagePts, err := correspondence.LoadPoints(*imagePtsPath)
	if err != nil {
		logger.Fatal(err)
	}
	groundPts, err := correspondence.LoadPoints(*groundPtsPath)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Infof("loaded %d image points, %d ground points", len(imagePts), len(groundPts))

	m, err := homography.Estimate(imagePts, groundPts)
	if err != nil {
		logger.Fatal(err)
	}
	if err := homography.Save(m, *outPath); err != nil {
		logger.Fatal(err)
	}
	logger.Infof("homography written to %s", *outPath)

	projected, err := m.Project(imagePts)
	if err != nil {
		logger.Fatal(err)
	}
	rmse, err := homography.RMSE(projected, groundPts)
	if err != nil {
		logger.Fatal(err)
	}
	fmt.Printf("reprojection error: %.4f px\n", rmse)

	if *imageFrame == "" || *groundFrame == "" {
		return
	}
	img, err := overlay.LoadFrame(*imageFrame)
	if err != nil {
		logger.Fatal(err)
	}
	defer img.Close()
	ground, err := overlay.LoadFrame(*groundFrame)
	if err != nil {
		logger.Fatal(err)
	}
	defer ground.Close()

	if err := overlay.RenderToFile(img, ground, m, imagePts, groundPts, *overlayPath); err != nil {
		logger.Fatal(err)
	}
	logger.Infof("overlay written to %s", *overlayPath)
}
