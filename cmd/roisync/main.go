// Command roisync maps a ROI polygon file authored in one plane into the
// other plane through a saved homography. Plane dimensions are probed
// from the media files, since ROI vertices are stored normalized.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/edaniels/golog"

	"plane-mapper/internal/annotation"
	"plane-mapper/internal/correspondence"
	"plane-mapper/internal/homography"
	"plane-mapper/internal/media"
	"plane-mapper/internal/project"
	"plane-mapper/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	roiPath := flag.String("roi", "", "Input ROI file")
	homPath := flag.String("homography", "", "Saved homography file")
	imageMedia := flag.String("image-media", "", "Image-plane media file (video or still)")
	groundMedia := flag.String("ground-media", "", "Ground-plane raster file")
	fromGround := flag.Bool("from-ground", false, "Input ROI is authored in the ground plane (default: image plane)")
	outPath := flag.String("o", "", "Output ROI file for the other plane")
	flag.Parse()

	logger := golog.NewDevelopmentLogger("roisync")

	if *showVersion {
		fmt.Printf("roisync %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *roiPath == "" || *homPath == "" || *imageMedia == "" || *groundMedia == "" || *outPath == "" {
		fmt.Println("Usage: roisync -roi <file> -homography <file> -image-media <file> -ground-media <file> -o <file> [-from-ground]")
		os.Exit(1)
	}

	imgSrc, err := media.Open(*imageMedia)
	if err != nil {
		logger.Fatal(err)
	}
	groundSrc, err := media.Open(*groundMedia)
	if err != nil {
		logger.Fatal(err)
	}

	m, err := homography.Load(*homPath)
	if err != nil {
		logger.Fatal(err)
	}

	session := annotation.NewSession()
	session.SetHomography(m)

	from, to := correspondence.PlaneImage, correspondence.PlaneGround
	fromDims, toDims := imgSrc.Dimensions(), groundSrc.Dimensions()
	if *fromGround {
		from, to = to, from
		fromDims, toDims = toDims, fromDims
	}

	doc, err := project.LoadROI(session, from, fromDims, *roiPath)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Infof("replayed %d polygons from the %s plane", session.Pairs().Len(), from)

	if err := project.SaveROI(session, to, toDims, doc, *outPath); err != nil {
		logger.Fatal(err)
	}
	logger.Infof("%s-plane ROI written to %s", to, *outPath)
}
