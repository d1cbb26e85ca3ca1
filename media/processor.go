package media

import (
	"fmt"
	"image"
	"io"
	"log"
	"math"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	ArtworkMaxSize       = 2000
	ArtworkJpegQuality   = 90
	ArtworkFileExtension = ".jpg"

	BlurTargetSize    = 32
	BlurSigma         = 1.4
	BlurJpegQuality   = 60
	BlurFileExtension = ".jpg"
)

// Processor handles media transformations for artwork uploads: the
// full-size image and its low-resolution blur placeholder. it relies on a
// Store implementation for saving the results.
type Processor struct {
	store Store
}

func NewProcessor(store Store) *Processor {
	return &Processor{store: store}
}

// ProcessArtwork decodes an uploaded artwork image, saves a bounded
// full-size copy and a blur placeholder, and returns both relative paths.
func (p *Processor) ProcessArtwork(fileData io.Reader) (fullPath, blurPath string, err error) {
	img, format, err := image.Decode(fileData)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode uploaded artwork image: %w", err)
	}
	log.Printf("processor: Decoded uploaded artwork (format: %s)", format)

	full := bounded(img, ArtworkMaxSize)
	fullPath, err = p.encodeAndSave(AssetTypeArtwork, full, ArtworkJpegQuality, ArtworkFileExtension)
	if err != nil {
		return "", "", err
	}

	blurPath, err = p.GenerateBlurPlaceholder(img)
	if err != nil {
		return "", "", err
	}
	return fullPath, blurPath, nil
}

// GenerateBlurPlaceholder shrinks the image to a tiny bounded copy and
// applies a gaussian blur. The result is what the UI shows while the full
// image loads.
func (p *Processor) GenerateBlurPlaceholder(originalImg image.Image) (string, error) {
	small := bounded(originalImg, BlurTargetSize)
	blurred := imaging.Blur(small, BlurSigma)
	return p.encodeAndSave(AssetTypeBlur, blurred, BlurJpegQuality, BlurFileExtension)
}

// ProcessProfileImage saves a bounded copy of an uploaded profile or about
// image and returns its relative path.
func (p *Processor) ProcessProfileImage(fileData io.Reader) (string, error) {
	img, _, err := image.Decode(fileData)
	if err != nil {
		return "", fmt.Errorf("failed to decode uploaded profile image: %w", err)
	}
	return p.encodeAndSave(AssetTypeProfile, bounded(img, ArtworkMaxSize), ArtworkJpegQuality, ArtworkFileExtension)
}

func (p *Processor) encodeAndSave(assetType AssetType, img image.Image, quality int, ext string) (string, error) {
	reader, writer := io.Pipe()
	go func() {
		defer writer.Close()
		err := imaging.Encode(writer, img, imaging.JPEG, imaging.JPEGQuality(quality))
		if err != nil {
			log.Printf("processor: Failed to encode %s asset: %v", assetType, err)
			writer.CloseWithError(fmt.Errorf("%s encoding failed: %w", assetType, err))
		}
	}()

	assetUUID, err := uuid.NewRandom()
	if err != nil {
		reader.Close()
		return "", fmt.Errorf("failed to generate UUID for %s asset: %w", assetType, err)
	}
	targetFilename := assetUUID.String() + ext

	savedRelPath, err := p.store.Save(assetType, targetFilename, reader)
	if err != nil {
		return "", fmt.Errorf("failed to save %s asset via store: %w", assetType, err)
	}

	log.Printf("processor: Saved %s asset at %s", assetType, savedRelPath)
	return savedRelPath, nil
}

// bounded resizes so the longest side matches maxSize, never upscaling.
func bounded(img image.Image, maxSize int) image.Image {
	origBounds := img.Bounds()
	origWidth := origBounds.Dx()
	origHeight := origBounds.Dy()
	if origWidth <= 0 || origHeight <= 0 {
		return img
	}

	var newWidth, newHeight int
	if origWidth > origHeight {
		if origWidth <= maxSize {
			return img
		}
		newWidth = maxSize
		newHeight = int(math.Round(float64(origHeight) * (float64(maxSize) / float64(origWidth))))
	} else {
		if origHeight <= maxSize {
			return img
		}
		newHeight = maxSize
		newWidth = int(math.Round(float64(origWidth) * (float64(maxSize) / float64(origHeight))))
	}
	newWidth = maxInt(1, newWidth)
	newHeight = maxInt(1, newHeight)

	return imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
