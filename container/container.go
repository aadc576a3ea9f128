// Package container reads the MS-DOS relocatable-executable container
// format used by the resident program image and its chained overlay
// modules, and locates the byte ranges that hold executable code.
package container

import "fmt"

// Header magic bytes at the start of every MZ-style container: 'M', 'Z'.
const (
	magicByte0 = 0x4D
	magicByte1 = 0x5A
)

// Overlay discovery bounds. These are sane-value heuristics inherited
// from the observed properties of MSC 5.x overlay chains, not a hard
// protocol requirement; config.Config lets a caller retune them.
const (
	DefaultMinPages             = 0
	DefaultMaxPages             = 500
	DefaultMinHeaderParagraphs  = 0
	DefaultMaxHeaderParagraphs  = 100
	overlayScanStep       = 512
	overlayHeaderProbeLen = 28 // bytes needed to read a candidate header
)

// Bounds tunes the overlay discovery scan (see spec.md §9 Open Questions).
type Bounds struct {
	MinPages            int
	MaxPages            int
	MinHeaderParagraphs int
	MaxHeaderParagraphs int
}

// DefaultBounds returns the bounds the original tool used.
func DefaultBounds() Bounds {
	return Bounds{
		MinPages:            DefaultMinPages,
		MaxPages:            DefaultMaxPages,
		MinHeaderParagraphs: DefaultMinHeaderParagraphs,
		MaxHeaderParagraphs: DefaultMaxHeaderParagraphs,
	}
}

// Range is a half-open byte range [Start, End) within the file.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

// Overlay is one chained overlay module discovered after the resident
// image: its container header location and its code byte range.
type Overlay struct {
	Index      int // 1-based, dense, monotonic in file order
	HeaderFile int // file offset of this overlay's own MZ-style header
	Code       Range
}

// Image is the parsed outer container: the resident code window plus
// every chained overlay module found after it.
type Image struct {
	Data     []byte
	Resident Range
	Overlays []Overlay
}

// readHeaderFields reads the page-count, last-page-byte-count and
// header-paragraph-count fields of an MZ-style header located at off.
func readHeaderFields(data []byte, off int) (lastPage, pages, headerParagraphs int, ok bool) {
	if off+10 > len(data) {
		return 0, 0, 0, false
	}
	lastPage = int(data[off+2]) | int(data[off+3])<<8
	pages = int(data[off+4]) | int(data[off+5])<<8
	headerParagraphs = int(data[off+8]) | int(data[off+9])<<8
	return lastPage, pages, headerParagraphs, true
}

// windowSize computes the classic MZ image-size formula: the last page
// may be partially filled, in which case it alone (rather than a full
// 512-byte page) contributes to the total.
func windowSize(pages, lastPage int) int {
	if lastPage > 0 {
		return (pages-1)*512 + lastPage
	}
	return pages * 512
}

// Load parses the outer image header and discovers all chained overlay
// modules. It is the only operation in this package that can fail: a
// header too short to hold the fields we read is not recoverable, unlike
// the decoder and analyzer downstream, which are total over any bytes.
func Load(data []byte, bounds Bounds) (*Image, error) {
	lastPage, pages, headerParagraphs, ok := readHeaderFields(data, 0)
	if !ok {
		return nil, fmt.Errorf("container: image too short for MZ header (%d bytes)", len(data))
	}
	headerSize := headerParagraphs * 16
	imageSize := windowSize(pages, lastPage)
	if headerSize > len(data) || imageSize > len(data) || headerSize > imageSize {
		return nil, fmt.Errorf("container: malformed header (header=%d image=%d file=%d)",
			headerSize, imageSize, len(data))
	}

	img := &Image{
		Data:     data,
		Resident: Range{Start: headerSize, End: imageSize},
	}
	img.Overlays = discoverOverlays(data, imageSize, bounds)
	return img, nil
}

// discoverOverlays scans from the first 512-byte-aligned offset at or
// after imageSize, stepping by 512 bytes, accepting any candidate whose
// header magic and page/paragraph counts fall within bounds.
func discoverOverlays(data []byte, imageSize int, bounds Bounds) []Overlay {
	var overlays []Overlay

	scan := (imageSize + overlayScanStep - 1) &^ (overlayScanStep - 1)
	index := 0

	for scan+overlayHeaderProbeLen < len(data) {
		if data[scan] == magicByte0 && data[scan+1] == magicByte1 {
			lastPage, pages, headerParagraphs, ok := readHeaderFields(data, scan)
			if ok &&
				pages > bounds.MinPages && pages < bounds.MaxPages &&
				headerParagraphs > bounds.MinHeaderParagraphs && headerParagraphs < bounds.MaxHeaderParagraphs {
				index++
				headerSize := headerParagraphs * 16
				codeSize := windowSize(pages, lastPage) - headerSize
				if codeSize < 0 {
					codeSize = 0
				}
				codeStart := scan + headerSize
				overlays = append(overlays, Overlay{
					Index:      index,
					HeaderFile: scan,
					Code:       Range{Start: codeStart, End: codeStart + codeSize},
				})
			}
		}
		scan += overlayScanStep
	}
	return overlays
}
