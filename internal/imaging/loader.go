package imaging

import (
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Cache keeps decoded frames keyed by file path so that repeated tool calls
// against the same file decode it only once.
//
// Cache is safe for concurrent use by multiple goroutines.
//
// Entries stay resident until Evict, Reload or Clear is called. A file that
// changes on disk keeps returning the old frame from Load; use Reload when
// the caller knows the content moved on (for example a camera dumping frames
// into the same path).
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	img    image.Image
	format string
}

// NewCache creates an empty frame cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*entry),
	}
}

// Load returns the decoded image for path, reading it from disk on the first
// request only.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. The concrete
// image type is whatever the decoder produced (*image.YCbCr for most JPEGs,
// *image.NRGBA or *image.Gray for PNGs, ...).
func (c *Cache) Load(path string) (image.Image, error) {
	e, err := c.load(path, false)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

// Reload decodes path again, replacing any cached copy.
func (c *Cache) Reload(path string) (image.Image, error) {
	e, err := c.load(path, true)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

func (c *Cache) load(path string, fresh bool) (*entry, error) {
	if !fresh {
		c.mu.RLock()
		e, ok := c.entries[path]
		c.mu.RUnlock()
		if ok {
			return e, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode image %s", path)
	}

	e := &entry{img: img, format: format}
	c.mu.Lock()
	c.entries[path] = e
	c.mu.Unlock()

	return e, nil
}

// Evict drops path from the cache. Unknown paths are ignored.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Clear drops every cached frame.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
}

// Len reports the number of cached frames.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Info describes a frame the way the feature tools report it.
type Info struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder name reported by image.Decode ("png", "jpeg", ...).
	Format string `json:"format"`

	// Channels is 1 for gray images, 3 for opaque color models and 4 when the
	// color model carries alpha.
	Channels int `json:"channels"`

	// BitDepth is 8 or 16 bits per channel.
	BitDepth int `json:"bit_depth"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Describe loads path through the cache and reports its geometry and depth.
func Describe(cache *Cache, path string) (*Info, error) {
	e, err := cache.load(path, false)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "stat image")
	}

	channels, depth := Depth(e.img)
	b := e.img.Bounds()
	return &Info{
		Width:         b.Dx(),
		Height:        b.Dy(),
		Format:        e.format,
		Channels:      channels,
		BitDepth:      depth,
		FileSizeBytes: stat.Size(),
	}, nil
}

// Depth reports the channel count and bits per channel of img's buffer.
func Depth(img image.Image) (channels, bits int) {
	switch img.(type) {
	case *image.Gray:
		return 1, 8
	case *image.Gray16:
		return 1, 16
	case *image.RGBA64, *image.NRGBA64:
		return 4, 16
	case *image.RGBA, *image.NRGBA:
		return 4, 8
	case *image.YCbCr, *image.CMYK:
		return 3, 8
	case *image.NYCbCrA:
		return 4, 8
	default:
		return 4, 8
	}
}

// Size is a lightweight width/height pair.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Dimensions returns the size of the image at path.
func Dimensions(cache *Cache, path string) (*Size, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &Size{Width: b.Dx(), Height: b.Dy()}, nil
}
