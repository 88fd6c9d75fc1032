// Package scan slides windows over an image and extracts a patch at every
// position, spreading rows over a fixed set of workers.
package scan

import (
	"context"
	"sync"

	"github.com/ironsheep/patch-features-mcp/internal/feature"
	"github.com/ironsheep/patch-features-mcp/internal/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrImageChanged is returned when the image was replaced while a scan ran.
var ErrImageChanged = errors.New("image changed during scan")

// Size is a window size.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Config configures a Scanner.
type Config struct {
	Sizes   []Size
	Step    int // distance between window centers, both axes
	Workers int // extractor trees; 0 means 1
	Limit   int // patches kept per scan; 0 keeps all
}

// Result is the outcome of one scan.
type Result struct {
	Patches   []feature.Patch `json:"patches"`
	Windows   int             `json:"windows"`
	Truncated bool            `json:"truncated"`
	Version   uint64          `json:"version"`
}

// Scanner owns one extractor tree per worker. Trees live as long as the
// scanner, so per-image caches carry over between scans of an unchanged
// image.
type Scanner struct {
	cfg   Config
	trees []*tree
}

type tree struct {
	mu sync.Mutex
	e  feature.Extractor
}

type row struct {
	size Size
	y    int
	xs   []int
}

// New builds cfg.Workers trees with factory.
func New(factory func() (feature.Extractor, error), cfg Config) (*Scanner, error) {
	if len(cfg.Sizes) == 0 {
		return nil, errors.New("at least one window size is required")
	}
	for _, s := range cfg.Sizes {
		if s.Width <= 0 || s.Height <= 0 {
			return nil, errors.Errorf("window size must be positive, got %dx%d", s.Width, s.Height)
		}
	}
	if cfg.Step <= 0 {
		return nil, errors.Errorf("step must be positive, got %d", cfg.Step)
	}
	if cfg.Workers < 0 || cfg.Limit < 0 {
		return nil, errors.Errorf("workers and limit must not be negative, got %d and %d", cfg.Workers, cfg.Limit)
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}

	s := &Scanner{cfg: cfg, trees: make([]*tree, cfg.Workers)}
	for i := range s.trees {
		e, err := factory()
		if err != nil {
			return nil, errors.Wrapf(err, "build extractor %d", i)
		}
		s.trees[i] = &tree{e: e}
	}
	return s, nil
}

// Scan extracts every window of the current frame of img. Windows are
// enumerated size by size, top to bottom, left to right, and the patches come
// back in that order whatever the number of workers. Windows without a patch
// are skipped.
func (s *Scanner) Scan(ctx context.Context, img *feature.VersionedImage) (*Result, error) {
	frame, version := img.Snapshot()
	if frame == nil {
		return &Result{Version: version}, nil
	}
	b := frame.Bounds()
	rows := s.rows(b.Dx(), b.Dy())

	found := make([][]feature.Patch, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	for w, t := range s.trees {
		w, t := w, t
		g.Go(func() error {
			t.mu.Lock()
			defer t.mu.Unlock()
			t.e.UpdateVersioned(img)
			for i := w; i < len(rows); i += len(s.trees) {
				if err := gctx.Err(); err != nil {
					return err
				}
				r := rows[i]
				for _, x := range r.xs {
					if p, ok := t.e.Extract(x, r.y, r.size.Width, r.size.Height); ok {
						found[i] = append(found[i], p)
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if img.Version() != version {
		return nil, ErrImageChanged
	}

	res := &Result{Version: version}
	for i, r := range rows {
		res.Windows += len(r.xs)
		res.Patches = append(res.Patches, found[i]...)
	}
	if s.cfg.Limit > 0 && len(res.Patches) > s.cfg.Limit {
		res.Patches = res.Patches[:s.cfg.Limit]
		res.Truncated = true
	}

	logger.Entry(ctx).WithFields(logrus.Fields{
		"windows": res.Windows,
		"patches": len(res.Patches),
		"workers": len(s.trees),
		"version": version,
	}).Debug("scan finished")
	return res, nil
}

// rows lays out the window centers for an image of w×h. A window centered at
// (x, y) covers [x-sw/2, x-sw/2+sw), so x runs from sw/2 to w-sw+sw/2.
func (s *Scanner) rows(w, h int) []row {
	var rows []row
	for _, size := range s.cfg.Sizes {
		if size.Width > w || size.Height > h {
			continue
		}
		var xs []int
		for x := size.Width / 2; x <= w-size.Width+size.Width/2; x += s.cfg.Step {
			xs = append(xs, x)
		}
		for y := size.Height / 2; y <= h-size.Height+size.Height/2; y += s.cfg.Step {
			rows = append(rows, row{size: size, y: y, xs: xs})
		}
	}
	return rows
}
