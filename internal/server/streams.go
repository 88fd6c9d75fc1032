package server

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ironsheep/patch-features-mcp/internal/feature"
	"github.com/ironsheep/patch-features-mcp/internal/pipeline"
	"github.com/ironsheep/patch-features-mcp/internal/scan"
	"github.com/pkg/errors"
)

const (
	fileStreamPrefix = "file:"

	// maxTreesPerStream bounds the extractor trees and the scanners each
	// stream keeps; the least recently used config is rebuilt on its next
	// query.
	maxTreesPerStream = 32
)

// stream is a VersionedImage plus the extractor trees built against it.
// Trees are keyed by their config so repeated queries reuse per-frame caches.
// mu serializes queries against one stream.
type stream struct {
	mu    sync.Mutex
	id    string
	image *feature.VersionedImage

	extractors *lru.Cache[string, feature.Extractor]
	scanners   *lru.Cache[string, *scan.Scanner]
}

func newStream(id string) *stream {
	extractors, err := lru.New[string, feature.Extractor](maxTreesPerStream)
	if err != nil {
		panic(err)
	}
	scanners, err := lru.New[string, *scan.Scanner](maxTreesPerStream)
	if err != nil {
		panic(err)
	}
	return &stream{
		id:         id,
		image:      feature.NewVersionedImage(),
		extractors: extractors,
		scanners:   scanners,
	}
}

// openStream registers a new empty stream under a fresh handle.
func (s *Server) openStream() *stream {
	st := newStream(uuid.NewString())
	s.mu.Lock()
	s.streams[st.id] = st
	s.mu.Unlock()
	return st
}

func (s *Server) lookupStream(id string) (*stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.streams[id]
	if !ok {
		return nil, errors.Errorf("unknown stream %q", id)
	}
	return st, nil
}

func (s *Server) closeStream(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.streams[id]; !ok || strings.HasPrefix(id, fileStreamPrefix) {
		return errors.Errorf("unknown stream %q", id)
	}
	delete(s.streams, id)
	return nil
}

// resetFileStream drops the trees of the implicit stream of path. The stream
// itself stays so its versions keep counting up.
func (s *Server) resetFileStream(path string) {
	s.mu.Lock()
	st, ok := s.streams[fileStreamPrefix+path]
	s.mu.Unlock()
	if !ok {
		return
	}
	st.mu.Lock()
	st.extractors.Purge()
	st.scanners.Purge()
	st.mu.Unlock()
}

// fileStream returns the implicit stream of path, publishing a new frame
// whenever the cache holds a different image than the stream.
func (s *Server) fileStream(path string) (*stream, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}

	id := fileStreamPrefix + path
	s.mu.Lock()
	st, ok := s.streams[id]
	if !ok {
		st = newStream(id)
		s.streams[id] = st
	}
	s.mu.Unlock()

	if st.image.Image() != img {
		st.image.SetImage(img)
	}
	return st, nil
}

// resolve picks the stream a query addresses: an explicit handle wins over a
// path.
func (s *Server) resolve(streamID, path string) (*stream, error) {
	switch {
	case streamID != "":
		return s.lookupStream(streamID)
	case path != "":
		return s.fileStream(path)
	default:
		return nil, errors.New("either stream_id or path is required")
	}
}

// extractor returns the tree for cfg, building it on first use, synced to
// the stream's current frame, and the version of the frame it adopted.
func (s *Server) extractor(st *stream, cfg pipeline.ExtractorConfig) (feature.Extractor, uint64, error) {
	key := cfg.Key()
	e, ok := st.extractors.Get(key)
	if !ok {
		var err error
		e, err = pipeline.Build(cfg, s.buildOptions())
		if err != nil {
			return nil, 0, err
		}
		st.extractors.Add(key, e)
	}
	return e, syncTree(e, st.image), nil
}

// syncTree brings e up to the current frame of vi and returns its version.
// A frame published while e syncs triggers another round, so the result is
// always the version e holds.
func syncTree(e feature.Extractor, vi *feature.VersionedImage) uint64 {
	for {
		v := vi.Version()
		e.UpdateVersioned(vi)
		if vi.Version() == v {
			return v
		}
	}
}

// scanner returns the scanner for cfg and sc, building it on first use.
func (s *Server) scanner(st *stream, cfg pipeline.ExtractorConfig, sc scan.Config) (*scan.Scanner, error) {
	key := cfg.Key() + "|" + mustMarshalJSON(sc)
	if sn, ok := st.scanners.Get(key); ok {
		return sn, nil
	}
	opts := s.buildOptions()
	sn, err := scan.New(func() (feature.Extractor, error) {
		return pipeline.Build(cfg, opts)
	}, sc)
	if err != nil {
		return nil, err
	}
	st.scanners.Add(key, sn)
	return sn, nil
}

func (s *Server) buildOptions() pipeline.Options {
	return pipeline.Options{
		TextLocator: s.locator,
		MemoBytes:   s.cfg.MemoBytes,
	}
}
