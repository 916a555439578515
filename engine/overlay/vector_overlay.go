// Package overlay draws vector-valued slices as a field of short line glyphs.
//
// The glyphs for a slice are built once into a renderer batch and replayed every frame
// until the projection changes or the source produces a new slice.
package overlay

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-slice/engine/renderer"
	"github.com/Carmen-Shannon/oxy-slice/engine/slice"
)

// Stats counts the work a VectorOverlay has done.
type Stats struct {
	// Rebuilds counts glyph batch rebuilds.
	Rebuilds int
	// Replays counts draws of an unchanged batch.
	Replays int
	// Glyphs is the primitive count of the current batch.
	Glyphs int
}

// vectorOverlay is the implementation of the VectorOverlay interface.
type vectorOverlay struct {
	r      renderer.Renderer
	source slice.Source

	projection Projection
	style      Style
	logger     *log.Logger
	verbose    bool

	batch    renderer.BatchHandle
	hasBatch bool

	dirty    bool
	token    uint64
	hasToken bool
	released bool

	stats Stats
}

// VectorOverlay caches the glyph batch for one vector source.
//
// A VectorOverlay is not safe for concurrent use; all calls belong on the render thread.
type VectorOverlay interface {
	// SetSource binds the vector source and marks the glyphs dirty. A nil source unbinds.
	//
	// Parameters:
	//   - src: the source producing vector slices
	SetSource(src slice.Source)

	// Configure selects the projected components and their facings. Only an actual change
	// marks the glyphs dirty.
	//
	// Parameters:
	//   - xIndex, yIndex: the components drawn along x and y
	//   - xFacing, yFacing: +1 or -1 per axis
	//
	// Returns:
	//   - error: ErrInvalidComponent or ErrInvalidFacing; the projection is unchanged on error
	Configure(xIndex, yIndex, xFacing, yFacing int) error

	// Draw replays the glyph batch, rebuilding it first when dirty or when the source version
	// moved. With no source bound, or an empty slice, Draw does nothing.
	//
	// Returns:
	//   - error: a component error from the glyph builder, ErrReleased, or a wrapped renderer
	//     error; a failed rebuild leaves the glyphs dirty
	Draw() error

	// Release deletes the batch. Later Draw calls fail with ErrReleased.
	Release()

	// Projection returns the current projection.
	//
	// Returns:
	//   - Projection: the projection
	Projection() Projection

	// Style returns the glyph style.
	//
	// Returns:
	//   - Style: the style
	Style() Style

	// Dirty reports whether the next Draw will rebuild regardless of the source version.
	//
	// Returns:
	//   - bool: true when a rebuild is pending
	Dirty() bool

	// Stats returns the work counters.
	//
	// Returns:
	//   - Stats: a copy of the counters
	Stats() Stats
}

var _ VectorOverlay = &vectorOverlay{}

// NewVectorOverlay creates a VectorOverlay drawing through r with DefaultProjection.
//
// Parameters:
//   - r: the renderer that owns the batch
//   - options: functional options (color, line width, shrink, marker, logger)
//
// Returns:
//   - VectorOverlay: the new overlay cache
func NewVectorOverlay(r renderer.Renderer, options ...VectorOverlayBuilderOption) VectorOverlay {
	v := &vectorOverlay{
		r:          r,
		projection: DefaultProjection,
		style:      DefaultStyle,
		logger:     log.Default(),
		dirty:      true,
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

func (v *vectorOverlay) SetSource(src slice.Source) {
	v.source = src
	v.hasToken = false
	v.dirty = true
}

func (v *vectorOverlay) Configure(xIndex, yIndex, xFacing, yFacing int) error {
	p := Projection{XIndex: xIndex, YIndex: yIndex, XFacing: xFacing, YFacing: yFacing}
	if err := p.Validate(); err != nil {
		return err
	}
	if p == v.projection {
		return nil
	}
	v.projection = p
	v.dirty = true
	return nil
}

func (v *vectorOverlay) Draw() error {
	if v.released {
		return ErrReleased
	}
	if v.source == nil {
		return nil
	}

	if err := v.source.EvaluateUpToDate(); err != nil {
		return fmt.Errorf("overlay: evaluate source: %w", err)
	}
	version := v.source.CurrentVersion()
	if !v.hasToken || version != v.token {
		v.dirty = true
	}

	s := v.source.Slice()
	if s == nil || s.Region().Empty() {
		return nil
	}

	if v.dirty {
		if err := v.rebuild(s); err != nil {
			return err
		}
		v.token = version
		v.hasToken = true
		v.dirty = false
	} else {
		v.stats.Replays++
	}

	v.r.PushState()
	defer v.r.PopState()
	v.r.SetBlend(true)
	if err := v.r.DrawBatch(v.batch); err != nil {
		return fmt.Errorf("overlay: draw batch: %w", err)
	}
	return nil
}

// rebuild replaces the batch with freshly built glyphs for s. The old batch survives a failure.
func (v *vectorOverlay) rebuild(s slice.Slice) error {
	prims, err := BuildGlyphs(s, v.projection, v.style)
	if err != nil {
		return err
	}
	b, err := v.r.CreateBatch(prims)
	if err != nil {
		return fmt.Errorf("overlay: create batch: %w", err)
	}
	if v.hasBatch {
		v.r.DeleteBatch(v.batch)
	}
	v.batch = b
	v.hasBatch = true
	v.stats.Rebuilds++
	v.stats.Glyphs = len(prims)
	if v.verbose {
		v.logger.Printf("[VectorOverlay] rebuilt %d glyphs (components %d,%d facing %+d,%+d)",
			len(prims), v.projection.XIndex, v.projection.YIndex, v.projection.XFacing, v.projection.YFacing)
	}
	return nil
}

func (v *vectorOverlay) Release() {
	if v.released {
		return
	}
	v.released = true
	if v.hasBatch {
		v.r.DeleteBatch(v.batch)
		v.hasBatch = false
	}
}

func (v *vectorOverlay) Projection() Projection {
	return v.projection
}

func (v *vectorOverlay) Style() Style {
	return v.style
}

func (v *vectorOverlay) Dirty() bool {
	return v.dirty
}

func (v *vectorOverlay) Stats() Stats {
	return v.stats
}
