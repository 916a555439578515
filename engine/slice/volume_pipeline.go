package slice

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// minParallelVoxels is the slice size below which extraction runs inline instead of on the pool.
const minParallelVoxels = 64 * 64

// VolumePipeline extracts the slice at (axis, index) of a Volume on demand.
// It is the stand-in for the upstream image pipeline: cheap version queries, lazy and
// synchronous evaluation.
type VolumePipeline[T Numeric] struct {
	volume *Volume[T]
	axis   Axis
	index  int

	mtime       uint64
	evaluatedAt uint64
	output      *Image[T]

	workers int
	pool    worker.DynamicWorkerPool
	taskID  int
}

var _ Source = &VolumePipeline[uint8]{}

// NewVolumePipeline creates a pipeline over vol that initially produces the middle slice along AxisZ.
//
// Parameters:
//   - vol: the volume to slice
//   - options: functional options (axis, slice index, worker count)
//
// Returns:
//   - *VolumePipeline[T]: the pipeline
//   - error: an error if the configured axis or slice index is invalid
func NewVolumePipeline[T Numeric](vol *Volume[T], options ...VolumePipelineOption[T]) (*VolumePipeline[T], error) {
	p := &VolumePipeline[T]{
		volume:  vol,
		axis:    AxisZ,
		index:   -1,
		workers: max(runtime.NumCPU()-1, 1),
		mtime:   Tick(),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.index < 0 {
		p.index = vol.SliceCount(p.axis) / 2
	}
	if err := p.validate(p.axis, p.index); err != nil {
		return nil, err
	}
	if p.workers > 1 {
		p.pool = worker.NewDynamicWorkerPool(p.workers, 256, 1*time.Second)
	}
	return p, nil
}

// Axis returns the axis the current slice is perpendicular to.
func (p *VolumePipeline[T]) Axis() Axis {
	return p.axis
}

// Index returns the current slice index along Axis.
func (p *VolumePipeline[T]) Index() int {
	return p.index
}

// Volume returns the sliced volume.
func (p *VolumePipeline[T]) Volume() *Volume[T] {
	return p.volume
}

// MoveToSlice selects the slice to produce. Selecting the current slice again does not
// change the version.
//
// Parameters:
//   - axis: the axis the slice is perpendicular to
//   - index: the volume-relative slice index along axis
//
// Returns:
//   - error: ErrInvalidAxis or ErrSliceOutOfRange
func (p *VolumePipeline[T]) MoveToSlice(axis Axis, index int) error {
	if err := p.validate(axis, index); err != nil {
		return err
	}
	if axis == p.axis && index == p.index {
		return nil
	}
	p.axis = axis
	p.index = index
	p.mtime = Tick()
	return nil
}

// Step moves the slice index by delta along the current axis, clamped to the volume.
//
// Parameters:
//   - delta: the number of slices to move (negative moves backwards)
//
// Returns:
//   - int: the new slice index
func (p *VolumePipeline[T]) Step(delta int) int {
	n := p.volume.SliceCount(p.axis)
	next := min(max(p.index+delta, 0), n-1)
	if next >= 0 {
		_ = p.MoveToSlice(p.axis, next)
	}
	return p.index
}

func (p *VolumePipeline[T]) CurrentVersion() uint64 {
	return max(p.mtime, p.volume.Version())
}

func (p *VolumePipeline[T]) Slice() Slice {
	if p.output == nil {
		return nil
	}
	return p.output
}

func (p *VolumePipeline[T]) EvaluateUpToDate() error {
	version := p.CurrentVersion()
	if p.output != nil && p.evaluatedAt == version {
		return nil
	}

	region := p.volume.SliceRegion(p.axis)
	if !p.output.sameShape(region, p.volume.Comps) {
		p.output = NewImage[T](region, p.volume.Comps)
	}

	rows := region.Size.Height
	if p.pool == nil || region.Size.Area() < minParallelVoxels {
		for row := 0; row < rows; row++ {
			p.extractRow(row)
		}
	} else {
		var wg sync.WaitGroup
		for row := 0; row < rows; row++ {
			wg.Add(1)
			r := row
			p.taskID++
			p.pool.SubmitTask(worker.Task{
				ID: p.taskID,
				Do: func() (any, error) {
					defer wg.Done()
					p.extractRow(r)
					return nil, nil
				},
			})
		}
		wg.Wait()
	}

	p.evaluatedAt = version
	return nil
}

// Close stops the extraction workers. The pipeline keeps working afterwards, extracting inline.
func (p *VolumePipeline[T]) Close() {
	if p.pool != nil {
		p.pool.Stop()
		p.pool = nil
	}
}

// extractRow copies row v of the current slice from the volume into the output image.
// Rows are disjoint in the output, so rows may be extracted concurrently.
func (p *VolumePipeline[T]) extractRow(v int) {
	u, w := p.axis.PlaneAxes()
	var pos [3]int
	pos[p.axis] = p.index
	pos[w] = v

	comps := p.volume.Comps
	width := p.output.Rect.Size.Width
	dst := p.output.Pix[p.output.PixOffset(0, v) : p.output.PixOffset(0, v)+width*comps]
	for i := 0; i < width; i++ {
		pos[u] = i
		copy(dst[i*comps:(i+1)*comps], p.volume.Voxel(pos[0], pos[1], pos[2]))
	}
}

func (p *VolumePipeline[T]) validate(axis Axis, index int) error {
	if axis < AxisX || axis > AxisZ {
		return fmt.Errorf("%w: %d", ErrInvalidAxis, int(axis))
	}
	if n := p.volume.SliceCount(axis); index < 0 || index >= n {
		return fmt.Errorf("%w: %s slice %d of %d", ErrSliceOutOfRange, axis, index, n)
	}
	return nil
}
