package slice

// VolumePipelineOption is a functional option applied to a VolumePipeline during construction.
type VolumePipelineOption[T Numeric] func(*VolumePipeline[T])

// WithSlice sets the initial axis and slice index.
// A negative index selects the middle slice along the axis.
//
// Parameters:
//   - axis: the axis the slice is perpendicular to
//   - index: the volume-relative slice index
//
// Returns:
//   - VolumePipelineOption[T]: option function to apply
func WithSlice[T Numeric](axis Axis, index int) VolumePipelineOption[T] {
	return func(p *VolumePipeline[T]) {
		p.axis = axis
		p.index = index
	}
}

// WithWorkers sets how many pool workers extract slice rows. Values <= 1 extract inline
// on the calling goroutine.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - VolumePipelineOption[T]: option function to apply
func WithWorkers[T Numeric](n int) VolumePipelineOption[T] {
	return func(p *VolumePipeline[T]) {
		p.workers = n
	}
}
