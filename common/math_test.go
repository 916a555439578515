package common_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-slice/common"
)

func Test_NextPowerOfTwo_Rounds_Up(t *testing.T) {
	t.Parallel()

	cases := map[int]int{-3: 1, 0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 64: 64, 65: 128, 257: 512}
	for in, want := range cases {
		assert.Equal(t, want, common.NextPowerOfTwo(in), "n=%d", in)
	}
}

func Test_PowerOfTwoExtent_Promotes_Axes_Independently(t *testing.T) {
	t.Parallel()

	got := common.PowerOfTwoExtent(common.Extent2{Width: 100, Height: 3})

	assert.Equal(t, common.Extent2{Width: 128, Height: 4}, got)
}

func Test_Ortho_Maps_Box_To_ClipSpace(t *testing.T) {
	t.Parallel()

	var m [16]float32
	common.Ortho(m[:], 0, 8, 4, 0)

	type pt struct{ X, Y float32 }
	var got []pt
	for _, p := range []pt{{0, 0}, {8, 4}, {4, 2}} {
		x, y := common.TransformPoint(m[:], p.X, p.Y)
		got = append(got, pt{x, y})
	}

	// Row 0 lands at the top of clip space because bottom > top.
	want := []pt{{-1, 1}, {1, -1}, {0, 0}}
	assert.Empty(t, cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)))
}

func Test_SliceToBytes_Views_Input(t *testing.T) {
	t.Parallel()

	data := []uint16{0x0102, 0x0304}

	b := common.SliceToBytes(data)

	assert.Len(t, b, 4)
	assert.Nil(t, common.SliceToBytes([]uint16{}))
}

func Test_Coalesce_Returns_First_NonZero(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "b", common.Coalesce("", "b", "c"))
	assert.Equal(t, 0, common.Coalesce(0, 0))
}

func Test_RGBA8_Normalizes_Components(t *testing.T) {
	t.Parallel()

	c := common.RGBA8(255, 100, 50, 100)

	want := common.Color{R: 1, G: 100.0 / 255, B: 50.0 / 255, A: 100.0 / 255}
	assert.Empty(t, cmp.Diff(want, c, cmpopts.EquateApprox(0, 1e-6)))
}
