package renderer

// Surface is something a frame can be presented to. *core.Window satisfies it.
type Surface interface {
	FramebufferSize() (width, height int)
	SwapBuffers()
}

// SwapChain presents finished frames to a Surface.
type SwapChain struct {
	surface Surface
}

func NewSwapChain(s Surface) *SwapChain {
	return &SwapChain{surface: s}
}

// Size returns the surface size in pixels. Negative sizes read as zero.
func (sc *SwapChain) Size() (width, height uint32) {
	w, h := sc.surface.FramebufferSize()
	return uint32(max(w, 0)), uint32(max(h, 0))
}

func (sc *SwapChain) present() {
	sc.surface.SwapBuffers()
}
