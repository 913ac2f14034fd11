package viewer

import (
	"errors"
	"math"
	"time"
)

var (
	// ErrUnbound is returned for input delivered to a handler that has no element.
	ErrUnbound = errors.New("viewer: gesture handler is not bound")
	// ErrAlreadyBound is returned when binding a handler or element twice.
	ErrAlreadyBound = errors.New("viewer: already bound")
	// ErrReleased is returned when binding a handler after Unbind.
	ErrReleased = errors.New("viewer: gesture handler was released")
)

const (
	// SwipeThreshold is the horizontal travel that turns a REST drag into navigation.
	SwipeThreshold = 100.0
	// DoubleTapWindow is the maximum gap between two taps of a double tap.
	DoubleTapWindow = 300 * time.Millisecond
	// TapSlop is the maximum travel for a touch to still count as a tap.
	TapSlop = 20.0

	// snap absorbs float drift around scale 1 after zooming out by WheelStep.
	snap = 1e-9
)

// Swipe is the navigation request produced by a completed touch.
type Swipe int

const (
	SwipeNone Swipe = iota
	SwipeNext
	SwipePrev
)

type touchMode int

const (
	touchNone touchMode = iota
	touchDrag
	touchSwipe
	touchPinch
)

// Element is the node displaying the current media item.
type Element struct {
	ID        int       `json:"id"`
	Kind      Kind      `json:"kind"`
	Src       string    `json:"src"`
	Base      Size      `json:"base"`
	Transform Transform `json:"transform"`
	Dimmed    bool      `json:"dimmed"`

	handler *GestureHandler
}

// Opacity is 0.5 for elements whose media failed to load.
func (e *Element) Opacity() float64 {
	if e.Dimmed {
		return 0.5
	}
	return 1
}

// Bound reports whether a gesture handler is attached to e.
func (e *Element) Bound() bool { return e.handler != nil }

// GestureHandler turns pointer input into a zoom/pan transform for exactly
// one element. Its lifecycle is Bind -> input -> Unbind; a released handler
// cannot be bound again.
type GestureHandler struct {
	el        *Element
	released  bool
	container Size
	zoomable  bool
	now       func() time.Time

	scale  float64
	tx, ty float64

	mode      touchMode
	start     Point
	last      Point
	lastDist  float64
	travelled float64

	lastTapAt  time.Time
	lastTapPos Point
}

// NewGestureHandler creates an unbound handler for a container of the given size.
func NewGestureHandler(container Size) *GestureHandler {
	return &GestureHandler{
		container: container,
		zoomable:  true,
		now:       time.Now,
		scale:     MinScale,
	}
}

// Bind attaches h to el and renders the REST transform onto it.
func (h *GestureHandler) Bind(el *Element) error {
	if h.released {
		return ErrReleased
	}
	if h.el != nil || el.handler != nil {
		return ErrAlreadyBound
	}
	h.el = el
	el.handler = h
	h.zoomable = el.Kind == KindImage
	h.Reset()
	return nil
}

// Unbind detaches h from its element and releases it.
func (h *GestureHandler) Unbind() {
	if h.el != nil {
		h.el.handler = nil
		h.el = nil
	}
	h.released = true
	h.mode = touchNone
}

// Bound reports whether h is attached to an element.
func (h *GestureHandler) Bound() bool { return h.el != nil }

// Element returns the bound element, or nil.
func (h *GestureHandler) Element() *Element { return h.el }

// Transform returns the current transform.
func (h *GestureHandler) Transform() Transform {
	return Transform{Scale: h.scale, TranslateX: h.tx, TranslateY: h.ty}
}

// Phase reports REST or ZOOMED.
func (h *GestureHandler) Phase() Phase {
	if h.scale > MinScale {
		return PhaseZoomed
	}
	return PhaseRest
}

// SetContainer updates the container size and re-clamps the translation.
func (h *GestureHandler) SetContainer(s Size) {
	h.container = s
	if h.el != nil {
		h.clampTranslate()
		h.render()
	}
}

// Reset returns to REST regardless of input state.
func (h *GestureHandler) Reset() {
	h.scale = MinScale
	h.tx, h.ty = 0, 0
	h.mode = touchNone
	h.render()
}

// OnWheel zooms in for negative deltaY and out for positive deltaY.
func (h *GestureHandler) OnWheel(deltaY float64) error {
	if h.el == nil {
		return ErrUnbound
	}
	switch {
	case deltaY < 0:
		h.setScale(h.scale * WheelStep)
	case deltaY > 0:
		h.setScale(h.scale / WheelStep)
	}
	return nil
}

// OnPinchMove multiplies the scale by the ratio of the current to the
// previous two-finger distance.
func (h *GestureHandler) OnPinchMove(ratio float64) error {
	if h.el == nil {
		return ErrUnbound
	}
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return nil
	}
	h.setScale(h.scale * ratio)
	return nil
}

// OnDragMove pans by (dx, dy). It has no effect at REST.
func (h *GestureHandler) OnDragMove(dx, dy float64) error {
	if h.el == nil {
		return ErrUnbound
	}
	if h.Phase() != PhaseZoomed {
		return nil
	}
	h.tx += dx
	h.ty += dy
	h.clampTranslate()
	h.render()
	return nil
}

// OnDoubleTap resets to REST.
func (h *GestureHandler) OnDoubleTap() error {
	if h.el == nil {
		return ErrUnbound
	}
	h.Reset()
	return nil
}

// OnDoubleClick resets to REST.
func (h *GestureHandler) OnDoubleClick() error {
	return h.OnDoubleTap()
}

// TouchStart begins a touch sequence. One finger drags when zoomed and
// tracks a swipe at REST; two or more fingers pinch.
func (h *GestureHandler) TouchStart(points []Point) error {
	if h.el == nil {
		return ErrUnbound
	}
	switch {
	case len(points) >= 2:
		h.beginPinch(points)
	case len(points) == 1:
		if h.mode == touchPinch {
			return nil
		}
		h.start, h.last = points[0], points[0]
		h.travelled = 0
		if h.Phase() == PhaseZoomed {
			h.mode = touchDrag
		} else {
			h.mode = touchSwipe
		}
	}
	return nil
}

// TouchMove feeds the active touch points.
func (h *GestureHandler) TouchMove(points []Point) error {
	if h.el == nil {
		return ErrUnbound
	}
	if len(points) >= 2 {
		if h.mode != touchPinch {
			h.beginPinch(points)
			return nil
		}
		d := distance(points[0], points[1])
		if h.lastDist > 0 {
			if err := h.OnPinchMove(d / h.lastDist); err != nil {
				return err
			}
		}
		h.lastDist = d
		return nil
	}
	if len(points) != 1 {
		return nil
	}

	p := points[0]
	dx, dy := p.X-h.last.X, p.Y-h.last.Y
	h.travelled += math.Hypot(dx, dy)
	h.last = p

	switch h.mode {
	case touchDrag:
		return h.OnDragMove(dx, dy)
	case touchSwipe:
		if h.Phase() == PhaseZoomed {
			h.mode = touchDrag
			return h.OnDragMove(dx, dy)
		}
	}
	return nil
}

// TouchEnd is called with the points still down. When the last finger
// lifts it reports a swipe at REST, and detects double taps.
func (h *GestureHandler) TouchEnd(remaining []Point) (Swipe, error) {
	if h.el == nil {
		return SwipeNone, ErrUnbound
	}
	if len(remaining) > 0 {
		// Lifting one finger of a pinch does not turn the rest into a drag.
		if h.mode == touchPinch && len(remaining) < 2 {
			h.mode = touchNone
		}
		return SwipeNone, nil
	}

	mode := h.mode
	h.mode = touchNone

	if mode != touchDrag && mode != touchSwipe {
		return SwipeNone, nil
	}

	if h.travelled <= TapSlop {
		h.tap(h.last)
		return SwipeNone, nil
	}
	h.lastTapAt = time.Time{}

	if mode == touchSwipe && h.Phase() == PhaseRest {
		dx := h.last.X - h.start.X
		dy := h.last.Y - h.start.Y
		if math.Abs(dx) > SwipeThreshold && math.Abs(dx) > math.Abs(dy) {
			if dx < 0 {
				return SwipeNext, nil
			}
			return SwipePrev, nil
		}
	}
	return SwipeNone, nil
}

func (h *GestureHandler) tap(p Point) {
	now := h.now()
	if !h.lastTapAt.IsZero() && now.Sub(h.lastTapAt) <= DoubleTapWindow && distance(p, h.lastTapPos) <= TapSlop {
		h.lastTapAt = time.Time{}
		h.Reset()
		return
	}
	h.lastTapAt = now
	h.lastTapPos = p
}

func (h *GestureHandler) beginPinch(points []Point) {
	h.mode = touchPinch
	h.lastDist = distance(points[0], points[1])
	h.lastTapAt = time.Time{}
}

func (h *GestureHandler) setScale(s float64) {
	if !h.zoomable {
		return
	}
	s = clamp(s, MinScale, MaxScale)
	if s-MinScale < snap {
		s = MinScale
	}
	h.scale = s
	h.clampTranslate()
	h.render()
}

// clampTranslate keeps the scaled media covering the container: each axis
// may move at most (scaled - container) / 2.
func (h *GestureHandler) clampTranslate() {
	if h.scale <= MinScale {
		h.tx, h.ty = 0, 0
		return
	}
	base := h.base()
	bx := math.Max(0, (base.W*h.scale-h.container.W)/2)
	by := math.Max(0, (base.H*h.scale-h.container.H)/2)
	h.tx = clamp(h.tx, -bx, bx)
	h.ty = clamp(h.ty, -by, by)
}

func (h *GestureHandler) base() Size {
	if h.el != nil && h.el.Base.W > 0 && h.el.Base.H > 0 {
		return h.el.Base
	}
	return h.container
}

func (h *GestureHandler) render() {
	if h.el != nil {
		h.el.Transform = h.Transform()
	}
}
