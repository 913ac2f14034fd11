package viewer

import (
	"errors"
	"math"

	"go.uber.org/zap"
)

// ErrEmptyList is returned when opening the viewer without media.
var ErrEmptyList = errors.New("viewer: media list is empty")

// ErrClosed is returned when showing an item while the viewer is closed.
var ErrClosed = errors.New("viewer: not open")

// Viewer is the fullscreen overlay. It owns the media list, the displayed
// element and the one gesture handler bound to it. A Viewer is not safe
// for concurrent use.
type Viewer struct {
	list      MediaList
	index     int
	open      bool
	container Size

	el      *Element
	handler *GestureHandler
	nextID  int

	logger *zap.Logger
}

// New creates a closed viewer for a container of the given size.
func New(container Size, logger *zap.Logger) *Viewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Viewer{container: container, logger: logger}
}

// Open replaces the media list and shows src. An src that is not in the
// list opens the first item.
func (v *Viewer) Open(list MediaList, src string) error {
	i := list.IndexOf(src)
	if i < 0 {
		i = 0
	}
	return v.OpenAt(list, i)
}

// OpenAt replaces the media list and shows the item at index.
func (v *Viewer) OpenAt(list MediaList, index int) error {
	if len(list) == 0 {
		return ErrEmptyList
	}
	if index < 0 || index >= len(list) {
		index = 0
	}
	v.list = list.clone()
	v.open = true
	v.show(index)
	return nil
}

// Close hides the overlay and destroys the element and its handler.
func (v *Viewer) Close() {
	v.release()
	v.open = false
	v.index = 0
}

// IsOpen reports whether the overlay is shown.
func (v *Viewer) IsOpen() bool { return v.open }

// List returns the current media list.
func (v *Viewer) List() MediaList { return v.list }

// Next shows the following item, wrapping around.
func (v *Viewer) Next() {
	if !v.open || len(v.list) == 0 {
		return
	}
	v.show((v.index + 1) % len(v.list))
}

// Prev shows the preceding item, wrapping around.
func (v *Viewer) Prev() {
	if !v.open || len(v.list) == 0 {
		return
	}
	v.show((v.index - 1 + len(v.list)) % len(v.list))
}

// Show displays the item at index.
func (v *Viewer) Show(index int) error {
	if !v.open {
		return ErrClosed
	}
	if index < 0 || index >= len(v.list) {
		return errors.New("viewer: index out of range")
	}
	v.show(index)
	return nil
}

// show always lands in REST: either a fresh handler on a fresh element,
// or the current handler reset before the source changes.
func (v *Viewer) show(index int) {
	m := v.list[index]
	v.index = index

	if v.el == nil || v.el.Kind != m.Kind {
		v.release()
		v.nextID++
		v.el = &Element{ID: v.nextID, Kind: m.Kind, Src: m.Src}
		v.handler = NewGestureHandler(v.container)
		// A fresh handler and element cannot already be bound.
		_ = v.handler.Bind(v.el)
		return
	}

	v.handler.Reset()
	v.el.Src = m.Src
	v.el.Base = Size{}
	v.el.Dimmed = false
}

func (v *Viewer) release() {
	if v.handler != nil {
		v.handler.Unbind()
	}
	v.handler = nil
	v.el = nil
}

// Current returns the displayed media item.
func (v *Viewer) Current() (Media, bool) {
	if !v.open {
		return Media{}, false
	}
	return v.list[v.index], true
}

// Element returns the displayed element, or nil when closed.
func (v *Viewer) Element() *Element { return v.el }

// Handler returns the gesture handler bound to the displayed element.
func (v *Viewer) Handler() *GestureHandler { return v.handler }

// State returns the index and transform of the displayed item.
func (v *Viewer) State() State {
	s := State{Index: v.index, Scale: MinScale}
	if v.handler != nil {
		t := v.handler.Transform()
		s.Scale, s.TranslateX, s.TranslateY = t.Scale, t.TranslateX, t.TranslateY
	}
	return s
}

// ShowNavigation reports whether prev/next controls should be visible.
func (v *Viewer) ShowNavigation() bool { return len(v.list) > 1 }

// Resize updates the container size.
func (v *Viewer) Resize(container Size) {
	v.container = container
	if v.handler != nil {
		v.handler.SetContainer(container)
	}
}

// Key handles Escape, ArrowLeft and ArrowRight. It reports whether the key
// was consumed.
func (v *Viewer) Key(name string) bool {
	if !v.open {
		return false
	}
	switch name {
	case "Escape":
		v.Close()
	case "ArrowLeft":
		v.Prev()
	case "ArrowRight":
		v.Next()
	default:
		return false
	}
	return true
}

// Loaded records the natural size of src once it has loaded, fitting it
// into the container.
func (v *Viewer) Loaded(src string, natural Size) {
	if v.el == nil || v.el.Src != src || natural.W <= 0 || natural.H <= 0 {
		return
	}
	fit := math.Min(v.container.W/natural.W, v.container.H/natural.H)
	if fit > 1 || fit <= 0 || math.IsNaN(fit) {
		fit = 1
	}
	v.el.Base = Size{W: natural.W * fit, H: natural.H * fit}
}

// LoadFailed dims the element when src is still displayed. It never retries
// and leaves navigation untouched.
func (v *Viewer) LoadFailed(src string, err error) {
	v.logger.Warn("media failed to load", zap.String("src", src), zap.Error(err))
	if v.el != nil && v.el.Src == src {
		v.el.Dimmed = true
	}
}

// TouchEnd forwards to the handler and navigates on a REST swipe.
func (v *Viewer) TouchEnd(remaining []Point) error {
	if v.handler == nil {
		return ErrUnbound
	}
	swipe, err := v.handler.TouchEnd(remaining)
	if err != nil {
		return err
	}
	switch swipe {
	case SwipeNext:
		v.Next()
	case SwipePrev:
		v.Prev()
	}
	return nil
}
