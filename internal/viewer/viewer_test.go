package viewer

import (
	"errors"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		src  string
		want Kind
	}{
		{"site/images/harbour/01.jpg", KindImage},
		{"site/images/harbour/01.webp?v=2", KindImage},
		{"site/images/reel/clip.mp4", KindVideo},
		{"site/images/reel/CLIP.WEBM", KindVideo},
		{"https://cdn.example.com/intro.mov", KindVideo},
		{"https://www.youtube.com/embed/abc123", KindEmbed},
		{"https://youtu.be/abc123", KindEmbed},
		{"https://player.vimeo.com/video/42", KindEmbed},
		{"https://example.com/embed/widget", KindEmbed},
		{"", KindImage},
	}
	for _, tt := range tests {
		if got := KindOf(tt.src); got != tt.want {
			t.Errorf("KindOf(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	if k, ok := ParseKind("video"); !ok || k != KindVideo {
		t.Errorf("ParseKind(video) = %q, %v", k, ok)
	}
	if _, ok := ParseKind("audio"); ok {
		t.Error("ParseKind(audio) should fail")
	}
}

func newOpen(t *testing.T, srcs ...string) *Viewer {
	t.Helper()
	v := New(Size{W: 1000, H: 800}, nil)
	if err := v.OpenAt(NewMediaList(srcs...), 0); err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	return v
}

func TestOpenFallsBackToFirstItem(t *testing.T) {
	v := New(Size{W: 1000, H: 800}, nil)
	list := NewMediaList("a.jpg", "b.jpg", "c.jpg")

	if err := v.Open(list, "c.jpg"); err != nil {
		t.Fatal(err)
	}
	if got := v.State().Index; got != 2 {
		t.Errorf("index = %d, want 2", got)
	}

	if err := v.Open(list, "missing.jpg"); err != nil {
		t.Fatal(err)
	}
	if got := v.State().Index; got != 0 {
		t.Errorf("index for unknown src = %d, want 0", got)
	}

	if err := v.Open(nil, "a.jpg"); !errors.Is(err, ErrEmptyList) {
		t.Errorf("Open(nil): got %v, want ErrEmptyList", err)
	}
}

func TestNextPrevRoundTrip(t *testing.T) {
	for n := 1; n <= 5; n++ {
		srcs := make([]string, n)
		for i := range srcs {
			srcs[i] = string(rune('a'+i)) + ".jpg"
		}
		v := New(Size{W: 1000, H: 800}, nil)
		for start := 0; start < n; start++ {
			if err := v.OpenAt(NewMediaList(srcs...), start); err != nil {
				t.Fatal(err)
			}
			v.Next()
			v.Prev()
			if got := v.State().Index; got != start {
				t.Errorf("n=%d: next then prev from %d landed on %d", n, start, got)
			}
			for i := 0; i < n; i++ {
				v.Prev()
			}
			if got := v.State().Index; got != start {
				t.Errorf("n=%d: %d prevs from %d landed on %d", n, n, start, got)
			}
		}
	}
}

func TestNavigationWraps(t *testing.T) {
	v := newOpen(t, "a.jpg", "b.jpg", "c.jpg")
	v.Prev()
	if m, _ := v.Current(); m.Src != "c.jpg" {
		t.Errorf("prev from first = %q, want c.jpg", m.Src)
	}
	v.Next()
	if m, _ := v.Current(); m.Src != "a.jpg" {
		t.Errorf("next from last = %q, want a.jpg", m.Src)
	}
}

func TestNavigationResetsZoom(t *testing.T) {
	v := newOpen(t, "a.jpg", "b.jpg")
	h := v.Handler()
	h.OnPinchMove(3)
	h.OnDragMove(100, 50)

	v.Next()

	if v.Handler() != h {
		t.Error("same-kind navigation replaced the handler")
	}
	st := v.State()
	if st.Scale != 1 || st.TranslateX != 0 || st.TranslateY != 0 {
		t.Errorf("state after navigation = %+v, want rest", st)
	}
	if v.Element().Transform != Identity {
		t.Errorf("element transform = %+v, want identity", v.Element().Transform)
	}
	if v.Element().Src != "b.jpg" {
		t.Errorf("src = %q, want b.jpg", v.Element().Src)
	}
}

func TestKindChangeRecreatesElement(t *testing.T) {
	v := newOpen(t, "a.jpg", "clip.mp4", "b.jpg")
	oldEl, oldHandler := v.Element(), v.Handler()

	v.Next()

	el, h := v.Element(), v.Handler()
	if el == oldEl || h == oldHandler {
		t.Fatal("kind change kept the old element or handler")
	}
	if el.Kind != KindVideo || el.ID == oldEl.ID {
		t.Errorf("new element = %+v", el)
	}
	if oldEl.Bound() || oldHandler.Bound() {
		t.Error("old element still bound")
	}
	if err := oldHandler.OnWheel(-1); !errors.Is(err, ErrUnbound) {
		t.Errorf("old handler input: got %v, want ErrUnbound", err)
	}
	if err := oldHandler.Bind(oldEl); !errors.Is(err, ErrReleased) {
		t.Errorf("rebinding old handler: got %v, want ErrReleased", err)
	}
	if h.Element() != el || !el.Bound() {
		t.Error("new handler not bound to the new element")
	}

	v.Next()
	if v.Element().Kind != KindImage || v.Element() == el {
		t.Error("switch back to image did not recreate the element")
	}
}

func TestCloseReleasesHandler(t *testing.T) {
	v := newOpen(t, "a.jpg")
	h := v.Handler()
	v.Close()

	if v.IsOpen() || v.Element() != nil || v.Handler() != nil {
		t.Error("viewer still holds state after Close")
	}
	if h.Bound() {
		t.Error("handler still bound after Close")
	}
	if _, ok := v.Current(); ok {
		t.Error("Current reported an item after Close")
	}
	v.Next()
	if v.IsOpen() {
		t.Error("Next reopened the viewer")
	}
}

func TestShowNavigation(t *testing.T) {
	if newOpen(t, "a.jpg").ShowNavigation() {
		t.Error("single item shows navigation")
	}
	if !newOpen(t, "a.jpg", "b.jpg").ShowNavigation() {
		t.Error("two items hide navigation")
	}
}

func TestShowOutOfRange(t *testing.T) {
	v := newOpen(t, "a.jpg", "b.jpg")
	if err := v.Show(2); err == nil {
		t.Error("expected error for index 2")
	}
	if err := v.Show(1); err != nil {
		t.Errorf("Show(1): %v", err)
	}
}

func TestShowWhileClosed(t *testing.T) {
	v := newOpen(t, "a.jpg", "b.jpg")
	v.Close()
	if err := v.Show(0); !errors.Is(err, ErrClosed) {
		t.Errorf("Show on closed viewer: got %v, want ErrClosed", err)
	}
	if err := New(Size{W: 100, H: 100}, nil).Show(0); !errors.Is(err, ErrClosed) {
		t.Errorf("Show on new viewer: got %v, want ErrClosed", err)
	}
}

func TestKeys(t *testing.T) {
	v := newOpen(t, "a.jpg", "b.jpg", "c.jpg")

	if !v.Key("ArrowRight") || v.State().Index != 1 {
		t.Errorf("ArrowRight: index = %d, want 1", v.State().Index)
	}
	if !v.Key("ArrowLeft") || v.State().Index != 0 {
		t.Errorf("ArrowLeft: index = %d, want 0", v.State().Index)
	}
	if v.Key("Enter") {
		t.Error("Enter was consumed")
	}
	if !v.Key("Escape") || v.IsOpen() {
		t.Error("Escape did not close the viewer")
	}
	if v.Key("ArrowRight") {
		t.Error("key consumed while closed")
	}
}

func TestLoadFailedDimsOnlyCurrentItem(t *testing.T) {
	v := newOpen(t, "a.jpg", "b.jpg")

	v.LoadFailed("other.jpg", errors.New("404"))
	if v.Element().Dimmed {
		t.Error("failure for another src dimmed the element")
	}

	v.LoadFailed("a.jpg", errors.New("404"))
	if got := v.Element().Opacity(); got != 0.5 {
		t.Errorf("opacity = %v, want 0.5", got)
	}

	v.Next()
	if v.Element().Dimmed {
		t.Error("dimming carried over to the next item")
	}
	if m, _ := v.Current(); m.Src != "b.jpg" {
		t.Errorf("navigation after failure landed on %q", m.Src)
	}
}

func TestLoadedFitsIntoContainer(t *testing.T) {
	v := newOpen(t, "a.jpg")

	v.Loaded("a.jpg", Size{W: 4000, H: 2000})
	if got := v.Element().Base; got != (Size{W: 1000, H: 500}) {
		t.Errorf("base = %+v, want 1000x500", got)
	}

	v.Loaded("a.jpg", Size{W: 200, H: 100})
	if got := v.Element().Base; got != (Size{W: 200, H: 100}) {
		t.Errorf("small media was upscaled to %+v", got)
	}
}

func TestSwipeNavigates(t *testing.T) {
	v := newOpen(t, "a.jpg", "b.jpg", "c.jpg")

	v.Handler().TouchStart([]Point{{X: 600, Y: 400}})
	v.Handler().TouchMove([]Point{{X: 400, Y: 400}})
	if err := v.TouchEnd(nil); err != nil {
		t.Fatal(err)
	}
	if got := v.State().Index; got != 1 {
		t.Errorf("left swipe: index = %d, want 1", got)
	}

	v.Handler().TouchStart([]Point{{X: 400, Y: 400}})
	v.Handler().TouchMove([]Point{{X: 600, Y: 400}})
	v.TouchEnd(nil)
	if got := v.State().Index; got != 0 {
		t.Errorf("right swipe: index = %d, want 0", got)
	}
}

func TestResizeReclampsTranslate(t *testing.T) {
	v := newOpen(t, "a.jpg")
	v.Element().Base = Size{W: 1000, H: 800}
	h := v.Handler()
	h.OnPinchMove(2)
	h.OnDragMove(500, 0)

	v.Resize(Size{W: 1600, H: 800})
	// (1000*2 - 1600) / 2
	if got := h.Transform().TranslateX; got != 200 {
		t.Errorf("translate_x after resize = %v, want 200", got)
	}
}
