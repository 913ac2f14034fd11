package viewer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// GalleryResolver returns the media list of the gallery with the given slug.
type GalleryResolver func(lang, slug string) (MediaList, bool)

// History is the page path history of a session. Opening a gallery pushes
// its path; closing returns to the overview.
type History interface {
	OpenGallery(slug string) string
	CloseGallery() string
	Current() string
}

// HistoryFunc creates the history of a new session.
type HistoryFunc func() History

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Command is an incoming viewer session message.
type Command struct {
	Type    string   `json:"type"`
	Gallery string   `json:"gallery,omitempty"`
	Lang    string   `json:"lang,omitempty"`
	Media   []string `json:"media,omitempty"`
	Src     string   `json:"src,omitempty"`
	Index   int      `json:"index,omitempty"`
	DeltaY  float64  `json:"delta_y,omitempty"`
	Ratio   float64  `json:"ratio,omitempty"`
	DX      float64  `json:"dx,omitempty"`
	DY      float64  `json:"dy,omitempty"`
	Points  []Point  `json:"points,omitempty"`
	Key     string   `json:"key,omitempty"`
	Size    *Size    `json:"size,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// View is the outgoing snapshot sent after every command.
type View struct {
	Type       string    `json:"type"`
	Open       bool      `json:"open"`
	Index      int       `json:"index"`
	Count      int       `json:"count"`
	Src        string    `json:"src,omitempty"`
	Kind       Kind      `json:"kind,omitempty"`
	ElementID  int       `json:"element_id,omitempty"`
	Transform  Transform `json:"transform"`
	CSS        string    `json:"css,omitempty"`
	Opacity    float64   `json:"opacity"`
	Phase      Phase     `json:"phase"`
	Navigation bool      `json:"navigation"`
	Path       string    `json:"path,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Snapshot describes the viewer as a View.
func (v *Viewer) Snapshot() View {
	st := v.State()
	view := View{
		Type:       "view",
		Open:       v.open,
		Index:      st.Index,
		Count:      len(v.list),
		Transform:  Transform{Scale: st.Scale, TranslateX: st.TranslateX, TranslateY: st.TranslateY},
		Phase:      st.Phase(),
		Navigation: v.ShowNavigation(),
		Opacity:    1,
	}
	if v.el != nil {
		view.Src = v.el.Src
		view.Kind = v.el.Kind
		view.ElementID = v.el.ID
		view.CSS = v.el.Transform.CSS()
		view.Opacity = v.el.Opacity()
	}
	return view
}

// Session applies remote commands to one Viewer.
type Session struct {
	viewer  *Viewer
	resolve GalleryResolver
	history History
}

// NewSession creates a session around a fresh viewer. history may be nil,
// in which case views carry no path.
func NewSession(container Size, resolve GalleryResolver, history History, logger *zap.Logger) *Session {
	return &Session{viewer: New(container, logger), resolve: resolve, history: history}
}

// Viewer returns the session's viewer.
func (s *Session) Viewer() *Viewer { return s.viewer }

// Snapshot describes the viewer and the current page path.
func (s *Session) Snapshot() View {
	view := s.viewer.Snapshot()
	if s.history != nil {
		view.Path = s.history.Current()
	}
	return view
}

// Apply executes one command.
func (s *Session) Apply(cmd Command) error {
	v := s.viewer
	switch cmd.Type {
	case "open":
		list, err := s.listFor(cmd)
		if err != nil {
			return err
		}
		if cmd.Src != "" {
			err = v.Open(list, cmd.Src)
		} else {
			err = v.OpenAt(list, cmd.Index)
		}
		if err == nil && cmd.Gallery != "" && s.history != nil {
			s.history.OpenGallery(cmd.Gallery)
		}
		return err
	case "close":
		v.Close()
		if s.history != nil {
			s.history.CloseGallery()
		}
	case "next":
		v.Next()
	case "prev":
		v.Prev()
	case "show":
		return v.Show(cmd.Index)
	case "key":
		v.Key(cmd.Key)
	case "resize":
		if cmd.Size == nil {
			return errors.New("resize requires size")
		}
		v.Resize(*cmd.Size)
	case "loaded":
		if cmd.Size == nil {
			return errors.New("loaded requires size")
		}
		v.Loaded(cmd.Src, *cmd.Size)
	case "load_failed":
		v.LoadFailed(cmd.Src, errors.New(cmd.Error))
	case "touch_end":
		return v.TouchEnd(cmd.Points)
	default:
		return s.applyGesture(cmd)
	}
	return nil
}

func (s *Session) applyGesture(cmd Command) error {
	h := s.viewer.Handler()
	if h == nil {
		return ErrUnbound
	}
	switch cmd.Type {
	case "wheel":
		return h.OnWheel(cmd.DeltaY)
	case "pinch":
		return h.OnPinchMove(cmd.Ratio)
	case "drag":
		return h.OnDragMove(cmd.DX, cmd.DY)
	case "double_tap":
		return h.OnDoubleTap()
	case "double_click":
		return h.OnDoubleClick()
	case "reset":
		h.Reset()
		return nil
	case "touch_start":
		return h.TouchStart(cmd.Points)
	case "touch_move":
		return h.TouchMove(cmd.Points)
	}
	return fmt.Errorf("unknown command type: %s", cmd.Type)
}

func (s *Session) listFor(cmd Command) (MediaList, error) {
	if cmd.Gallery != "" {
		if s.resolve == nil {
			return nil, errors.New("gallery lookup not available")
		}
		list, ok := s.resolve(cmd.Lang, cmd.Gallery)
		if !ok {
			return nil, fmt.Errorf("unknown gallery %q", cmd.Gallery)
		}
		return list, nil
	}
	if len(cmd.Media) == 0 {
		return nil, ErrEmptyList
	}
	return NewMediaList(cmd.Media...), nil
}

// RegisterRoutes mounts the remote viewer websocket on the given router.
// newHistory, when set, gives every connection its own path history.
func RegisterRoutes(r chi.Router, resolve GalleryResolver, newHistory HistoryFunc, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r.Get("/ws/viewer", handleWebSocket(resolve, newHistory, logger))
}

func handleWebSocket(resolve GalleryResolver, newHistory HistoryFunc, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("viewer: websocket upgrade", zap.Error(err))
			return
		}
		defer conn.Close()

		var history History
		if newHistory != nil {
			history = newHistory()
		}
		session := NewSession(Size{W: 1280, H: 800}, resolve, history, logger)

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warn("viewer: websocket read", zap.Error(err))
				}
				return
			}

			var cmd Command
			if err := json.Unmarshal(msg, &cmd); err != nil {
				sendError(conn, "invalid message format")
				continue
			}

			applyErr := session.Apply(cmd)
			view := session.Snapshot()
			if applyErr != nil {
				view.Type = "error"
				view.Error = applyErr.Error()
			}
			if err := conn.WriteJSON(view); err != nil {
				logger.Warn("viewer: websocket write", zap.Error(err))
				return
			}
		}
	}
}

func sendError(conn *websocket.Conn, msg string) {
	_ = conn.WriteJSON(View{Type: "error", Error: msg, Opacity: 1, Phase: PhaseRest})
}
