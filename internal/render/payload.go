package render

// Series is one trace on a chart. Bar series are horizontal: X holds values
// and Categories the names along the Y axis.
type Series struct {
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Color      string    `json:"color"`
	X          []float64 `json:"x"`
	Y          []float64 `json:"y,omitempty"`
	Categories []string  `json:"categories,omitempty"`
}

const (
	KindBar     = "bar"
	KindMarkers = "markers"
	KindLine    = "line"
)

type Axis struct {
	Title string  `json:"title"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Chart is a chart ready for display. A chart with no series renders as axes
// only. Image, when set, is drawn behind the data.
type Chart struct {
	Series []Series `json:"series"`
	X      Axis     `json:"x"`
	Y      Axis     `json:"y"`
	Image  string   `json:"image,omitempty"`
}

// FastPayload is the output of the fast cycle.
type FastPayload struct {
	Action      Chart  `json:"action"`
	Affect      Chart  `json:"affect"`
	AffectLarge Chart  `json:"affect_large"`
	SleepLarge  Chart  `json:"sleep_large"`
	Motivation  Chart  `json:"motivation"`
	MoodFace    string `json:"mood_face,omitempty"`
	SleepFace   string `json:"sleep_face,omitempty"`
}

// Toggles are the two overlay switches on the page. Either one enables
// attention overlay processing.
type Toggles struct {
	Overlay      bool `json:"overlay"`
	OverlayLarge bool `json:"overlay_large"`
}

func (t Toggles) Any() bool { return t.Overlay || t.OverlayLarge }

// Images holds one size variant of the camera views. Each field is either a
// data URI, a placeholder asset id, or empty for an absent overlay.
type Images struct {
	CameraLeft    string `json:"camera_left"`
	CameraRight   string `json:"camera_right"`
	PriorityLeft  string `json:"priority_left,omitempty"`
	PriorityRight string `json:"priority_right,omitempty"`
}

// MediumPayload is the output of the medium cycle.
type MediumPayload struct {
	Small     Images `json:"small"`
	Large     Images `json:"large"`
	WideAudio string `json:"wide_audio"`
}

// SlowPayload is the output of the slow cycle.
type SlowPayload struct {
	Hour  int    `json:"hour"`
	Clock string `json:"clock"`
}
