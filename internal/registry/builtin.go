package registry

const (
	KindWeather    = "weather"
	KindNotes      = "notes"
	KindTodo       = "todo"
	KindCalculator = "calculator"
	KindCalendar   = "calendar"
	KindStopwatch  = "stopwatch"
)

// Info is the presentation-independent description of a widget kind.
type Info struct {
	Kind         string `json:"kind"`
	DefaultTitle string `json:"defaultTitle"`
	Description  string `json:"description"`
}

var builtinInfos = []Info{
	{Kind: KindWeather, DefaultTitle: "Weather", Description: "Current conditions for a city."},
	{Kind: KindNotes, DefaultTitle: "Notes", Description: "Write, edit, and organize your notes."},
	{Kind: KindTodo, DefaultTitle: "To-Do", Description: "Track tasks and tick them off."},
	{Kind: KindCalculator, DefaultTitle: "Calculator", Description: "Calculation history."},
	{Kind: KindCalendar, DefaultTitle: "Calendar", Description: "Mark dates with a reason."},
	{Kind: KindStopwatch, DefaultTitle: "Stopwatch", Description: "Time things."},
}

// Builtin returns a registry with the six built-in kinds.
func Builtin() *Registry[Info] {
	r := New[Info]()
	for _, info := range builtinInfos {
		r.Register(info.Kind, info)
	}
	return r
}

// Title returns the display title for a widget: the user override when non-empty,
// else the kind's default title, else the raw type tag.
func Title(r *Registry[Info], kind, override string) string {
	if override != "" {
		return override
	}
	if r != nil {
		if info, ok := r.Resolve(kind); ok {
			return info.DefaultTitle
		}
	}
	return kind
}
