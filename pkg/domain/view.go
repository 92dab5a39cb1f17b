package domain

// Store branding shown by every renderer.
const (
	StoreName    = "Tira Beauty Store"
	StoreTagline = "Premium Beauty Products Collection"
	StoreVersion = "1.0.0"
)

// DefaultIdentity is what the view announces to its host unless configured otherwise.
var DefaultIdentity = Identity{Name: StoreName, Version: StoreVersion}

// ViewStatus selects which page a renderer draws.
type ViewStatus string

const (
	ViewLoading ViewStatus = "loading"
	ViewError   ViewStatus = "error"
	ViewReady   ViewStatus = "ready"
)

// ViewState is the renderable state of the view at one instant.
type ViewState struct {
	Status  ViewStatus
	Err     error
	Context HostContext
}

// ViewStateFor derives the view state from a session and its current snapshot.
// Loading is shown until the session is connected, and the error page once it failed.
func ViewStateFor(s Session, snapshot HostContext) ViewState {
	switch s.State {
	case StateConnected:
		return ViewState{Status: ViewReady, Context: snapshot}
	case StateFailed:
		return ViewState{Status: ViewError, Err: s.Err}
	default:
		return ViewState{Status: ViewLoading}
	}
}

// Message returns the error text of a failed view.
func (v ViewState) Message() string {
	if v.Err == nil {
		return ""
	}
	return v.Err.Error()
}
