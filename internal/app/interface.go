package app

import "codeberg.org/mutker/dashmon/internal/alert"

// Renderer is a render target for the composed view.
type Renderer interface {
	Name() string
	Render(view View) error
}

// Alerts is the alert surface the app reports through and shows in the view.
type Alerts interface {
	alert.Notifier
	Active() []alert.Alert
}
