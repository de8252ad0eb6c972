//go:build windows

package app

import "os"

// Windows has no job control: Ctrl-Z keeps the browser open and there is
// nothing to resume from.
func (app *Application) suspendToShell() {
	app.state.Message = "Suspend is not available on Windows"
}

func (app *Application) resumeAfterStop() bool {
	return false
}

func contSignals() []os.Signal {
	return nil
}
