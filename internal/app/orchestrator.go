package app

import (
	"os"
	"path/filepath"
	"sync"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/op"
	"gioui.org/unit"

	"github.com/justyntemme/dragexport/internal/config"
	"github.com/justyntemme/dragexport/internal/debug"
	"github.com/justyntemme/dragexport/internal/staging"
	"github.com/justyntemme/dragexport/internal/ui"
)

// Orchestrator owns the drag-out window: it loads the source file, draws it,
// and runs an export whenever the user pulls the tile out of the window.
type Orchestrator struct {
	window   *app.Window
	ui       *ui.Renderer
	cfg      config.Config
	exporter *Exporter
	watcher  *FileWatcher
	// invalidate requests a new frame.
	invalidate func()

	mu    sync.Mutex
	state ui.State
}

func NewOrchestrator(cfg config.Config, configErr error, exporter *Exporter) *Orchestrator {
	r := ui.NewRenderer(&cfg.Hotkeys)
	r.ThumbSize = unit.Dp(cfg.Window.ThumbnailSize)
	w := new(app.Window)
	return &Orchestrator{
		window:     w,
		ui:         r,
		cfg:        cfg,
		exporter:   exporter,
		invalidate: w.Invalidate,
		state:      ui.State{ConfigErr: configErr},
	}
}

func (o *Orchestrator) Run(source string) error {
	o.window.Option(
		app.Title(o.cfg.Window.Title),
		app.Size(unit.Dp(o.cfg.Window.Width), unit.Dp(o.cfg.Window.Height)),
	)

	if w, err := NewFileWatcher(0); err != nil {
		debug.Warn(debug.APP, "file watcher unavailable: %v", err)
	} else {
		o.watcher = w
		defer w.Close()
		go o.watchLoop()
	}

	o.load(source)

	// Event loop
	var ops op.Ops
	for {
		switch e := o.window.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			snapshot := o.snapshot()
			evt := o.ui.Layout(gtx, &snapshot)
			if evt.Action != ui.ActionNone {
				debug.Log(debug.APP, "Action: %d", evt.Action)
			}
			o.handleUIEvent(evt, snapshot)
			e.Frame(gtx.Ops)
		}
	}
}

func (o *Orchestrator) snapshot() ui.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setStatus(s ui.DragStatus) {
	o.mu.Lock()
	o.state.Status = s
	o.mu.Unlock()
	o.invalidate()
}

func (o *Orchestrator) handleUIEvent(evt ui.UIEvent, state ui.State) {
	switch evt.Action {
	case ui.ActionStartDrag:
		o.startExport(state.Path, evt)
	case ui.ActionOpen:
		if err := platformOpen(state.Path); err != nil {
			o.ui.ShowError("Open failed: " + err.Error())
		}
	case ui.ActionReload:
		o.load(state.Path)
	case ui.ActionQuit:
		o.window.Perform(system.ActionClose)
	}
}

// beginExport moves the window from Idle to Staging. It fails while another
// export is running.
func (o *Orchestrator) beginExport() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Status != ui.StatusIdle {
		return false
	}
	o.state.Status = ui.StatusStaging
	return true
}

func (o *Orchestrator) startExport(path string, evt ui.UIEvent) {
	if !o.beginExport() {
		debug.Log(debug.APP, "export of %s ignored, one is running", path)
		return
	}
	o.invalidate()

	// Export blocks inside the OS drag loop until the user lets go.
	go func() {
		defer o.setStatus(ui.StatusIdle)
		o.setStatus(ui.StatusDragging)
		out, err := o.exporter.Export(path, evt.Origin)
		msg, kind := outcomeToast(out, err)
		debug.Log(debug.APP, "export of %s: %s", path, out.Kind)
		o.ui.ShowToast(msg, kind)
	}()
}

// load reads path into the window state. Files that cannot be previewed can
// still be dragged.
func (o *Orchestrator) load(path string) {
	if path == "" {
		return
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	next := ui.State{Name: filepath.Base(path), Path: path}
	info, err := os.Stat(path)
	if err != nil {
		o.ui.ShowError(err.Error())
		next.Path = ""
	} else {
		next.Size = info.Size()
		if img, err := staging.LoadImage(path); err != nil {
			debug.Log(debug.APP, "no preview for %s: %v", path, err)
			o.ui.ShowToast("Preview unavailable", ui.ToastWarning)
		} else {
			next.Thumb = ui.NewThumbnail(img, o.cfg.Window.ThumbnailSize)
			next.Dimensions = next.Thumb.Original
		}
	}

	o.mu.Lock()
	next.Status = o.state.Status
	next.ConfigErr = o.state.ConfigErr
	o.state = next
	o.mu.Unlock()

	if o.watcher != nil && next.Path != "" {
		if err := o.watcher.Watch(next.Path); err != nil {
			debug.Log(debug.APP, "watch %s: %v", next.Path, err)
		}
	}
	o.invalidate()
}

func (o *Orchestrator) watchLoop() {
	for path := range o.watcher.Notify() {
		debug.Log(debug.APP, "reloading %s", path)
		o.load(path)
	}
}

// Main opens the drag-out window for source and blocks for the life of the
// process.
func Main(cfg config.Config, configErr error, exporter *Exporter, source string) {
	go func() {
		o := NewOrchestrator(cfg, configErr, exporter)
		if err := o.Run(source); err != nil {
			debug.Warn(debug.APP, "window: %v", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}
