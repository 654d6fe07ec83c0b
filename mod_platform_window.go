package cubefield

import (
	"fmt"
	"reflect"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState is the shared GLFW window. All of its methods must be called
// from the main OS thread.
type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string

	cursorLocked   bool
	lastX, lastY   float64
	haveLastCursor bool
}

var typeOfWindowState = reflect.TypeFor[WindowState]()

// PlatformWindowModule creates the window and routes its callbacks into the
// InputQueue. Install locks the calling goroutine to its OS thread; Run must
// be called from the same goroutine.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) error {
	if app.hasResource(typeOfWindowState) {
		return nil
	}
	width, height, title := m.Width, m.Height, m.Title
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "cubefield"
	}

	ws, err := createWindowState(width, height, title)
	if err != nil {
		return err
	}
	app.UseCleanup(ws.destroy)

	queue := Resource[InputQueue](app)
	if queue == nil {
		queue = NewInputQueue()
		cmd.AddResources(queue)
	}
	viewport := Resource[Viewport](app)
	if viewport == nil {
		viewport = &Viewport{}
		cmd.AddResources(viewport)
	}
	fbWidth, fbHeight := ws.windowGlfw.GetFramebufferSize()
	viewport.Resize(fbWidth, fbHeight)

	ws.bindCallbacks(queue)
	cmd.AddResources(ws)

	app.UseSystem(
		System(windowEventsSystem).
			InStage(Prelude),
	)
	app.UseSystem(
		System(pointerLockSystem).
			InStage(PostUpdate),
	)
	app.Logger().Infof("window %q created (%dx%d, framebuffer %dx%d)", title, width, height, fbWidth, fbHeight)
	return nil
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) (*WindowState, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}, nil
}

func (s *WindowState) bindCallbacks(queue *InputQueue) {
	s.windowGlfw.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			queue.PushKey(key, true)
		case glfw.Release:
			queue.PushKey(key, false)
		}
	})
	s.windowGlfw.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		queue.PushMouseButton(button, action == glfw.Press)
	})
	s.windowGlfw.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		if s.cursorLocked && s.haveLastCursor {
			queue.PushPointerDelta(x-s.lastX, y-s.lastY)
		}
		s.lastX, s.lastY = x, y
		s.haveLastCursor = true
	})
	s.windowGlfw.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		queue.PushResize(width, height)
	})
	s.windowGlfw.SetSizeCallback(func(w *glfw.Window, width, height int) {
		s.WindowWidth, s.WindowHeight = width, height
	})
	s.windowGlfw.SetCloseCallback(func(w *glfw.Window) {
		queue.PushClose()
	})
	s.windowGlfw.SetFocusCallback(func(w *glfw.Window, focused bool) {
		if !focused {
			queue.PushFocusLost()
		}
	})
}

// setCursorLocked hides and captures the cursor, using raw motion where the
// platform supports it.
func (s *WindowState) setCursorLocked(locked bool) {
	if locked == s.cursorLocked {
		return
	}
	if locked {
		s.windowGlfw.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		if glfw.RawMouseMotionSupported() {
			s.windowGlfw.SetInputMode(glfw.RawMouseMotion, glfw.True)
		}
	} else {
		if glfw.RawMouseMotionSupported() {
			s.windowGlfw.SetInputMode(glfw.RawMouseMotion, glfw.False)
		}
		s.windowGlfw.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
	s.cursorLocked = locked
	// The cursor jumps when the mode changes; start deltas afresh.
	s.haveLastCursor = false
}

func (s *WindowState) destroy() {
	s.windowGlfw.Destroy()
	glfw.Terminate()
}

func windowEventsSystem(s *WindowState) {
	glfw.PollEvents()
}

func pointerLockSystem(s *WindowState, input *Input) {
	s.setCursorLocked(input.PointerLocked)
}
