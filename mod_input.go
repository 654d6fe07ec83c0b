package cubefield

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/cubefield/rt/core"
)

type Action uint8

const (
	ActionForward Action = iota
	ActionBack
	ActionLeft
	ActionRight
	ActionUp
	ActionDown
	actionCount
)

var actionNames = [actionCount]string{"forward", "back", "left", "right", "up", "down"}

func (a Action) String() string {
	if a < actionCount {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

func ParseAction(s string) (Action, error) {
	i := slices.Index(actionNames[:], strings.ToLower(strings.TrimSpace(s)))
	if i < 0 {
		return 0, fmt.Errorf("unknown action %q", s)
	}
	return Action(i), nil
}

var keyNames = map[string]glfw.Key{
	"a": glfw.KeyA, "b": glfw.KeyB, "c": glfw.KeyC, "d": glfw.KeyD,
	"e": glfw.KeyE, "f": glfw.KeyF, "g": glfw.KeyG, "h": glfw.KeyH,
	"i": glfw.KeyI, "j": glfw.KeyJ, "k": glfw.KeyK, "l": glfw.KeyL,
	"m": glfw.KeyM, "n": glfw.KeyN, "o": glfw.KeyO, "p": glfw.KeyP,
	"q": glfw.KeyQ, "r": glfw.KeyR, "s": glfw.KeyS, "t": glfw.KeyT,
	"u": glfw.KeyU, "v": glfw.KeyV, "w": glfw.KeyW, "x": glfw.KeyX,
	"y": glfw.KeyY, "z": glfw.KeyZ,
	"0": glfw.Key0, "1": glfw.Key1, "2": glfw.Key2, "3": glfw.Key3, "4": glfw.Key4,
	"5": glfw.Key5, "6": glfw.Key6, "7": glfw.Key7, "8": glfw.Key8, "9": glfw.Key9,
	"space":     glfw.KeySpace,
	"enter":     glfw.KeyEnter,
	"tab":       glfw.KeyTab,
	"backspace": glfw.KeyBackspace,
	"insert":    glfw.KeyInsert,
	"delete":    glfw.KeyDelete,
	"right":     glfw.KeyRight,
	"left":      glfw.KeyLeft,
	"down":      glfw.KeyDown,
	"up":        glfw.KeyUp,
	"minus":     glfw.KeyMinus,
	"equal":     glfw.KeyEqual,
	"kp_add":    glfw.KeyKPAdd,
	"kp_sub":    glfw.KeyKPSubtract,
	"shift":     glfw.KeyLeftShift,
	"rshift":    glfw.KeyRightShift,
	"ctrl":      glfw.KeyLeftControl,
	"rctrl":     glfw.KeyRightControl,
	"alt":       glfw.KeyLeftAlt,
	"ralt":      glfw.KeyRightAlt,
}

func ParseKey(name string) (glfw.Key, error) {
	key, ok := keyNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return glfw.KeyUnknown, fmt.Errorf("unknown key %q", name)
	}
	return key, nil
}

// KeyBindings maps physical keys to movement actions. Several keys may drive
// the same action.
type KeyBindings map[glfw.Key]Action

// ParseKeyBindings turns an action name -> key name table into KeyBindings.
// Escape is reserved for pointer lock and cannot be bound.
func ParseKeyBindings(table map[string]string) (KeyBindings, error) {
	bindings := make(KeyBindings, len(table))
	for actionName, keyName := range table {
		action, err := ParseAction(actionName)
		if err != nil {
			return nil, fmt.Errorf("keys: %w", err)
		}
		key, err := ParseKey(keyName)
		if err != nil {
			return nil, fmt.Errorf("keys.%s: %w", actionName, err)
		}
		if other, dup := bindings[key]; dup && other != action {
			return nil, fmt.Errorf("keys: %q bound to both %s and %s", keyName, other, action)
		}
		bindings[key] = action
	}
	return bindings, nil
}

func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		glfw.KeyW:         ActionForward,
		glfw.KeyS:         ActionBack,
		glfw.KeyA:         ActionLeft,
		glfw.KeyD:         ActionRight,
		glfw.KeySpace:     ActionUp,
		glfw.KeyLeftShift: ActionDown,
	}
}

type InputEventKind uint8

const (
	KeyEvent InputEventKind = iota
	MouseButtonEvent
	ResizeEvent
	CloseEvent
	// FocusLostEvent releases every held action; the window will not see
	// the matching key releases.
	FocusLostEvent
)

type InputEvent struct {
	Kind    InputEventKind
	Key     glfw.Key
	Button  glfw.MouseButton
	Pressed bool
	Width   int
	Height  int
}

// InputQueue is filled by event producers on any goroutine and drained once
// at the start of each tick. Pointer motion is summed; other events keep
// their order.
type InputQueue struct {
	mu     sync.Mutex
	dx, dy float64
	events []InputEvent
}

func NewInputQueue() *InputQueue {
	return &InputQueue{events: make([]InputEvent, 0, 16)}
}

func (q *InputQueue) PushPointerDelta(dx, dy float64) {
	q.mu.Lock()
	q.dx += dx
	q.dy += dy
	q.mu.Unlock()
}

func (q *InputQueue) PushKey(key glfw.Key, pressed bool) {
	q.push(InputEvent{Kind: KeyEvent, Key: key, Pressed: pressed})
}

func (q *InputQueue) PushMouseButton(button glfw.MouseButton, pressed bool) {
	q.push(InputEvent{Kind: MouseButtonEvent, Button: button, Pressed: pressed})
}

func (q *InputQueue) PushResize(width, height int) {
	q.push(InputEvent{Kind: ResizeEvent, Width: width, Height: height})
}

func (q *InputQueue) PushClose() {
	q.push(InputEvent{Kind: CloseEvent})
}

func (q *InputQueue) PushFocusLost() {
	q.push(InputEvent{Kind: FocusLostEvent})
}

func (q *InputQueue) push(ev InputEvent) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

// Drain appends the pending events to buf and returns it with the summed
// pointer motion, leaving the queue empty.
func (q *InputQueue) Drain(buf []InputEvent) ([]InputEvent, float64, float64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	buf = append(buf, q.events...)
	dx, dy := q.dx, q.dy
	q.events = q.events[:0]
	q.dx, q.dy = 0, 0
	return buf, dx, dy
}

// Input is the per-tick view of the player's intent.
type Input struct {
	Active        [actionCount]bool
	PointerLocked bool
	// LookX/LookY hold the pointer motion applied to the camera this tick.
	LookX, LookY float64

	Bindings KeyBindings

	scratch []InputEvent
}

func (in *Input) Pressed(a Action) bool {
	return a < actionCount && in.Active[a]
}

func (in *Input) Movement() core.Movement {
	return core.Movement{
		Forward: in.Active[ActionForward],
		Back:    in.Active[ActionBack],
		Left:    in.Active[ActionLeft],
		Right:   in.Active[ActionRight],
		Up:      in.Active[ActionUp],
		Down:    in.Active[ActionDown],
	}
}

type InputModule struct {
	Bindings KeyBindings
}

func (mod InputModule) Install(app *App, cmd *Commands) error {
	bindings := mod.Bindings
	if bindings == nil {
		bindings = DefaultKeyBindings()
	}
	if !app.hasResource(typeOfInputQueue) {
		cmd.AddResources(NewInputQueue())
	}
	if !app.hasResource(typeOfViewport) {
		cmd.AddResources(&Viewport{})
	}
	cmd.AddResources(&Input{Bindings: bindings})
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate),
	)
	return nil
}

// inputSystem applies everything queued since the last tick: key state,
// pointer lock changes, window size and close requests, then the pointer
// motion if the pointer is locked.
func inputSystem(queue *InputQueue, input *Input, camera *core.Camera, viewport *Viewport, cmd *Commands) {
	events, dx, dy := queue.Drain(input.scratch[:0])
	input.scratch = events

	for _, ev := range events {
		switch ev.Kind {
		case KeyEvent:
			if ev.Key == glfw.KeyEscape {
				if !ev.Pressed {
					continue
				}
				if input.PointerLocked {
					input.PointerLocked = false
				} else {
					cmd.Logger().Infof("escape pressed while unlocked, stopping")
					cmd.Stop()
				}
				continue
			}
			if action, ok := input.Bindings[ev.Key]; ok {
				input.Active[action] = ev.Pressed
			}
		case MouseButtonEvent:
			if ev.Pressed && !input.PointerLocked {
				input.PointerLocked = true
			}
		case ResizeEvent:
			viewport.Resize(ev.Width, ev.Height)
		case CloseEvent:
			cmd.Stop()
		case FocusLostEvent:
			input.Active = [actionCount]bool{}
			input.PointerLocked = false
		}
	}

	input.LookX, input.LookY = 0, 0
	if input.PointerLocked && (dx != 0 || dy != 0) {
		input.LookX, input.LookY = dx, dy
		camera.Look(float32(dx), float32(dy))
	}
}
