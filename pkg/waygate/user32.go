package waygate

import (
	"strings"
)

// Window message identifiers.
const (
	WM_CREATE  uint32 = 0x0001
	WM_DESTROY uint32 = 0x0002
	WM_SIZE    uint32 = 0x0005
	WM_PAINT   uint32 = 0x000F
	WM_CLOSE   uint32 = 0x0010
	WM_QUIT    uint32 = 0x0012
)

var messageIDs = map[Symbol]uint32{
	WmCreate:  WM_CREATE,
	WmDestroy: WM_DESTROY,
	WmPaint:   WM_PAINT,
	WmSize:    WM_SIZE,
	WmClose:   WM_CLOSE,
	WmQuit:    WM_QUIT,
}

const (
	defaultWindowTitle = `L"window"`
	// findWindow matches the first window when asked for this title.
	anyWindow = "0"
)

var user32Handlers = map[Symbol]handler{
	CreateWindowExW:     createWindow,
	DestroyWindow:       destroyWindow,
	ShowWindow:          showWindow,
	SetWindowTextW:      setWindowText,
	GetClientRect:       getRect,
	GetWindowRect:       getRect,
	AdjustWindowRectEx:  adjustWindowRect,
	FindWindowW:         findWindow,
	FindWindowExW:       findWindow,
	GetForegroundWindow: getForeground,
	SetForegroundWindow: setForeground,
	SetCursorPos:        setCursor,
	GetCursorPos:        getCursor,
	ShowCursor:          showCursor,
	PostMessageW:        postMessage,
	GetMessageW:         getMessage,
	PeekMessageW:        getMessage,
	WmCreate:            messageID,
	WmDestroy:           messageID,
	WmPaint:             messageID,
	WmSize:              messageID,
	WmClose:             messageID,
	WmQuit:              messageID,
	DispatchMessageW:    called(User32),
	TranslateMessage:    called(User32),
	SendInput:           called(User32),
	MouseEvent:          called(User32),
	KeybdEvent:          called(User32),
	ClientToScreen:      called(User32),
	ScreenToClient:      called(User32),
	GetDC:               called(User32),
	ReleaseDC:           called(User32),
	GetSystemMetrics:    called(User32),
	MapVirtualKey:       called(User32),
	GetAsyncKeyState:    called(User32),
	GetKeyState:         called(User32),
	ClipCursor:          called(User32),
	MessageBoxA:         called(User32),
	RegisterClassExW:    called(User32),
	DefWindowProcW:      called(User32),
	UpdateWindow:        called(User32),
	SendMessageW:        called(User32),
	GetDesktopWindow:    called(User32),
}

func createWindow(st *State, _ Symbol, args Args) string {
	w := Window{
		Title: args.String("title", defaultWindowTitle),
		X:     args.Int32("x", 100),
		Y:     args.Int32("y", 100),
		W:     args.Int32("w", 640),
		H:     args.Int32("h", 480),
	}
	hwnd := st.CreateWindow(w)
	return outcome(User32, "created_window hwnd=%d %d,%d %dx%d", hwnd, w.X, w.Y, w.W, w.H)
}

func destroyWindow(st *State, _ Symbol, args Args) string {
	hwnd := args.Uint64("hwnd", 0)
	return outcome(User32, "destroy_window hwnd=%d removed=%t", hwnd, st.DestroyWindow(hwnd))
}

func showWindow(st *State, _ Symbol, args Args) string {
	hwnd := args.Uint64("hwnd", 0)
	visible := args.Int32("cmd", 1) != 0
	st.UpdateWindow(hwnd, func(w *Window) { w.Visible = visible })
	return outcome(User32, "show_window hwnd=%d visible=%t", hwnd, visible)
}

func setWindowText(st *State, _ Symbol, args Args) string {
	hwnd := args.Uint64("hwnd", 0)
	text := args.String("text", `L""`)
	st.UpdateWindow(hwnd, func(w *Window) { w.Title = text })
	return outcome(User32, "set_window_text hwnd=%d text=%s", hwnd, text)
}

func getRect(st *State, sym Symbol, args Args) string {
	hwnd := args.Uint64("hwnd", 0)
	w, ok := st.Window(hwnd)
	if !ok {
		w = Window{W: 640, H: 480}
	}
	return outcome(User32, "%s hwnd=%d rect=%d,%d,%d,%d", sym, hwnd, w.X, w.Y, w.W, w.H)
}

func adjustWindowRect(_ *State, _ Symbol, args Args) string {
	return outcome(User32, "AdjustWindowRectEx border=8 caption=30 menu=%t", args.Bool("menu", false))
}

// plainTitle drops the quotes and L prefix of a wide-string literal.
func plainTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "L")
	return strings.ReplaceAll(s, `"`, "")
}

func findWindow(st *State, _ Symbol, args Args) string {
	wanted := plainTitle(args.String("title", anyWindow))
	hwnd, _ := st.FindWindow(func(w Window) bool {
		return wanted == anyWindow || strings.Contains(plainTitle(w.Title), wanted)
	})
	return outcome(User32, "found_window hwnd=%d", hwnd)
}

func getForeground(st *State, _ Symbol, _ Args) string {
	return outcome(User32, "hwnd=%d", st.Foreground())
}

func setForeground(st *State, _ Symbol, args Args) string {
	hwnd := args.Uint64("hwnd", 0)
	st.SetForeground(hwnd)
	return outcome(User32, "foreground_window=%d", hwnd)
}

func setCursor(st *State, _ Symbol, args Args) string {
	x, y := args.Int32("x", 0), args.Int32("y", 0)
	st.SetCursor(x, y)
	return outcome(User32, "cursor=%d,%d", x, y)
}

func getCursor(st *State, _ Symbol, _ Args) string {
	x, y := st.Cursor()
	return outcome(User32, "cursor=%d,%d", x, y)
}

func showCursor(st *State, _ Symbol, args Args) string {
	delta := int32(1)
	if !args.Bool("show", true) {
		delta = -1
	}
	return outcome(User32, "show_cursor_count=%d", st.AddCursorCount(delta))
}

// messageArg accepts a number or one of the WM_* names.
func messageArg(args Args, key string, def uint32) uint32 {
	if arg, ok := args.Lookup(key); ok {
		if sym, ok := Lookup(strings.Trim(arg.Value, `"`)); ok {
			if id, ok := messageIDs[sym]; ok {
				return id
			}
		}
	}
	return args.Uint32(key, def)
}

func postMessage(st *State, _ Symbol, args Args) string {
	m := Message{
		HWnd:   args.Uint64("hwnd", 0),
		Msg:    messageArg(args, "msg", WM_CLOSE),
		WParam: args.Int64("wparam", 0),
		LParam: args.Int64("lparam", 0),
	}
	st.PostMessage(m)
	return outcome(User32, "posted_message hwnd=%d msg=%#06x", m.HWnd, m.Msg)
}

func getMessage(st *State, sym Symbol, _ Args) string {
	m, ok := st.NextMessage()
	if !ok {
		return outcome(User32, "%s empty_queue", sym)
	}
	return outcome(User32, "%s hwnd=%d msg=%#06x w=%d l=%d", sym, m.HWnd, m.Msg, m.WParam, m.LParam)
}

func messageID(_ *State, sym Symbol, _ Args) string {
	return outcome(User32, "%s=%#06x", sym, messageIDs[sym])
}
