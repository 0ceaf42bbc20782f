package waygate

import "fmt"

// Module is the emulated DLL that owns a symbol.
type Module uint8

const (
	Kernel32 Module = iota + 1
	User32
)

func (m Module) String() string {
	switch m {
	case Kernel32:
		return "kernel32"
	case User32:
		return "user32"
	default:
		return fmt.Sprintf("module(%d)", uint8(m))
	}
}

// Symbol is a Windows API entry point known to waygate.
type Symbol uint8

const (
	// kernel32
	CreateFileA Symbol = iota + 1
	ReadFile
	WriteFile
	CloseHandle
	VirtualAlloc
	VirtualFree
	GetLastError
	SetLastError
	ExitProcess
	GetCurrentProcess
	Sleep
	GetTickCount
	GetModuleHandle
	GetProcAddress
	LoadLibrary
	FreeLibrary
	CreateThread
	WaitForSingleObject
	CreateEvent
	SetEvent
	ResetEvent
	QueryPerformanceCounter
	QueryPerformanceFrequency
	GetSystemTime
	GetLocalTime
	// user32
	MessageBoxA
	SendInput
	MouseEvent
	KeybdEvent
	GetCursorPos
	SetCursorPos
	GetAsyncKeyState
	GetKeyState
	MapVirtualKey
	ShowCursor
	ClipCursor
	RegisterClassExW
	CreateWindowExW
	DefWindowProcW
	DestroyWindow
	ShowWindow
	UpdateWindow
	GetClientRect
	AdjustWindowRectEx
	SetWindowTextW
	GetMessageW
	PeekMessageW
	TranslateMessage
	DispatchMessageW
	PostMessageW
	SendMessageW
	FindWindowW
	FindWindowExW
	GetWindowRect
	ClientToScreen
	ScreenToClient
	GetForegroundWindow
	SetForegroundWindow
	GetDesktopWindow
	GetDC
	ReleaseDC
	GetSystemMetrics
	WmCreate
	WmDestroy
	WmPaint
	WmSize
	WmClose
	WmQuit

	symbolEnd
)

// first user32 symbol; everything before it belongs to kernel32.
const firstUser32 = MessageBoxA

var symbolNames = [symbolEnd]string{
	CreateFileA:               "CreateFileA",
	ReadFile:                  "ReadFile",
	WriteFile:                 "WriteFile",
	CloseHandle:               "CloseHandle",
	VirtualAlloc:              "VirtualAlloc",
	VirtualFree:               "VirtualFree",
	GetLastError:              "GetLastError",
	SetLastError:              "SetLastError",
	ExitProcess:               "ExitProcess",
	GetCurrentProcess:         "GetCurrentProcess",
	Sleep:                     "Sleep",
	GetTickCount:              "GetTickCount",
	GetModuleHandle:           "GetModuleHandle",
	GetProcAddress:            "GetProcAddress",
	LoadLibrary:               "LoadLibrary",
	FreeLibrary:               "FreeLibrary",
	CreateThread:              "CreateThread",
	WaitForSingleObject:       "WaitForSingleObject",
	CreateEvent:               "CreateEvent",
	SetEvent:                  "SetEvent",
	ResetEvent:                "ResetEvent",
	QueryPerformanceCounter:   "QueryPerformanceCounter",
	QueryPerformanceFrequency: "QueryPerformanceFrequency",
	GetSystemTime:             "GetSystemTime",
	GetLocalTime:              "GetLocalTime",
	MessageBoxA:               "MessageBoxA",
	SendInput:                 "SendInput",
	MouseEvent:                "mouse_event",
	KeybdEvent:                "keybd_event",
	GetCursorPos:              "GetCursorPos",
	SetCursorPos:              "SetCursorPos",
	GetAsyncKeyState:          "GetAsyncKeyState",
	GetKeyState:               "GetKeyState",
	MapVirtualKey:             "MapVirtualKey",
	ShowCursor:                "ShowCursor",
	ClipCursor:                "ClipCursor",
	RegisterClassExW:          "RegisterClassExW",
	CreateWindowExW:           "CreateWindowExW",
	DefWindowProcW:            "DefWindowProcW",
	DestroyWindow:             "DestroyWindow",
	ShowWindow:                "ShowWindow",
	UpdateWindow:              "UpdateWindow",
	GetClientRect:             "GetClientRect",
	AdjustWindowRectEx:        "AdjustWindowRectEx",
	SetWindowTextW:            "SetWindowTextW",
	GetMessageW:               "GetMessageW",
	PeekMessageW:              "PeekMessageW",
	TranslateMessage:          "TranslateMessage",
	DispatchMessageW:          "DispatchMessageW",
	PostMessageW:              "PostMessageW",
	SendMessageW:              "SendMessageW",
	FindWindowW:               "FindWindowW",
	FindWindowExW:             "FindWindowExW",
	GetWindowRect:             "GetWindowRect",
	ClientToScreen:            "ClientToScreen",
	ScreenToClient:            "ScreenToClient",
	GetForegroundWindow:       "GetForegroundWindow",
	SetForegroundWindow:       "SetForegroundWindow",
	GetDesktopWindow:          "GetDesktopWindow",
	GetDC:                     "GetDC",
	ReleaseDC:                 "ReleaseDC",
	GetSystemMetrics:          "GetSystemMetrics",
	WmCreate:                  "WM_CREATE",
	WmDestroy:                 "WM_DESTROY",
	WmPaint:                   "WM_PAINT",
	WmSize:                    "WM_SIZE",
	WmClose:                   "WM_CLOSE",
	WmQuit:                    "WM_QUIT",
}

var (
	symbolsByName = make(map[string]Symbol, len(symbolNames))
	allSymbols    = make([]Symbol, 0, len(symbolNames))
	allNames      = make([]string, 0, len(symbolNames))
)

func init() {
	for sym := CreateFileA; sym < symbolEnd; sym++ {
		symbolsByName[symbolNames[sym]] = sym
		allSymbols = append(allSymbols, sym)
		allNames = append(allNames, symbolNames[sym])
	}
}

func (s Symbol) String() string {
	if s == 0 || s >= symbolEnd {
		return fmt.Sprintf("Symbol(%d)", uint8(s))
	}
	return symbolNames[s]
}

// Module returns the emulated DLL the symbol is dispatched to.
func (s Symbol) Module() Module {
	switch {
	case s == 0 || s >= symbolEnd:
		return 0
	case s < firstUser32:
		return Kernel32
	default:
		return User32
	}
}

// Lookup resolves an exact (case-sensitive) API name.
func Lookup(name string) (Symbol, bool) {
	sym, ok := symbolsByName[name]
	return sym, ok
}

// IsKnown reports whether name is in the registry. It is the only gate
// deciding whether a discovered name becomes a replayable call.
func IsKnown(name string) bool {
	_, ok := symbolsByName[name]
	return ok
}

// Symbols returns every registered symbol, kernel32 first, in registry order.
// The returned slice must not be modified.
func Symbols() []Symbol {
	return allSymbols
}

// SymbolNames returns the registry names in registry order.
// The returned slice must not be modified.
func SymbolNames() []string {
	return allNames
}

// ModuleSymbols returns the symbols owned by m.
func ModuleSymbols(m Module) []Symbol {
	var out []Symbol
	for _, sym := range allSymbols {
		if sym.Module() == m {
			out = append(out, sym)
		}
	}
	return out
}
