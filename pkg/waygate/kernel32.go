package waygate

import (
	"time"
)

// MaxWait bounds how long WaitForSingleObject blocks on an unsignaled handle.
const MaxWait = 5 * time.Millisecond

const perfFrequency = 1_000_000

var kernel32Handlers = map[Symbol]handler{
	Sleep:                     sleep,
	GetTickCount:              getTickCount,
	SetLastError:              setLastError,
	GetLastError:              getLastError,
	CreateEvent:               createEvent,
	SetEvent:                  setEvent,
	ResetEvent:                setEvent,
	WaitForSingleObject:       waitForSingleObject,
	CloseHandle:               closeHandle,
	CreateThread:              createThread,
	QueryPerformanceCounter:   queryPerformanceCounter,
	QueryPerformanceFrequency: queryPerformanceFrequency,
	GetSystemTime:             systemTime,
	GetLocalTime:              systemTime,
	CreateFileA:               called(Kernel32),
	ReadFile:                  called(Kernel32),
	WriteFile:                 called(Kernel32),
	VirtualAlloc:              called(Kernel32),
	VirtualFree:               called(Kernel32),
	ExitProcess:               called(Kernel32),
	GetCurrentProcess:         called(Kernel32),
	GetModuleHandle:           called(Kernel32),
	GetProcAddress:            called(Kernel32),
	LoadLibrary:               called(Kernel32),
	FreeLibrary:               called(Kernel32),
}

func sleep(_ *State, _ Symbol, args Args) string {
	ms := args.Uint64("ms", 0)
	time.Sleep(time.Duration(ms) * time.Millisecond)
	return outcome(Kernel32, "slept_ms=%d", ms)
}

// tick counts are monotonic from state creation, like windows uptime.
func tickMS(st *State) int64 {
	return st.Uptime().Milliseconds()
}

func getTickCount(st *State, _ Symbol, _ Args) string {
	return outcome(Kernel32, "tick=%d", tickMS(st))
}

func queryPerformanceCounter(st *State, _ Symbol, _ Args) string {
	return outcome(Kernel32, "qpc=%d", tickMS(st)*1_000)
}

func queryPerformanceFrequency(_ *State, _ Symbol, _ Args) string {
	return outcome(Kernel32, "qpf=%d", perfFrequency)
}

func setLastError(st *State, _ Symbol, args Args) string {
	code := args.Uint32("code", 0)
	st.SetLastError(code)
	return outcome(Kernel32, "last_error_set=%d", code)
}

func getLastError(st *State, _ Symbol, _ Args) string {
	return outcome(Kernel32, "last_error=%d", st.LastError())
}

func createEvent(st *State, _ Symbol, _ Args) string {
	return outcome(Kernel32, "event_handle=%d", st.CreateEvent())
}

func setEvent(st *State, sym Symbol, args Args) string {
	handle := args.Uint64("handle", 0)
	signaled := sym == SetEvent
	st.SetEventState(handle, signaled)
	return outcome(Kernel32, "event_handle=%d signaled=%t", handle, signaled)
}

// waitForSingleObject is best effort: an unsignaled handle with a timeout
// blocks for at most MaxWait and the state is reported as found before the
// wait.
func waitForSingleObject(st *State, _ Symbol, args Args) string {
	handle := args.Uint64("handle", 0)
	timeout := args.Uint64("timeout", 0)
	signaled := st.EventSignaled(handle)
	if !signaled && timeout > 0 {
		wait := MaxWait
		if timeout < uint64(MaxWait/time.Millisecond) {
			wait = time.Duration(timeout) * time.Millisecond
		}
		time.Sleep(wait)
	}
	return outcome(Kernel32, "wait handle=%d signaled=%t timeout_ms=%d", handle, signaled, timeout)
}

func closeHandle(st *State, _ Symbol, args Args) string {
	handle := args.Uint64("handle", 0)
	return outcome(Kernel32, "close_handle handle=%d removed=%t", handle, st.CloseEvent(handle))
}

func createThread(st *State, _ Symbol, _ Args) string {
	return outcome(Kernel32, "created synthetic thread handle=%d", st.AllocHandle())
}

func systemTime(_ *State, sym Symbol, _ Args) string {
	kind := "system"
	if sym == GetLocalTime {
		kind = "local"
	}
	return outcome(Kernel32, "%s_time_unix_ms=%d", kind, time.Now().UnixMilli())
}
