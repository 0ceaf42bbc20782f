package waygate

import (
	"bytes"
	"testing"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

func TestConcurrentAllocation(t *testing.T) {
	st := NewState()

	const workers, perWorker = 8, 200
	handles := make([][]uint64, workers)

	var g errgroup.Group
	for i := range workers {
		g.Go(func() error {
			for range perWorker {
				switch len(handles[i]) % 2 {
				case 0:
					handles[i] = append(handles[i], st.CreateEvent())
				default:
					handles[i] = append(handles[i], st.CreateWindow(Window{Title: "w"}))
				}
				st.PostMessage(Message{HWnd: uint64(i)})
				st.SetCursor(int32(i), int32(i))
				st.AddCursorCount(-1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	seen := make(map[uint64]bool, workers*perWorker)
	for _, hs := range handles {
		for _, h := range hs {
			if seen[h] {
				t.Fatalf("handle %d allocated twice", h)
			}
			if h < FirstHandle {
				t.Fatalf("handle %d below seed", h)
			}
			seen[h] = true
		}
	}
	if got := st.CursorCount(); got != -workers*perWorker {
		t.Errorf("cursor count = %d, want %d", got, -workers*perWorker)
	}
	n := 0
	for {
		if _, ok := st.NextMessage(); !ok {
			break
		}
		n++
	}
	if n != workers*perWorker {
		t.Errorf("drained %d messages, want %d", n, workers*perWorker)
	}
}

func TestDumpYAML(t *testing.T) {
	st := NewState()
	ev := st.CreateEvent()
	st.SetEventState(ev, true)
	st.CreateWindow(Window{Title: `L"main"`, W: 640, H: 480})
	st.PostMessage(Message{HWnd: 1001, Msg: WM_PAINT})
	st.SetLastError(87)
	st.SetCursor(4, 2)

	var buf bytes.Buffer
	if err := st.DumpYAML(&buf); err != nil {
		t.Fatal(err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(buf.Bytes(), &snap); err != nil {
		t.Fatalf("dump is not valid yaml: %v\n%s", err, buf.String())
	}
	if snap.NextHandle != FirstHandle+2 || snap.LastError != 87 {
		t.Errorf("snapshot scalars = %+v", snap)
	}
	if !snap.Events[ev] {
		t.Errorf("event %d not signaled in snapshot", ev)
	}
	if snap.Windows[FirstHandle+1].Title != `L"main"` {
		t.Errorf("windows = %+v", snap.Windows)
	}
	if len(snap.Messages) != 1 || snap.Messages[0].Msg != WM_PAINT {
		t.Errorf("messages = %+v", snap.Messages)
	}
	if snap.Cursor != (Point{X: 4, Y: 2}) {
		t.Errorf("cursor = %v", snap.Cursor)
	}
}
