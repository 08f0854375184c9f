//go:build windows

package keyhook

import (
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPeekMessageW        = user32.NewProc("PeekMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
	procGetModuleHandleW    = kernel32.NewProc("GetModuleHandleW")
)

const (
	whKeyboardLL = 13
	wmQuit       = 0x0012
	pmNoRemove   = 0x0000
)

// kbdllHookStruct mirrors KBDLLHOOKSTRUCT.
type kbdllHookStruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      [2]int32
}

func (h *Hook) start() error {
	ready := make(chan error, 1)
	go h.run(ready)
	return <-ready
}

// run owns the hook for its whole life. Low-level hook callbacks are
// delivered on the installing thread, and only while it pumps messages.
func (h *Hook) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(h.done)

	var m msg
	// Force creation of the thread message queue so Stop can post WM_QUIT.
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmNoRemove)
	h.threadID = windows.GetCurrentThreadId()

	if h.callback == 0 {
		h.callback = syscall.NewCallback(h.proc)
	}
	hMod, _, _ := procGetModuleHandleW.Call(0)
	hhk, _, err := procSetWindowsHookExW.Call(whKeyboardLL, h.callback, hMod, 0)
	if hhk == 0 {
		ready <- fmt.Errorf("SetWindowsHookExW: %w", err)
		return
	}
	h.handle = hhk
	ready <- nil

	for {
		// GetMessageW blocks until a message is available. Returns 0 on WM_QUIT, -1 on error.
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) <= 0 {
			break
		}
	}

	procUnhookWindowsHookEx.Call(hhk)
	h.handle = 0
}

func (h *Hook) proc(nCode, wParam, lParam uintptr) uintptr {
	return h.d.handle(int32(nCode), wParam,
		func() uint32 {
			return (*kbdllHookStruct)(unsafe.Pointer(lParam)).vkCode
		},
		func() uintptr {
			ret, _, _ := procCallNextHookEx.Call(h.handle, nCode, wParam, lParam)
			return ret
		})
}

func (h *Hook) stop() error {
	ret, _, err := procPostThreadMessageW.Call(uintptr(h.threadID), wmQuit, 0, 0)
	if ret == 0 {
		select {
		case <-h.done:
			// The thread is gone already; nothing left to unhook.
			return nil
		default:
			return fmt.Errorf("PostThreadMessageW: %w", err)
		}
	}
	<-h.done
	return nil
}
