//go:build windows

package memory

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

// STILL_ACTIVE (GetExitCodeProcess の戻り値)
const stillActive = 259

// ProcessReader は ReadProcessMemory を使ってプロセスのメモリを読み出します
type ProcessReader struct {
	pid    uint32
	handle windows.Handle
}

// OpenProcess はプロセスを読み出し用に開きます
func OpenProcess(pid uint32) (*ProcessReader, error) {
	// PROCESS_QUERY_INFORMATION | PROCESS_VM_READ
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_INFORMATION|windows.PROCESS_VM_READ, false, pid)
	if err != nil {
		return nil, classify(err)
	}
	return &ProcessReader{pid: pid, handle: h}, nil
}

// Read は address から length バイトを読み出します
func (p *ProcessReader) Read(address uint64, length uint32) ([]byte, error) {
	buf := make([]byte, length)
	if length == 0 {
		return buf, nil
	}
	var n uintptr
	err := windows.ReadProcessMemory(p.handle, uintptr(address), &buf[0], uintptr(length), &n)
	if err != nil {
		if !p.Alive() {
			return nil, ErrProcessGone
		}
		return nil, classify(err)
	}
	return buf[:n], nil
}

// Alive はプロセスがまだ実行中かどうかを返します
func (p *ProcessReader) Alive() bool {
	var code uint32
	if err := windows.GetExitCodeProcess(p.handle, &code); err != nil {
		return false
	}
	return code == stillActive
}

// PID はプロセスIDを返します
func (p *ProcessReader) PID() uint32 {
	return p.pid
}

// Close はプロセスハンドルを閉じます
func (p *ProcessReader) Close() error {
	return windows.CloseHandle(p.handle)
}

// FindProcess は実行ファイル名が name に一致するプロセスのIDを返します
func FindProcess(name string) (uint32, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return 0, fmt.Errorf("スナップショットの作成に失敗しました: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	if err := windows.Process32First(snapshot, &entry); err != nil {
		return 0, fmt.Errorf("プロセス一覧の取得に失敗しました: %w", err)
	}
	for {
		if strings.EqualFold(windows.UTF16ToString(entry.ExeFile[:]), name) {
			return entry.ProcessID, nil
		}
		if err := windows.Process32Next(snapshot, &entry); err != nil {
			break
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrProcessNotFound, name)
}

func classify(err error) error {
	switch {
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("%w: %w", ErrAccessDenied, err)
	case errors.Is(err, windows.ERROR_INVALID_HANDLE), errors.Is(err, windows.ERROR_INVALID_PARAMETER):
		return fmt.Errorf("%w: %w", ErrProcessGone, err)
	default:
		return err
	}
}
