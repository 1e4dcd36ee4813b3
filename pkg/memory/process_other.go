//go:build !windows

package memory

// ProcessReader はこのプラットフォームでは利用できません
type ProcessReader struct{}

// OpenProcess は常に ErrUnsupported を返します
func OpenProcess(pid uint32) (*ProcessReader, error) {
	return nil, ErrUnsupported
}

// Read は常に ErrUnsupported を返します
func (p *ProcessReader) Read(address uint64, length uint32) ([]byte, error) {
	return nil, ErrUnsupported
}

// Alive は常に false を返します
func (p *ProcessReader) Alive() bool {
	return false
}

// PID は常に 0 を返します
func (p *ProcessReader) PID() uint32 {
	return 0
}

// Close は何もしません
func (p *ProcessReader) Close() error {
	return nil
}

// FindProcess は常に ErrUnsupported を返します
func FindProcess(name string) (uint32, error) {
	return 0, ErrUnsupported
}
