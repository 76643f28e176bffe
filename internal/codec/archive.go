package codec

import (
	"fmt"
	"os"
	"sync"
)

// Archive appends raw replies to a file as one JSON array
type Archive struct {
	mu    sync.Mutex
	f     *os.File
	count int
}

// OpenArchive truncates path and writes the array opening
func OpenArchive(path string) (*Archive, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	if _, err := f.WriteString("[\n"); err != nil {
		f.Close()
		return nil, fmt.Errorf("write archive header: %w", err)
	}
	return &Archive{f: f}, nil
}

// Append writes one raw reply
func (a *Archive) Append(raw []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.count > 0 {
		if _, err := a.f.WriteString(",\n"); err != nil {
			return fmt.Errorf("write archive separator: %w", err)
		}
	}
	if _, err := a.f.Write(raw); err != nil {
		return fmt.Errorf("write archive entry: %w", err)
	}
	a.count++
	return nil
}

// Count returns the number of archived replies
func (a *Archive) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// Close terminates the array and closes the file
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.f.WriteString("\n]\n"); err != nil {
		a.f.Close()
		return fmt.Errorf("write archive footer: %w", err)
	}
	return a.f.Close()
}
