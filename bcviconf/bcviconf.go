// Package bcviconf is bcvi's config store: the three small files under
// <home>/.config/bcvi/ that hold the running listener's auth key,
// bound port, and pid.
//
// Following the dependency-injection idiom xs.AuthCtx uses for its
// file reads (a reader func that defaults to ioutil.ReadFile when
// nil), Store's file I/O is pluggable so tests never touch the real
// filesystem.
package bcviconf

import (
	"io/ioutil"
	"os"
	"path/filepath"
)

const (
	keyFile  = "listener_key"
	portFile = "listener_port"
	pidFile  = "listener_pid"
)

// Store reads and writes bcvi's on-disk state. A nil ReadFile/WriteFile
// defaults to the real filesystem; tests inject fakes.
type Store struct {
	Dir string

	ReadFile  func(name string) ([]byte, error)
	WriteFile func(name string, data []byte) error
}

// NewStore returns a Store rooted at <home>/.config/bcvi, creating the
// directory if it doesn't already exist.
func NewStore(home string) (*Store, error) {
	dir := filepath.Join(home, ".config", "bcvi")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) readFile(name string) ([]byte, error) {
	if s.ReadFile != nil {
		return s.ReadFile(name)
	}
	return ioutil.ReadFile(name) // nolint: gosec
}

func (s *Store) writeFile(name string, data []byte) error {
	if s.WriteFile != nil {
		return s.WriteFile(name, data)
	}
	return ioutil.WriteFile(name, data, 0600)
}

// readLine returns the trimmed first line of a file, or ("", false)
// if the file is absent. A file present but unreadable for any other
// reason is also treated as absent.
func (s *Store) readLine(name string) (value string, ok bool) {
	b, err := s.readFile(filepath.Join(s.Dir, name))
	if err != nil {
		return "", false
	}
	line := string(b)
	for i, c := range line {
		if c == '\n' {
			line = line[:i]
			break
		}
	}
	return line, true
}

func (s *Store) writeLine(name, value string) error {
	return s.writeFile(filepath.Join(s.Dir, name), []byte(value+"\n"))
}

// ReadKey/WriteKey persist the listener's current auth key.
func (s *Store) ReadKey() (string, bool)    { return s.readLine(keyFile) }
func (s *Store) WriteKey(key string) error  { return s.writeLine(keyFile, key) }

// ReadPort/WritePort persist the listener's bound TCP port.
func (s *Store) ReadPort() (string, bool)     { return s.readLine(portFile) }
func (s *Store) WritePort(port string) error  { return s.writeLine(portFile, port) }

// ReadPID/WritePID persist the listener's own process id.
func (s *Store) ReadPID() (string, bool)    { return s.readLine(pidFile) }
func (s *Store) WritePID(pid string) error  { return s.writeLine(pidFile, pid) }
