package gateway

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Session 保存访问后端用的 bearer token
type Session interface {
	Token() string
	SetToken(token string) error
	Clear() error
}

type MemorySession struct {
	mu    sync.RWMutex
	token string
}

func NewMemorySession(token string) *MemorySession {
	return &MemorySession{token: token}
}

func (s *MemorySession) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemorySession) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemorySession) Clear() error {
	return s.SetToken("")
}

// FileSession 把 token 保存在本地文件中，供命令行多次调用之间复用
type FileSession struct {
	mu     sync.Mutex
	path   string
	token  string
	loaded bool
}

func NewFileSession(path string) *FileSession {
	return &FileSession{path: path}
}

func (s *FileSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		data, err := os.ReadFile(s.path)
		if err == nil {
			s.token = strings.TrimSpace(string(data))
		}
		s.loaded = true
	}
	return s.token
}

func (s *FileSession) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return err
	}
	s.token, s.loaded = token, true
	return nil
}

func (s *FileSession) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token, s.loaded = "", true
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
