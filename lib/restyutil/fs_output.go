package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

type Output interface {
	Write(id string, contents string)
}

// FilesystemOutput writes each message to <directory>/<id>.txt.
type FilesystemOutput struct {
	directory string
}

func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id+".txt"), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}

type MemoryOutput struct {
	lock     sync.Mutex
	messages map[string]string
}

func NewMemoryOutput() *MemoryOutput {
	return &MemoryOutput{messages: map[string]string{}}
}

func (o *MemoryOutput) Write(id string, contents string) {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.messages[id] = contents
}

func (o *MemoryOutput) Messages() map[string]string {
	o.lock.Lock()
	defer o.lock.Unlock()
	out := make(map[string]string, len(o.messages))
	for k, v := range o.messages {
		out[k] = v
	}
	return out
}
