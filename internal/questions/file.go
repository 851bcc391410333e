package questions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileProvider serves questions from a YAML file and reloads it when it changes.
// If the file cannot be read the pool is empty and Next reports ErrNoQuestionsAvailable.
type FileProvider struct {
	*Pool
	path string
	log  *zap.Logger
}

// NewFileProvider loads path once. A failed load is logged, not returned.
func NewFileProvider(path string, log *zap.Logger) *FileProvider {
	p := &FileProvider{Pool: NewPool(nil), path: path, log: log}
	if err := p.Reload(); err != nil {
		log.Warn("question file not loaded", zap.String("path", path), zap.Error(err))
	}
	return p
}

// Reload re-reads the file. On failure the pool is emptied.
func (p *FileProvider) Reload() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		p.Replace(nil)
		return fmt.Errorf("read %s: %w", p.path, err)
	}
	qs, err := Parse(data)
	if err != nil {
		p.Replace(nil)
		return err
	}
	p.Replace(qs)
	return nil
}

// Watch reloads the pool on every change to the file until ctx is done.
// The parent directory is watched so editors that replace the file are handled.
func (p *FileProvider) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(p.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(p.path), err)
	}
	target := filepath.Clean(p.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			if err := p.Reload(); err != nil {
				p.log.Warn("question pool emptied", zap.String("path", p.path), zap.Error(err))
				continue
			}
			p.log.Info("question pool reloaded", zap.String("path", p.path), zap.Int("questions", p.Len()))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.log.Warn("question watcher error", zap.Error(err))
		}
	}
}
