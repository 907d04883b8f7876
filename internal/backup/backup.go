// Package backup writes daily JSON snapshots of the application state
// to disk. One file per calendar day, newest ten kept.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	filePrefix       = "jardin-erp-backup-"
	fileSuffix       = ".json"
	DefaultRetention = 10

	// appVersion identifies the writer in exported files so restores can
	// tell which release produced a backup.
	appVersion = "1.0.0"
)

type Manager struct {
	dir       string
	retention int
	now       func() time.Time
}

type Info struct {
	Name string `json:"name"`
	Date string `json:"date"` // YYYY-MM-DD
	Size int64  `json:"size"`
}

type payload struct {
	State                 any            `json:"state"`
	DocumentacionContable map[string]any `json:"documentacion_contable"`
	Metadata              map[string]any `json:"_metadata"`
}

func NewManager(dir string, retention int) (*Manager, error) {
	if dir == "" {
		return nil, fmt.Errorf("backup directory required")
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Manager{
		dir:       dir,
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// WriteDaily stores today's snapshot unless one already exists, then
// prunes files beyond the retention window. Returns the file name and
// whether a file was written.
func (m *Manager) WriteDaily(state any) (string, bool, error) {
	name := filePrefix + m.now().Format("2006-01-02") + fileSuffix
	path := filepath.Join(m.dir, name)

	if _, err := os.Stat(path); err == nil {
		return name, false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", false, err
	}

	body := payload{
		State:                 state,
		DocumentacionContable: accountingDocumentation(m.now()),
		Metadata: map[string]any{
			"schema_version":   1,
			"app_version":      appVersion,
			"export_timestamp": m.now().Format(time.RFC3339),
		},
	}
	raw, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return "", false, err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", false, err
	}

	if err := m.prune(); err != nil {
		return name, true, err
	}
	return name, true, nil
}

// List returns the stored backups newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}

	var infos []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Name: name,
			Date: strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix),
			Size: fi.Size(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Date > infos[j].Date })
	return infos, nil
}

// Restore reads a backup file and returns the raw state document. The
// caller validates and imports it; a malformed file never touches the
// live state.
func (m *Manager) Restore(name string) (json.RawMessage, error) {
	if name != filepath.Base(name) || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return nil, fmt.Errorf("invalid backup name %q", name)
	}
	raw, err := os.ReadFile(filepath.Join(m.dir, name))
	if err != nil {
		return nil, err
	}
	var body struct {
		State json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("corrupt backup %s: %w", name, err)
	}
	if len(body.State) == 0 {
		return nil, fmt.Errorf("backup %s carries no state", name)
	}
	return body.State, nil
}

func (m *Manager) prune() error {
	infos, err := m.List()
	if err != nil {
		return err
	}
	for _, info := range infos[min(len(infos), m.retention):] {
		if err := os.Remove(filepath.Join(m.dir, info.Name)); err != nil {
			return err
		}
	}
	return nil
}

// RunScheduler writes a backup immediately and then once per interval
// until stop is closed.
func (m *Manager) RunScheduler(stop <-chan struct{}, interval time.Duration, snapshot func() any) {
	if interval <= 0 {
		interval = time.Hour
	}
	write := func() {
		name, written, err := m.WriteDaily(snapshot())
		if err != nil {
			log.Printf("[backup] write failed: %v", err)
			return
		}
		if written {
			log.Printf("[backup] wrote %s", name)
		}
	}

	write()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			write()
		}
	}
}
