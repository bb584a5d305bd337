package synchub

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// CurrentHubVersion is the highest hub.json format version this build
// understands. Configs with a newer version are rejected rather than
// silently misread.
const CurrentHubVersion = 1

const (
	hubDirName    = ".quarto/hub"
	hubLockName   = "hub.lock"
	hubConfigName = "hub.json"
)

// HubConfig is the persisted shape of hub.json.
type HubConfig struct {
	Version         int       `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	LastStartedAt   time.Time `json:"last_started_at,omitempty"`
	IndexDocumentID string    `json:"index_document_id,omitempty"`
	Peers           []string  `json:"peers,omitempty"`
}

// StorageManager owns the process-exclusive hold on a project's
// <project>/.quarto/hub/ directory: the lockfile, hub.json, and the PID
// diagnostic. Only one StorageManager may be active per project directory
// at a time.
type StorageManager struct {
	projectRoot string
	hubDir      string
	lockFile    *os.File
	Config      HubConfig
}

// OpenStorageManager initializes the hub directory under projectRoot,
// acquires the exclusive non-blocking hub.lock (a second concurrent
// attempt fails with ErrHubAlreadyRunning), writes the PID, and loads or
// creates hub.json.
func OpenStorageManager(projectRoot string) (*StorageManager, error) {
	info, err := os.Stat(projectRoot)
	if err != nil || !info.IsDir() {
		return nil, ErrProjectNotFound(fmt.Errorf("stat %s: %w", projectRoot, err))
	}

	hubDir := filepath.Join(projectRoot, hubDirName)
	if err := os.MkdirAll(hubDir, 0o755); err != nil {
		return nil, ErrCreateHubDir(err)
	}

	lockPath := filepath.Join(hubDir, hubLockName)
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, ErrLockfileAcquire(err)
	}

	if err := unix.Flock(int(lockFile.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		lockFile.Close()
		if err == unix.EWOULDBLOCK {
			return nil, ErrHubAlreadyRunning(err)
		}
		return nil, ErrLockfileAcquire(err)
	}

	if err := lockFile.Truncate(0); err == nil {
		lockFile.Seek(0, 0)
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
	}

	sm := &StorageManager{projectRoot: projectRoot, hubDir: hubDir, lockFile: lockFile}
	cfg, err := sm.loadOrCreateConfig()
	if err != nil {
		sm.Close()
		return nil, err
	}
	sm.Config = cfg
	return sm, nil
}

func (s *StorageManager) configPath() string {
	return filepath.Join(s.hubDir, hubConfigName)
}

func (s *StorageManager) loadOrCreateConfig() (HubConfig, error) {
	raw, err := os.ReadFile(s.configPath())
	if os.IsNotExist(err) {
		cfg := HubConfig{Version: CurrentHubVersion, CreatedAt: time.Now().UTC(), LastStartedAt: time.Now().UTC()}
		return cfg, s.saveConfig(cfg)
	}
	if err != nil {
		return HubConfig{}, ErrConfigParse(err)
	}

	var cfg HubConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return HubConfig{}, ErrConfigParse(err)
	}
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.Version > CurrentHubVersion {
		return HubConfig{}, ErrConfigVersionTooNew(fmt.Errorf("config version %d exceeds supported version %d", cfg.Version, CurrentHubVersion))
	}
	// Future-version migration would run here; at version 1 there is
	// nothing to migrate, so this is a no-op log point.
	cfg.LastStartedAt = time.Now().UTC()
	return cfg, s.saveConfig(cfg)
}

func (s *StorageManager) saveConfig(cfg HubConfig) error {
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return ErrConfigParse(err)
	}
	return writeFileAtomic(s.configPath(), raw)
}

// SaveConfig persists the StorageManager's current Config back to hub.json.
func (s *StorageManager) SaveConfig() error {
	return s.saveConfig(s.Config)
}

// HubDir returns the absolute path to <project>/.quarto/hub.
func (s *StorageManager) HubDir() string { return s.hubDir }

// Close releases the lock and best-effort removes the lockfile, matching
// spec.md §4.7's Drop semantics.
func (s *StorageManager) Close() error {
	if s.lockFile == nil {
		return nil
	}
	unix.Flock(int(s.lockFile.Fd()), unix.LOCK_UN)
	path := s.lockFile.Name()
	err := s.lockFile.Close()
	os.Remove(path)
	s.lockFile = nil
	return err
}

// writeFileAtomic writes data to path via a temp file in the same
// directory followed by a rename, so a crash mid-write never leaves a
// truncated file in place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
