package synchub

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/qmd-toolchain/qmdcore/internal/apperrors"
)

const (
	codeHubAlreadyRunning  = "HUB_ALREADY_RUNNING"
	codeProjectNotFound    = "PROJECT_NOT_FOUND"
	codeCreateHubDir       = "CREATE_HUB_DIR"
	codeLockfileAcquire    = "LOCKFILE_ACQUIRE"
	codeConfigVersionToNew = "CONFIG_VERSION_TOO_NEW"
	codeConfigParse        = "CONFIG_PARSE"
	codeIndexDocument      = "INDEX_DOCUMENT"
	codeSyncState          = "SYNC_STATE"
)

// ErrHubAlreadyRunning reports a second StorageManager attempting to start
// against a project directory whose hub.lock is already held.
func ErrHubAlreadyRunning(err error) error {
	return wrapSync(err, codeHubAlreadyRunning, "hub already running for this project")
}

// ErrProjectNotFound reports a project root that does not exist.
func ErrProjectNotFound(err error) error {
	return wrapSync(err, codeProjectNotFound, "project directory not found")
}

// ErrCreateHubDir reports failure to create <project>/.quarto/hub.
func ErrCreateHubDir(err error) error {
	return wrapSync(err, codeCreateHubDir, "failed to create hub directory")
}

// ErrLockfileAcquire reports failure to acquire the hub lockfile for a
// reason other than it already being held.
func ErrLockfileAcquire(err error) error {
	return wrapSync(err, codeLockfileAcquire, "failed to acquire hub lockfile")
}

// ErrConfigVersionTooNew reports a hub.json whose version exceeds
// CurrentHubVersion.
func ErrConfigVersionTooNew(err error) error {
	return wrapSync(err, codeConfigVersionToNew, "hub configuration version is too new")
}

// ErrConfigParse reports a malformed hub.json.
func ErrConfigParse(err error) error {
	return wrapSync(err, codeConfigParse, "failed to parse hub configuration")
}

// ErrIndexDocument reports a failure creating or loading the index document.
func ErrIndexDocument(err error) error {
	return wrapSync(err, codeIndexDocument, "failed to load or create index document")
}

// ErrSyncState reports a failure loading or persisting sync-state.json.
func ErrSyncState(err error) error {
	return wrapSync(err, codeSyncState, "failed to load or persist sync state")
}

func wrapSync(err error, code, message string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, apperrors.CategorySync, message).WithTextCode(code)
}
