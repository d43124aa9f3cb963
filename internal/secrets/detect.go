package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
)

// Backend choices accepted by NewStore.
const (
	BackendAuto    = "auto"
	BackendKeyring = "keyring"
	BackendFile    = "file"
)

// Backends lists the accepted backend names.
func Backends() []string {
	return []string{BackendAuto, BackendKeyring, BackendFile}
}

func warningMarkerPath() string {
	return filepath.Join(xdg.DataHome, "accman", ".file-store-warning-shown")
}

// quietMode returns true if the user has suppressed warnings via ACCMAN_QUIET.
func quietMode() bool {
	v := os.Getenv("ACCMAN_QUIET")
	return v == "1" || v == "true"
}

// warnOnce prints a message to stderr unless a marker file says a warning
// was already shown. Set ACCMAN_QUIET=1 to suppress entirely.
func warnOnce(msg string) {
	if quietMode() {
		return
	}
	if _, err := os.Stat(warningMarkerPath()); err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, msg)
}

// markWarningsDone persists the marker so future commands stay quiet.
func markWarningsDone() {
	path := warningMarkerPath()
	if _, err := os.Stat(path); err == nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return
	}
	_ = os.WriteFile(path, []byte("1"), 0600)
}

// NewStore opens the master-key store for backend.
//
// "auto" tries the OS keyring first and falls back to the encrypted file,
// going straight to the file under WSL and headless Linux where the keyring
// is unreliable. "keyring" and "file" force one backend.
func NewStore(backend string) (Store, error) {
	switch backend {
	case BackendKeyring:
		return NewKeyringStore()
	case BackendFile:
		return NewFileStore("")
	case "", BackendAuto:
	default:
		return nil, fmt.Errorf("unknown secrets backend %q (valid: %s)", backend, strings.Join(Backends(), ", "))
	}

	if IsWSL() || IsHeadless() {
		warnOnce("Detected WSL/headless environment, using encrypted file storage")
		return fileFallback()
	}

	store, err := NewKeyringStore()
	if err != nil {
		warnOnce(fmt.Sprintf("Keyring unavailable (%v), falling back to encrypted file", err))
		return fileFallback()
	}
	return store, nil
}

func fileFallback() (Store, error) {
	store, err := NewFileStore("")
	if err != nil {
		return nil, err
	}
	markWarningsDone()
	return store, nil
}

// IsWSL returns true if running under Windows Subsystem for Linux.
func IsWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}

	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}

	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// IsHeadless returns true if running in a headless environment (no display server).
// Only applicable on Linux; macOS and Windows are assumed to have GUI.
func IsHeadless() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	return os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""
}
