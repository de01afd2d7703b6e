// Package updater probes GitHub releases for newer teamdock builds and
// installs them. A release ships one asset per binary per platform
// (teamdock-linux-amd64, teamdockd-linux-amd64, ...); an update is only
// offered for installation when the release carries the pair for the
// running platform.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/teamdock-io/teamdock/internal/buildinfo"
)

// DefaultAPIURL is the production release endpoint.
const DefaultAPIURL = "https://api.github.com/repos/teamdock-io/teamdock/releases/latest"

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
	Size        int64  `json:"size"`
}

// release is the subset of the GitHub release object the client reads.
type release struct {
	TagName string  `json:"tag_name"`
	PageURL string  `json:"html_url"`
	Notes   string  `json:"body"`
	Assets  []Asset `json:"assets"`
}

// Binaries pairs the platform assets for the two shipped binaries.
type Binaries struct {
	CLI    Asset
	Daemon Asset
}

// Check is the outcome of one release probe.
type Check struct {
	Current string
	Latest  string
	Newer   bool
	Notes   string
	PageURL string

	// Binaries is nil when no release exists yet, when the running
	// build is current, or when the release is missing assets for this
	// platform. Installation needs both binaries.
	Binaries *Binaries
}

// Client talks to the release endpoint. The zero value uses production
// defaults; tests point APIURL at a local server.
type Client struct {
	APIURL     string
	HTTPClient *http.Client

	// Platform overrides the "goos-goarch" asset suffix.
	Platform string
}

func (c *Client) apiURL() string {
	if c.APIURL != "" {
		return c.APIURL
	}
	return DefaultAPIURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (c *Client) platform() string {
	if c.Platform != "" {
		return c.Platform
	}
	return runtime.GOOS + "-" + runtime.GOARCH
}

// Check fetches the latest release and compares it to the running build.
func (c *Client) Check(ctx context.Context) (*Check, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Nothing published yet
		return &Check{Current: buildinfo.Version}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release endpoint returned %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}

	latest, err := ParseVersion(rel.TagName)
	if err != nil {
		return nil, fmt.Errorf("release tag: %w", err)
	}

	out := &Check{
		Current: buildinfo.Version,
		Latest:  latest.String(),
		Notes:   rel.Notes,
		PageURL: rel.PageURL,
	}
	if current, err := ParseVersion(buildinfo.Version); err != nil {
		// Dev builds count as older than any release.
		out.Newer = true
	} else {
		out.Newer = current.Compare(latest) < 0
	}
	if out.Newer {
		out.Binaries = c.pairBinaries(rel.Assets)
	}
	return out, nil
}

// pairBinaries picks this platform's CLI and daemon assets out of the
// release. Both must be present; a release missing either is not
// installable.
func (c *Client) pairBinaries(assets []Asset) *Binaries {
	var b Binaries
	cliName := "teamdock-" + c.platform()
	daemonName := "teamdockd-" + c.platform()
	for _, a := range assets {
		switch a.Name {
		case cliName:
			b.CLI = a
		case daemonName:
			b.Daemon = a
		}
	}
	if b.CLI.DownloadURL == "" || b.Daemon.DownloadURL == "" {
		return nil
	}
	return &b
}

// Download stages an asset into a temp file, marks it executable, and
// returns its path. Callers hand the path to Install.
func (c *Client) Download(ctx context.Context, asset Asset) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.DownloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", asset.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: status %d", asset.Name, resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "teamdock-stage-*")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", asset.Name, err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("stage %s: %w", asset.Name, err)
	}
	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("stage %s: %w", asset.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("stage %s: %w", asset.Name, err)
	}
	return tmp.Name(), nil
}

// Install replaces the binary at destPath with the staged file. The
// staged copy is first cloned next to the destination so the final
// rename never crosses filesystems; the previous binary is parked as
// dest.old until the swap succeeds. A missing destination is a first
// install and skips the parking step.
func Install(destPath, stagedPath string) error {
	resolved, err := filepath.EvalSymlinks(destPath)
	switch {
	case err == nil:
		destPath = resolved
	case os.IsNotExist(err):
		// First install of this binary.
	default:
		return fmt.Errorf("resolve %s: %w", destPath, err)
	}

	staged, err := os.Open(stagedPath)
	if err != nil {
		return fmt.Errorf("open staged binary: %w", err)
	}
	defer staged.Close()

	dir := filepath.Dir(destPath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(destPath)+".new-*")
	if err != nil {
		return fmt.Errorf("stage into %s: %w", dir, err)
	}
	if _, err := io.Copy(tmp, staged); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("stage into %s: %w", dir, err)
	}
	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("stage into %s: %w", dir, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("stage into %s: %w", dir, err)
	}

	backup := destPath + ".old"
	os.Remove(backup)
	parked := true
	if err := os.Rename(destPath, backup); err != nil {
		if !os.IsNotExist(err) {
			os.Remove(tmp.Name())
			return fmt.Errorf("park old binary: %w", err)
		}
		parked = false
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		if parked {
			_ = os.Rename(backup, destPath)
		}
		os.Remove(tmp.Name())
		return fmt.Errorf("install %s: %w", destPath, err)
	}
	if parked {
		os.Remove(backup)
	}
	return nil
}
