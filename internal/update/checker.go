package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/go-github/github"
	"github.com/thomas-vilte/mateform/internal/i18n"
	"github.com/thomas-vilte/mateform/internal/logger"
	"golang.org/x/mod/semver"
)

const (
	// DisableEnv turns the release check off when set to any value.
	DisableEnv = "MATEFORM_DISABLE_UPDATE_CHECK"

	cacheFile     = "last_update_check.json"
	checkInterval = 24 * time.Hour
	fetchTimeout  = 2 * time.Second

	repoOwner = "thomas-vilte"
	repoName  = "mateform"
)

// ReleaseSource returns the tag of the newest published release.
type ReleaseSource interface {
	LatestTag(ctx context.Context) (string, error)
}

type githubReleases struct {
	client *github.Client
}

// NewGitHubSource queries the public releases of the mateform repository.
func NewGitHubSource() ReleaseSource {
	return &githubReleases{client: github.NewClient(nil)}
}

func (g *githubReleases) LatestTag(ctx context.Context) (string, error) {
	release, _, err := g.client.Repositories.GetLatestRelease(ctx, repoOwner, repoName)
	if err != nil {
		return "", err
	}
	return release.GetTagName(), nil
}

type Cache struct {
	LastCheck   time.Time `json:"last_check"`
	LatestKnown string    `json:"latest_known"`
}

// Checker prints a notice when a newer release exists. Lookups are cached
// for a day next to the configuration file.
type Checker struct {
	currentVersion string
	trans          *i18n.Translations
	source         ReleaseSource
	cacheDir       string
	now            func() time.Time
}

func NewChecker(currentVersion string, trans *i18n.Translations, source ReleaseSource, cacheDir string) *Checker {
	return &Checker{
		currentVersion: currentVersion,
		trans:          trans,
		source:         source,
		cacheDir:       cacheDir,
		now:            time.Now,
	}
}

// Check never fails the command: lookup and cache errors are only logged.
func (c *Checker) Check(ctx context.Context, w io.Writer) {
	if os.Getenv(DisableEnv) != "" {
		return
	}
	log := logger.FromContext(ctx)

	cache, err := c.loadCache()
	if err == nil && c.now().Sub(cache.LastCheck) < checkInterval {
		if cache.LatestKnown != "" && c.IsUpdateAvailable(cache.LatestKnown) {
			c.printNotice(w, cache.LatestKnown)
		}
		return
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	latest, err := c.source.LatestTag(ctx)
	if err != nil {
		log.Debug("release lookup failed", "error", err)
		return
	}

	if err := c.saveCache(Cache{LastCheck: c.now(), LatestKnown: latest}); err != nil {
		log.Debug("could not save update cache", "error", err)
	}

	if c.IsUpdateAvailable(latest) {
		c.printNotice(w, latest)
	}
}

func (c *Checker) IsUpdateAvailable(latest string) bool {
	current := c.currentVersion
	if !strings.HasPrefix(current, "v") {
		current = "v" + current
	}
	if !strings.HasPrefix(latest, "v") {
		latest = "v" + latest
	}

	if !semver.IsValid(current) || !semver.IsValid(latest) {
		return current != latest
	}

	return semver.Compare(latest, current) > 0
}

func (c *Checker) printNotice(w io.Writer, latest string) {
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	green := color.New(color.FgGreen, color.Bold).SprintFunc()

	available := c.trans.GetMessage("update.available", 0, map[string]interface{}{
		"Current": c.currentVersion,
		"Latest":  green(latest),
	})
	command := c.trans.GetMessage("update.command", 0, map[string]interface{}{
		"Command": green(fmt.Sprintf("go install github.com/%s/%s/cmd/mateform@latest", repoOwner, repoName)),
	})

	_, _ = fmt.Fprintf(w, "\n%s %s\n", yellow("⬆"), available)
	_, _ = fmt.Fprintf(w, "  %s\n\n", command)
}

func (c *Checker) loadCache() (Cache, error) {
	data, err := os.ReadFile(filepath.Join(c.cacheDir, cacheFile))
	if err != nil {
		return Cache{}, err
	}

	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		return Cache{}, err
	}
	return cache, nil
}

func (c *Checker) saveCache(cache Cache) error {
	if err := os.MkdirAll(c.cacheDir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.cacheDir, cacheFile), data, 0644)
}
