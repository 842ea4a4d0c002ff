package update

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/mateform/internal/i18n"
)

type MockReleaseSource struct {
	mock.Mock
}

func (m *MockReleaseSource) LatestTag(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func newTestChecker(t *testing.T, current string, source ReleaseSource) (*Checker, string) {
	t.Helper()
	trans, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)
	dir := t.TempDir()
	return NewChecker(current, trans, source, dir), dir
}

func TestIsUpdateAvailable(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		latest   string
		expected bool
	}{
		{name: "patch update available", current: "v1.0.0", latest: "v1.0.1", expected: true},
		{name: "minor update available", current: "v1.0.0", latest: "v1.1.0", expected: true},
		{name: "same version", current: "v1.0.0", latest: "v1.0.0", expected: false},
		{name: "current is newer", current: "v1.5.0", latest: "v1.4.9", expected: false},
		{name: "without v prefix", current: "1.0.0", latest: "1.0.1", expected: true},
		{name: "prerelease to release", current: "v1.0.0-beta.1", latest: "v1.0.0", expected: true},
		{name: "invalid versions compare as strings", current: "dev", latest: "dev", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker, _ := newTestChecker(t, tt.current, nil)
			assert.Equal(t, tt.expected, checker.IsUpdateAvailable(tt.latest))
		})
	}
}

func TestCheck(t *testing.T) {
	t.Run("should print a notice and cache the lookup", func(t *testing.T) {
		source := &MockReleaseSource{}
		source.On("LatestTag", mock.Anything).Return("v0.4.0", nil).Once()
		checker, dir := newTestChecker(t, "v0.3.0", source)
		var out bytes.Buffer

		checker.Check(context.Background(), &out)

		assert.Contains(t, out.String(), "mateform v0.4.0 is available (you have v0.3.0)")
		assert.FileExists(t, filepath.Join(dir, cacheFile))

		out.Reset()
		checker.Check(context.Background(), &out)
		assert.Contains(t, out.String(), "v0.4.0", "cached result is reused")
		source.AssertExpectations(t)
	})

	t.Run("should query again once the cache is stale", func(t *testing.T) {
		source := &MockReleaseSource{}
		source.On("LatestTag", mock.Anything).Return("v0.3.0", nil).Twice()
		checker, _ := newTestChecker(t, "v0.3.0", source)
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		checker.now = func() time.Time { return now }
		var out bytes.Buffer

		checker.Check(context.Background(), &out)
		now = now.Add(25 * time.Hour)
		checker.Check(context.Background(), &out)

		assert.Empty(t, out.String())
		source.AssertExpectations(t)
	})

	t.Run("should stay quiet when the lookup fails", func(t *testing.T) {
		source := &MockReleaseSource{}
		source.On("LatestTag", mock.Anything).Return("", errors.New("offline"))
		checker, dir := newTestChecker(t, "v0.3.0", source)
		var out bytes.Buffer

		checker.Check(context.Background(), &out)

		assert.Empty(t, out.String())
		assert.NoFileExists(t, filepath.Join(dir, cacheFile))
	})

	t.Run("should skip the lookup when disabled", func(t *testing.T) {
		t.Setenv(DisableEnv, "1")
		source := &MockReleaseSource{}
		checker, _ := newTestChecker(t, "v0.3.0", source)
		var out bytes.Buffer

		checker.Check(context.Background(), &out)

		assert.Empty(t, out.String())
		source.AssertNotCalled(t, "LatestTag", mock.Anything)
	})
}
