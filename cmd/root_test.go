package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yonox270/yonoox/internal/scraper"
)

type fakeApp struct {
	closed   bool
	served   bool
	serveErr error
	scraper  *scraper.Scraper
}

func (f *fakeApp) Close() { f.closed = true }
func (f *fakeApp) Logger() *zap.Logger { return zap.NewNop() }
func (f *fakeApp) Scraper() *scraper.Scraper { return f.scraper }
func (f *fakeApp) Serve(context.Context) error {
	f.served = true
	return f.serveErr
}

// withFakeApp swaps the factory; tests using it must not run in parallel.
func withFakeApp(t *testing.T, fake *fakeApp, factoryErr error) *string {
	t.Helper()
	var gotPath string
	orig := newApp
	newApp = func(_ context.Context, path string) (App, error) {
		gotPath = path
		if factoryErr != nil {
			return nil, factoryErr
		}
		return fake, nil
	}
	t.Cleanup(func() { newApp = orig })
	return &gotPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestServeRunsAndClosesApp(t *testing.T) {
	fake := &fakeApp{}
	path := withFakeApp(t, fake, nil)

	_, err := execute(t, "serve", "--config", "conf.yaml")
	require.NoError(t, err)
	assert.True(t, fake.served)
	assert.True(t, fake.closed)
	assert.Equal(t, "conf.yaml", *path)
}

func TestServePropagatesError(t *testing.T) {
	withFakeApp(t, &fakeApp{serveErr: errors.New("address in use")}, nil)

	_, err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address in use")
}

func TestFactoryErrorStopsCommand(t *testing.T) {
	fake := &fakeApp{}
	withFakeApp(t, fake, errors.New("bad config"))

	_, err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize application services")
	assert.False(t, fake.served)
}

func TestScrapeFromHTMLFile(t *testing.T) {
	withFakeApp(t, &fakeApp{scraper: scraper.New(nil, nil)}, nil)

	file := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(file, []byte(`<span id="productTitle">Widget</span>
<span class="a-price-whole">19</span><span class="a-price-fraction">99</span>`), 0o600))

	out, err := execute(t, "scrape", "https://www.amazon.fr/dp/B0", "--html-file", file)
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Widget"`)
	assert.Contains(t, out, `"price": "19.99"`)
}

func TestScrapeRequiresURL(t *testing.T) {
	withFakeApp(t, &fakeApp{}, nil)

	_, err := execute(t, "scrape")
	require.Error(t, err)
}

func TestScrapeMissingFile(t *testing.T) {
	withFakeApp(t, &fakeApp{scraper: scraper.New(nil, nil)}, nil)

	_, err := execute(t, "scrape", "https://shop.example/p", "--html-file", filepath.Join(t.TempDir(), "nope.html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read html file")
}

func TestResolveAppWithoutApp(t *testing.T) {
	t.Parallel()

	_, err := resolveApp(context.Background())
	require.Error(t, err)
}
