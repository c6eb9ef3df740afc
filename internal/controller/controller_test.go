package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchforge/booksearch/internal/contract"
	"github.com/searchforge/booksearch/internal/validate"
	"github.com/searchforge/booksearch/sources"
	"github.com/searchforge/booksearch/testutil"
)

func newController(t *testing.T, fake *testutil.FakeSource, timeout time.Duration) *Controller {
	t.Helper()
	ctrl, err := New(sources.NewBookAPI(fake.Client()), Config{
		Timeout: timeout,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	return ctrl
}

func TestNewRequiresSource(t *testing.T) {
	_, err := New(nil, Config{})
	require.Error(t, err)
}

func TestSearchEmptyQueryMakesNoCalls(t *testing.T) {
	fake := testutil.NewFakeSource()
	defer fake.Close()
	ctrl := newController(t, fake, 0)

	_, err := ctrl.Do(context.Background(), contract.Params{}, contract.Settings{APIURL: fake.URL()})
	var vErr *contract.ValidationError
	require.True(t, errors.As(err, &vErr))

	out := ctrl.Search(context.Background(), contract.Params{}, contract.Settings{APIURL: fake.URL()})
	assert.Equal(t, "Error searching books: Search query is required", out)
	assert.Zero(t, fake.Calls())
}

func TestSearchEmptyResults(t *testing.T) {
	fake := testutil.NewFakeSource()
	defer fake.Close()
	ctrl := newController(t, fake, 0)

	for _, body := range []string{`[]`, `{"results":[],"total":0,"took":1}`} {
		fake.SetResponses(testutil.FakeResponse{Body: body})

		out := ctrl.Search(context.Background(), contract.Params{Query: "nothing"}, contract.Settings{APIURL: fake.URL()})
		assert.Equal(t, "No books found matching your search", out, body)
		assert.Equal(t, 1, fake.Calls(), body)
	}
}

func TestSearchFormatsWrappedResults(t *testing.T) {
	fake := testutil.NewFakeSource(testutil.FakeResponse{
		Body: `{"results":[{"file_path":"a.txt","snippet":"hi","raw_url":"http://x/a b?q=1 2"}]}`,
	})
	defer fake.Close()
	ctrl := newController(t, fake, 0)

	out, err := ctrl.Do(context.Background(), contract.Params{Query: "hi there"}, contract.Settings{APIURL: fake.URL() + "/"})
	require.NoError(t, err)

	assert.Equal(t, validate.ShapeWrapped, out.Payload.Shape)
	assert.Contains(t, out.Report, "Book: a.txt")
	assert.Contains(t, out.Report, "Snippet: hi")
	assert.Contains(t, out.Report, "URL: http://x/a%20b?q=1+2")
	assert.NotContains(t, out.Report, "a b")
	assert.Equal(t, "/search?query=hi%20there", fake.LastRequestURI())
}

func TestSearchFormatsBareArray(t *testing.T) {
	fake := testutil.NewFakeSource(testutil.FakeResponse{
		Body: `[{"file_path":"one.pdf","snippet":"first"},{"file_path":"two.pdf","snippet":"second"}]`,
	})
	defer fake.Close()
	ctrl := newController(t, fake, 0)

	out := ctrl.Search(context.Background(), contract.Params{Query: "q"}, contract.Settings{APIURL: fake.URL()})
	assert.Equal(t, "Book: one.pdf\nSnippet: first\n\n\nBook: two.pdf\nSnippet: second\n", out)
}

func TestSearchStatusError(t *testing.T) {
	fake := testutil.NewFakeSource(testutil.FakeResponse{
		Status:      http.StatusInternalServerError,
		ContentType: "application/json",
		Body:        `{"error":"index missing"}`,
	})
	defer fake.Close()
	ctrl := newController(t, fake, 0)

	out := ctrl.Search(context.Background(), contract.Params{Query: "q"}, contract.Settings{APIURL: fake.URL()})
	assert.True(t, strings.HasPrefix(out, "Error searching books: API request failed with status 500"), out)
	assert.Contains(t, out, `{"error":"index missing"}`)
	assert.NotContains(t, out, "Diagnostics:")
}

func TestSearchStatusErrorWithUnreadableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("trunc"))
	}))
	defer srv.Close()

	ctrl, err := New(sources.NewBookAPI(srv.Client()), Config{Logger: zerolog.Nop()})
	require.NoError(t, err)

	out := ctrl.Search(context.Background(), contract.Params{Query: "q"}, contract.Settings{APIURL: srv.URL})
	assert.True(t, strings.HasPrefix(out, "Error searching books: API request failed with status 500"), out)
}

func TestSearchRejectsNonJSON(t *testing.T) {
	fake := testutil.NewFakeSource(testutil.FakeResponse{ContentType: "text/html", Body: "<html></html>"})
	defer fake.Close()
	ctrl := newController(t, fake, 0)

	out := ctrl.Search(context.Background(), contract.Params{Query: "q"}, contract.Settings{APIURL: fake.URL()})
	assert.Equal(t, "Error searching books: Invalid content type: text/html", out)
}

func TestSearchResultsNotArray(t *testing.T) {
	fake := testutil.NewFakeSource(testutil.FakeResponse{Body: `{"results": 3}`})
	defer fake.Close()
	ctrl := newController(t, fake, 0)

	out := ctrl.Search(context.Background(), contract.Params{Query: "q"}, contract.Settings{APIURL: fake.URL()})
	assert.Equal(t, "Error searching books: Invalid results format. Expected array, got number", out)
}

func TestSearchBadRecordFailsBatch(t *testing.T) {
	fake := testutil.NewFakeSource(testutil.FakeResponse{
		Body: `[{"file_path":"ok.txt","snippet":"fine"},{"snippet":"orphan"}]`,
	})
	defer fake.Close()
	ctrl := newController(t, fake, 0)

	out := ctrl.Search(context.Background(), contract.Params{Query: "q"}, contract.Settings{APIURL: fake.URL()})
	assert.True(t, strings.HasPrefix(out, "Error searching books: Invalid result format - missing required fields"), out)
	assert.NotContains(t, out, "ok.txt")
}

func TestSearchTimeoutDiagnostics(t *testing.T) {
	fake := testutil.NewFakeSource(testutil.FakeResponse{Delay: time.Second, Body: `[]`})
	defer fake.Close()
	ctrl := newController(t, fake, 50*time.Millisecond)

	settings := contract.Settings{APIURL: fake.URL()}
	out := ctrl.Search(context.Background(), contract.Params{Query: "q"}, settings)

	assert.True(t, strings.HasPrefix(out, "Error searching books: "), out)
	assert.Contains(t, out, "Request timed out")
	assert.Contains(t, out, "- The API is running at "+fake.URL())
	assert.Contains(t, out, "- Try enabling proxy in plugin settings")
}

func TestSearchCallerCancellation(t *testing.T) {
	fake := testutil.NewFakeSource(testutil.FakeResponse{Delay: time.Second, Body: `[]`})
	defer fake.Close()
	ctrl := newController(t, fake, 0)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := ctrl.Do(ctx, contract.Params{Query: "q"}, contract.Settings{APIURL: fake.URL()})
	assert.Equal(t, "cancelled", ErrorKind(err))

	out := Diagnose(err, contract.Settings{APIURL: fake.URL()})
	assert.Equal(t, "Error searching books: The request was cancelled before the API answered", out)
}

func TestSearchNetworkDiagnostics(t *testing.T) {
	fake := testutil.NewFakeSource()
	base := fake.URL()
	fake.Close()

	ctrl, err := New(sources.NewBookAPI(nil), Config{Logger: zerolog.Nop()})
	require.NoError(t, err)

	out := ctrl.Search(context.Background(), contract.Params{Query: "q"}, contract.Settings{APIURL: base})
	assert.Contains(t, out, "Diagnostics: Network request failed. Check if:")
	assert.Contains(t, out, "- The API URL ("+base+") is correct")
	assert.Contains(t, out, "- Try enabling proxy in plugin settings to bypass CORS")
	assert.Contains(t, out, "- For debugging, you can add CORS headers in plugin settings")
}

func TestSearchConcurrentCallsAreIndependent(t *testing.T) {
	fake := testutil.NewFakeSource(testutil.FakeResponse{
		Delay: 10 * time.Millisecond,
		Body:  `[{"file_path":"shared.txt","snippet":"s"}]`,
	})
	defer fake.Close()
	ctrl := newController(t, fake, 0)

	var wg sync.WaitGroup
	outs := make([]string, 16)
	for i := range outs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outs[i] = ctrl.Search(context.Background(), contract.Params{Query: fmt.Sprintf("q%d", i)}, contract.Settings{APIURL: fake.URL()})
		}(i)
	}
	wg.Wait()

	for _, out := range outs {
		assert.Equal(t, "Book: shared.txt\nSnippet: s\n", out)
	}
	assert.Equal(t, len(outs), fake.Calls())
}

func TestDiagnoseTimeoutWithProxy(t *testing.T) {
	err := &contract.TimeoutError{Timeout: 10 * time.Second}
	out := Diagnose(err, contract.Settings{APIURL: "http://books.local/", UseProxy: true})

	want := "Error searching books: The request was aborted after 10s" +
		"\n\nDiagnostics: Request timed out. Check if:" +
		"\n- The API is running at http://books.local" +
		"\n- The server is accessible from your network"
	assert.Equal(t, want, out)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "ok", ErrorKind(nil))
	assert.Equal(t, "timeout", ErrorKind(fmt.Errorf("wrapped: %w", &contract.TimeoutError{})))
	assert.Equal(t, "cancelled", ErrorKind(&contract.CancelledError{Err: context.Canceled}))
	assert.Equal(t, "network", ErrorKind(&contract.NetworkError{Err: errors.New("refused")}))
	assert.Equal(t, "shape", ErrorKind(&contract.UpstreamShapeError{Got: "number"}))
	assert.Equal(t, "error", ErrorKind(errors.New("other")))
}
