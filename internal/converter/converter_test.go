package converter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impact-service/pkg/config"
)

func newTestClient(srv *httptest.Server, attempts int) *HTTPClient {
	return NewHTTPClient(&config.ConverterConfig{
		PDFDomain:     srv.URL,
		PPTDomain:     srv.URL + "/convert-ppt?v=1",
		DOCDomain:     srv.URL + "/convert-doc?v=1",
		Timeout:       5 * time.Second,
		RetryAttempts: attempts,
		RetryBackoff:  time.Millisecond,
	})
}

func TestHTMLToPDFEscapesSourceURL(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.Query().Get("url")
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	client := newTestClient(srv, 1)
	data, err := client.HTMLToPDF(context.Background(), "https://api.example.org/fetch?report_id=rep 1&x=y")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), data)
	assert.Equal(t, "https://api.example.org/fetch?report_id=rep 1&x=y", gotURL)
}

func TestHTMLToPPTSendsTemplateParams(t *testing.T) {
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte("pptx"))
	}))
	defer srv.Close()

	client := newTestClient(srv, 1)
	_, err := client.HTMLToPPT(context.Background(), "tenant-a", "story/page.html", "deck.pptx")
	require.NoError(t, err)
	assert.Equal(t, []string{"tenant-a"}, query["path_name"])
	assert.Equal(t, []string{"story/page.html"}, query["html_name"])
	assert.Equal(t, []string{"deck.pptx"}, query["template_file"])
}

func TestNon200IsErrBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conversion blew up", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv, 1)
	_, err := client.HTMLToPDF(context.Background(), "https://api.example.org/fetch")
	require.ErrorIs(t, err, ErrBadStatus)
	assert.Contains(t, err.Error(), "conversion blew up")
}

func TestRetriesUntilSuccess(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := newTestClient(srv, 3)
	data, err := client.HTMLToDOC(context.Background(), "rep-1", "rep-1.html")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	assert.Equal(t, 3, calls)
}

func TestRetryBudgetExhausted(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(srv, 2)
	_, err := client.HTMLToPDF(context.Background(), "https://api.example.org/fetch")
	require.ErrorIs(t, err, ErrBadStatus)
	assert.Equal(t, 2, calls)
}

func TestSingleAttemptNeverRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(srv, 0) // below the floor of one attempt
	_, err := client.HTMLToPDF(context.Background(), "https://api.example.org/fetch")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
