package echomw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faultlinehq/faultline-go/pkg/faultline"
)

type recordTransport struct {
	mu      sync.Mutex
	batches [][]*faultline.Item
}

func (r *recordTransport) PostBatch(ctx context.Context, items []*faultline.Item) (*faultline.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch := make([]*faultline.Item, len(items))
	copy(batch, items)
	r.batches = append(r.batches, batch)
	return &faultline.Response{}, nil
}

func (r *recordTransport) Close() error { return nil }

func (r *recordTransport) items() []*faultline.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*faultline.Item
	for _, b := range r.batches {
		all = append(all, b...)
	}
	return all
}

func newTestClient(t *testing.T) (*faultline.Client, *recordTransport) {
	t.Helper()
	transport := &recordTransport{}
	client, err := faultline.New("tok",
		faultline.WithTransport(transport),
		faultline.WithEnvironment("test"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close(context.Background()) })
	return client, transport
}

func serve(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_PassesThroughSuccess(t *testing.T) {
	client, transport := newTestClient(t)

	e := echo.New()
	e.Use(Middleware(client))
	e.GET("/ok", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	rec := serve(e, "/ok")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, transport.items(), "healthy requests must not be captured")
}

func TestMiddleware_RecoversPanicAsCritical(t *testing.T) {
	client, transport := newTestClient(t)

	e := echo.New()
	e.Use(Middleware(client))
	e.GET("/boom", func(c echo.Context) error {
		panic("handler exploded")
	})

	rec := serve(e, "/boom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	items := transport.items()
	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, faultline.LevelCritical, item.Level)
	require.NotNil(t, item.Body.Trace)
	assert.Contains(t, item.Body.Trace.Exception.Message, "handler exploded")
	assert.Equal(t, "/boom", item.Context)
	require.NotNil(t, item.Request)
	assert.Equal(t, http.MethodGet, item.Request.Method)
}

func TestMiddleware_PanicWithErrorValueKeepsClass(t *testing.T) {
	client, transport := newTestClient(t)
	sentinel := errors.New("db gone")

	e := echo.New()
	e.Use(Middleware(client))
	e.GET("/boom", func(c echo.Context) error {
		panic(sentinel)
	})

	serve(e, "/boom")

	items := transport.items()
	require.Len(t, items, 1)
	assert.Equal(t, "db gone", items[0].Body.Trace.Exception.Message)
}

func TestMiddleware_HandlerErrorsNotCapturedByDefault(t *testing.T) {
	client, transport := newTestClient(t)

	e := echo.New()
	e.Use(Middleware(client))
	e.GET("/fail", func(c echo.Context) error {
		return errors.New("handler failure")
	})

	serve(e, "/fail")

	assert.Empty(t, transport.items())
}

func TestMiddleware_WithCaptureErrors(t *testing.T) {
	client, transport := newTestClient(t)

	e := echo.New()
	e.Use(Middleware(client, WithCaptureErrors()))
	e.GET("/fail", func(c echo.Context) error {
		return errors.New("handler failure")
	})

	serve(e, "/fail")

	items := transport.items()
	require.Len(t, items, 1)
	assert.Equal(t, faultline.LevelError, items[0].Level)
	assert.Contains(t, items[0].Body.Trace.Exception.Message, "handler failure")
}

func TestMiddleware_RouteAndIPAttached(t *testing.T) {
	client, transport := newTestClient(t)

	e := echo.New()
	e.Use(Middleware(client, WithCaptureErrors()))
	e.GET("/users/:id", func(c echo.Context) error {
		return errors.New("lookup failed")
	})

	req := httptest.NewRequest(http.MethodGet, "/users/7", nil)
	req.Header.Set("X-Real-Ip", "203.0.113.9")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	items := transport.items()
	require.Len(t, items, 1)
	assert.Equal(t, "/users/:id", items[0].Context)
	require.NotNil(t, items[0].Request)
	assert.Equal(t, "203.0.113.9", items[0].Request.UserIP)
}

func TestMiddleware_WithPersonFunc(t *testing.T) {
	client, transport := newTestClient(t)

	e := echo.New()
	e.Use(Middleware(client,
		WithCaptureErrors(),
		WithPersonFunc(func(c echo.Context) *faultline.Person {
			return &faultline.Person{ID: "u-42", Username: "gopher"}
		}),
	))
	e.GET("/fail", func(c echo.Context) error {
		return errors.New("handler failure")
	})

	serve(e, "/fail")

	items := transport.items()
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Person)
	assert.Equal(t, "u-42", items[0].Person.ID)
}
