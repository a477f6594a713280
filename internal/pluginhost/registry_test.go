package pluginhost

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct{ url string }

func (f *fakeStream) Start(ctx context.Context) error { return nil }
func (f *fakeStream) Close() error                    { return nil }
func (f *fakeStream) URL() string                     { return f.url }

type fakeOpener struct{ scheme string }

func (f *fakeOpener) Scheme() string { return f.scheme }
func (f *fakeOpener) Open(ctx context.Context, rawURL string, pull PullCallback) (Stream, error) {
	return &fakeStream{url: rawURL}, nil
}

func TestRegistryInitOnceSharesInstance(t *testing.T) {
	r1 := GlobalRegistry()
	r2 := GlobalRegistry()
	assert.Same(t, r1, r2)
	assert.Equal(t, 2, r1.Refcount())

	ReleaseGlobalRegistry()
	ReleaseGlobalRegistry()
}

func TestRegistryOpenDispatchesByScheme(t *testing.T) {
	r := GlobalRegistry()
	defer ReleaseGlobalRegistry()

	r.Register(&fakeOpener{scheme: "aes67"})

	s, err := r.Open(context.Background(), "aes67", "aes67://239.192.76.52:5004", nil)
	require.NoError(t, err)
	assert.Equal(t, "aes67://239.192.76.52:5004", s.URL())

	_, err = r.Open(context.Background(), "rtp", "rtp://1.2.3.4:9152", nil)
	assert.Error(t, err)
}
