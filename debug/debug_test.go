package debug

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLoggersEmitUntilCancelled(t *testing.T) {
	var out syncBuffer
	logger := zerolog.New(&out)
	ctx, cancel := context.WithCancel(context.Background())
	StartGoroutineLogger(ctx, 5*time.Millisecond, logger)
	StartMemLogger(ctx, 5*time.Millisecond, logger)

	require.Eventually(t, func() bool {
		s := out.String()
		return strings.Contains(s, `"goroutine-stacks"`) && strings.Contains(s, `"memstats"`)
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
}

func TestResidentSetSize(t *testing.T) {
	rss, err := residentSetSize()
	require.NoError(t, err)
	assert.Positive(t, rss)
}
