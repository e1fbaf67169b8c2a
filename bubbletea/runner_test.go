package bubbletea_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/fwojciec/jdoc"
	"github.com/fwojciec/jdoc/bubbletea"
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

func TestProgress_StartAndFinish(t *testing.T) {
	t.Parallel()

	var out syncBuffer
	p := bubbletea.NewProgress(1, nil, &out, func() {}, bubbletea.WithRenderer(asciiRenderer()))
	p.Start()

	p.OnEvent(jdoc.Event{Path: "A.java", State: jdoc.StateScanning})
	p.OnEvent(jdoc.Event{Path: "A.java", State: jdoc.StateDone})

	require.NoError(t, p.Finish())
}
