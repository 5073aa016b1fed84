package progress_test

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kryptorfile/kryptor/progress"
)

func TestNopSinkDiscardsEvents(t *testing.T) {
	var sink progress.NopSink
	require.NotPanics(t, func() {
		sink.FileStarted("a")
		sink.FileCompleted("a", "a.kryptor")
		sink.FileFailed("a", errors.New("boom"))
	})
}

func TestConsoleSinkFileStarted(t *testing.T) {
	var buf bytes.Buffer
	sink := progress.NewConsoleSink(&buf)
	sink.FileStarted("input.txt")
	require.Equal(t, "processing input.txt\n", buf.String())
}

func TestConsoleSinkFileCompleted(t *testing.T) {
	var buf bytes.Buffer
	sink := progress.NewConsoleSink(&buf)
	sink.FileCompleted("input.txt", "input.txt.kryptor")
	require.Equal(t, "done input.txt -> input.txt.kryptor\n", buf.String())
}

func TestConsoleSinkFileFailed(t *testing.T) {
	var buf bytes.Buffer
	sink := progress.NewConsoleSink(&buf)
	sink.FileFailed("input.txt", errors.New("tampered or wrong key"))
	require.Equal(t, "failed input.txt: tampered or wrong key\n", buf.String())
}

func TestConsoleSinkSerialisesConcurrentWriters(t *testing.T) {
	var buf bytes.Buffer
	sink := progress.NewConsoleSink(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sink.FileStarted(fmt.Sprintf("file-%d", i))
		}(i)
	}
	wg.Wait()

	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	require.Equal(t, 50, lines)
}
