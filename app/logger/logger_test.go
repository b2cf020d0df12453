package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestDailyWriter_SwitchWhileWriting(t *testing.T) {
	dir := t.TempDir()
	first := dailyFileName(dir, time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local))
	second := dailyFileName(dir, time.Date(2026, 1, 2, 0, 0, 0, 0, time.Local))
	w := &dailyWriter{lj: &lumberjack.Logger{Filename: first}}
	defer w.lj.Close()

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				_, err := w.Write([]byte(fmt.Sprintf("worker %d line %d\n", i, j)))
				assert.NoError(t, err)
			}
		}()
	}
	require.NoError(t, w.switchTo(second))
	wg.Wait()

	_, err := w.Write([]byte("after switch\n"))
	require.NoError(t, err)
	require.NoError(t, w.lj.Close())

	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(b), "after switch")
	assert.FileExists(t, filepath.Join(dir, "2026-01-02.log"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("debug").String())
	assert.Equal(t, "info", parseLevel("").String())
	assert.Equal(t, "warn", parseLevel("warn").String())
}
