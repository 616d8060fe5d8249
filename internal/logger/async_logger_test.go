// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

// blockingWriter holds every Write until release is closed.
type blockingWriter struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	started chan struct{}
	once    sync.Once
	release chan struct{}
}

func newBlockingWriter() *blockingWriter {
	return &blockingWriter{started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingWriter) Write(p []byte) (int, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *blockingWriter) Close() error { return nil }

func TestAsyncLogger_WriteAndClose(t *testing.T) {
	// Arrange
	logPath := filepath.Join(t.TempDir(), "test.log")
	lj := &lumberjack.Logger{Filename: logPath}
	asyncLogger := NewAsyncLogger(lj, 10)

	// Act
	fmt.Fprintln(asyncLogger, "message 1")
	fmt.Fprintln(asyncLogger, "message 2")
	fmt.Fprintln(asyncLogger, "message 3")
	err := asyncLogger.Close()

	// Assert
	require.NoError(t, err)
	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	expected := "message 1\nmessage 2\nmessage 3\n"
	assert.Equal(t, expected, string(content))
}

func TestAsyncLogger_DropMessageWhenBufferFull(t *testing.T) {
	// Arrange
	w := newBlockingWriter()
	asyncLogger := NewAsyncLogger(w, 1)
	fmt.Fprintln(asyncLogger, "message 1")
	<-w.started // message 1 is held by the writer goroutine.

	// Act
	fmt.Fprintln(asyncLogger, "message 2") // fills the buffer.
	fmt.Fprintln(asyncLogger, "message 3") // dropped.
	close(w.release)
	err := asyncLogger.Close()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "message 1\nmessage 2\n", w.buf.String())
}

func TestAsyncLogger_WriteAfterClose(t *testing.T) {
	asyncLogger := NewAsyncLogger(&lumberjack.Logger{Filename: filepath.Join(t.TempDir(), "test.log")}, 1)
	require.NoError(t, asyncLogger.Close())

	_, err := fmt.Fprintln(asyncLogger, "late")

	assert.ErrorIs(t, err, os.ErrClosed)
	assert.NoError(t, asyncLogger.Close())
}
