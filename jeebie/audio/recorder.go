package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

const recorderQueue = 64

// Recorder writes everything the bridge plays to a WAV file. Buffers are
// handed over through a bounded queue and encoded on the recorder's own
// goroutine; when the queue is full the buffer is dropped and counted.
type Recorder struct {
	file    afero.File
	enc     *wav.Encoder
	chunks  chan []int16
	done    chan struct{}
	closeMu sync.Once
	dropped atomic.Int64
	err     error
}

// NewRecorder creates path on fsys and starts the writer goroutine.
func NewRecorder(fsys afero.Fs, path string) (*Recorder, error) {
	f, err := fsys.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording %s: %w", path, err)
	}
	r := &Recorder{
		file:   f,
		enc:    wav.NewEncoder(f, SampleRate, 16, ChannelCount, 1),
		chunks: make(chan []int16, recorderQueue),
		done:   make(chan struct{}),
	}
	go r.run()
	return r, nil
}

// Push implements Tap.
func (r *Recorder) Push(samples []int16) {
	chunk := make([]int16, len(samples))
	copy(chunk, samples)
	select {
	case r.chunks <- chunk:
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns how many buffers were lost to a full queue.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops the writer, finalizes the WAV header and closes the file.
// Push must not be called afterwards.
func (r *Recorder) Close() error {
	r.closeMu.Do(func() {
		close(r.chunks)
		<-r.done
		if err := r.enc.Close(); err != nil && r.err == nil {
			r.err = fmt.Errorf("finalize recording: %w", err)
		}
		if err := r.file.Close(); err != nil && r.err == nil {
			r.err = fmt.Errorf("close recording: %w", err)
		}
		if n := r.dropped.Load(); n > 0 {
			slog.Warn("Audio recording dropped buffers", "count", n)
		}
	})
	return r.err
}

func (r *Recorder) run() {
	defer close(r.done)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: ChannelCount, SampleRate: SampleRate},
		SourceBitDepth: 16,
	}
	for chunk := range r.chunks {
		if r.err != nil {
			continue
		}
		if cap(buf.Data) < len(chunk) {
			buf.Data = make([]int, len(chunk))
		}
		buf.Data = buf.Data[:len(chunk)]
		for i, s := range chunk {
			buf.Data[i] = int(s)
		}
		if err := r.enc.Write(buf); err != nil {
			r.err = fmt.Errorf("write recording: %w", err)
		}
	}
}
