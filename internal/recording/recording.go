package recording

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
)

// Config describes the capture format. The defaults produce 16kHz mono
// 16-bit PCM, which every supported provider accepts once wrapped as WAV.
type Config struct {
	SampleRate int
	Channels   int
	Format     string
	BufferSize int
	Device     string
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 16000,
		Channels:   1,
		Format:     "s16le",
		BufferSize: 4096,
	}
}

// Recorder captures microphone audio by reading an external PipeWire
// recorder's stdout. Chunks accumulate in memory while the session is
// active; Stop concatenates them into one WAV payload.
type Recorder struct {
	config    Config
	recording atomic.Bool

	mu     sync.Mutex // guards cmd, cancel and buf
	cmd    *exec.Cmd
	cancel context.CancelFunc
	buf    bytes.Buffer

	wg sync.WaitGroup
}

func NewRecorder(config Config) *Recorder {
	return &Recorder{config: config}
}

func (r *Recorder) IsRecording() bool {
	return r.recording.Load()
}

// Start spawns the capture process. Only one session can be active at a
// time; starting discards any chunks left from a previous session.
func (r *Recorder) Start(ctx context.Context) error {
	if r.recording.Load() {
		return fmt.Errorf("already recording")
	}

	if _, err := exec.LookPath("pw-record"); err != nil {
		return fmt.Errorf("pw-record not found (PipeWire required): %w", err)
	}

	captureCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(captureCtx, "pw-record", r.buildArgs()...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start pw-record: %w", err)
	}

	r.mu.Lock()
	r.cmd = cmd
	r.cancel = cancel
	r.buf.Reset()
	r.mu.Unlock()

	r.recording.Store(true)
	r.wg.Add(1)
	go r.captureLoop(stdout)

	return nil
}

// Stop ends the session and returns the accumulated audio wrapped as one
// WAV payload. An empty session returns an error rather than a silent file.
func (r *Recorder) Stop() ([]byte, error) {
	if !r.recording.Load() {
		return nil, fmt.Errorf("not recording")
	}

	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()

	r.mu.Lock()
	raw := make([]byte, r.buf.Len())
	copy(raw, r.buf.Bytes())
	r.buf.Reset()
	r.mu.Unlock()

	if len(raw) == 0 {
		return nil, fmt.Errorf("no audio captured")
	}
	return r.wrapWAV(raw), nil
}

func (r *Recorder) captureLoop(stdout io.Reader) {
	defer func() {
		r.recording.Store(false)

		r.mu.Lock()
		if r.cmd != nil {
			_ = r.cmd.Wait()
			r.cmd = nil
		}
		r.mu.Unlock()

		r.wg.Done()
	}()

	buffer := make([]byte, r.config.BufferSize)
	for {
		n, readErr := stdout.Read(buffer)
		if n > 0 {
			r.mu.Lock()
			r.buf.Write(buffer[:n])
			r.mu.Unlock()
		}
		if readErr != nil {
			// EOF or a closed pipe after cancellation both end the session.
			return
		}
	}
}

func (r *Recorder) buildArgs() []string {
	args := []string{
		"--format", r.config.Format,
		"--rate", strconv.Itoa(r.config.SampleRate),
		"--channels", strconv.Itoa(r.config.Channels),
	}
	if r.config.Device != "" {
		args = append(args, "--target", r.config.Device)
	}
	args = append(args, "-") // write raw PCM to stdout
	return args
}

// wrapWAV prepends a RIFF/WAVE header describing the configured PCM format.
func (r *Recorder) wrapWAV(rawAudio []byte) []byte {
	var buf bytes.Buffer

	sampleRate := r.config.SampleRate
	channels := r.config.Channels
	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	dataSize := len(rawAudio)
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16)) // fmt chunk size
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // PCM format
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(rawAudio)

	return buf.Bytes()
}
