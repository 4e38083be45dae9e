package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// CommandRunner executes external commands and returns stdout bytes.
type CommandRunner func(ctx context.Context, binary string, args ...string) ([]byte, error)

// FFProbeProvider reads media durations by shelling out to ffprobe.
type FFProbeProvider struct {
	Binary  string
	Run     CommandRunner
	Timeout time.Duration
}

// NewFFProbeProvider constructs a provider that shells out to ffprobe.
func NewFFProbeProvider(binary string, timeout time.Duration) *FFProbeProvider {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FFProbeProvider{
		Binary:  binary,
		Run:     defaultCommandRunner,
		Timeout: timeout,
	}
}

// Duration returns the duration in seconds of the media file at localPath.
func (p *FFProbeProvider) Duration(ctx context.Context, localPath string) (float64, error) {
	if p.Run == nil {
		p.Run = defaultCommandRunner
	}

	execCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		localPath,
	}

	out, err := p.Run(execCtx, p.Binary, args...)
	if err != nil {
		return 0, fmt.Errorf("ffprobe run: %w", err)
	}

	duration, err := parseDuration(out)
	if err != nil {
		return 0, fmt.Errorf("ffprobe output: %w", err)
	}

	return duration, nil
}

func parseDuration(out []byte) (float64, error) {
	var payload struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return 0, fmt.Errorf("parse json: %w", err)
	}

	if payload.Format.Duration == "" {
		return 0, fmt.Errorf("no duration in output")
	}

	duration, err := strconv.ParseFloat(payload.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", payload.Format.Duration, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("negative duration %f", duration)
	}

	return duration, nil
}

func defaultCommandRunner(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.Output()
}
