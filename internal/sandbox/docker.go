package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"
)

// DockerExecutor is the strongest isolation level: each batch runs in a
// throwaway container with networking disabled. The image must carry
// this project's binary so the container can serve the same work
// protocol as the process executor (request and result files in the
// mounted work directory).
type DockerExecutor struct {
	Image    string
	Timeout  time.Duration
	MaxSteps uint64
	Grace    time.Duration
}

func (e *DockerExecutor) Execute(ctx context.Context, code string, inputs [][]string) (*Result, error) {
	grace := e.Grace
	if grace <= 0 {
		grace = defaultGrace
	}

	workDir, err := os.MkdirTemp("", "evolvesmith-work-")
	if err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	payload, err := json.Marshal(workRequest{
		Code:      code,
		Inputs:    inputs,
		TimeoutMS: e.Timeout.Milliseconds(),
		MaxSteps:  e.MaxSteps,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding work request: %w", err)
	}
	if err := os.WriteFile(filepath.Join(workDir, "request.json"), payload, 0o644); err != nil {
		return nil, fmt.Errorf("writing work request: %w", err)
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	defer cli.Close()

	initTrue := true
	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{
			{Type: mount.TypeBind, Source: workDir, Target: "/work"},
		},
		Init:        &initTrue,
		NetworkMode: "none",
	}
	containerCfg := &container.Config{
		Image:  e.Image,
		Cmd:    []string{"evolvesmith", "exec", "--in", "/work/request.json", "--out", "/work/result.json"},
		Labels: map[string]string{"evolvesmith": "true"},
	}

	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     containerCfg,
		HostConfig: hostCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("creating container: %w", err)
	}
	containerID := createResp.ID
	defer func() {
		cli.ContainerRemove(context.Background(), containerID, client.ContainerRemoveOptions{Force: true})
	}()

	if _, err := cli.ContainerStart(ctx, containerID, client.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("starting container: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, e.Timeout+grace)
	defer cancel()

	waitResult := cli.ContainerWait(timeoutCtx, containerID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	for {
		select {
		case err := <-waitResult.Error:
			if err != nil {
				cli.ContainerKill(context.Background(), containerID, client.ContainerKillOptions{Signal: "SIGKILL"})
				return nil, &Fault{Kind: FaultTimeout, Detail: "timeout"}
			}
			// nil error means no error on this channel; wait for result
		case status := <-waitResult.Result:
			return e.readResult(workDir, int(status.StatusCode))
		}
	}
}

func (e *DockerExecutor) readResult(workDir string, exitCode int) (*Result, error) {
	data, err := os.ReadFile(filepath.Join(workDir, "result.json"))
	if err != nil {
		return nil, &Fault{Kind: FaultNoResult, Detail: fmt.Sprintf("worker exited with status %d and no result", exitCode)}
	}
	var res workResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, &Fault{Kind: FaultNoResult, Detail: fmt.Sprintf("unreadable work result: %v", err)}
	}
	if res.Fault != "" {
		return nil, &Fault{Kind: FaultKind(res.Fault), Detail: res.Detail}
	}
	if res.Outputs == nil {
		return nil, &Fault{Kind: FaultNoResult, Detail: "worker returned an empty result"}
	}
	return &Result{
		Outputs:  res.Outputs,
		Duration: time.Duration(res.DurationUS) * time.Microsecond,
	}, nil
}
