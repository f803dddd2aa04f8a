package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/flipseven-go/internal/api"
	"github.com/mcoot/flipseven-go/internal/factory"
	"github.com/mcoot/flipseven-go/internal/testutil"
	"github.com/mcoot/flipseven-go/internal/transport/tcp"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath  string
	historyFile string
}

func newCLIRunner(t *testing.T) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "flipseven-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/flipseven")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath:  binaryPath,
		historyFile: filepath.Join(t.TempDir(), "games.json"),
	}
}

// run executes the CLI against the temp history file and returns stdout
func (r *cliRunner) run(stdin string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--store", factory.StorageTypeFile,
		"--history-file", r.historyFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = append(os.Environ(), "FLIP7_STORE=", "FLIP7_OUTPUT=")
	output, err := cmd.Output()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer runs the HTTP API and the TCP lobby the way cmd/server does
type testServer struct {
	httpURL   string
	lobbyAddr string
	shutdown  func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := testutil.NopLogger()
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		Storage:         app.Storage,
		GameController:  app.GameController,
		LobbyController: app.LobbyController,
		Random:          app.Random,
	})
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)

	httpConfig := api.DefaultServerConfig()
	httpConfig.Host = "127.0.0.1"
	httpConfig.Port = 0
	server := api.NewServer(mux, httpConfig, logger)
	require.NoError(t, server.Listen())
	go func() {
		if err := server.Serve(); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	lobbyConfig := tcp.DefaultServerConfig()
	lobbyConfig.Addr = "127.0.0.1:0"
	lobby := tcp.NewServer(lobbyConfig, app.LobbyController, app.GameController, logger)
	require.NoError(t, lobby.Listen())
	go func() { _ = lobby.Serve() }()

	serverURL := "http://" + server.Addr()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		httpURL:   serverURL,
		lobbyAddr: lobby.Addr(),
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = lobby.Shutdown(ctx)
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type standingResponse struct {
	Name       string `json:"name"`
	TotalScore int    `json:"total_score"`
}

type summaryResponse struct {
	ID        string             `json:"id"`
	Rounds    int                `json:"rounds"`
	Standings []standingResponse `json:"standings"`
	Winner    *standingResponse  `json:"winner"`
}

type roundResponse struct {
	ID          int64  `json:"id"`
	GameID      string `json:"game_id"`
	RoundNumber int    `json:"round_number"`
	NumPlayers  int    `json:"num_players"`
	Players     []struct {
		Name       string `json:"name"`
		RoundScore int    `json:"round_score"`
		TotalScore int    `json:"total_score"`
	} `json:"players"`
}

type roundListResponse struct {
	Rounds []roundResponse `json:"rounds"`
	Count  int             `json:"count"`
}

type lobbyResponse struct {
	State   string `json:"state"`
	Members []struct {
		Label string `json:"label"`
	} `json:"members"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Tests

func TestCLI_SimulateAndHistory(t *testing.T) {
	cli := newCLIRunner(t)

	output, err := cli.run("", "simulate", "--players", "3", "--seed", "2024")
	require.NoError(t, err, "output: %s", output)

	var summary summaryResponse
	require.NoError(t, json.Unmarshal([]byte(output), &summary))
	require.Len(t, summary.Standings, 3)
	require.NotNil(t, summary.Winner)
	assert.GreaterOrEqual(t, summary.Winner.TotalScore, 200)
	assert.Equal(t, summary.Standings[0], *summary.Winner)

	// The history file survives across processes
	_, err = os.Stat(cli.historyFile)
	require.NoError(t, err)

	output, err = cli.run("", "history", "list")
	require.NoError(t, err, "output: %s", output)
	var list roundListResponse
	require.NoError(t, json.Unmarshal([]byte(output), &list))
	require.Equal(t, summary.Rounds, list.Count)

	last := list.Rounds[len(list.Rounds)-1]
	assert.Equal(t, summary.ID, last.GameID)
	assert.Equal(t, summary.Rounds, last.RoundNumber)
	for _, p := range last.Players {
		if p.Name == summary.Winner.Name {
			assert.Equal(t, summary.Winner.TotalScore, p.TotalScore)
		}
	}

	output, err = cli.run("", "history", "show", "1")
	require.NoError(t, err, "output: %s", output)
	var first roundResponse
	require.NoError(t, json.Unmarshal([]byte(output), &first))
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, 3, first.NumPlayers)

	output, err = cli.run("", "history", "clear")
	require.NoError(t, err, "output: %s", output)
	var msg messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Equal(t, "History cleared", msg.Message)

	output, err = cli.run("", "history", "list")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(output), &list))
	assert.Equal(t, 0, list.Count)
}

func TestCLI_SimulateSeedReproducible(t *testing.T) {
	cli := newCLIRunner(t)

	first, err := cli.run("", "--store", "memory", "simulate", "--seed", "99", "--strategy", "random")
	require.NoError(t, err)
	second, err := cli.run("", "--store", "memory", "simulate", "--seed", "99", "--strategy", "random")
	require.NoError(t, err)

	var a, b summaryResponse
	require.NoError(t, json.Unmarshal([]byte(first), &a))
	require.NoError(t, json.Unmarshal([]byte(second), &b))
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Standings, b.Standings)
}

func TestCLI_InvalidArguments(t *testing.T) {
	cli := newCLIRunner(t)

	_, err := cli.run("", "simulate", "--strategy", "cheat")
	assert.Error(t, err)

	_, err = cli.run("", "history", "show", "nope")
	assert.Error(t, err)

	_, err = cli.run("", "--store", "tape", "history", "list")
	assert.Error(t, err)
}

func TestCLI_ServerCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t)

	output, err := cli.run("", "--server", ts.httpURL, "health")
	require.NoError(t, err, "output: %s", output)
	var health healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &health))
	assert.Equal(t, "ok", health.Status)

	output, err = cli.run("", "--server", ts.httpURL, "simulate", "--remote")
	require.NoError(t, err, "output: %s", output)
	var summary summaryResponse
	require.NoError(t, json.Unmarshal([]byte(output), &summary))
	assert.Len(t, summary.Standings, 2)
}

func TestCLI_JoinLobby(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t)

	// Hold a seat open so the lobby has someone in it while the CLI joins
	conn, err := net.Dial("tcp", ts.lobbyAddr)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	_, err = conn.Write([]byte("NAME Bob\n"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		output, err := cli.run("", "--server", ts.httpURL, "lobby")
		if err != nil {
			return false
		}
		var lobby lobbyResponse
		if json.Unmarshal([]byte(output), &lobby) != nil {
			return false
		}
		return len(lobby.Members) == 1 && lobby.Members[0].Label == "Bob"
	}, 5*time.Second, 50*time.Millisecond)

	output, err := cli.run("NAME Ann\nREADY\n", "join", ts.lobbyAddr)
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, "J2")
	assert.Contains(t, output, "Ann est READY")
	assert.Contains(t, output, "Bye")

	output, err = cli.run("", "--server", ts.httpURL, "lobby")
	require.NoError(t, err)
	var lobby lobbyResponse
	require.NoError(t, json.Unmarshal([]byte(output), &lobby))
	assert.Equal(t, "waiting", lobby.State)
	require.Len(t, lobby.Members, 1)
}
