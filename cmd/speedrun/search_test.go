package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/speedrun/internal/api"
	"github.com/persistorai/speedrun/internal/config"
	"github.com/persistorai/speedrun/internal/domain"
	"github.com/persistorai/speedrun/internal/models"
	"github.com/persistorai/speedrun/internal/service"
	"github.com/persistorai/speedrun/internal/store"
)

// memoryPaths wires the production search pipeline over a small in-memory graph:
// Fish → Water → Ocean, Fish → Sea → Ocean, and an isolated Island.
func memoryPaths(t *testing.T) *service.PathService {
	t.Helper()

	g := store.NewMemoryGraph()

	for _, v := range []models.Vertex{
		{ID: 1, Title: "Fish"}, {ID: 2, Title: "Water"}, {ID: 3, Title: "Ocean"},
		{ID: 4, Title: "Sea"}, {ID: 5, Title: "Island"},
	} {
		if err := g.AddVertex(v); err != nil {
			t.Fatal(err)
		}
	}

	for _, e := range [][2]models.NodeID{{1, 2}, {2, 3}, {1, 4}, {4, 3}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	paths, err := newPathService(g, &config.Config{Workers: 1, BatchSize: 100, TitleCacheSize: 16}, log)
	if err != nil {
		t.Fatalf("newPathService: %v", err)
	}

	return paths
}

func TestRunSearch_Text(t *testing.T) {
	var out strings.Builder

	if err := runSearch(context.Background(), &out, memoryPaths(t), formatText, " Fish ", "Ocean"); err != nil {
		t.Fatalf("runSearch: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, banner, path, and summary lines, got %q", out.String())
	}

	if lines[0] != header {
		t.Errorf("header = %q", lines[0])
	}

	if lines[1] != "[Fish] → [Ocean]" {
		t.Errorf("banner = %q", lines[1])
	}

	if lines[2] != "Fish → Water → Ocean" {
		t.Errorf("path = %q", lines[2])
	}

	if !strings.HasPrefix(lines[3], "2 hops, ") {
		t.Errorf("summary = %q", lines[3])
	}
}

func TestRunSearch_JSON(t *testing.T) {
	var out strings.Builder

	if err := runSearch(context.Background(), &out, memoryPaths(t), formatJSON, "Fish", "Fish"); err != nil {
		t.Fatalf("runSearch: %v", err)
	}

	var res models.SearchResult
	if err := json.Unmarshal([]byte(out.String()), &res); err != nil {
		t.Fatalf("stdout is not a JSON result: %v\n%s", err, out.String())
	}

	if res.Hops != 0 || len(res.Titles) != 1 || res.Titles[0] != "Fish" {
		t.Errorf("self search result = %+v", res)
	}
}

func TestRunSearch_Failures(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     error
		code     int
	}{
		{"unknown source", "Nope", "Ocean", models.ErrNotFound, exitNotFound},
		{"unknown destination", "Fish", "ocean", models.ErrNotFound, exitNotFound},
		{"unreachable", "Fish", "Island", models.ErrUnreachable, exitUnreachable},
		{"wrong direction", "Ocean", "Fish", models.ErrUnreachable, exitUnreachable},
		{"blank title", "  ", "Ocean", models.ErrInvalidTitle, exitUsage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out strings.Builder

			err := runSearch(context.Background(), &out, memoryPaths(t), formatList, tc.from, tc.to)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}

			if code := exitCode(err); code != tc.code {
				t.Errorf("exit code = %d, want %d", code, tc.code)
			}

			if out.Len() != 0 {
				t.Errorf("list format printed output on failure: %q", out.String())
			}
		})
	}
}

func init() {
	gin.SetMode(gin.TestMode)
}

type readyProbe struct{}

func (readyProbe) HealthCheck(context.Context) error             { return nil }
func (readyProbe) AppliedVersion(context.Context) (int64, error) { return 1, nil }

func TestExecute_RemoteServer(t *testing.T) {
	isolate(t)

	log := logrus.New()
	log.SetOutput(io.Discard)

	h, err := api.NewRouter(&api.RouterDeps{
		Log:           log,
		Paths:         memoryPaths(t),
		Probe:         readyProbe{},
		SchemaVersion: 1,
		CORSOrigins:   []string{"http://localhost:3000"},
		RateLimit:     1000,
		Version:       "test",
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{"found", []string{"--server", srv.URL, "--format", "list", "Fish", "Ocean"}, exitOK, "1. Fish\n2. Water\n3. Ocean\n"},
		{"not found", []string{"--server", srv.URL, "--format", "list", "Fish", "Atlantis"}, exitNotFound, ""},
		{"unreachable", []string{"--server", srv.URL, "--format", "list", "Fish", "Island"}, exitUnreachable, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, stdout, stderr := run(t, tc.args...)
			if code != tc.wantCode {
				t.Fatalf("exit code = %d, want %d (stderr: %s)", code, tc.wantCode, stderr)
			}

			if stdout != tc.wantOut {
				t.Errorf("stdout = %q, want %q", stdout, tc.wantOut)
			}
		})
	}

	t.Run("server from environment", func(t *testing.T) {
		t.Setenv(serverKey, srv.URL)

		code, stdout, _ := run(t, "Fish", "Ocean")
		if code != exitOK || !strings.HasPrefix(stdout, header+"\n[Fish] → [Ocean]\nFish → Water → Ocean\n") {
			t.Errorf("code %d, stdout %q", code, stdout)
		}
	})

	t.Run("text summary carries server elapsed time", func(t *testing.T) {
		slow, err := api.NewRouter(&api.RouterDeps{
			Log:           log,
			Paths:         slowPaths{PathFinder: memoryPaths(t), delay: 50 * time.Millisecond},
			Probe:         readyProbe{},
			SchemaVersion: 1,
			CORSOrigins:   []string{"http://localhost:3000"},
			RateLimit:     1000,
			Version:       "test",
		})
		if err != nil {
			t.Fatalf("NewRouter: %v", err)
		}

		slowSrv := httptest.NewServer(slow)
		t.Cleanup(slowSrv.Close)

		code, stdout, stderr := run(t, "--server", slowSrv.URL, "Fish", "Ocean")
		if code != exitOK {
			t.Fatalf("exit code = %d (stderr: %s)", code, stderr)
		}

		if !strings.HasSuffix(stdout, "in 50ms\n") {
			t.Errorf("stdout = %q, want summary ending in 50ms", stdout)
		}
	})
}

// slowPaths reports every search as having taken delay.
type slowPaths struct {
	domain.PathFinder
	delay time.Duration
}

func (s slowPaths) FindPath(ctx context.Context, from, to string) (*models.SearchResult, error) {
	res, err := s.PathFinder.FindPath(ctx, from, to)
	if err != nil {
		return nil, err
	}

	res.Elapsed = s.delay
	res.ElapsedSeconds = s.delay.Seconds()

	return res, nil
}
