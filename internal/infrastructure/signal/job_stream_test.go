package signal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/internal/core/services"
	"fluvid/internal/fixtures"
	"fluvid/internal/infrastructure/repositories/memory"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingObserver struct {
	opened, closed atomic.Int32
}

func (o *countingObserver) WebSocketOpened() { o.opened.Add(1) }
func (o *countingObserver) WebSocketClosed() { o.closed.Add(1) }

func creator() *domain.User {
	for _, u := range fixtures.Users() {
		if u.User.ID == fixtures.CreatorID {
			user := u.User
			return &user
		}
	}
	return nil
}

func newStreamServer(t *testing.T, delay time.Duration) (*services.JobRunner, *countingObserver, *httptest.Server) {
	t.Helper()

	runner := services.NewJobRunner(memory.NewMemoryJobRepository(), services.JobDelays{Upload: delay}, nil, zap.NewNop().Sugar())
	observer := &countingObserver{}
	stream := NewJobStreamServer(runner, JobStreamConfig{PingInterval: time.Second, AllowedOrigins: []string{"http://localhost:5173"}}, observer, zap.NewNop().Sugar())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := domain.JobID(strings.TrimPrefix(r.URL.Path, "/ws/jobs/"))
		stream.Serve(w, r, creator(), id)
	}))
	t.Cleanup(func() {
		stream.CloseAll()
		server.Close()
		runner.Stop()
	})
	return runner, observer, server
}

func dial(t *testing.T, server *httptest.Server, id domain.JobID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/jobs/" + string(id)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func submitUpload(t *testing.T, runner ports.JobRunner) *domain.Job {
	t.Helper()
	steps := []ports.JobStep{{Label: "Uploading"}, {Label: "Processing"}, {Label: "Publishing"}}
	job, err := runner.Submit(context.Background(), domain.JobUpload, fixtures.CreatorID, "vid_x", steps,
		func(context.Context) (interface{}, *domain.Toast, error) {
			toast := domain.SuccessToast("Upload complete", "")
			return map[string]string{"videoId": "vid_x"}, &toast, nil
		})
	require.NoError(t, err)
	return job
}

func TestJobStream_StreamsUntilDone(t *testing.T) {
	runner, observer, server := newStreamServer(t, 20*time.Millisecond)
	job := submitUpload(t, runner)

	conn := dial(t, server, job.ID)
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first ProgressMessage
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, MessageSnapshot, first.Type)
	assert.Equal(t, job.ID, first.JobID)
	require.NotNil(t, first.Job)

	var last ProgressMessage
	lastProgress := first.Progress
	for {
		var msg ProgressMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.GreaterOrEqual(t, msg.Progress, lastProgress)
		lastProgress = msg.Progress
		if msg.Type == MessageDone {
			last = msg
			break
		}
		assert.Equal(t, MessageProgress, msg.Type)
	}

	assert.Equal(t, domain.JobCompleted, last.Status)
	assert.Equal(t, 100, last.Progress)
	require.NotNil(t, last.Toast)
	assert.Equal(t, "Upload complete", last.Toast.Title)
	require.NotNil(t, last.Job)
	assert.JSONEq(t, `{"videoId":"vid_x"}`, string(last.Job.Result))

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))

	assert.Eventually(t, func() bool { return observer.closed.Load() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), observer.opened.Load())
}

func TestJobStream_FinishedJob(t *testing.T) {
	runner, _, server := newStreamServer(t, 0)
	job := submitUpload(t, runner)

	require.Eventually(t, func() bool {
		j, err := runner.Get(context.Background(), creator(), job.ID)
		return err == nil && j.Status.Terminal()
	}, time.Second, 5*time.Millisecond)

	conn := dial(t, server, job.ID)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var snapshot, done ProgressMessage
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, domain.JobCompleted, snapshot.Status)
	require.NoError(t, conn.ReadJSON(&done))
	assert.Equal(t, MessageDone, done.Type)
}

func TestJobStream_UnknownJob(t *testing.T) {
	_, observer, server := newStreamServer(t, 0)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/jobs/job_missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(0), observer.opened.Load())
}

func TestJobStream_RejectsForeignOrigin(t *testing.T) {
	runner, _, server := newStreamServer(t, 20*time.Millisecond)
	job := submitUpload(t, runner)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/jobs/" + string(job.ID)
	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCheckOrigin(t *testing.T) {
	s := NewJobStreamServer(nil, JobStreamConfig{AllowedOrigins: []string{"https://app.fluvid.com"}}, nil, zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, s.checkOrigin(req))

	req.Header.Set("Origin", "https://APP.fluvid.com")
	assert.True(t, s.checkOrigin(req))

	req.Header.Set("Origin", "https://other.com")
	assert.False(t, s.checkOrigin(req))
}
