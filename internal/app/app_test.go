package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/internal/infrastructure/signal"
	"fluvid/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Toast *domain.Toast   `json:"toast"`
}

type errorBody struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details"`
	Toast   domain.Toast           `json:"toast"`
}

type testApp struct {
	t   *testing.T
	app *App
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.Gzip = false
	cfg.Simulation.UploadStepDelay = 0
	cfg.Simulation.ImportStepDelay = 0
	cfg.Simulation.ScanStepDelay = 0
	cfg.Simulation.SchedulerInterval = 10 * time.Millisecond

	a, err := New(cfg, zaptest.NewLogger(t), WithRegistry(prometheus.NewRegistry()), WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, a.Close(context.Background()))
	})
	return &testApp{t: t, app: a}
}

func (ta *testApp) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	ta.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ta.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ta.app.Router().ServeHTTP(w, req)
	return w
}

func (ta *testApp) login(email, password string) string {
	ta.t.Helper()
	w := ta.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(ta.t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Tokens struct {
			AccessToken string `json:"accessToken"`
		} `json:"tokens"`
	}
	decodeData(ta.t, w, &resp)
	return resp.Tokens.AccessToken
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) *domain.Toast {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if v != nil {
		require.NoError(t, json.Unmarshal(env.Data, v))
	}
	return env.Toast
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func (ta *testApp) waitJob(token string, id domain.JobID) domain.Job {
	ta.t.Helper()
	var job domain.Job
	require.Eventually(ta.t, func() bool {
		w := ta.do(http.MethodGet, "/api/v1/jobs/"+string(id), token, nil)
		if w.Code != http.StatusOK {
			return false
		}
		decodeData(ta.t, w, &job)
		return job.Status.Terminal()
	}, 2*time.Second, 10*time.Millisecond)
	return job
}

func TestAPI_Login(t *testing.T) {
	ta := newTestApp(t)

	w := ta.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "creator@fluvid.com", "password": "creator123"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		User        domain.User         `json:"user"`
		Permissions []domain.Permission `json:"permissions"`
	}
	toast := decodeData(t, w, &resp)
	assert.Equal(t, domain.UserID("usr_creator"), resp.User.ID)
	assert.Contains(t, resp.Permissions, domain.PermUploadVideo)
	assert.NotContains(t, resp.Permissions, domain.PermManageUsers)
	require.NotNil(t, toast)
	assert.Equal(t, "Welcome back, Casey Creator!", toast.Title)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAPI_LoginFailure(t *testing.T) {
	ta := newTestApp(t)

	w := ta.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "creator@fluvid.com", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeErr(t, w)
	assert.Equal(t, domain.ToastError, body.Toast.Level)
	assert.Equal(t, "Login failed", body.Toast.Title)

	w = ta.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "creator@fluvid.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_Register(t *testing.T) {
	ta := newTestApp(t)

	w := ta.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "New Person", "email": "new@fluvid.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		User domain.User `json:"user"`
	}
	toast := decodeData(t, w, &resp)
	assert.Equal(t, domain.RoleCreator, resp.User.Role)
	assert.Equal(t, "Account created", toast.Title)

	w = ta.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Dup", "email": "CREATOR@fluvid.com", "password": "secret123",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Registration failed", decodeErr(t, w).Toast.Title)
}

func TestAPI_LogoutRevokesToken(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login("viewer@fluvid.com", "viewer123")

	require.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/api/v1/auth/me", token, nil).Code)

	w := ta.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Signed out", decodeData(t, w, nil).Title)

	assert.Equal(t, http.StatusUnauthorized, ta.do(http.MethodGet, "/api/v1/auth/me", token, nil).Code)
}

func TestAPI_Refresh(t *testing.T) {
	ta := newTestApp(t)

	w := ta.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "admin@fluvid.com", "password": "admin123"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Tokens struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"tokens"`
	}
	decodeData(t, w, &resp)

	w = ta.do(http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refreshToken": resp.Tokens.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	var pair struct {
		AccessToken string `json:"accessToken"`
	}
	decodeData(t, w, &pair)
	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/api/v1/auth/me", pair.AccessToken, nil).Code)

	w = ta.do(http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refreshToken": resp.Tokens.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_RequiresAuth(t *testing.T) {
	ta := newTestApp(t)
	for _, path := range []string{"/api/v1/videos", "/api/v1/dashboard", "/api/v1/permissions", "/api/v1/jobs"} {
		assert.Equal(t, http.StatusUnauthorized, ta.do(http.MethodGet, path, "", nil).Code, path)
	}
}

func TestAPI_PermissionGating(t *testing.T) {
	ta := newTestApp(t)
	viewer := ta.login("viewer@fluvid.com", "viewer123")

	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/api/v1/videos", viewer, nil).Code)
	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/api/v1/dashboard", viewer, nil).Code)
	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/api/v1/profile", viewer, nil).Code)

	denied := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/videos/upload"},
		{http.MethodGet, "/api/v1/analytics/overview"},
		{http.MethodGet, "/api/v1/series"},
		{http.MethodGet, "/api/v1/profile/monetization"},
		{http.MethodDelete, "/api/v1/videos/vid_001"},
	}
	for _, d := range denied {
		w := ta.do(d.method, d.path, viewer, gin.H{})
		assert.Equal(t, http.StatusForbidden, w.Code, d.path)
		assert.Equal(t, domain.ToastError, decodeErr(t, w).Toast.Level)
	}
}

func TestAPI_Permissions(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login("viewer@fluvid.com", "viewer123")

	w := ta.do(http.MethodGet, "/api/v1/permissions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Table   map[string][]string `json:"table"`
		Granted []string            `json:"granted"`
		Role    string              `json:"role"`
	}
	decodeData(t, w, &resp)
	assert.Equal(t, "viewer", resp.Role)
	assert.ElementsMatch(t, []string{"view_dashboard", "view_videos", "manage_settings"}, resp.Granted)
	assert.Equal(t, []string{"admin"}, resp.Table["manage_users"])
}

func TestAPI_VideoListFilters(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login("creator@fluvid.com", "creator123")

	var videos []domain.Video
	w := ta.do(http.MethodGet, "/api/v1/videos?privacy=private", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &videos)
	require.Len(t, videos, 1)
	assert.Equal(t, domain.VideoID("vid_005"), videos[0].ID)

	w = ta.do(http.MethodGet, "/api/v1/videos?sort=views", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &videos)
	require.Len(t, videos, 6)
	assert.Equal(t, domain.VideoID("vid_003"), videos[0].ID)
	for _, v := range videos {
		assert.Equal(t, domain.UserID("usr_creator"), v.OwnerID)
	}

	w = ta.do(http.MethodGet, "/api/v1/videos?interactive=true&tag=story", token, nil)
	decodeData(t, w, &videos)
	require.Len(t, videos, 1)

	for _, q := range []string{"sort=bogus", "privacy=secret", "interactive=maybe", "status=gone"} {
		w = ta.do(http.MethodGet, "/api/v1/videos?"+q, token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestAPI_VideoOwnership(t *testing.T) {
	ta := newTestApp(t)
	creator := ta.login("creator@fluvid.com", "creator123")
	admin := ta.login("admin@fluvid.com", "admin123")

	assert.Equal(t, http.StatusNotFound, ta.do(http.MethodGet, "/api/v1/videos/vid_007", creator, nil).Code)
	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/api/v1/videos/vid_001", admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, ta.do(http.MethodGet, "/api/v1/videos/vid_missing", admin, nil).Code)
}

func TestAPI_UpdateAndDeleteVideo(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login("creator@fluvid.com", "creator123")

	w := ta.do(http.MethodPatch, "/api/v1/videos/vid_002", token, gin.H{"title": "Renamed", "privacy": "unlisted"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var video domain.Video
	assert.Equal(t, "Video saved", decodeData(t, w, &video).Title)
	assert.Equal(t, "Renamed", video.Title)
	assert.Equal(t, domain.PrivacyUnlisted, video.Privacy)

	w = ta.do(http.MethodPatch, "/api/v1/videos/vid_002", token, gin.H{"title": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "title", decodeErr(t, w).Details["field"])

	require.Equal(t, http.StatusOK, ta.do(http.MethodDelete, "/api/v1/videos/vid_002", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, ta.do(http.MethodGet, "/api/v1/videos/vid_002", token, nil).Code)
}

func TestAPI_UploadCompletesJob(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login("creator@fluvid.com", "creator123")

	w := ta.do(http.MethodPost, "/api/v1/videos/upload", token, gin.H{"fileName": "holiday.mp4", "sizeBytes": 50 << 20})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var resp struct {
		Video domain.Video `json:"video"`
		Job   domain.Job   `json:"job"`
	}
	toast := decodeData(t, w, &resp)
	assert.Equal(t, domain.ToastInfo, toast.Level)
	assert.Equal(t, "holiday", resp.Video.Title)
	assert.Equal(t, domain.VideoProcessing, resp.Video.Status)

	job := ta.waitJob(token, resp.Job.ID)
	assert.Equal(t, domain.JobCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)

	var video domain.Video
	w = ta.do(http.MethodGet, "/api/v1/videos/"+string(resp.Video.ID), token, nil)
	decodeData(t, w, &video)
	assert.Equal(t, domain.VideoReady, video.Status)
	assert.NotEmpty(t, video.Duration)

	w = ta.do(http.MethodPost, "/api/v1/videos/upload", token, gin.H{"fileName": "notes.txt", "sizeBytes": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_ImportAndScan(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login("creator@fluvid.com", "creator123")

	w := ta.do(http.MethodPost, "/api/v1/videos/import", token, gin.H{"url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var imported struct {
		Job domain.Job `json:"job"`
	}
	decodeData(t, w, &imported)
	assert.Equal(t, domain.JobCompleted, ta.waitJob(token, imported.Job.ID).Status)

	w = ta.do(http.MethodPost, "/api/v1/videos/import", token, gin.H{"url": "https://example.com/video"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ta.do(http.MethodPost, "/api/v1/videos/vid_001/copyright-scan", token, nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	var scan struct {
		Job domain.Job `json:"job"`
	}
	decodeData(t, w, &scan)
	job := ta.waitJob(token, scan.Job.ID)
	assert.JSONEq(t, `{"issues":0,"message":"no issues found"}`, string(job.Result))
}

func TestAPI_Chapters(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login("creator@fluvid.com", "creator123")

	w := ta.do(http.MethodPost, "/api/v1/videos/vid_001/chapters", token, gin.H{"title": "Wrap up", "time": "05:00"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var video domain.Video
	assert.Equal(t, "Chapter added", decodeData(t, w, &video).Title)

	starts := make([]string, 0, len(video.Chapters))
	for _, ch := range video.Chapters {
		starts = append(starts, ch.Start)
	}
	assert.Equal(t, []string{"00:00", "02:15", "05:00", "07:40"}, starts)

	for _, bad := range []string{"5:00:00", "12:60", "20:00", "02:15"} {
		w = ta.do(http.MethodPost, "/api/v1/videos/vid_001/chapters", token, gin.H{"title": "x", "time": bad})
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}

	w = ta.do(http.MethodDelete, "/api/v1/videos/vid_001/chapters/ch_002", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &video)
	assert.Len(t, video.Chapters, 3)
}

func TestAPI_Series(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login("creator@fluvid.com", "creator123")

	w := ta.do(http.MethodPost, "/api/v1/series", token, gin.H{"title": "Night Shoots", "monetization": "pay-per-view", "price": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ta.do(http.MethodPost, "/api/v1/series", token, gin.H{"title": "Night Shoots", "monetization": "subscription", "price": 9.99})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var series domain.Series
	decodeData(t, w, &series)
	assert.Equal(t, 0.0, series.Price)
	assert.Equal(t, domain.StatusDraft, series.Status)

	w = ta.do(http.MethodPost, "/api/v1/series/"+string(series.ID)+"/seasons", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decodeData(t, w, &series)
	require.Len(t, series.Seasons, 1)
	assert.Equal(t, "Season 1", series.Seasons[0].Title)

	path := "/api/v1/series/" + string(series.ID) + "/seasons/" + string(series.Seasons[0].ID) + "/episodes"
	w = ta.do(http.MethodPost, path, token, gin.H{"title": "Pilot", "videoId": "vid_001"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decodeData(t, w, &series)
	episode := series.Seasons[0].Episodes[0]
	assert.Equal(t, "12:34", episode.Duration)

	schedule := "/api/v1/series/" + string(series.ID) + "/episodes/" + string(episode.ID) + "/schedule"
	w = ta.do(http.MethodPost, schedule, token, gin.H{"releaseAt": time.Now().Add(-time.Hour)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ta.do(http.MethodPost, schedule, token, gin.H{"releaseAt": time.Now().Add(48 * time.Hour)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &series)
	assert.Equal(t, domain.StatusScheduled, series.Seasons[0].Episodes[0].Status)

	var list []domain.Series
	w = ta.do(http.MethodGet, "/api/v1/series?monetization=subscription", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &list)
	for _, s := range list {
		assert.Equal(t, domain.MonetizationSubscription, s.Monetization)
	}
	assert.Equal(t, http.StatusBadRequest, ta.do(http.MethodGet, "/api/v1/series?status=archived", token, nil).Code)
}

func TestAPI_Analytics(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login("creator@fluvid.com", "creator123")

	w := ta.do(http.MethodGet, "/api/v1/analytics/overview?range=7d", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var overview domain.AnalyticsOverview
	decodeData(t, w, &overview)
	assert.Equal(t, "7d", overview.Range)
	assert.Len(t, overview.Daily, 7)
	assert.LessOrEqual(t, len(overview.TopVideos), 5)

	assert.Equal(t, http.StatusBadRequest, ta.do(http.MethodGet, "/api/v1/analytics/overview?range=1y", token, nil).Code)

	w = ta.do(http.MethodGet, "/api/v1/analytics/videos/vid_001", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats domain.VideoAnalytics
	decodeData(t, w, &stats)
	assert.Equal(t, int64(15420), stats.Views)
}

func TestAPI_Dashboard(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login("creator@fluvid.com", "creator123")

	w := ta.do(http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dash domain.Dashboard
	decodeData(t, w, &dash)
	assert.Equal(t, 6, dash.VideoCount)
	assert.LessOrEqual(t, len(dash.RecentVideos), 5)
}

func TestAPI_ProfileUpdateRewritesSession(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login("creator@fluvid.com", "creator123")

	w := ta.do(http.MethodPatch, "/api/v1/profile", token, gin.H{"name": "Casey C."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ta.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	var me struct {
		User domain.User `json:"user"`
	}
	decodeData(t, w, &me)
	assert.Equal(t, "Casey C.", me.User.Name)

	w = ta.do(http.MethodPatch, "/api/v1/profile", token, gin.H{"email": "admin@fluvid.com"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAPI_Monetization(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login("creator@fluvid.com", "creator123")

	w := ta.do(http.MethodPut, "/api/v1/profile/monetization", token, gin.H{"enabled": true, "payoutEmail": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ta.do(http.MethodPut, "/api/v1/profile/monetization", token, gin.H{
		"enabled": true, "adsEnabled": true, "subscriptionPrice": 4.99, "payoutEmail": "pay@fluvid.com",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ta.do(http.MethodGet, "/api/v1/profile/monetization", token, nil)
	var settings domain.MonetizationSettings
	decodeData(t, w, &settings)
	assert.Equal(t, "pay@fluvid.com", settings.PayoutEmail)

	w = ta.do(http.MethodPost, "/api/v1/profile/monetization/check", token, nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	var resp struct {
		Job domain.Job `json:"job"`
	}
	decodeData(t, w, &resp)
	job := ta.waitJob(token, resp.Job.ID)

	var result domain.MonetizationCheckResult
	require.NoError(t, json.Unmarshal(job.Result, &result))
	assert.True(t, result.Eligible)
}

func TestAPI_JobsAreOwnerScoped(t *testing.T) {
	ta := newTestApp(t)
	creator := ta.login("creator@fluvid.com", "creator123")
	other := ta.login("viewer@fluvid.com", "viewer123")

	w := ta.do(http.MethodPost, "/api/v1/videos/vid_001/copyright-scan", creator, nil)
	var resp struct {
		Job domain.Job `json:"job"`
	}
	decodeData(t, w, &resp)

	assert.Equal(t, http.StatusNotFound, ta.do(http.MethodGet, "/api/v1/jobs/"+string(resp.Job.ID), other, nil).Code)
	assert.Equal(t, http.StatusNotFound, ta.do(http.MethodGet, "/api/v1/jobs/job_missing", creator, nil).Code)
}

func TestAPI_JobWebSocket(t *testing.T) {
	ta := newTestApp(t)
	token := ta.login("creator@fluvid.com", "creator123")

	server := httptest.NewServer(ta.app.Router())
	defer server.Close()

	w := ta.do(http.MethodPost, "/api/v1/videos/upload", token, gin.H{"fileName": "clip.mov", "sizeBytes": 1 << 20})
	require.Equal(t, http.StatusAccepted, w.Code)
	var resp struct {
		Job domain.Job `json:"job"`
	}
	decodeData(t, w, &resp)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/jobs/" + string(resp.Job.ID) + "?access_token=" + token
	conn, httpResp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	if httpResp != nil && httpResp.Body != nil {
		httpResp.Body.Close()
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	for {
		var msg signal.ProgressMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == signal.MessageDone {
			assert.Equal(t, domain.JobCompleted, msg.Status)
			break
		}
	}

	_, httpResp, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws/jobs/"+string(resp.Job.ID), nil)
	require.Error(t, err)
	require.NotNil(t, httpResp)
	httpResp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, httpResp.StatusCode)
}

func TestAPI_OperationalEndpoints(t *testing.T) {
	ta := newTestApp(t)

	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/ready", "", nil).Code)

	ta.login("creator@fluvid.com", "creator123")
	w := ta.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `fluvid_logins_total{result="success"} 1`)
	assert.Contains(t, w.Body.String(), "fluvid_http_requests_total")
}

func TestAPI_RequestIDEchoed(t *testing.T) {
	ta := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	ta.app.Router().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestApp_SchedulerPublishesDueEpisodes(t *testing.T) {
	ta := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ta.app.Start(ctx)

	token := ta.login("creator@fluvid.com", "creator123")
	w := ta.do(http.MethodPost, "/api/v1/series/ser_001/episodes/ep_003/schedule", token,
		gin.H{"releaseAt": time.Now().Add(100 * time.Millisecond)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Eventually(t, func() bool {
		var series domain.Series
		decodeData(t, ta.do(http.MethodGet, "/api/v1/series/ser_001", token, nil), &series)
		_, ep := series.FindEpisode("ep_003")
		return ep != nil && ep.Status == domain.StatusPublished && ep.ReleaseAt == nil
	}, 2*time.Second, 20*time.Millisecond)
}
