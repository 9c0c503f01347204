package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhisek/mathdaily/internal/llm"
	"github.com/abhisek/mathdaily/internal/metrics"
	"github.com/abhisek/mathdaily/internal/problemgen"
	"github.com/abhisek/mathdaily/internal/store"
	"github.com/abhisek/mathdaily/internal/worksheet"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	store   *store.Store
	mock    *llm.MockProvider
	metrics *metrics.Metrics
	handler http.Handler
}

func newTestEnv(t *testing.T, responses ...llm.MockResponse) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:server_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	mock := llm.NewMockProvider(responses...)
	m := metrics.New()
	svc := worksheet.New(s, mock, worksheet.Config{Generation: problemgen.DefaultConfig()}, zap.NewNop(),
		worksheet.WithChunkObserver(m))
	srv := New(svc, Options{
		Metrics: m,
		Ping:    func(ctx context.Context) error { return s.DB().PingContext(ctx) },
	}, zap.NewNop())
	return &testEnv{store: s, mock: mock, metrics: m, handler: srv.Handler()}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func twoProblems() llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(`{"problems":[
		{"slot":1,"question":"27 + 35 = ?","options":["52","62","63","61"],"answer":"62","explanation":"일의 자리에서 받아올림합니다.","svg":""},
		{"slot":2,"question":"3/4 + 1/8 = ?","options":["7/8","4/12","1","5/8"],"answer":"7/8","explanation":"통분하면 6/8 + 1/8 입니다.","svg":""}
	]}`)}
}

func TestCurriculum(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	chID, err := env.store.Curriculum().UpsertChapter(ctx, store.Chapter{SchoolLevel: "middle", Grade: 2, Name: "일차함수"})
	require.NoError(t, err)
	_, err = env.store.Curriculum().UpsertUnit(ctx, store.Unit{ChapterID: chID, Name: "일차함수의 그래프"})
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/curriculum/middle/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var chapters []struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Units []struct {
			Name string `json:"name"`
		} `json:"units"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chapters))
	require.Len(t, chapters, 1)
	assert.Equal(t, "일차함수의 그래프", chapters[0].Units[0].Name)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/curriculum/middle/9", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/curriculum/middle/two", nil).Code)
}

func TestGenerate(t *testing.T) {
	env := newTestEnv(t, twoProblems())

	w := env.do(t, http.MethodPost, "/api/daily-worksheet/generate", map[string]any{"userId": "kim", "count": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var problems []problemgen.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problems))
	require.Len(t, problems, 2)
	assert.NotEmpty(t, problems[0].ID)
	assert.Equal(t, "62", problems[0].Answer)

	stored, err := env.store.Problems().ListByStudent(context.Background(), "kim", 10)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestGenerateErrors(t *testing.T) {
	unit := 999
	tests := []struct {
		name       string
		body       any
		resp       llm.MockResponse
		wantStatus int
		wantKind   string
	}{
		{"quota", map[string]any{"userId": "kim", "count": 2}, llm.MockResponse{Err: &llm.ErrQuotaExceeded{Err: errors.New("insufficient_quota")}}, http.StatusTooManyRequests, "quota"},
		{"auth", map[string]any{"userId": "kim", "count": 2}, llm.MockResponse{Err: &llm.ErrAuth{Err: errors.New("401")}}, http.StatusUnauthorized, "auth"},
		{"timeout", map[string]any{"userId": "kim", "count": 2}, llm.MockResponse{Err: &llm.ErrTimeout{Err: context.DeadlineExceeded}}, http.StatusInternalServerError, ""},
		{"unknown unit", map[string]any{"userId": "kim", "unitId": unit}, llm.MockResponse{}, http.StatusNotFound, ""},
		{"missing user", map[string]any{"count": 2}, llm.MockResponse{}, http.StatusBadRequest, ""},
		{"bad count", map[string]any{"userId": "kim", "count": 500}, llm.MockResponse{}, http.StatusBadRequest, ""},
		{"bad json", "{", llm.MockResponse{}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.resp)
			w := env.do(t, http.MethodPost, "/api/daily-worksheet/generate", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Detail)
			assert.Equal(t, tt.wantKind, resp.Kind)
		})
	}
}

func TestSubmit(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/daily-worksheet/submit", map[string]any{"userId": "kim", "accuracy": 0.85})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		LevelChange int    `json:"level_change"`
		Message     string `json:"message"`
		NewLevel    int    `json:"new_level"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.LevelChange)
	assert.Equal(t, 3, res.NewLevel)
	assert.NotEmpty(t, res.Message)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/daily-worksheet/submit", map[string]any{"userId": "kim", "accuracy": 1.5}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/daily-worksheet/submit", map[string]any{"userId": "kim"}).Code)
}

func TestAnalyzeError(t *testing.T) {
	env := newTestEnv(t,
		llm.MockResponse{Content: json.RawMessage(`{"error_type":"계산 실수","reasoning":"받아올림을 빠뜨렸습니다","advice":"자리값을 맞춰 쓰세요","severity":2}`)},
		llm.MockResponse{Err: &llm.ErrInvalidResponse{Content: json.RawMessage("??"), Err: errors.New("bad json")}},
	)
	body := map[string]any{"userId": "kim", "problemId": "p1", "userAnswer": "52", "correctAnswer": "62", "questionText": "27 + 35 = ?"}

	w := env.do(t, http.MethodPost, "/api/analyze-error", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "계산 실수")

	w = env.do(t, http.MethodPost, "/api/analyze-error", body)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	records, err := env.store.Weaknesses().ListByStudent(context.Background(), "kim", 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRewrite(t *testing.T) {
	env := newTestEnv(t, llm.MockResponse{Err: &llm.ErrTimeout{Err: context.DeadlineExceeded}})
	const text = "가로 8cm, 세로 5cm인 직사각형의 넓이를 구하시오."

	w := env.do(t, http.MethodPost, "/api/rewrite-problem", map[string]any{"questionText": text})
	require.Equal(t, http.StatusOK, w.Code)
	var res map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, text, res["original"])
	assert.Equal(t, text, res["rewritten"])
}

func TestChat(t *testing.T) {
	env := newTestEnv(t, llm.MockResponse{Content: json.RawMessage("분모를 먼저 같게 만들어 볼까요?")})

	w := env.do(t, http.MethodPost, "/api/chat", map[string]any{
		"messages":       []map[string]string{{"role": "user", "content": "어떻게 풀어요?"}},
		"problemContext": "3/4 + 1/8 = ?",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "분모를 먼저 같게 만들어 볼까요?", w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))

	w = env.do(t, http.MethodPost, "/api/chat", map[string]any{"messages": []map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckAI(t *testing.T) {
	env := newTestEnv(t,
		llm.MockResponse{Content: json.RawMessage("2")},
		llm.MockResponse{Err: &llm.ErrAuth{Err: errors.New("401")}},
	)

	w := env.do(t, http.MethodGet, "/api/check-ai", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ai_response":"2"`)

	w = env.do(t, http.MethodGet, "/api/check-ai", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ERROR"`)
}

func TestStudentTopics(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/api/students/kim/topics", map[string]any{"topics": []string{"소수의 곱셈", "각도"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/students/kim", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var st struct {
		ID            string   `json:"id"`
		Grade         int      `json:"grade"`
		CurrentTopics []string `json:"current_topics"`
		WeakTopics    []string `json:"weak_topics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, []string{"소수의 곱셈", "각도"}, st.CurrentTopics)
	assert.Equal(t, []string{}, st.WeakTopics)
	assert.Equal(t, 3, st.Grade)
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, twoProblems())
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/daily-worksheet/generate", map[string]any{"userId": "kim", "count": 2}).Code)

	w := env.do(t, http.MethodGet, "/api/problems/export?userId=kim", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "expected a zip container")

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/problems/export", nil).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `mathdaily_http_requests_total{endpoint="/healthz",method="GET",status="200"} 1`)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/daily-worksheet/generate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Less(t, w.Code, 300)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
