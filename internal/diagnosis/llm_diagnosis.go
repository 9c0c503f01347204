package diagnosis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/abhisek/mathdaily/internal/llm"
)

// AnalyzerConfig holds configuration for the LLM analyzer.
type AnalyzerConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultAnalyzerConfig returns sensible defaults.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MaxTokens:   512,
		Temperature: 0.3,
	}
}

// Analyzer asks the LLM why an answer was wrong.
type Analyzer struct {
	provider llm.Provider
	cfg      AnalyzerConfig
}

// NewAnalyzer creates an LLM-based analyzer.
func NewAnalyzer(provider llm.Provider, cfg AnalyzerConfig) *Analyzer {
	return &Analyzer{provider: provider, cfg: cfg}
}

// AnalysisRequest is the input for one analysis call.
type AnalysisRequest struct {
	Topic           string
	QuestionText    string
	CorrectAnswer   string
	SubmittedAnswer string
	Hint            *Hint
}

// Analyze sends a wrong answer to the LLM. The result always carries a
// kind from the taxonomy and a severity within bounds.
func (a *Analyzer) Analyze(ctx context.Context, req *AnalysisRequest) (*Analysis, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeAnalysis)

	userMsg, err := buildAnalysisMessage(req)
	if err != nil {
		return nil, fmt.Errorf("build analysis prompt: %w", err)
	}

	resp, err := a.provider.Generate(ctx, llm.Request{
		System: analysisSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      AnalysisSchema,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM analysis failed: %w", err)
	}

	var out Analysis
	if err := json.Unmarshal([]byte(llm.StripCodeFence(string(resp.Content))), &out); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	out.Kind = ErrorKind(strings.TrimSpace(string(out.Kind)))
	if !out.Kind.Valid() {
		return nil, fmt.Errorf("unknown error_type %q", out.Kind)
	}
	if out.Severity < MinSeverity || out.Severity > MaxSeverity {
		return nil, fmt.Errorf("severity %d out of range", out.Severity)
	}
	out.Reasoning = strings.TrimSpace(out.Reasoning)
	out.Advice = strings.TrimSpace(out.Advice)
	return &out, nil
}

const analysisSystemPrompt = `당신은 학생의 수학 오답을 분석하는 전문 교사입니다.
학생이 문제를 틀린 원인을 아래 분류 중 하나로 판단하세요.
- 목록에 없는 분류를 만들지 마세요.
- reasoning에는 학생이 오답에 이른 과정을 한두 문장으로 추정하세요.
- advice에는 학생에게 줄 맞춤형 조언을 한 문장으로 쓰세요.
- severity는 1(사소한 실수)부터 5(근본적인 개념 부족)까지입니다.`

var analysisUserTemplate = template.Must(template.New("analysis").Funcs(template.FuncMap{
	"kinds": Kinds,
}).Parse(`{{if .Topic}}단원: {{.Topic}}
{{end}}문제: {{.QuestionText}}
정답: {{.CorrectAnswer}}
학생 답: {{.SubmittedAnswer}}

오답 분류:
{{range kinds}}- {{.Kind}}: {{.Description}}
{{end}}{{with .Hint}}
참고: 규칙 기반 추정은 "{{.Kind}}" 입니다 (신뢰도 {{printf "%.1f" .Confidence}}). 문제와 답을 보고 최종 판단하세요.
{{end}}`))

func buildAnalysisMessage(req *AnalysisRequest) (string, error) {
	var buf bytes.Buffer
	if err := analysisUserTemplate.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
