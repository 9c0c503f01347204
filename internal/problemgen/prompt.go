package problemgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/mathdaily/internal/curriculum"
	"github.com/abhisek/mathdaily/internal/planner"
)

const systemPromptTemplate = `당신은 대한민국 최상위권 수학 전문 출제 위원입니다.
현재 대상 학년은 [%s] 입니다.
주요 토픽 예시: %s

해당 학년의 교과 과정을 철저히 준수하고, 학년보다 지나치게 쉬운 문제는 내지 마세요.

[출제 지침]
1. 복합 사고력: 2단계 이상의 사고가 필요한 문제를 내세요.
2. 실생활 응용: 글을 읽고 식을 세우는 능력을 평가하세요.
3. 오답 유도: 오답 보기는 학생이 흔히 하는 실수(계산 실수, 조건 누락)를 반영하세요.
4. 단계별 해설: explanation은 사용할 개념부터 시작해 정답에 이르는 과정을 1, 2, 3단계로 나누어 친절하게 설명하세요.
5. 객관식 4지선다: options는 정확히 4개이며 서로 달라야 합니다. 정답 1개와 오답 3개로 구성하고, answer에는 정답 보기의 문자열을 그대로 적으세요.
6. 요청의 slot 번호를 각 문제의 slot에 그대로 적고, 각 slot의 topic과 difficulty(1 쉬움, 2 보통, 3 어려움)에 맞추세요.

[수학 기호 규칙]
- 거듭제곱은 ^ 대신 유니코드 상첨자를 사용하세요: x² (O), x^2 (X)
- 곱셈은 * 대신 × 를 사용하세요.
- 나눗셈은 / 대신 ÷ 를 사용할 수 있습니다 (분수 표현 제외).
- 문제, 보기, 정답, 해설 모든 필드에 같은 기호를 사용하세요.

[SVG 규칙]
1. require_visual이 true이거나 도형, 그래프, 함수가 나오는 문제는 svg 필드에 그림을 반드시 넣으세요.
   - <svg viewBox="0 0 300 250" xmlns="http://www.w3.org/2000/svg"> 로 시작하고 </svg> 로 닫으세요.
   - 배경은 투명, 선 색은 검정(#000) 또는 파랑(#3b82f6)을 사용하세요.
2. 그림이 필요 없는 문제는 svg를 빈 문자열("")로 두세요.

응답은 {"problems": [...]} 형식의 JSON 객체 하나로만 답하세요.`

// buildSystemPrompt renders the system prompt for one grade.
func buildSystemPrompt(grade curriculum.GradeContext) string {
	return fmt.Sprintf(systemPromptTemplate, grade.Label, grade.Scope)
}

// slotRequest is one plan slot as the model sees it.
type slotRequest struct {
	Slot          int    `json:"slot"`
	Topic         string `json:"topic"`
	Difficulty    int    `json:"difficulty"`
	Type          string `json:"type"`
	RequireVisual bool   `json:"require_visual"`
}

// buildUserMessage lists the chunk's slots, numbered from 1, and the
// questions the student has already seen.
func buildUserMessage(chunk []planner.Item, prior []string, maxPrior int) (string, error) {
	slots := make([]slotRequest, len(chunk))
	for i, it := range chunk {
		slots[i] = slotRequest{
			Slot:          i + 1,
			Topic:         it.Topic,
			Difficulty:    int(it.Tier),
			Type:          string(it.Category),
			RequireVisual: it.RequireVisual,
		}
	}
	data, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode slots: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "다음 계획에 맞춰 총 %d개의 수학 문제를 생성해줘:\n", len(chunk))
	b.Write(data)
	b.WriteString("\n\n이미 출제된 문제 (반복 금지):\n")
	b.WriteString(buildDedup(prior, maxPrior))
	return b.String(), nil
}
