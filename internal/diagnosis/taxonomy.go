package diagnosis

// ErrorKind classifies a wrong answer. Values are stored verbatim.
type ErrorKind string

const (
	KindCalculation ErrorKind = "계산 실수"
	KindConcept     ErrorKind = "개념 오적용"
	KindMisread     ErrorKind = "문제 해석 오류"
	KindGuess       ErrorKind = "찍음"
)

// Severity bounds.
const (
	MinSeverity = 1
	MaxSeverity = 5
)

// KindInfo describes an error kind for the analysis prompt.
type KindInfo struct {
	Kind        ErrorKind
	Description string
}

// taxonomy lists every kind in prompt order.
var taxonomy = []KindInfo{
	{KindCalculation, "개념은 알지만 계산 과정에서 실수함 (받아올림 누락, 부호 실수 등)"},
	{KindConcept, "개념이나 공식을 잘못 이해했거나 다른 상황의 공식을 적용함"},
	{KindMisread, "문제의 조건을 잘못 읽었거나 묻는 것을 착각함"},
	{KindGuess, "풀이 없이 보기를 고른 것으로 보임"},
}

// Kinds returns the error taxonomy in prompt order.
func Kinds() []KindInfo {
	return append([]KindInfo(nil), taxonomy...)
}

// Valid reports whether k is part of the taxonomy.
func (k ErrorKind) Valid() bool {
	for _, info := range taxonomy {
		if info.Kind == k {
			return true
		}
	}
	return false
}

func kindValues() []any {
	out := make([]any, len(taxonomy))
	for i, info := range taxonomy {
		out[i] = string(info.Kind)
	}
	return out
}
