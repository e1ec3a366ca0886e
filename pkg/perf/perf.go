// Package perf implements the Bradley-Terry performance rating solver used
// by the arena backend. Given initial ratings (some fixed as scale anchors)
// and aggregated head-to-head battle results, it fits latent performance
// values by coordinate-wise Newton-Raphson iteration on the log-likelihood.
//
// The probability that player i beats player j in one encounter is
// sigmoid(r_i - r_j). On top of the battle likelihood, each non-fixed rating
// carries a unit-weight quadratic penalty anchored at its initial value, so
// the estimate stays near the prior rating when a player has few games and
// the curvature is always strictly negative.
package perf

import (
	"errors"
	"fmt"
	"math"
)

// 솔버 기본 옵션
const (
	DefaultMaxIterations = 100
	DefaultEpsilon       = 1e-6
)

var (
	ErrInvalidRating    = errors.New("invalid rating value")
	ErrInvalidIndex     = errors.New("invalid player index")
	ErrInvalidBattle    = errors.New("invalid battle result")
	ErrDegeneratePlayer = errors.New("player has no decided games")
	ErrInvalidOptions   = errors.New("invalid solver options")
)

// Rating 플레이어 레이팅 (로그 스케일)
// Fixed가 true이면 스케일 앵커로 사용되며 값이 변경되지 않음
type Rating struct {
	Fixed bool    `json:"fixed"`
	Value float64 `json:"value"`
}

// BattleResult 플레이어 i와 j 사이의 승패 집계
// Win counts are float64 so that callers may pass fractional aggregate
// scores (e.g. draws counted as half a win for each side).
type BattleResult struct {
	I   int     `json:"i"`
	J   int     `json:"j"`
	Wij float64 `json:"wij"`
	Wji float64 `json:"wji"`
}

// Options 수렴 조건 설정. 0 값 필드는 기본값으로 대체됨
type Options struct {
	MaxIterations int     `json:"maxIterations"`
	Epsilon       float64 `json:"epsilon"`
}

// Result 계산 결과: 입력과 같은 순서의 최종 레이팅과 수행한 스윕 횟수
type Result struct {
	Ratings    []float64 `json:"ratings"`
	Iterations int       `json:"iterations"`
}

// opponent is one edge of a player's aggregated adjacency: wins/losses of
// the owning player against the opponent at index idx.
type opponent struct {
	idx    int
	wins   float64
	losses float64
}

func (o *Options) withDefaults() (Options, error) {
	out := Options{MaxIterations: DefaultMaxIterations, Epsilon: DefaultEpsilon}
	if o == nil {
		return out, nil
	}
	if o.MaxIterations != 0 {
		if o.MaxIterations < 0 {
			return out, fmt.Errorf("%w: max iterations must be greater than 0", ErrInvalidOptions)
		}
		out.MaxIterations = o.MaxIterations
	}
	if o.Epsilon != 0 {
		// NaN도 여기서 걸러짐
		if !(o.Epsilon > 0) || math.IsInf(o.Epsilon, 0) {
			return out, fmt.Errorf("%w: epsilon must be positive and finite", ErrInvalidOptions)
		}
		out.Epsilon = o.Epsilon
	}
	return out, nil
}

// Solve fits the Bradley-Terry model for the given ratings and battles and
// returns the converged rating values together with the number of sweeps
// performed. Inputs are never mutated; fixed entries are returned bit
// identical. A nil opts uses DefaultMaxIterations and DefaultEpsilon.
//
// Exhausting MaxIterations is not an error: the best-effort ratings are
// returned with Iterations equal to the configured maximum, and the caller
// decides whether that counts as a failure.
//
// At least one rating should be fixed: the likelihood is invariant under a
// global additive shift, so an unanchored battle graph has no unique
// solution and the output quality is undefined. This is a caller obligation
// and is not validated here.
func Solve(ratings []Rating, battles []BattleResult, opts *Options) (*Result, error) {
	for i, r := range ratings {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			return nil, fmt.Errorf("%w: player %d has value %v", ErrInvalidRating, i, r.Value)
		}
	}

	n := len(ratings)
	for _, b := range battles {
		if b.I < 0 || b.I >= n || b.J < 0 || b.J >= n || b.I == b.J {
			return nil, fmt.Errorf("%w: battle %d vs %d with %d players", ErrInvalidIndex, b.I, b.J, n)
		}
		// !(x >= 0) also rejects NaN
		if !(b.Wij >= 0) || !(b.Wji >= 0) || math.IsInf(b.Wij, 0) || math.IsInf(b.Wji, 0) {
			return nil, fmt.Errorf("%w: battle %d vs %d has win counts (%v, %v)", ErrInvalidBattle, b.I, b.J, b.Wij, b.Wji)
		}
	}

	cfg, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	// 플레이어별 인접 리스트 구성 (같은 쌍의 중복 배틀은 합산)
	adj := make([][]opponent, n)
	slot := make([]map[int]int, n)
	totals := make([]float64, n)
	merge := func(i, j int, wins, losses float64) {
		if slot[i] == nil {
			slot[i] = make(map[int]int)
		}
		k, ok := slot[i][j]
		if !ok {
			k = len(adj[i])
			slot[i][j] = k
			adj[i] = append(adj[i], opponent{idx: j})
		}
		adj[i][k].wins += wins
		adj[i][k].losses += losses
		totals[i] += wins + losses
	}
	for _, b := range battles {
		merge(b.I, b.J, b.Wij, b.Wji)
		merge(b.J, b.I, b.Wji, b.Wij)
	}

	// 판정된 게임이 하나도 없는 비고정 플레이어는 우도 기여가 퇴화됨
	for i := range ratings {
		if !ratings[i].Fixed && totals[i] == 0 {
			return nil, fmt.Errorf("%w: player %d", ErrDegeneratePlayer, i)
		}
	}

	// working copy: 스윕 내에서 즉시 갱신 (Gauss-Seidel)
	values := make([]float64, n)
	for i := range ratings {
		values[i] = ratings[i].Value
	}

	iterations := 0
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		maxDelta := 0.0
		for i := 0; i < n; i++ {
			if ratings[i].Fixed {
				continue
			}
			// prior: -(r_i - r_i^0)^2 / 2 contributes -(r_i - r_i^0) to the
			// gradient and -1 to the curvature
			grad := -(values[i] - ratings[i].Value)
			curv := -1.0
			for _, o := range adj[i] {
				p := sigmoid(values[i] - values[o.idx])
				grad += o.wins*(1-p) - o.losses*p
				curv -= (o.wins + o.losses) * p * (1 - p)
			}
			delta := grad / curv
			values[i] -= delta
			if d := math.Abs(delta); d > maxDelta {
				maxDelta = d
			}
		}
		iterations = iter + 1
		if maxDelta < cfg.Epsilon {
			break
		}
	}

	return &Result{Ratings: values, Iterations: iterations}, nil
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
