package perf

import (
	"errors"
	"math"
	"testing"
)

// 기준 케이스: 앵커(플레이어 2) 기준으로 수렴 값 검증
func TestSolve_ReferenceCase(t *testing.T) {
	ratings := []Rating{
		{Fixed: false, Value: 0.0},
		{Fixed: false, Value: 0.0},
		{Fixed: true, Value: 0.0},
	}
	battles := []BattleResult{
		{I: 0, J: 1, Wij: 3, Wji: 1},
		{I: 0, J: 2, Wij: 2, Wji: 0},
		{I: 1, J: 2, Wij: 1, Wji: 2},
	}

	result, err := Solve(ratings, battles, &Options{MaxIterations: 100, Epsilon: 1e-6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{0.71165756, -0.31723877, 0.0}
	for i, w := range want {
		if math.Abs(result.Ratings[i]-w) > 1e-6 {
			t.Errorf("ratings[%d] = %.8f, want %.8f", i, result.Ratings[i], w)
		}
	}
	if result.Iterations < 1 || result.Iterations > 100 {
		t.Errorf("iterations = %d, want within [1, 100]", result.Iterations)
	}
}

func TestSolve_NilOptionsUseDefaults(t *testing.T) {
	ratings := []Rating{
		{Fixed: false, Value: 0.0},
		{Fixed: true, Value: 0.0},
	}
	battles := []BattleResult{{I: 0, J: 1, Wij: 2, Wji: 1}}

	result, err := Solve(ratings, battles, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Iterations > DefaultMaxIterations {
		t.Errorf("iterations = %d exceeds default bound %d", result.Iterations, DefaultMaxIterations)
	}
}

// 판정된 게임이 없는 비고정 플레이어는 NaN 대신 에러를 반환해야 함
func TestSolve_DegenerateZeroGames(t *testing.T) {
	ratings := []Rating{
		{Fixed: false, Value: 0.0},
		{Fixed: false, Value: 0.0},
		{Fixed: false, Value: 0.0},
	}
	battles := []BattleResult{{I: 1, J: 2, Wij: 0, Wji: 0}}

	result, err := Solve(ratings, battles, nil)
	if !errors.Is(err, ErrDegeneratePlayer) {
		t.Fatalf("err = %v, want ErrDegeneratePlayer", err)
	}
	if result != nil {
		t.Errorf("result = %+v, want nil on error", result)
	}
}

func TestSolve_FixedValueBitIdentical(t *testing.T) {
	anchor := 1.2345678901234567
	ratings := []Rating{
		{Fixed: false, Value: 0.0},
		{Fixed: true, Value: anchor},
	}
	battles := []BattleResult{{I: 0, J: 1, Wij: 7, Wji: 3}}

	result, err := Solve(ratings, battles, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Ratings[1] != anchor {
		t.Errorf("fixed rating changed: %v -> %v", anchor, result.Ratings[1])
	}
}

// 우도는 레이팅 차이에만 의존하므로 모든 초기값을 상수만큼 이동하면
// 결과도 같은 상수만큼 이동해야 함
func TestSolve_ShiftInvariance(t *testing.T) {
	battles := []BattleResult{
		{I: 0, J: 1, Wij: 3, Wji: 1},
		{I: 0, J: 2, Wij: 2, Wji: 0},
		{I: 1, J: 2, Wij: 1, Wji: 2},
	}
	base := []Rating{
		{Fixed: false, Value: 0.0},
		{Fixed: false, Value: 0.0},
		{Fixed: true, Value: 0.0},
	}

	const shift = 5.0
	shifted := make([]Rating, len(base))
	for i, r := range base {
		shifted[i] = Rating{Fixed: r.Fixed, Value: r.Value + shift}
	}

	got, err := Solve(base, battles, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gotShifted, err := Solve(shifted, battles, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range got.Ratings {
		if math.Abs((gotShifted.Ratings[i]-shift)-got.Ratings[i]) > 1e-9 {
			t.Errorf("ratings[%d]: shifted fit %v, base fit %v", i, gotShifted.Ratings[i], got.Ratings[i])
		}
	}
}

func TestSolve_InputsNotMutated(t *testing.T) {
	ratings := []Rating{
		{Fixed: false, Value: 0.5},
		{Fixed: true, Value: -0.5},
	}
	battles := []BattleResult{{I: 0, J: 1, Wij: 4, Wji: 2}}

	if _, err := Solve(ratings, battles, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ratings[0].Value != 0.5 || ratings[1].Value != -0.5 {
		t.Errorf("input ratings mutated: %+v", ratings)
	}
	if battles[0].Wij != 4 || battles[0].Wji != 2 {
		t.Errorf("input battles mutated: %+v", battles)
	}
}

// 같은 쌍의 배틀 레코드 여러 개는 합산 후 피팅되어야 함
func TestSolve_DuplicatePairsAggregate(t *testing.T) {
	ratings := []Rating{
		{Fixed: false, Value: 0.0},
		{Fixed: true, Value: 0.0},
	}
	merged := []BattleResult{{I: 0, J: 1, Wij: 3, Wji: 1}}
	split := []BattleResult{
		{I: 0, J: 1, Wij: 1, Wji: 0},
		{I: 0, J: 1, Wij: 2, Wji: 1},
	}
	reversed := []BattleResult{
		{I: 0, J: 1, Wij: 1, Wji: 0},
		{I: 1, J: 0, Wij: 1, Wji: 2},
	}

	want, err := Solve(ratings, merged, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for name, battles := range map[string][]BattleResult{"split": split, "reversed": reversed} {
		got, err := Solve(ratings, battles, nil)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if math.Abs(got.Ratings[0]-want.Ratings[0]) > 1e-9 {
			t.Errorf("%s: ratings[0] = %v, want %v", name, got.Ratings[0], want.Ratings[0])
		}
	}
}

func TestSolve_IterationBound(t *testing.T) {
	ratings := []Rating{
		{Fixed: false, Value: 0.0},
		{Fixed: true, Value: 0.0},
	}
	battles := []BattleResult{{I: 0, J: 1, Wij: 30, Wji: 1}}

	// 수렴 전에 스윕 한도를 소진해도 에러가 아니라 best-effort 결과를 반환
	result, err := Solve(ratings, battles, &Options{MaxIterations: 1, Epsilon: 1e-12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Iterations != 1 {
		t.Errorf("iterations = %d, want 1", result.Iterations)
	}
	if math.IsNaN(result.Ratings[0]) || math.IsInf(result.Ratings[0], 0) {
		t.Errorf("non-finite rating after exhausted iterations: %v", result.Ratings[0])
	}
}

func TestSolve_ValidationErrors(t *testing.T) {
	valid := []Rating{
		{Fixed: false, Value: 0.0},
		{Fixed: true, Value: 0.0},
	}
	validBattles := []BattleResult{{I: 0, J: 1, Wij: 1, Wji: 1}}

	tests := []struct {
		name    string
		ratings []Rating
		battles []BattleResult
		opts    *Options
		wantErr error
	}{
		{
			name:    "NaN rating value",
			ratings: []Rating{{Value: math.NaN()}, {Fixed: true}},
			battles: validBattles,
			wantErr: ErrInvalidRating,
		},
		{
			name:    "infinite rating value",
			ratings: []Rating{{Value: math.Inf(1)}, {Fixed: true}},
			battles: validBattles,
			wantErr: ErrInvalidRating,
		},
		{
			name:    "index out of range",
			ratings: valid,
			battles: []BattleResult{{I: 0, J: 2, Wij: 1, Wji: 1}},
			wantErr: ErrInvalidIndex,
		},
		{
			name:    "negative index",
			ratings: valid,
			battles: []BattleResult{{I: -1, J: 1, Wij: 1, Wji: 1}},
			wantErr: ErrInvalidIndex,
		},
		{
			name:    "self battle",
			ratings: valid,
			battles: []BattleResult{{I: 1, J: 1, Wij: 1, Wji: 1}},
			wantErr: ErrInvalidIndex,
		},
		{
			name:    "negative win count",
			ratings: valid,
			battles: []BattleResult{{I: 0, J: 1, Wij: -1, Wji: 1}},
			wantErr: ErrInvalidBattle,
		},
		{
			name:    "NaN win count",
			ratings: valid,
			battles: []BattleResult{{I: 0, J: 1, Wij: math.NaN(), Wji: 1}},
			wantErr: ErrInvalidBattle,
		},
		{
			name:    "negative max iterations",
			ratings: valid,
			battles: validBattles,
			opts:    &Options{MaxIterations: -1},
			wantErr: ErrInvalidOptions,
		},
		{
			name:    "negative epsilon",
			ratings: valid,
			battles: validBattles,
			opts:    &Options{Epsilon: -1e-6},
			wantErr: ErrInvalidOptions,
		},
		{
			name:    "NaN epsilon",
			ratings: valid,
			battles: validBattles,
			opts:    &Options{Epsilon: math.NaN()},
			wantErr: ErrInvalidOptions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Solve(tt.ratings, tt.battles, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if result != nil {
				t.Errorf("result = %+v, want nil on error", result)
			}
		})
	}
}

// 알려진 실력 차이에서 생성한 승패 표로부터 순위가 복원되는지 확인
func TestSolve_RecoversOrdering(t *testing.T) {
	truth := []float64{1.5, 0.8, 0.0, -0.6, -1.2}
	n := len(truth)

	ratings := make([]Rating, n)
	ratings[2] = Rating{Fixed: true, Value: 0.0} // 중간 플레이어를 앵커로

	var battles []BattleResult
	const games = 200.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			p := 1.0 / (1.0 + math.Exp(-(truth[i] - truth[j])))
			wij := math.Round(games * p)
			battles = append(battles, BattleResult{I: i, J: j, Wij: wij, Wji: games - wij})
		}
	}

	result, err := Solve(ratings, battles, &Options{MaxIterations: 200, Epsilon: 1e-9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < n-1; i++ {
		if result.Ratings[i] <= result.Ratings[i+1] {
			t.Errorf("ordering not recovered: ratings[%d]=%v <= ratings[%d]=%v",
				i, result.Ratings[i], i+1, result.Ratings[i+1])
		}
	}
	for i := range truth {
		if math.Abs(result.Ratings[i]-truth[i]) > 0.15 {
			t.Errorf("ratings[%d] = %v, want near %v", i, result.Ratings[i], truth[i])
		}
	}
}
