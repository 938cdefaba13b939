package preprocessing

import (
	"math"
	"math/rand/v2"

	"github.com/cardiogo/cardiogo/dataset"
	"github.com/cardiogo/cardiogo/pkg/errors"
)

// OverSample はクラス頻度を均等化した派生テーブルを作成します。
// 合計行数がちょうど target になるよう、各クラスに target/k 行
// （余りは先頭クラスから1行ずつ）を割り当てます。割当より少ない
// クラスは元の行を全て保持した上で復元抽出により複製され、割当より
// 多いクラスは非復元抽出で間引かれます。同じシードに対して常に同じ
// 構成を返します。入力テーブルは変更されません。
func OverSample(t *dataset.Table, col string, target int, seed uint64) (*dataset.Table, error) {
	if target < 1 {
		return nil, errors.NewValidationError("target", "must be at least 1", target)
	}
	c, err := t.Col(col)
	if err != nil {
		return nil, err
	}
	if c.Kind != dataset.Categorical {
		return nil, errors.NewValidationError("col", "class column must be categorical", col)
	}

	byClass := make([][]int, len(c.Levels))
	for i, v := range c.Values {
		if math.IsNaN(v) {
			return nil, errors.NewValueError("preprocessing.OverSample",
				errors.Newf("row %d: missing label", i).Error())
		}
		byClass[int(v)] = append(byClass[int(v)], i)
	}
	for cls, indices := range byClass {
		if len(indices) == 0 {
			return nil, errors.NewValueError("preprocessing.OverSample",
				errors.Newf("class %q has no rows to sample from", c.Levels[cls]).Error())
		}
	}

	k := len(byClass)
	quota := make([]int, k)
	for cls := range quota {
		quota[cls] = target / k
		if cls < target%k {
			quota[cls]++
		}
	}

	r := rand.New(rand.NewPCG(seed, seed))
	out := make([]int, 0, target)
	for cls, indices := range byClass {
		switch {
		case len(indices) <= quota[cls]:
			// 元の行を全て保持し、残りを復元抽出で複製する
			out = append(out, indices...)
			for n := len(indices); n < quota[cls]; n++ {
				out = append(out, indices[r.IntN(len(indices))])
			}
		default:
			// 割当超過のクラスは非復元抽出で間引く
			shuffled := append([]int(nil), indices...)
			r.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			out = append(out, shuffled[:quota[cls]]...)
		}
	}

	// クラス順に整列したままにしないため全体をシャッフルする
	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})

	return t.Select(out)
}
