package preprocessing

import (
	"math"
	"math/rand/v2"

	"github.com/cardiogo/cardiogo/dataset"
	"github.com/cardiogo/cardiogo/pkg/errors"
)

// StratifiedSplit はアウトカム列で層化した決定論的な訓練/テスト分割を行います。
// 各クラス内でシャッフルした後、trainFrac の割合（四捨五入）を訓練側に
// 割り当てるため、分割は互いに素かつ全行を網羅します。
// 同じシードに対して常に同じ分割を返します。
func StratifiedSplit(t *dataset.Table, col string, trainFrac float64, seed uint64) (train, test *dataset.Table, err error) {
	if trainFrac <= 0 || trainFrac >= 1 {
		return nil, nil, errors.NewValidationError("trainFrac", "must be in (0, 1)", trainFrac)
	}
	c, err := t.Col(col)
	if err != nil {
		return nil, nil, err
	}
	if c.Kind != dataset.Categorical {
		return nil, nil, errors.NewValidationError("col", "stratification column must be categorical", col)
	}

	// クラスごとに行インデックスを集める
	byClass := make([][]int, len(c.Levels))
	for i, v := range c.Values {
		if math.IsNaN(v) {
			return nil, nil, errors.NewValueError("preprocessing.StratifiedSplit",
				errors.Newf("row %d: missing label", i).Error())
		}
		cls := int(v)
		byClass[cls] = append(byClass[cls], i)
	}

	r := rand.New(rand.NewPCG(seed, seed))
	var trainIdx, testIdx []int
	for _, indices := range byClass {
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		nTrain := int(math.Round(trainFrac * float64(len(indices))))
		trainIdx = append(trainIdx, indices[:nTrain]...)
		testIdx = append(testIdx, indices[nTrain:]...)
	}

	train, err = t.Select(trainIdx)
	if err != nil {
		return nil, nil, err
	}
	test, err = t.Select(testIdx)
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}
