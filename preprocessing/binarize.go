// Package preprocessing はラベル整形・分割・リサンプリングを提供します。
// すべての操作は入力テーブルを変更せず、新しいテーブルを返します。
package preprocessing

import (
	"math"

	"github.com/cardiogo/cardiogo/dataset"
	"github.com/cardiogo/cardiogo/pkg/errors"
)

// ラベル二値化後のレベル名
var binaryLevels = []string{"no disease", "disease"}

// BinarizeLabel は多値の重症度ラベルを二値に畳み込みます。
// 0 はそのまま 0（疾患なし）、1〜4 は 1（疾患あり）になります。
// 結果の列は2レベルのカテゴリカル型であり、連続値ではありません。
func BinarizeLabel(t *dataset.Table, col string) (*dataset.Table, error) {
	c, err := t.Col(col)
	if err != nil {
		return nil, err
	}
	if c.Kind == dataset.Categorical {
		return nil, errors.NewValidationError("col", "label column already categorical", col)
	}

	values := make([]float64, len(c.Values))
	for i, v := range c.Values {
		switch {
		case math.IsNaN(v):
			return nil, errors.NewValueError("preprocessing.BinarizeLabel",
				errors.Newf("row %d: missing label", i).Error())
		case v == 0:
			values[i] = 0
		case v >= 1 && v <= 4 && v == math.Trunc(v):
			values[i] = 1
		default:
			return nil, errors.NewValueError("preprocessing.BinarizeLabel",
				errors.Newf("row %d: unexpected severity value %v", i, v).Error())
		}
	}

	return t.WithColumn(dataset.Column{
		Name:   col,
		Kind:   dataset.Categorical,
		Values: values,
		Levels: binaryLevels,
	})
}
