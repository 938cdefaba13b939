package model

// EstimatorState は推定器の学習ライフサイクルを表します。
type EstimatorState int

const (
	// NotFitted は Fit がまだ成功していない状態です。
	NotFitted EstimatorState = iota
	// Fitted は Fit が成功し推論可能な状態です。
	Fitted
)

// BaseEstimator は各推定器に埋め込まれ、学習状態を一元管理します。
// Fit は成功時に SetFitted を呼び、推論系メソッドは IsFitted を見て
// NotFittedError を返すかどうかを判定します。
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted は学習済みかどうかを返します。
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted は学習済み状態へ遷移させます。
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset は未学習状態へ戻します。再学習の開始時に呼ばれます。
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
