package services

import "errors"

// 予測パイプラインのエラー分類。ハンドラーは errors.Is で判定してHTTPステータスに変換する。
// メッセージはAPI利用者にそのまま返すためスペイン語で記述する。
var (
	// ErrDataUnavailable データソースを読み込めない（起動時に致命的）
	ErrDataUnavailable = errors.New("no se pudo leer la fuente de datos")
	// ErrProductNotFound 製品名に一致する行が存在しない
	ErrProductNotFound = errors.New("no se encontraron datos para el producto")
	// ErrInsufficientData 月次系列が最小観測数に満たない
	ErrInsufficientData = errors.New("no hay suficientes datos para realizar la predicción")
	// ErrFitFailure ARIMAの推定が収束しない、または数値的に破綻した
	ErrFitFailure = errors.New("no se pudo ajustar el modelo de predicción")
	// ErrDateOutOfRange 指定日が12ヶ月の予測範囲外
	ErrDateOutOfRange = errors.New("la fecha especificada está fuera del rango de predicción")
	// ErrNoForecastForDate 範囲内だが該当月の予測が見つからない
	ErrNoForecastForDate = errors.New("no se encontró predicción para la fecha especificada")
	// ErrInvalidDate 日付文字列を解釈できない
	ErrInvalidDate = errors.New("la fecha proporcionada no es válida")
)

// IsUserError 利用者が入力を修正すれば解消するエラーかどうか
func IsUserError(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrDateOutOfRange) ||
		errors.Is(err, ErrNoForecastForDate) ||
		errors.Is(err, ErrInvalidDate)
}
