// Package term содержит арифметику срока подписки поверх секунд Unix-эпохи.
//
// Срок подписки фиксированный — 30 дней без частичных периодов. Досрочная
// деактивация укорачивает срок, выставляя дату окончания в текущий момент.
package term

import "time"

// Days — длительность оплачиваемого периода подписки в днях.
const Days = 30

// Now возвращает текущий момент в секундах Unix-эпохи.
func Now() int64 {
	return time.Now().Unix()
}

// EndDate возвращает дату окончания срока, начавшегося в start.
func EndDate(start int64) int64 {
	return time.Unix(start, 0).AddDate(0, 0, Days).Unix()
}
