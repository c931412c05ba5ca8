// Package habits — pricing.go считает цену выкупа пропущенного дня.
package habits

// RedemptionCost возвращает цену выкупа дня, пропущенного daysAgo дней назад.
//
// Формула:
//
//	база     = очки привычки * multiplier (по умолчанию 5)
//	надбавка = (daysAgo - 1) * surcharge за каждый день старше вчерашнего
//
// Сегодня и вчера (daysAgo <= 1) стоят только базу; каждый следующий
// день возраста добавляет плоскую надбавку. Смысл: выкупать свежие
// пропуски дёшево, старые — дорого, а цена пропорциональна ценности
// привычки через её очки за выполнение.
//
// Примеры (multiplier=5, surcharge=10):
//
//	RedemptionCost(10, 1, 5, 10)  → 50
//	RedemptionCost(10, 2, 5, 10)  → 60
//	RedemptionCost(10, 7, 5, 10)  → 110
func RedemptionCost(pointsPerCompletion int64, daysAgo int, multiplier, surcharge int64) int64 {
	baseCost := pointsPerCompletion * multiplier

	var additionalCost int64
	if daysAgo > 1 {
		additionalCost = int64(daysAgo-1) * surcharge
	}

	return baseCost + additionalCost
}
