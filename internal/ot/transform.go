// Package ot реализует Operational Transformation для плоского текста:
// функцию transform, центральный секвенсор и клиентский буфер.
package ot

import "github.com/iudanet/gophtext/internal/models"

// Transform переписывает операцию a так, чтобы ее можно было применить после b.
// Обе операции сгенерированы против одного и того же состояния документа.
// Функция чистая: входные значения не изменяются.
//
// Правила:
//   - b вставляет в p: a.pos > p сдвигается вправо. При a.pos == p две вставки
//     упорядочиваются по originator (меньший остается на месте, при равенстве
//     сдвигается a), а удаление сдвигается вправо вслед за своим символом.
//   - b удаляет в p: a.pos > p сдвигается влево. Удаление того же символа
//     превращается в no-op, вставка в p остается на месте.
func Transform(a, b models.Operation) models.Operation {
	if a.IsNoop() || b.IsNoop() {
		return a
	}

	p := b.Position

	switch b.Type {
	case models.OpInsert:
		switch {
		case a.Position > p:
			return a.WithPosition(a.Position + 1)
		case a.Position == p:
			if a.IsInsert() && a.Originator < b.Originator {
				return a
			}
			return a.WithPosition(a.Position + 1)
		}
	case models.OpDelete:
		switch {
		case a.Position > p:
			return a.WithPosition(a.Position - 1)
		case a.Position == p && a.IsDelete():
			return a.AsNoop()
		}
	}

	return a
}

// TransformPair симметричное преобразование пары конкурентных операций.
// Возвращает (a', b'), для которых apply(apply(S, a), b') == apply(apply(S, b), a').
func TransformPair(a, b models.Operation) (models.Operation, models.Operation) {
	return Transform(a, b), Transform(b, a)
}

// TransformAll сворачивает Transform по последовательности операций
// в порядке их принятия в каноническую историю.
func TransformAll(op models.Operation, against ...models.Operation) models.Operation {
	for _, b := range against {
		op = Transform(op, b)
	}
	return op
}
