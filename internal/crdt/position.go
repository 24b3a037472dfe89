// Package crdt реализует последовательностный CRDT для плоского текста
// на дробных ключах произвольной глубины.
package crdt

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/iudanet/gophtext/internal/models"
)

const (
	// Boundary максимальный шаг от левого соседа на одном уровне.
	// Оставляет место для последующих вставок справа.
	Boundary uint64 = 1 << 20

	// MaxKeyDepth предел глубины синтеза, суффикс [site, counter] добавляется сверху
	MaxKeyDepth = models.MaxSortKeyLen - 2
)

// SiteHash отображает идентификатор реплики в компонент ключа
func SiteHash(replicaID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(replicaID))
	return h.Sum64()
}

// Between синтезирует ключ строго между left и right.
// nil означает начало или конец документа. Результат всегда оканчивается
// на [site, counter], поэтому ключи разных атомов не совпадают,
// а между двумя соседями всегда остается место на более глубоком уровне.
func Between(left, right models.SortKey, site, counter uint64) (models.SortKey, error) {
	if counter == 0 {
		return nil, ErrZeroCounter
	}
	if left != nil && right != nil && left.Compare(right) >= 0 {
		return nil, fmt.Errorf("%w: %v >= %v", ErrInvalidBounds, left, right)
	}

	prefix := make(models.SortKey, 0, len(left)+3)
	leftBound := left != nil   // prefix совпадает с началом left
	rightBound := right != nil // prefix совпадает с началом right

	for depth := 0; depth < MaxKeyDepth; depth++ {
		if rightBound && depth >= len(right) {
			// prefix == right, между ними ничего нет
			return nil, fmt.Errorf("%w: %v and %v", ErrNoRoom, left, right)
		}

		var lo uint64
		loOK := true
		if leftBound && depth < len(left) {
			if left[depth] == math.MaxUint64 {
				loOK = false
			} else {
				lo = left[depth] + 1
			}
		}

		hi := uint64(math.MaxUint64)
		hiOK := true
		if rightBound {
			if right[depth] == 0 {
				hiOK = false
			} else {
				hi = right[depth] - 1
			}
		}

		if loOK && hiOK && lo <= hi {
			d := lo + min((hi-lo)/2, Boundary)
			key := append(prefix, d, site, counter)
			return key, nil
		}

		// На этом уровне места нет: копируем цифру левого соседа и спускаемся
		var digit uint64
		if leftBound && depth < len(left) {
			digit = left[depth]
		} else {
			leftBound = false
		}
		if rightBound && digit != right[depth] {
			rightBound = false
		}
		prefix = append(prefix, digit)
	}

	return nil, fmt.Errorf("%w: depth %d", ErrKeyTooLong, MaxKeyDepth)
}
